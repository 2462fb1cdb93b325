// Package template implements the Liquid-style extraction/substitution
// engine from : {{ var }} interpolation, {% if %}/{% unless %}/
// {% for %}/{% case %} control flow, assign/capture, and filters
// (default, upcase, downcase, truncate, shell_escape/q). Comparison and
// boolean conditions are evaluated with github.com/expr-lang/expr, the same
// engine ormasoftchile-gert's runtime uses for its runbook conditions
// (pkg/runtime/engine.go's evalCondition) — adapted here from Go template
// dot-syntax to this tool's bare-identifier Liquid-like grammar.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

// MissingTemplateVar is returned in strict mode when a globally-referenced
// "_"-prefixed variable has no provided value.
type MissingTemplateVar struct {
	Name string
}

func (e *MissingTemplateVar) Error() string {
	return fmt.Sprintf("missing template variable: %s", e.Name)
}

// identRe extracts bare identifier tokens from a condition/collection
// expression after string literals have been stripped.
var identRe = regexp.MustCompile(`\b[_A-Za-z][_A-Za-z0-9]*\b`)

var exprReserved = map[string]bool{
	"and": true, "or": true, "not": true, "in": true,
	"true": true, "false": true, "nil": true,
}

// stripStringLiterals blanks out the contents of single- and double-quoted
// substrings so identifier extraction does not mistake literal text for a
// variable reference.
func stripStringLiterals(s string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b.WriteByte(' ')
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// exprIdents returns the distinct non-reserved identifiers referenced in an
// expr-lang condition or collection expression, excluding names in locals.
func exprIdents(exprStr string, locals map[string]bool) []string {
	stripped := stripStringLiterals(exprStr)
	var out []string
	seen := map[string]bool{}
	for _, m := range identRe.FindAllString(stripped, -1) {
		if exprReserved[m] || locals[m] || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func baseIdent(dotted string) string {
	dotted = strings.TrimSpace(dotted)
	if i := strings.IndexAny(dotted, ".[|"); i != -1 {
		dotted = dotted[:i]
	}
	return strings.TrimSpace(dotted)
}

func cloneLocals(locals map[string]bool) map[string]bool {
	out := make(map[string]bool, len(locals)+1)
	for k, v := range locals {
		out[k] = v
	}
	return out
}

// Extract returns, in first-reference order, the distinct globally
// referenced variable names whose first identifier segment begins with
// "_". Locally assigned, captured, or loop-bound names are excluded.
func Extract(body string) ([]string, error) {
	nodes, err := Parse(body)
	if err != nil {
		return nil, err
	}
	var result []string
	seen := map[string]bool{}
	add := func(name string, locals map[string]bool) {
		if name == "" || !strings.HasPrefix(name, "_") || locals[name] || seen[name] {
			return
		}
		seen[name] = true
		result = append(result, name)
	}

	var walk func(nodes []node, locals map[string]bool)
	walk = func(nodes []node, locals map[string]bool) {
		for _, n := range nodes {
			switch t := n.(type) {
			case textNode:
			case varNode:
				add(baseIdent(t.expr), locals)
			case *ifNode:
				for _, id := range exprIdents(t.cond, locals) {
					add(id, locals)
				}
				walk(t.body, locals)
				walk(t.elseBody, locals)
			case *forNode:
				for _, id := range exprIdents(t.collExpr, locals) {
					add(id, locals)
				}
				inner := cloneLocals(locals)
				inner[t.varName] = true
				walk(t.body, inner)
			case *caseNode:
				for _, id := range exprIdents(t.expr, locals) {
					add(id, locals)
				}
				for _, w := range t.whens {
					walk(w.body, locals)
				}
				walk(t.elseBody, locals)
			case *assignNode:
				for _, id := range exprIdents(t.expr, locals) {
					add(id, locals)
				}
				locals[t.name] = true
			case *captureNode:
				inner := cloneLocals(locals)
				walk(t.body, inner)
				locals[t.name] = true
			}
		}
	}
	walk(nodes, map[string]bool{})
	return result, nil
}

// scope is the render-time lookup environment: CLI/config-collected values
// overlaid with locally assigned/captured/loop-bound bindings.
type scope struct {
	vars   map[string]string
	locals map[string]any
}

func (s *scope) env() map[string]any {
	out := make(map[string]any, len(s.vars)+len(s.locals))
	for k, v := range s.vars {
		out[k] = v
	}
	for k, v := range s.locals {
		out[k] = v
	}
	return out
}

func (s *scope) lookup(name string) (any, bool) {
	if v, ok := s.locals[name]; ok {
		return v, true
	}
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	return nil, false
}

func (s *scope) child() *scope {
	locals := make(map[string]any, len(s.locals))
	for k, v := range s.locals {
		locals[k] = v
	}
	return &scope{vars: s.vars, locals: locals}
}

// Render substitutes a parsed template body against vars. In strict
// mode, the first "_"-prefixed
// variable referenced but not present in vars produces a
// *MissingTemplateVar error; in non-strict mode missing variables render
// as empty.
func Render(body string, vars map[string]string, strict bool) (string, error) {
	nodes, err := Parse(body)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	sc := &scope{vars: vars, locals: map[string]any{}}
	if err := renderNodes(&b, nodes, sc, strict); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderNodes(b *strings.Builder, nodes []node, sc *scope, strict bool) error {
	for _, n := range nodes {
		if err := renderNode(b, n, sc, strict); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(b *strings.Builder, n node, sc *scope, strict bool) error {
	switch t := n.(type) {
	case textNode:
		b.WriteString(string(t))

	case varNode:
		name := baseIdent(t.expr)
		val, ok := sc.lookup(name)
		if !ok {
			if strict && strings.HasPrefix(name, "_") && !hasDefaultFilter(t.filters) {
				return &MissingTemplateVar{Name: name}
			}
			val = ""
		}
		str := fmt.Sprintf("%v", val)
		for _, fc := range t.filters {
			str = applyFilter(str, fc)
		}
		b.WriteString(str)

	case *ifNode:
		truthy, err := evalCond(t.cond, sc, strict)
		if err != nil {
			return err
		}
		if t.negate {
			truthy = !truthy
		}
		if truthy {
			return renderNodes(b, t.body, sc.child(), strict)
		}
		return renderNodes(b, t.elseBody, sc.child(), strict)

	case *forNode:
		items, err := evalCollection(t.collExpr, sc, strict)
		if err != nil {
			return err
		}
		for _, item := range items {
			inner := sc.child()
			inner.locals[t.varName] = item
			if err := renderNodes(b, t.body, inner, strict); err != nil {
				return err
			}
		}

	case *caseNode:
		val, ok := sc.lookup(baseIdent(t.expr))
		if !ok {
			val = ""
		}
		str := fmt.Sprintf("%v", val)
		matched := false
		for _, w := range t.whens {
			if w.value == str {
				matched = true
				if err := renderNodes(b, w.body, sc.child(), strict); err != nil {
					return err
				}
				break
			}
		}
		if !matched {
			return renderNodes(b, t.elseBody, sc.child(), strict)
		}

	case *assignNode:
		val, err := evalExpr(t.expr, sc, strict)
		if err != nil {
			return err
		}
		sc.locals[t.name] = val

	case *captureNode:
		var inner strings.Builder
		if err := renderNodes(&inner, t.body, sc.child(), strict); err != nil {
			return err
		}
		sc.locals[t.name] = inner.String()

	default:
		return fmt.Errorf("template: unhandled node type %T", n)
	}
	return nil
}

func hasDefaultFilter(filters []filterCall) bool {
	for _, fc := range filters {
		if fc.name == "default" {
			return true
		}
	}
	return false
}

func evalExpr(exprStr string, sc *scope, strict bool) (any, error) {
	if strict {
		for _, id := range exprIdents(exprStr, nil) {
			if strings.HasPrefix(id, "_") {
				if _, ok := sc.lookup(id); !ok {
					return nil, &MissingTemplateVar{Name: id}
				}
			}
		}
	}
	program, err := expr.Compile(exprStr, expr.Env(sc.env()))
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", exprStr, err)
	}
	out, err := expr.Run(program, sc.env())
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", exprStr, err)
	}
	return out, nil
}

func evalCond(condStr string, sc *scope, strict bool) (bool, error) {
	condStr = strings.TrimSpace(condStr)
	if condStr == "" {
		return true, nil
	}
	out, err := evalExpr(condStr, sc, strict)
	if err != nil {
		return false, err
	}
	switch v := out.(type) {
	case bool:
		return v, nil
	case string:
		return v != "" && v != "false", nil
	case nil:
		return false, nil
	default:
		return true, nil
	}
}

func evalCollection(exprStr string, sc *scope, strict bool) ([]any, error) {
	out, err := evalExpr(exprStr, sc, strict)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case []any:
		return v, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("for-loop collection %q is not an array (got %T)", exprStr, out)
	}
}
