package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// InputSpec describes one typed entry of a map-form "_inputs" declaration:
// a named variable with an optional declared type, default, description,
// and required flag.
type InputSpec struct {
	Name        string
	Type        string
	Default     string
	Description string
	Required    bool
}

// InvalidInputsValue is returned when "_inputs" is present but is neither
// an ordered list of variable names nor a map of typed input definitions.
type InvalidInputsValue struct {
	Got any
}

func (e *InvalidInputsValue) Error() string {
	return fmt.Sprintf("_inputs: expected a list of variable names or a map of typed input definitions, got %T", e.Got)
}

// InvalidInputDefinition is returned when one typed-map "_inputs" entry
// fails schema validation.
type InvalidInputDefinition struct {
	Name  string
	Cause error
}

func (e *InvalidInputDefinition) Error() string {
	return fmt.Sprintf("_inputs.%s: %v", e.Name, e.Cause)
}

func (e *InvalidInputDefinition) Unwrap() error { return e.Cause }

// inputDefinitionSchemaJSON constrains one typed-map "_inputs" entry: an
// object with an optional "type" enum, "default", "description", and
// "required" fields, and nothing else. Mirrors gh-aw's own
// embed-a-schema-string-then-compile-once pattern (pkg/parser/schema.go)
// rather than hand-rolled field checks.
const inputDefinitionSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"type": {"type": "string", "enum": ["string", "number", "boolean"]},
		"default": {"type": ["string", "number", "boolean"]},
		"description": {"type": "string"},
		"required": {"type": "boolean"}
	},
	"additionalProperties": false
}`

var (
	inputDefinitionSchemaOnce sync.Once
	compiledInputDefinition   *jsonschema.Schema
	inputDefinitionCompileErr error
)

func compiledInputDefinitionSchema() (*jsonschema.Schema, error) {
	inputDefinitionSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(inputDefinitionSchemaJSON), &doc); err != nil {
			inputDefinitionCompileErr = fmt.Errorf("parsing _inputs definition schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const url = "mdflow://inputs/definition.json"
		if err := compiler.AddResource(url, doc); err != nil {
			inputDefinitionCompileErr = fmt.Errorf("loading _inputs definition schema: %w", err)
			return
		}
		compiledInputDefinition, inputDefinitionCompileErr = compiler.Compile(url)
	})
	return compiledInputDefinition, inputDefinitionCompileErr
}

// ParseInputs interprets a decoded "_inputs" metadata value: either an
// ordered list of bare variable names, or a map of typed input
// definitions. It returns the variable names (ordered-list form keeps
// its declared order; map form is sorted alphabetically, since a YAML
// mapping carries no order of its own) and, for the typed-map form, the
// per-name InputSpec. A nil value (key absent) is not an error.
func ParseInputs(raw any) (names []string, specs map[string]InputSpec, err error) {
	if raw == nil {
		return nil, nil, nil
	}
	switch v := raw.(type) {
	case []any:
		names, err := stringListFromAny(v)
		if err != nil {
			return nil, nil, err
		}
		return names, nil, nil
	case []string:
		return append([]string(nil), v...), nil, nil
	case map[string]any:
		return parseTypedInputs(v)
	default:
		return nil, nil, &InvalidInputsValue{Got: raw}
	}
}

func stringListFromAny(items []any) ([]string, error) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, &InvalidInputsValue{Got: items}
		}
		names = append(names, name)
	}
	return names, nil
}

func parseTypedInputs(defs map[string]any) ([]string, map[string]InputSpec, error) {
	schema, err := compiledInputDefinitionSchema()
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make(map[string]InputSpec, len(defs))
	for _, name := range names {
		defMap, ok := defs[name].(map[string]any)
		if !ok {
			return nil, nil, &InvalidInputDefinition{Name: name, Cause: fmt.Errorf("expected a map, got %T", defs[name])}
		}

		normalized, err := normalizeForSchema(defMap)
		if err != nil {
			return nil, nil, &InvalidInputDefinition{Name: name, Cause: err}
		}
		if err := schema.Validate(normalized); err != nil {
			return nil, nil, &InvalidInputDefinition{Name: name, Cause: err}
		}

		spec := InputSpec{Name: name}
		if t, ok := defMap["type"].(string); ok {
			spec.Type = t
		}
		if d, ok := defMap["default"]; ok {
			spec.Default = stringifyInputValue(d)
		}
		if desc, ok := defMap["description"].(string); ok {
			spec.Description = desc
		}
		if req, ok := defMap["required"].(bool); ok {
			spec.Required = req
		}
		specs[name] = spec
	}
	return names, specs, nil
}

// normalizeForSchema round-trips a goccy/go-yaml-decoded value through
// JSON so the jsonschema validator sees plain JSON types throughout,
// matching gh-aw's own validateWithSchema normalization step.
func normalizeForSchema(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringifyInputValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}
