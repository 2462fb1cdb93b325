// Package argv implements the metadata-to-argv mapper: merging
// command-adapter defaults, cascaded config, and agent metadata into a
// child command's argv, honoring the "$N" positional convention and the
// boolean/string/number/array-to-flag rules.
package argv

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/netzkontrast/mdflow/pkg/config"
	"github.com/netzkontrast/mdflow/pkg/parser"
)

// Merge layers metadata over cascaded config, metadata winning on key
// collisions (CLI passthrough > metadata > project config > global
// config > built-in defaults, all already folded into cfg by
// config.Cascade). CLI passthrough is handled separately by
// WithPassthrough: it is applied after Build rather than folded into this
// map, since passthrough arrives as raw argv tokens, not parsed key/value
// pairs.
func Merge(cfg config.CommandConfig, metadata map[string]any) map[string]any {
	out := make(map[string]any, len(cfg)+len(metadata))
	for k, v := range cfg {
		out[k] = v
	}
	for k, v := range metadata {
		out[k] = v
	}
	return out
}

// PositionalNames maps a "$N" position to the long-flag name a command
// adapter wants inserted when that position's merged value is the boolean
// true rather than a literal string (e.g. a command whose positional slot
// is conventionally expressed as a flag). Commands that always take a
// literal positional string leave this empty.
type PositionalNames map[int]string

// Build constructs a child command's argv from a merged metadata map:
// ordered positionals first, then flags for the remaining non-reserved
// keys in deterministic (sorted) key order.
func Build(merged map[string]any, positionalNames PositionalNames) []string {
	positions := map[int]any{}
	var flagKeys []string

	for k, v := range merged {
		if n, ok := parser.PositionalIndex(k); ok {
			positions[n] = v
			continue
		}
		if parser.IsReservedKey(k) {
			continue
		}
		flagKeys = append(flagKeys, k)
	}
	sort.Strings(flagKeys)

	var out []string

	if len(positions) > 0 {
		maxN := 0
		for n := range positions {
			if n > maxN {
				maxN = n
			}
		}
		for n := 1; n <= maxN; n++ {
			v, ok := positions[n]
			if !ok {
				continue
			}
			if b, isBool := v.(bool); isBool {
				if b {
					if name, ok := positionalNames[n]; ok {
						out = append(out, "--"+name)
					}
				}
				continue
			}
			out = append(out, stringify(v))
		}
	}

	for _, k := range flagKeys {
		out = append(out, flagArgs(k, merged[k])...)
	}

	return out
}

func flagArgs(key string, v any) []string {
	flag := flagName(key)
	switch val := v.(type) {
	case bool:
		if val {
			return []string{flag}
		}
		return nil
	case []string:
		args := make([]string, 0, len(val)*2)
		for _, item := range val {
			args = append(args, flag, item)
		}
		return args
	case []any:
		args := make([]string, 0, len(val)*2)
		for _, item := range val {
			args = append(args, flag, stringify(item))
		}
		return args
	default:
		return []string{flag, stringify(val)}
	}
}

func flagName(k string) string {
	if len(k) == 1 {
		return "-" + k
	}
	return "--" + k
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// WithPassthrough appends raw CLI passthrough tokens after the built argv.
// A repeated flag later in the slice overrides an earlier one, matching
// how claude/gemini/codex/copilot already resolve duplicate flags, so this
// ordering alone is enough to give CLI passthrough the highest precedence.
func WithPassthrough(built, passthrough []string) []string {
	out := make([]string, 0, len(built)+len(passthrough))
	out = append(out, built...)
	out = append(out, passthrough...)
	return out
}
