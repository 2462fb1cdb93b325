package template

import (
	"runtime"
	"strconv"
	"strings"
)

// applyFilter applies one filter to a string value: default, upcase,
// downcase, truncate, and the shell_escape/q aliases.
func applyFilter(value string, fc filterCall) string {
	switch fc.name {
	case "default":
		if value == "" && len(fc.args) > 0 {
			return fc.args[0]
		}
		return value
	case "upcase":
		return strings.ToUpper(value)
	case "downcase":
		return strings.ToLower(value)
	case "truncate":
		if len(fc.args) == 0 {
			return value
		}
		n, err := strconv.Atoi(fc.args[0])
		if err != nil || n < 0 || len(value) <= n {
			return value
		}
		if n <= 3 {
			return value[:n]
		}
		return value[:n-3] + "..."
	case "shell_escape", "q":
		return ShellEscape(value)
	default:
		return value
	}
}

// ShellEscape quotes value for safe inclusion as a single shell word. On
// POSIX it wraps the value in single quotes, replacing any embedded single
// quote with the standard '\'' sequence; on Windows it wraps in double
// quotes and doubles any embedded double quote.
func ShellEscape(value string) string {
	if runtime.GOOS == "windows" {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return `'` + strings.ReplaceAll(value, `'`, `'\''`) + `'`
}
