package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// FilenameCommand inspects an agent filename for its command suffix:
// "NAME.<command>.md" or "NAME.i.<command>.md" (the ".i." segment
// requests interactive mode; it is decorative, the command is still the
// last dotted segment before ".md").
func FilenameCommand(filename string) (command string, interactive bool, ok bool) {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	if !strings.HasSuffix(base, ".md") {
		return "", false, false
	}
	stem := strings.TrimSuffix(base, ".md")
	parts := strings.Split(stem, ".")
	if len(parts) < 2 {
		return "", false, false
	}
	command = parts[len(parts)-1]
	if command == "" {
		return "", false, false
	}
	if len(parts) >= 3 && parts[len(parts)-2] == "i" {
		return command, true, true
	}
	return command, false, true
}

// positionalKeyPattern matches the pseudo-key "$N" for positive integer N.
var positionalKeyPattern = regexp.MustCompile(`^\$(\d+)$`)

// PositionalIndex reports whether key is a "$N" pseudo-key and, if so, the
// 1-based positional index N it names.
func PositionalIndex(key string) (n int, ok bool) {
	m := positionalKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ReservedMetadataKeys are the underscore-prefixed keys the pipeline
// consumes itself rather than forwarding as a child flag.
var ReservedMetadataKeys = map[string]bool{
	"_inputs":      true,
	"_env":         true,
	"_interactive": true,
	"_i":           true,
	"_subcommand":  true,
	"_stdin":       true,
	"_command":     true,
}

// IsReservedKey reports whether key is consumed by the tool rather than
// forwarded to the child command: an exact reserved name, any "_"-prefixed
// key, or a "$N" positional pseudo-key.
func IsReservedKey(key string) bool {
	if ReservedMetadataKeys[key] {
		return true
	}
	if strings.HasPrefix(key, "_") {
		return true
	}
	if _, ok := PositionalIndex(key); ok {
		return true
	}
	return false
}

// AdHocProgramCommand inspects a program basename for the ad-hoc
// invocation form: "md.<command>" or "md.i.<command>", optionally
// suffixed with ".ts" or ".js" (carried over from the original tool's
// Node.js distribution conventions; harmless to check for in Go).
func AdHocProgramCommand(basename string) (command string, interactive bool, ok bool) {
	name := strings.TrimSuffix(strings.TrimSuffix(basename, ".js"), ".ts")
	parts := strings.Split(name, ".")
	if len(parts) < 2 || parts[0] != "md" {
		return "", false, false
	}
	command = parts[len(parts)-1]
	if command == "" {
		return "", false, false
	}
	if len(parts) >= 3 && parts[1] == "i" {
		return command, true, true
	}
	if len(parts) == 2 {
		return command, false, true
	}
	return "", false, false
}
