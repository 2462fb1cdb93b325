// Package redact masks sensitive-looking values before they reach a log
// file or an echoed argv, the way gh-aw's stringutil.SanitizeErrorMessage
// keeps secret-shaped identifiers out of compiler diagnostics.
package redact

import (
	"regexp"
	"strings"
)

// sensitiveKeyFragments are substrings that mark a metadata/flag key as
// carrying a sensitive value.
var sensitiveKeyFragments = []string{
	"key", "token", "secret", "password", "credential", "auth",
}

// knownPrefixes are preserved verbatim; only the remainder of the value is
// masked. Order matters only for readability.
var knownPrefixes = []string{
	"sk-", "pk-", "ghp_", "ghr_", "npm_", "xox-",
}

// IsSensitiveKey reports whether a metadata/flag key name should have its
// value redacted before logging or echoing.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Value masks a single value for the given channel. The log channel uses
// "*****"; any other channel (e.g. an echoed argv) uses "[REDACTED]".
// A recognized credential prefix is preserved, with only the remainder
// masked to "****".
func Value(value, channel string) string {
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(value, prefix) {
			return prefix + "****"
		}
	}
	if channel == ChannelLog {
		return "*****"
	}
	return "[REDACTED]"
}

// Channel names accepted by Value.
const (
	ChannelLog  = "log"
	ChannelEcho = "echo"
)

// secretNamePattern matches uppercase snake_case identifiers that look like
// secret names embedded in free text, e.g. "MY_SECRET_KEY", "GITHUB_TOKEN".
var secretNamePattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]*_[A-Z0-9_]+)\b`)

// pascalCaseSecretPattern matches PascalCase identifiers ending in a
// security-related suffix, e.g. "GitHubToken", "ApiSecret".
var pascalCaseSecretPattern = regexp.MustCompile(`\b([A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)*(?:Token|Key|Secret|Password|Credential|Auth))\b`)

// benignUppercaseWords are common non-sensitive uppercase identifiers that
// would otherwise match secretNamePattern.
var benignUppercaseWords = map[string]bool{
	"PATH": true, "HOME": true, "SHELL": true, "EDITOR": true, "VISUAL": true,
	"TERM": true, "DEBUG": true, "LANG": true, "TMPDIR": true,
}

// Message redacts secret-shaped identifiers found anywhere in free text,
// for use on log lines and error messages rather than a single known value.
func Message(message string) string {
	if message == "" {
		return message
	}
	sanitized := secretNamePattern.ReplaceAllStringFunc(message, func(match string) string {
		if benignUppercaseWords[match] {
			return match
		}
		return "[REDACTED]"
	})
	return pascalCaseSecretPattern.ReplaceAllString(sanitized, "[REDACTED]")
}
