// Package constants holds small fixed values shared across mdflow's packages.
package constants

// CLIName is the prefix used in user-facing output to refer to the tool.
const CLIName = "md"

// ConfigDirName is the per-user config directory name, resolved under
// XDG_CONFIG_HOME (or HOME on platforms without it).
const ConfigDirName = "mdflow"

// KnownHostsFile is the trust-store file name under the config directory.
const KnownHostsFile = "known_hosts"

// HistoryFile is the variable-history file name under the config directory.
const HistoryFile = "history.json"

// CacheDirName is the URL import cache directory name under the config directory.
const CacheDirName = "cache"

// LogsDirName is the per-agent debug log directory name under the config directory.
const LogsDirName = "logs"

// ConfigFileNames are searched, in priority order, for project-level configuration.
var ConfigFileNames = []string{
	"mdflow.config.yaml",
	".mdflow.yaml",
	".mdflow.json",
}

// KnownCommands are the external AI-assistant commands adapters exist for.
var KnownCommands = []string{"claude", "gemini", "codex", "copilot"}
