// Package config implements the cascaded ConfigMap :
// built-in defaults, overridden in order by a user-global file, a git-root
// project file, and a CWD project file. Modeled on gh-aw's use of
// goccy/go-yaml as its primary configuration/frontmatter parser.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/netzkontrast/mdflow/pkg/constants"
	"github.com/netzkontrast/mdflow/pkg/logger"
)

var log = logger.New("mdflow:config")

// CommandConfig is the per-command key/value map under "commands: <name>:".
type CommandConfig map[string]any

// Map is the root configuration document: { commands: { <command>: {...} } }.
type Map struct {
	Commands map[string]CommandConfig `yaml:"commands" json:"commands"`
}

// BuiltinDefaults is the conceptual floor of the cascade. It is never
// mutated; Merge always returns a fresh Map.
var BuiltinDefaults = Map{
	Commands: map[string]CommandConfig{
		"claude": {
			"print": true,
		},
		"gemini": {},
		"codex":  {},
		"copilot": {
			"$1": "prompt",
		},
	},
}

// Load reads and parses a single config file. A missing file is not an
// error: it returns an empty Map. A malformed file is recovered locally
// (ConfigParse): it is logged as a warning and treated as
// an empty Map, never propagated as a fatal error.
func Load(path string) Map {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("failed to read config %s: %v", path, err)
		}
		return Map{}
	}

	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		log.Printf("ConfigParse: malformed config %s, falling back to empty: %v", path, err)
		return Map{}
	}
	if m.Commands == nil {
		m.Commands = map[string]CommandConfig{}
	}
	return m
}

// Merge layers override onto base: for each command, keys present in
// override replace the same key in base; keys only in one side are kept.
// Neither argument is mutated; a fresh Map is always returned.
func Merge(base, override Map) Map {
	out := Map{Commands: map[string]CommandConfig{}}
	for cmd, cfg := range base.Commands {
		out.Commands[cmd] = cloneCommandConfig(cfg)
	}
	for cmd, cfg := range override.Commands {
		merged := cloneCommandConfig(out.Commands[cmd])
		if merged == nil {
			merged = CommandConfig{}
		}
		for k, v := range cfg {
			merged[k] = v
		}
		out.Commands[cmd] = merged
	}
	return out
}

func cloneCommandConfig(cfg CommandConfig) CommandConfig {
	if cfg == nil {
		return nil
	}
	out := make(CommandConfig, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

// ForCommand returns the merged key/value map for a single command,
// defaulting to an empty map when the command is unconfigured.
func (m Map) ForCommand(command string) CommandConfig {
	if cfg, ok := m.Commands[command]; ok {
		return cfg
	}
	return CommandConfig{}
}

// UserConfigDir resolves the per-user config directory, preferring
// XDG_CONFIG_HOME and falling back to HOME.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, constants.ConfigDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.ConfigDirName), nil
}

// userGlobalConfigPath returns the user-global config file path.
func userGlobalConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// findProjectConfig searches dir for the known project config file names,
// in priority order, returning the first that exists.
func findProjectConfig(dir string) string {
	for _, name := range constants.ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// gitRoot walks up from dir looking for a ".git" entry, returning the
// directory that contains it, or "" if none is found.
func gitRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Cascade loads and merges the full configuration cascade for cwd:
// BUILTIN_DEFAULTS -> user-global -> git-root project -> CWD project.
func Cascade(cwd string) Map {
	merged := BuiltinDefaults

	if userPath, err := userGlobalConfigPath(); err == nil {
		merged = Merge(merged, Load(userPath))
	}

	if root := gitRoot(cwd); root != "" && root != cwd {
		if p := findProjectConfig(root); p != "" {
			merged = Merge(merged, Load(p))
		}
	}

	if p := findProjectConfig(cwd); p != "" {
		merged = Merge(merged, Load(p))
	}

	log.Printf("Cascade resolved for cwd=%s: %d commands configured", cwd, len(merged.Commands))
	return merged
}
