package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/netzkontrast/mdflow/pkg/constants"
)

// VariableHistory maps an absolute agent-file path to a variable-name ->
// string-value map, used to default interactive template-variable prompts.
type VariableHistory struct {
	path    string
	entries map[string]map[string]string
}

// LoadVariableHistory reads history.json from the per-user config
// directory. A missing file is not an error: it yields an empty history.
func LoadVariableHistory() (*VariableHistory, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, constants.HistoryFile)

	vh := &VariableHistory{path: path, entries: map[string]map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return vh, nil
		}
		return nil, fmt.Errorf("reading variable history %s: %w", path, err)
	}
	if len(data) == 0 {
		return vh, nil
	}
	if err := json.Unmarshal(data, &vh.entries); err != nil {
		log.Printf("failed to parse variable history, starting fresh: %v", err)
		vh.entries = map[string]map[string]string{}
	}
	return vh, nil
}

// For returns the recorded variable values for agentPath, or an empty map.
func (vh *VariableHistory) For(agentPath string) map[string]string {
	if v, ok := vh.entries[agentPath]; ok {
		return v
	}
	return map[string]string{}
}

// Record merges vars into agentPath's history entry, preserving unrelated
// keys (both other variables for this path and other paths entirely), and
// atomically rewrites history.json.
func (vh *VariableHistory) Record(agentPath string, vars map[string]string) error {
	if vh.entries[agentPath] == nil {
		vh.entries[agentPath] = map[string]string{}
	}
	for k, v := range vars {
		vh.entries[agentPath][k] = v
	}

	dir := filepath.Dir(vh.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(vh.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling variable history: %w", err)
	}

	tmp := vh.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing variable history: %w", err)
	}
	return os.Rename(tmp, vh.path)
}
