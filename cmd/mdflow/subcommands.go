package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/netzkontrast/mdflow/pkg/adapter"
	"github.com/netzkontrast/mdflow/pkg/argv"
	"github.com/netzkontrast/mdflow/pkg/config"
	"github.com/netzkontrast/mdflow/pkg/console"
	"github.com/netzkontrast/mdflow/pkg/constants"
	"github.com/netzkontrast/mdflow/pkg/parser"
	"github.com/netzkontrast/mdflow/pkg/redact"
	"github.com/spf13/cobra"
)

// newRootCmd builds the cobra command tree for the subcommands the tool
// recognizes before any file-dispatch path is considered: help, logs,
// setup, create, explain.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     constants.CLIName,
		Short:   "Turn a markdown file into an AI-assistant invocation",
		Version: version,
		Long: `mdflow turns a markdown agent file into an invocation of an external
AI-assistant command (claude, gemini, codex, copilot).

Usage:
  md <file.md> [flags]          run an agent file
  md.<command> "prompt"         run an ad-hoc prompt against <command>
  md help | logs | setup | create | explain`,
	}
	root.SetOut(os.Stderr)

	root.AddCommand(newExplainCmd())
	root.AddCommand(newSetupCmd())
	root.AddCommand(newCreateCmd())
	root.AddCommand(newLogsCmd())
	return root
}

// explainCascadeLayer is one row of the cascade-provenance table: which
// configuration layer contributed which keys for the resolved command.
type explainCascadeLayer struct {
	Layer string `console:"header:Layer"`
	Keys  string `console:"header:Contributed Keys"`
}

// explainReport is the structured result of "explain", rendered either as
// a console breakdown (via RenderStruct) or as JSON, mirroring gh-aw's
// compile_stats.go/compile_check.go "explain what would happen" pattern.
type explainReport struct {
	AgentFile       string                `console:"title:Agent"`
	ResolvedCommand string                `console:"header:Resolved Command"`
	Interactive     bool                  `console:"header:Interactive"`
	CascadeLayers   []explainCascadeLayer `console:"title:Config Cascade"`
	MergedMetadata  string                `console:"header:Merged Metadata Keys"`
	WouldSpawn      string                `console:"header:Would Spawn"`
}

// newExplainCmd dry-runs the pipeline through ARGV-BUILD and prints a
// breakdown of the resolved command, each cascade layer's contribution to
// the merged command config, and the argv that would be spawned, without
// spawning. Modeled on gh-aw's compile_stats.go/compile_check.go
// "explain what would happen" pattern.
func newExplainCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "explain <file.md>",
		Short: "Show how an agent file would be resolved and invoked, without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the explanation as JSON instead of a console report")
	return cmd
}

func runExplain(path string, asJSON bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}
	result, err := parser.ExtractFrontmatter(string(data))
	if err != nil {
		return err
	}
	frontmatter := result.Frontmatter
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}

	resolved, err := adapter.ResolveCommand(adapter.Request{Filename: abs})
	if err != nil {
		return err
	}

	cwd := filepath.Dir(abs)
	var layers []explainCascadeLayer
	for _, layer := range explainCascadeLayers(cwd) {
		cfg := layer.config.ForCommand(resolved.Command)
		layers = append(layers, explainCascadeLayer{
			Layer: layer.name,
			Keys:  strings.Join(sortedKeys(cfg), ", "),
		})
	}

	metadata := adapter.Metadata(frontmatter)
	merged := argv.Merge(config.Cascade(cwd).ForCommand(resolved.Command), metadata)
	built := argv.Build(merged, nil)

	report := explainReport{
		AgentFile:       abs,
		ResolvedCommand: resolved.Command,
		Interactive:     resolved.Interactive,
		CascadeLayers:   layers,
		MergedMetadata:  strings.Join(sortedKeys(merged), ", "),
		WouldSpawn:      resolved.Command + " " + strings.Join(built, " "),
	}
	return console.OutputStructOrJSON(report, asJSON)
}

type explainLayer struct {
	name   string
	config config.Map
}

// explainCascadeLayers replays config.Cascade's layering one file at a time
// so each layer's contribution can be shown separately; config.Cascade
// itself only returns the final merge.
func explainCascadeLayers(cwd string) []explainLayer {
	layers := []explainLayer{{"builtin", config.BuiltinDefaults}}
	if userPath, err := configUserGlobalPath(); err == nil {
		layers = append(layers, explainLayer{"user-global", config.Load(userPath)})
	}
	for _, name := range constants.ConfigFileNames {
		candidate := filepath.Join(cwd, name)
		if _, err := os.Stat(candidate); err == nil {
			layers = append(layers, explainLayer{"project", config.Load(candidate)})
			break
		}
	}
	return layers
}

func configUserGlobalPath() (string, error) {
	dir, err := config.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// newSetupCmd writes a starter user-global config file and initializes the
// per-user config directory (known_hosts, history.json, cache/, logs/),
// mirroring gh-aw's init.go onboarding flow.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Initialize the per-user config directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup()
		},
	}
}

func runSetup() error {
	dir, err := config.UserConfigDir()
	if err != nil {
		return fmt.Errorf("resolving config directory: %w", err)
	}
	for _, sub := range []string{constants.CacheDirName, constants.LogsDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", sub, err)
		}
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		starter := "commands:\n  claude:\n    print: true\n  gemini: {}\n  codex: {}\n  copilot:\n    $1: prompt\n"
		if err := os.WriteFile(configPath, []byte(starter), 0o644); err != nil {
			return fmt.Errorf("writing starter config: %w", err)
		}
		fmt.Println(console.FormatSuccessMessage("Wrote " + configPath))
	} else {
		fmt.Println(console.FormatInfoMessage(configPath + " already exists, leaving it alone"))
	}

	for _, touch := range []string{constants.KnownHostsFile, constants.HistoryFile} {
		path := filepath.Join(dir, touch)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
				return fmt.Errorf("creating %s: %w", touch, err)
			}
		}
	}

	fmt.Println(console.FormatSuccessMessage("Config directory ready at " + dir))
	return nil
}

// newCreateCmd is an interactive huh wizard that scaffolds a new agent
// markdown file, mirroring CreateWorkflowInteractively in gh-aw's
// pkg/cli/interactive.go.
func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>.md",
		Short: "Scaffold a new agent markdown file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0])
		},
	}
}

func runCreate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	var command, model, prompt string
	var interactive bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Command").
				Options(
					huh.NewOption("claude", "claude"),
					huh.NewOption("gemini", "gemini"),
					huh.NewOption("codex", "codex"),
					huh.NewOption("copilot", "copilot"),
				).
				Value(&command),
			huh.NewInput().Title("Model (optional)").Value(&model),
			huh.NewConfirm().Title("Interactive mode?").Value(&interactive),
			huh.NewText().Title("Prompt body").Value(&prompt),
		),
	).WithAccessible(console.IsAccessibleMode())
	if err := form.Run(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("---\n")
	if model != "" {
		fmt.Fprintf(&b, "model: %s\n", model)
	}
	if interactive {
		b.WriteString("_interactive: true\n")
	}
	b.WriteString("---\n")
	if prompt == "" {
		prompt = "Describe the task here.\n"
	}
	b.WriteString(prompt)
	if !strings.HasSuffix(prompt, "\n") {
		b.WriteString("\n")
	}

	stem := strings.TrimSuffix(path, ".md")
	finalPath := stem + "." + command + ".md"
	if err := os.WriteFile(finalPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", finalPath, err)
	}
	fmt.Println(console.FormatSuccessMessage("Created " + finalPath))
	return nil
}

// newLogsCmd lists and tails logs/<agent-name>/debug.log entries under the
// per-user config directory, applying sensitive-value redaction on read
// (in addition to whatever redaction already happened when the line was
// written) so older log entries that predate a redaction rule are still
// masked before they reach the terminal.
func newLogsCmd() *cobra.Command {
	var tailLines int
	cmd := &cobra.Command{
		Use:   "logs [agent-name]",
		Short: "List or tail agent debug logs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listLogAgents()
			}
			return tailLog(args[0], tailLines)
		},
	}
	cmd.Flags().IntVar(&tailLines, "lines", 50, "number of trailing lines to show")
	return cmd
}

func logsRoot() (string, error) {
	dir, err := config.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDirName), nil
}

func listLogAgents() error {
	root, err := logsRoot()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		fmt.Println(console.FormatInfoMessage("No logs recorded yet"))
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Println(console.FormatListItem(e.Name()))
		}
	}
	return nil
}

func tailLog(agentName string, lines int) error {
	root, err := logsRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, agentName, "debug.log")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	redacted := redact.Message(string(data))
	all := strings.Split(strings.TrimRight(redacted, "\n"), "\n")
	start := 0
	if len(all) > lines {
		start = len(all) - lines
	}
	for _, line := range all[start:] {
		fmt.Println(line)
	}
	return nil
}
