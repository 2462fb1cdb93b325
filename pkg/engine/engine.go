// Package engine wires every other package together into the single
// linear pipeline: load the agent file, resolve its command, apply
// interactive-mode transforms, collect template variables, expand
// imports, substitute templates, build argv, and spawn, offering the
// auto-heal menu on failure. Modeled on gh-aw's Compiler.ParseWorkflowFile
// orchestration: one exported entry point fronting a sequence of private
// pipeline stages, each returning early on its own structured error.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/adapter"
	"github.com/netzkontrast/mdflow/pkg/argv"
	"github.com/netzkontrast/mdflow/pkg/config"
	"github.com/netzkontrast/mdflow/pkg/console"
	"github.com/netzkontrast/mdflow/pkg/executor"
	"github.com/netzkontrast/mdflow/pkg/logger"
	"github.com/netzkontrast/mdflow/pkg/netclient"
	"github.com/netzkontrast/mdflow/pkg/parser"
	"github.com/netzkontrast/mdflow/pkg/resolvers"
	"github.com/netzkontrast/mdflow/pkg/template"
	"github.com/netzkontrast/mdflow/pkg/tty"
)

var log = logger.New("mdflow:engine")

// Options carries everything argument parsing hands to the rest of the
// pipeline: the tool-reserved flags, plus the parsed invocation form (a
// file path, or an ad-hoc body with its own command).
type Options struct {
	FilePath    string
	AdHocBody   string
	Command     string
	Interactive bool
	DryRun      bool
	TrustFlag   bool
	NoCache     bool
	ContextOverride int
	Quiet       bool
	NoMenu      bool
	NoHistory   bool
	Raw         bool
	CLIVars     map[string]string
	Passthrough []string
	Stdin       string
	Cwd         string
}

// Result is the pipeline's terminal outcome.
type Result struct {
	ExitCode int
}

// Run executes the full pipeline once, looping only over the auto-heal
// failure menu (Retry re-enters SPAWN, Fix-with-AI re-enters SPAWN with a
// synthesized prompt as the child's stdin, Quit propagates the exit code).
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Cwd == "" {
		opts.Cwd = "."
	}

	agentPath, baseDir, frontmatter, body, err := load(opts)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("LOAD: %w", err)
	}

	cascade := config.Cascade(opts.Cwd)

	resolved, err := resolveCommand(opts, agentPath, frontmatter)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("COMMAND-RESOLVE: %w", err)
	}

	metadata := adapter.Metadata(cloneMetadata(frontmatter))
	interactive := adapter.WantsInteractive(metadata, resolved.Interactive, opts.Interactive)
	if interactive {
		adapter.ApplyInteractive(resolved.Command, metadata)
	}

	originalRequest := body

	varNames, err := template.Extract(body)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("TEMPLATE-EXTRACT: %w", err)
	}
	inputNames, inputSpecs, err := parser.ParseInputs(metadata["_inputs"])
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("TEMPLATE-EXTRACT: %w", err)
	}
	varNames = mergeVariableNames(varNames, inputNames)

	history, _ := config.LoadVariableHistory()
	vars, err := collectVariables(varNames, opts, agentPath, history, inputSpecs)
	if err != nil {
		var missing *template.MissingTemplateVar
		if errors.As(err, &missing) {
			return Result{ExitCode: 1}, fmt.Errorf("TEMPLATE-COLLECT: %w", err)
		}
		return Result{ExitCode: 130}, fmt.Errorf("TEMPLATE-COLLECT: %w", err)
	}
	if !opts.NoHistory && history != nil && len(vars) > 0 {
		_ = history.Record(agentPath, vars)
	}

	env, err := buildEnvironment(ctx, opts, baseDir, resolved, metadata)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("IMPORT-EXPAND: %w", err)
	}

	expanded, err := expandWithSpinner(ctx, body, env, opts.Quiet)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("IMPORT-EXPAND: %w", err)
	}

	rendered, err := template.Render(expanded, vars, true)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("TEMPLATE-SUBSTITUTE: %w", err)
	}

	model, _ := metadata["model"].(string)
	if warning, err := resolvers.CheckBudget(rendered, model, opts.ContextOverride); err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("IMPORT-EXPAND: %w", err)
	} else if warning != "" && !opts.Quiet && !opts.Raw {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(warning))
	}

	envOverlay := coerceEnvOverlay(metadata["_env"])
	reqStdin := rendered
	if opts.Stdin != "" {
		metadata["_stdin"] = opts.Stdin
		reqStdin = rendered + opts.Stdin
	}

	merged := argv.Merge(cascade.ForCommand(resolved.Command), metadata)
	builtArgv := argv.WithPassthrough(argv.Build(merged, nil), opts.Passthrough)

	if opts.DryRun {
		fmt.Printf("%s %s\n", resolved.Command, strings.Join(builtArgv, " "))
		return Result{ExitCode: 0}, nil
	}

	return spawnLoop(ctx, opts, baseDir, resolved.Command, builtArgv, envOverlay, reqStdin, interactive, originalRequest)
}

// expandWithSpinner wraps resolvers.Expand with a progress spinner: import
// resolution can hit the network (URL imports) and a silent multi-second
// pause reads as a hang. Disabled in quiet mode or when stderr isn't a TTY
// (SpinnerV2 already no-ops in that case; the quiet check just skips the
// extra goroutine).
func expandWithSpinner(ctx context.Context, body string, env resolvers.Environment, quiet bool) (string, error) {
	if quiet {
		return resolvers.Expand(ctx, body, env)
	}
	spinner := console.NewSpinnerV2("Resolving imports...")
	spinner.Start()
	defer spinner.Stop()
	return resolvers.Expand(ctx, body, env)
}

func spawnLoop(ctx context.Context, opts Options, dir, command string, built []string, env map[string]string, stdin string, interactive bool, originalRequest string) (Result, error) {
	req := executor.Request{
		Command:     command,
		Args:        built,
		Dir:         dir,
		Env:         env,
		Stdin:       stdin,
		Interactive: interactive,
		Quiet:       opts.Quiet,
	}

	for {
		res, err := executor.Run(ctx, req)
		if err != nil {
			if _, ok := err.(*executor.CommandNotFound); ok {
				return Result{ExitCode: 127}, err
			}
			return Result{ExitCode: res.ExitCode}, err
		}
		if res.ExitCode == 0 {
			return Result{ExitCode: 0}, nil
		}
		if opts.NoMenu || !tty.IsStdinTerminal() {
			return Result{ExitCode: res.ExitCode}, nil
		}

		choice, err := executor.PromptFailureMenu()
		if err != nil {
			return Result{ExitCode: res.ExitCode}, nil
		}
		switch choice {
		case executor.ChoiceRetry:
			continue
		case executor.ChoiceFix:
			req.Stdin = executor.FixPrompt(originalRequest, res.ExitCode, res.Stdout, res.Stderr)
			continue
		default:
			return Result{ExitCode: res.ExitCode}, nil
		}
	}
}

func load(opts Options) (agentPath, baseDir string, frontmatter map[string]any, body string, err error) {
	if opts.FilePath == "" {
		return "", opts.Cwd, map[string]any{}, opts.AdHocBody, nil
	}

	data, readErr := os.ReadFile(opts.FilePath)
	if readErr != nil {
		return "", "", nil, "", readErr
	}
	result, parseErr := parser.ExtractFrontmatter(string(data))
	if parseErr != nil {
		return "", "", nil, "", parseErr
	}
	abs, _ := filepath.Abs(opts.FilePath)
	fm := result.Frontmatter
	if fm == nil {
		fm = map[string]any{}
	}
	return abs, filepath.Dir(abs), fm, result.Markdown, nil
}

func resolveCommand(opts Options, agentPath string, frontmatter map[string]any) (adapter.Resolved, error) {
	metaCommand, _ := frontmatter["_command"].(string)
	filename := opts.FilePath
	if filename == "" {
		// Ad-hoc invocation already knows its command from the dispatch
		// layer; mirror it through the same Request shape so resolution
		// still goes through the one priority chain.
		return adapter.Resolved{Command: opts.Command, Interactive: opts.Interactive}, requireCommand(opts.Command)
	}
	return adapter.ResolveCommand(adapter.Request{
		CLICommand:      opts.Command,
		Filename:        filename,
		MetadataCommand: metaCommand,
	})
}

func requireCommand(command string) error {
	if command == "" {
		return &adapter.NoCommand{}
	}
	return nil
}

func cloneMetadata(frontmatter map[string]any) map[string]any {
	out := make(map[string]any, len(frontmatter))
	for k, v := range frontmatter {
		out[k] = v
	}
	return out
}

// mergeVariableNames unions the names the template body actually
// references with the names an "_inputs" declaration adds, preserving
// the declared order from "_inputs" (it controls prompt order) ahead of
// any template-only names, which fall back to alphabetical order the way
// they always have.
func mergeVariableNames(templateNames, inputNames []string) []string {
	seen := make(map[string]bool, len(templateNames)+len(inputNames))
	ordered := make([]string, 0, len(templateNames)+len(inputNames))
	for _, name := range inputNames {
		if !seen[name] {
			seen[name] = true
			ordered = append(ordered, name)
		}
	}
	var rest []string
	for _, name := range templateNames {
		if !seen[name] {
			seen[name] = true
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func collectVariables(names []string, opts Options, agentPath string, history *config.VariableHistory, specs map[string]parser.InputSpec) (map[string]string, error) {
	vars := make(map[string]string, len(names))
	var remembered map[string]string
	if history != nil && agentPath != "" {
		remembered = history.For(agentPath)
	}

	interactiveOK := tty.IsStdinTerminal() && !opts.Quiet

	for _, name := range names {
		if v, ok := opts.CLIVars[name]; ok {
			vars[name] = v
			continue
		}
		spec, hasSpec := specs[name]
		def := remembered[name]
		if def == "" && hasSpec {
			def = spec.Default
		}
		if !interactiveOK {
			if def != "" {
				vars[name] = def
				continue
			}
			if hasSpec && !spec.Required {
				vars[name] = ""
				continue
			}
			return nil, &template.MissingTemplateVar{Name: name}
		}
		label := name
		if hasSpec && spec.Description != "" {
			label = fmt.Sprintf("%s (%s)", name, spec.Description)
		}
		v, err := console.PromptVariable(label, def)
		if err != nil {
			return nil, err
		}
		vars[name] = v
	}
	return vars, nil
}

// coerceEnvOverlay turns a decoded "_env" metadata value into a
// string-keyed, string-valued environment overlay. goccy/go-yaml decodes
// a nested mapping into map[string]any, never map[string]string, so every
// value needs an explicit string coercion rather than a type assertion.
func coerceEnvOverlay(raw any) map[string]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}

func buildEnvironment(ctx context.Context, opts Options, baseDir string, resolved adapter.Resolved, metadata map[string]any) (resolvers.Environment, error) {
	cache, err := config.NewImportCache()
	if err != nil {
		return resolvers.Environment{}, err
	}
	trust, err := config.LoadTrustStore()
	if err != nil {
		return resolvers.Environment{}, err
	}

	envOverlay := coerceEnvOverlay(metadata["_env"])

	return resolvers.Environment{
		BaseDir:         baseDir,
		EnvOverlay:      envOverlay,
		HTTPClient:      netclient.New(),
		Cache:           cache,
		Trust:           trust,
		Prompt:          trustPrompter,
		StdinIsTTY:      tty.IsStdinTerminal(),
		TrustFlag:       opts.TrustFlag,
		NoCache:         opts.NoCache,
		Command:         resolved.Command,
		MetadataSummary: summarizeMetadata(metadata),
	}, nil
}

func trustPrompter(preview resolvers.TrustPreview) (resolvers.TrustDecision, error) {
	allow, remember, err := console.PromptTrust(preview.Host, preview.Command, preview.MetadataSummary, preview.BodyPreview)
	if err != nil {
		return resolvers.TrustDecision{}, err
	}
	return resolvers.TrustDecision{Allow: allow, Remember: remember}, nil
}

func summarizeMetadata(metadata map[string]any) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
