package resolvers

import (
	"context"
	"fmt"
	"sync"

	"github.com/netzkontrast/mdflow/pkg/config"
	"github.com/netzkontrast/mdflow/pkg/inject"
	"github.com/netzkontrast/mdflow/pkg/netclient"
	"github.com/netzkontrast/mdflow/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// MaxExpansionDepth is the hard fallback depth for cyclic-import
// protection.
const MaxExpansionDepth = 16

// FanOutWidth is the bounded-concurrency width for import resolution.
const FanOutWidth = 4

// Environment is the resolution environment shared across one expansion
// run: base directory, network/cache/trust state, and enough context to
// build a URL trust preview.
type Environment struct {
	BaseDir         string
	EnvOverlay      map[string]string
	HTTPClient      *netclient.Client
	Cache           *config.ImportCache
	Trust           *config.TrustStore
	Prompt          TrustPrompter
	StdinIsTTY      bool
	TrustFlag       bool
	NoCache         bool
	Command         string
	MetadataSummary string
}

// visitedSet is a mutex-guarded set of absolute paths currently on the
// resolution stack, used to detect import cycles across concurrently
// resolving branches.
type visitedSet struct {
	mu    sync.Mutex
	paths map[string]bool
}

func newVisitedSet() *visitedSet {
	return &visitedSet{paths: map[string]bool{}}
}

// enter adds path to the set, returning an error if it is already present
// (a cycle), and a release function the caller must call when done with
// this branch of the resolution stack.
func (v *visitedSet) enter(path string) (release func(), err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.paths[path] {
		return nil, &ImportCycle{Path: path}
	}
	v.paths[path] = true
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.paths, path)
	}, nil
}

// Expand recursively resolves and injects every import directive in src,
// following nested imports inside resolved File content up to
// MaxExpansionDepth, with cycle detection via a shared visited-path set.
func Expand(ctx context.Context, src string, env Environment) (string, error) {
	return expand(ctx, src, env, newVisitedSet(), 0)
}

type resolveResult struct {
	resolved inject.Resolved
	err      error
}

func expand(ctx context.Context, src string, env Environment, visited *visitedSet, depth int) (string, error) {
	if depth > MaxExpansionDepth {
		return "", &MaxDepthExceeded{Depth: MaxExpansionDepth}
	}

	actions := parser.ParseImports(src)
	if len(actions) == 0 {
		return src, nil
	}

	p := pool.NewWithResults[resolveResult]().WithMaxGoroutines(FanOutWidth)
	for _, a := range actions {
		a := a
		p.Go(func() resolveResult {
			content, err := resolveOne(ctx, a, env, visited, depth)
			if err != nil {
				return resolveResult{err: fmt.Errorf("%s: %w", a.Original, err)}
			}
			return resolveResult{resolved: inject.Resolved{Action: a, Content: content}}
		})
	}

	results := p.Wait()
	resolved := make([]inject.Resolved, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return "", r.err
		}
		resolved = append(resolved, r.resolved)
	}

	return inject.Inject(src, resolved), nil
}

// resolveOne dispatches a single ImportAction to its kind-specific
// resolver, recursing into nested imports for File content.
func resolveOne(ctx context.Context, a parser.ImportAction, env Environment, visited *visitedSet, depth int) (string, error) {
	switch a.Kind {
	case parser.KindFile:
		full, err := ResolvePath(a.Path, env.BaseDir)
		if err != nil {
			return "", err
		}
		release, err := visited.enter(full)
		if err != nil {
			return "", err
		}
		defer release()

		content, err := ResolveFile(a.Path, env.BaseDir, a.HasLineRange, a.LineStart, a.LineEnd)
		if err != nil {
			return "", err
		}
		if a.HasLineRange {
			// Line-sliced content is not recursively expanded: it is an
			// intentionally partial excerpt.
			return content, nil
		}
		return expand(ctx, content, env, visited, depth+1)

	case parser.KindGlob:
		return ResolveGlob(a.Pattern, env.BaseDir)

	case parser.KindSymbol:
		return ResolveSymbol(a.Path, env.BaseDir, a.Symbol)

	case parser.KindURL:
		return ResolveURL(ctx, URLRequest{
			URL:             a.URL,
			Trust:           env.Trust,
			Cache:           env.Cache,
			HTTPClient:      env.HTTPClient,
			StdinIsTTY:      env.StdinIsTTY,
			TrustFlag:       env.TrustFlag,
			NoCache:         env.NoCache,
			Command:         env.Command,
			MetadataSummary: env.MetadataSummary,
			Prompt:          env.Prompt,
		})

	case parser.KindCommand:
		return ResolveCommand(ctx, a.Command, env.BaseDir, env.EnvOverlay)

	case parser.KindExecutableFence:
		return ResolveExecutableFence(ctx, a.Body, env.BaseDir, env.EnvOverlay)

	default:
		return "", fmt.Errorf("unknown import action kind: %v", a.Kind)
	}
}
