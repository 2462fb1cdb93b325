package resolvers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/config"
	"github.com/netzkontrast/mdflow/pkg/netclient"
)

// TrustPreview is shown to the user before an untrusted host is fetched:
// resolved host, the command being run, a metadata summary, and a body
// preview truncated to 500 characters.
type TrustPreview struct {
	Host            string
	Command         string
	MetadataSummary string
	BodyPreview     string
}

// TrustDecision is the caller's response to a TrustPreview prompt.
type TrustDecision struct {
	Allow    bool
	Remember bool
}

// TrustPrompter renders an interactive trust decision. It is implemented by
// the console layer (a huh confirm form); resolvers depends only on the
// function-typed contract, keeping interactive UI concerns out of the
// resolution logic.
type TrustPrompter func(preview TrustPreview) (TrustDecision, error)

const bodyPreviewLimit = 500

// URLRequest carries everything ResolveURL needs beyond the bare URL:
// trust/cache state and enough run context to build a TrustPreview.
type URLRequest struct {
	URL         string
	Trust       *config.TrustStore
	Cache       *config.ImportCache
	HTTPClient  *netclient.Client
	StdinIsTTY  bool
	TrustFlag   bool // --_trust given on the CLI
	NoCache     bool
	Command     string
	MetadataSummary string
	BodyPreview string
	Prompt      TrustPrompter
}

// ResolveURL implements the URL resolver: trust-gate, then a cached or
// live resilient GET.
func ResolveURL(ctx context.Context, req URLRequest) (string, error) {
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", req.URL, err)
	}
	host := parsed.Hostname()

	trusted := req.TrustFlag || (req.Trust != nil && req.Trust.IsTrusted(host))
	if !trusted {
		if !req.StdinIsTTY || req.Prompt == nil {
			return "", &UntrustedHost{Host: host}
		}
		preview := TrustPreview{
			Host:            host,
			Command:         req.Command,
			MetadataSummary: req.MetadataSummary,
			BodyPreview:     truncate(req.BodyPreview, bodyPreviewLimit),
		}
		decision, err := req.Prompt(preview)
		if err != nil {
			return "", err
		}
		if !decision.Allow {
			return "", &UntrustedHost{Host: host}
		}
		if decision.Remember && req.Trust != nil {
			if err := req.Trust.Trust(host); err != nil {
				log.Printf("failed to persist trust for host %s: %v", host, err)
			}
		}
	}

	cacheKey := config.Key(req.URL)
	if !req.NoCache && req.Cache != nil {
		if cached, ok := req.Cache.Get(cacheKey); ok {
			log.Printf("cache hit for %s", req.URL)
			return string(cached), nil
		}
	}

	body, err := req.HTTPClient.Get(ctx, req.URL)
	if err != nil {
		return "", err
	}

	if !req.NoCache && req.Cache != nil {
		if err := req.Cache.Set(cacheKey, body); err != nil {
			log.Printf("failed to cache %s: %v", req.URL, err)
		}
	}

	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
