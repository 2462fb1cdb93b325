package resolvers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/netzkontrast/mdflow/pkg/netclient"
)

func TestResolveURL_TrustedHostFetchesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote body"))
	}))
	defer srv.Close()

	out, err := ResolveURL(context.Background(), URLRequest{
		URL:        srv.URL,
		TrustFlag:  true,
		NoCache:    true,
		HTTPClient: netclient.New(),
	})
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if out != "remote body" {
		t.Errorf("unexpected body: %q", out)
	}
}

func TestResolveURL_UntrustedHostWithoutPromptFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote body"))
	}))
	defer srv.Close()

	_, err := ResolveURL(context.Background(), URLRequest{
		URL:        srv.URL,
		NoCache:    true,
		HTTPClient: netclient.New(),
	})
	var untrusted *UntrustedHost
	if !errors.As(err, &untrusted) {
		t.Fatalf("expected *UntrustedHost, got %T: %v", err, err)
	}
}

func TestResolveURL_UntrustedHostPromptsAndAllows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote body"))
	}))
	defer srv.Close()

	var previewed TrustPreview
	out, err := ResolveURL(context.Background(), URLRequest{
		URL:        srv.URL,
		NoCache:    true,
		StdinIsTTY: true,
		HTTPClient: netclient.New(),
		Command:    "claude",
		Prompt: func(preview TrustPreview) (TrustDecision, error) {
			previewed = preview
			return TrustDecision{Allow: true}, nil
		},
	})
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if out != "remote body" {
		t.Errorf("unexpected body: %q", out)
	}
	if previewed.Command != "claude" {
		t.Errorf("expected preview to carry the command, got %+v", previewed)
	}
}

func TestResolveURL_UntrustedHostPromptDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote body"))
	}))
	defer srv.Close()

	_, err := ResolveURL(context.Background(), URLRequest{
		URL:        srv.URL,
		NoCache:    true,
		StdinIsTTY: true,
		HTTPClient: netclient.New(),
		Prompt: func(preview TrustPreview) (TrustDecision, error) {
			return TrustDecision{Allow: false}, nil
		},
	})
	var untrusted *UntrustedHost
	if !errors.As(err, &untrusted) {
		t.Fatalf("expected *UntrustedHost, got %T: %v", err, err)
	}
}

func TestResolveURL_InvalidURL(t *testing.T) {
	_, err := ResolveURL(context.Background(), URLRequest{
		URL:        "http://example.com/%zz",
		TrustFlag:  true,
		HTTPClient: netclient.New(),
	})
	if err == nil {
		t.Fatal("expected an error for a malformed URL")
	}
}

func TestResolveURL_BodyPreviewTruncatedInPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	longPreview := make([]byte, bodyPreviewLimit+50)
	for i := range longPreview {
		longPreview[i] = 'x'
	}

	var previewed TrustPreview
	_, err := ResolveURL(context.Background(), URLRequest{
		URL:         srv.URL,
		NoCache:     true,
		StdinIsTTY:  true,
		HTTPClient:  netclient.New(),
		BodyPreview: string(longPreview),
		Prompt: func(preview TrustPreview) (TrustDecision, error) {
			previewed = preview
			return TrustDecision{Allow: true}, nil
		},
	})
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if len(previewed.BodyPreview) > bodyPreviewLimit+len("…") {
		t.Errorf("expected truncated preview, got length %d", len(previewed.BodyPreview))
	}
}
