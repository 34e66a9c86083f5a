package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const browserWS = "ws://127.0.0.1:9222/devtools/browser/abc"

func newDevtoolsServer(t *testing.T, info VersionInfo) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json/version":
			_ = json.NewEncoder(w).Encode(info)
		case "/json/list":
			_ = json.NewEncoder(w).Encode([]Target{
				{ID: "ABC123", Type: "page", URL: "https://example.com", WebSocketURL: "ws://127.0.0.1:9222/devtools/page/ABC123"},
				{ID: "DEF456", Type: "service_worker"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return strings.TrimPrefix(server.URL, "http://")
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFetchTargets_ParsesResponse(t *testing.T) {
	t.Parallel()

	addr := newDevtoolsServer(t, VersionInfo{})

	result, err := FetchTargets(testCtx(t), addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(result))
	}
	if result[0].ID != "ABC123" || result[1].Type != "service_worker" {
		t.Errorf("unexpected targets: %+v", result)
	}
}

func TestFetchVersion_ParsesResponse(t *testing.T) {
	t.Parallel()

	addr := newDevtoolsServer(t, VersionInfo{
		Browser:         "Chrome/120.0.0.0",
		ProtocolVersion: "1.3",
		WebSocketURL:    browserWS,
	})

	info, err := FetchVersion(testCtx(t), addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Browser != "Chrome/120.0.0.0" {
		t.Errorf("expected Chrome/120.0.0.0, got %s", info.Browser)
	}
	if info.ProtocolVersion != "1.3" {
		t.Errorf("expected protocol 1.3, got %s", info.ProtocolVersion)
	}
}

func TestFetchVersion_Unreachable(t *testing.T) {
	t.Parallel()

	if _, err := FetchVersion(testCtx(t), "127.0.0.1:1"); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestResolveEndpoint(t *testing.T) {
	t.Parallel()

	addr := newDevtoolsServer(t, VersionInfo{WebSocketURL: browserWS})

	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{name: "ws url verbatim", endpoint: "ws://10.0.0.1:9000/devtools/browser/x", want: "ws://10.0.0.1:9000/devtools/browser/x"},
		{name: "wss url verbatim", endpoint: "wss://remote/devtools/browser/x", want: "wss://remote/devtools/browser/x"},
		{name: "host port", endpoint: addr, want: browserWS},
		{name: "http url", endpoint: "http://" + addr, want: browserWS},
		{name: "http url with path", endpoint: "http://" + addr + "/json", want: browserWS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveEndpoint(testCtx(t), tt.endpoint)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolveEndpoint_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "empty", endpoint: "  "},
		{name: "bad scheme", endpoint: "ftp://host:21"},
		{name: "missing port", endpoint: "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ResolveEndpoint(testCtx(t), tt.endpoint); err == nil {
				t.Errorf("expected error for %q", tt.endpoint)
			}
		})
	}
}

func TestResolveEndpoint_NoDebuggerURL(t *testing.T) {
	t.Parallel()

	addr := newDevtoolsServer(t, VersionInfo{Browser: "Chrome/120.0.0.0"})

	_, err := ResolveEndpoint(testCtx(t), addr)
	if !errors.Is(err, ErrNoDebuggerURL) {
		t.Errorf("expected ErrNoDebuggerURL, got %v", err)
	}
}

func TestHostPort_BarePort(t *testing.T) {
	t.Parallel()

	got, err := hostPort("9222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "127.0.0.1:9222" {
		t.Errorf("expected 127.0.0.1:9222, got %s", got)
	}
}
