package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoDebuggerURL is returned when /json/version carries no WebSocket URL.
var ErrNoDebuggerURL = errors.New("endpoint reported no webSocketDebuggerUrl")

// Target is one entry of the /json target list.
type Target struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	WebSocketURL string `json:"webSocketDebuggerUrl"`
}

// VersionInfo is the /json/version document. WebSocketURL is the
// browser-level endpoint the Storage domain lives on.
type VersionInfo struct {
	Browser         string `json:"Browser"`
	ProtocolVersion string `json:"Protocol-Version"`
	UserAgent       string `json:"User-Agent"`
	V8Version       string `json:"V8-Version"`
	WebSocketURL    string `json:"webSocketDebuggerUrl"`
}

// FetchTargets lists the targets exposed at addr ("host:port").
// http.DefaultClient has no timeout; ctx must carry one.
func FetchTargets(ctx context.Context, addr string) ([]Target, error) {
	var targets []Target
	if err := getJSON(ctx, addr, "/json/list", &targets); err != nil {
		return nil, fmt.Errorf("fetch targets: %w", err)
	}
	return targets, nil
}

// FetchVersion reads /json/version from addr ("host:port").
func FetchVersion(ctx context.Context, addr string) (*VersionInfo, error) {
	var info VersionInfo
	if err := getJSON(ctx, addr, "/json/version", &info); err != nil {
		return nil, fmt.Errorf("fetch version: %w", err)
	}
	return &info, nil
}

func getJSON(ctx context.Context, addr, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ResolveEndpoint turns a user-supplied endpoint into a browser WebSocket
// URL. ws:// and wss:// URLs are returned unchanged; "host:port", a bare
// port, and http(s):// URLs are resolved through /json/version.
func ResolveEndpoint(ctx context.Context, endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", errors.New("empty endpoint")
	}

	if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		return endpoint, nil
	}

	addr, err := hostPort(endpoint)
	if err != nil {
		return "", err
	}

	info, err := FetchVersion(ctx, addr)
	if err != nil {
		return "", err
	}
	if info.WebSocketURL == "" {
		return "", ErrNoDebuggerURL
	}
	return info.WebSocketURL, nil
}

func hostPort(endpoint string) (string, error) {
	if _, err := strconv.Atoi(endpoint); err == nil {
		return net.JoinHostPort("127.0.0.1", endpoint), nil
	}

	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return "", fmt.Errorf("parse endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
		}
		endpoint = u.Host
	}

	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		return "", fmt.Errorf("endpoint %q: %w", endpoint, err)
	}
	return endpoint, nil
}
