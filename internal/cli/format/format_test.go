package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/grantcarthew/storagectl/internal/storage"
)

func init() {
	// Disable colors in tests for consistent output
	color.NoColor = true
}

func TestNewOutputOptions(t *testing.T) {
	tests := []struct {
		name        string
		jsonOutput  bool
		noColorFlag bool
		noColorEnv  string
	}{
		{name: "JSON output disables color", jsonOutput: true},
		{name: "no-color flag disables color", noColorFlag: true},
		{name: "NO_COLOR env disables color", noColorEnv: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColorEnv)

			opts := NewOutputOptions(tt.jsonOutput, tt.noColorFlag)
			if opts.UseColor {
				t.Error("UseColor = true, want false")
			}
		})
	}
}

func TestActionSuccess(t *testing.T) {
	var buf bytes.Buffer
	if err := ActionSuccess(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "OK\n" {
		t.Errorf("got %q, want %q", got, "OK\n")
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}

	for _, tt := range tests {
		if got := Bytes(tt.in); got != tt.want {
			t.Errorf("Bytes(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUsage(t *testing.T) {
	reports := []OriginUsage{{
		Origin: "https://example.com",
		Usage: storage.UsageAndQuota{
			Usage:          2048,
			Quota:          4096,
			OverrideActive: true,
			UsageBreakdown: []storage.UsageForType{
				{StorageType: storage.StorageTypeIndexedDB, Usage: 2048},
				{StorageType: storage.StorageTypeCookies, Usage: 0},
			},
		},
	}}

	var buf bytes.Buffer
	if err := Usage(&buf, reports, OutputOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "https://example.com  2.0 KiB / 4.0 KiB (50.0%) [override]") {
		t.Errorf("unexpected header: %q", output)
	}
	if !strings.Contains(output, "indexeddb") {
		t.Error("output should list indexeddb usage")
	}
	if strings.Contains(output, "cookies") {
		t.Error("output should skip zero usage")
	}
}

func TestCookies(t *testing.T) {
	cookies := []storage.Cookie{
		{Name: "session", Value: "abc123", Domain: ".example.com", Path: "/", Secure: true, HTTPOnly: true, Session: true, SameSite: cdp.Some(storage.CookieSameSiteLax)},
		{Name: "simple", Value: "value", Expires: 1735084800},
	}

	var buf bytes.Buffer
	if err := Cookies(&buf, cookies, OutputOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	want := "session=abc123; domain=.example.com; path=/; secure; httponly; samesite=Lax"
	if lines[0] != want {
		t.Errorf("got %q, want %q", lines[0], want)
	}
	if !strings.HasPrefix(lines[1], "simple=value; expires=") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestTrustTokens(t *testing.T) {
	var buf bytes.Buffer
	err := TrustTokens(&buf, []storage.TrustTokens{{IssuerOrigin: "https://issuer.example", Count: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "https://issuer.example 3\n" {
		t.Errorf("got %q", got)
	}
}

func TestEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	var buf bytes.Buffer
	if err := Event(&buf, at, "cache.content", "https://example.com", "cache=v1", OutputOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	if !strings.HasPrefix(got, "03:04:05.006 cache.content") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "https://example.com cache=v1\n") {
		t.Errorf("unexpected suffix: %q", got)
	}
}
