// Package format renders command results as human-readable text.
package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/grantcarthew/storagectl/internal/storage"
	"golang.org/x/term"
)

func colorFprint(w io.Writer, c color.Attribute, s string) {
	color.New(c).Fprint(w, s)
}

func colorFprintf(w io.Writer, c color.Attribute, format string, args ...any) {
	color.New(c).Fprintf(w, format, args...)
}

// OutputOptions controls text formatting behavior.
type OutputOptions struct {
	UseColor bool // Enable ANSI color codes
}

// NewOutputOptions returns output options based on flags and environment.
// Priority: jsonOutput > noColorFlag > NO_COLOR env > TTY detection.
func NewOutputOptions(jsonOutput bool, noColorFlag bool) OutputOptions {
	if jsonOutput || noColorFlag {
		return OutputOptions{UseColor: false}
	}
	if os.Getenv("NO_COLOR") != "" {
		return OutputOptions{UseColor: false}
	}
	return OutputOptions{
		UseColor: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// ActionSuccess outputs "OK" for successful action commands.
func ActionSuccess(w io.Writer) error {
	_, err := fmt.Fprintln(w, "OK")
	return err
}

// Bytes renders a byte count with a binary unit.
func Bytes(n float64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%.0f B", n)
	}
	div, exp := float64(unit), 0
	for v := n / unit; v >= unit && exp < 4; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", n/div, "KMGTP"[exp])
}

// OriginUsage pairs an origin with its usage report.
type OriginUsage struct {
	Origin string                `json:"origin"`
	Usage  storage.UsageAndQuota `json:"usage"`
}

// Usage outputs one block per origin: totals, then each storage type with
// non-zero usage.
func Usage(w io.Writer, reports []OriginUsage, opts OutputOptions) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}

		pct := 0.0
		if r.Usage.Quota > 0 {
			pct = r.Usage.Usage / r.Usage.Quota * 100
		}

		if opts.UseColor {
			colorFprint(w, color.FgCyan, r.Origin)
		} else {
			fmt.Fprint(w, r.Origin)
		}
		fmt.Fprintf(w, "  %s / %s (%.1f%%)", Bytes(r.Usage.Usage), Bytes(r.Usage.Quota), pct)
		if r.Usage.OverrideActive {
			if opts.UseColor {
				colorFprint(w, color.FgYellow, " [override]")
			} else {
				fmt.Fprint(w, " [override]")
			}
		}
		fmt.Fprintln(w)

		for _, u := range r.Usage.UsageBreakdown {
			if u.Usage == 0 {
				continue
			}
			fmt.Fprintf(w, "  %-16s %s\n", u.StorageType, Bytes(u.Usage))
		}
	}
	return nil
}

// Cookies outputs cookies in Set-Cookie-like format, one per line.
func Cookies(w io.Writer, cookies []storage.Cookie, opts OutputOptions) error {
	for _, c := range cookies {
		var attrs []string
		if c.Domain != "" {
			attrs = append(attrs, "domain="+c.Domain)
		}
		if c.Path != "" {
			attrs = append(attrs, "path="+c.Path)
		}
		if c.Secure {
			attrs = append(attrs, "secure")
		}
		if c.HTTPOnly {
			attrs = append(attrs, "httponly")
		}
		if !c.Session && c.Expires > 0 {
			attrs = append(attrs, "expires="+time.Unix(int64(c.Expires), 0).Format("2006-01-02"))
		}
		if ss, ok := c.SameSite.Get(); ok {
			attrs = append(attrs, "samesite="+string(ss))
		}

		if opts.UseColor {
			colorFprint(w, color.FgCyan, c.Name)
			fmt.Fprint(w, "=", c.Value)
			for _, a := range attrs {
				fmt.Fprint(w, "; ")
				colorFprint(w, color.Faint, a)
			}
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintln(w, strings.Join(append([]string{c.Name + "=" + c.Value}, attrs...), "; "))
	}
	return nil
}

// TrustTokens outputs one "issuer count" line per issuer.
func TrustTokens(w io.Writer, tokens []storage.TrustTokens) error {
	for _, t := range tokens {
		if _, err := fmt.Fprintf(w, "%s %.0f\n", t.IssuerOrigin, t.Count); err != nil {
			return err
		}
	}
	return nil
}

// Event outputs one storage event line: time, kind, origin, detail.
func Event(w io.Writer, at time.Time, kind, origin, detail string, opts OutputOptions) error {
	ts := at.Format("15:04:05.000")
	if opts.UseColor {
		colorFprint(w, color.Faint, ts)
		fmt.Fprint(w, " ")
		colorFprintf(w, color.FgMagenta, "%-22s", kind)
		fmt.Fprintf(w, " %s", origin)
	} else {
		fmt.Fprintf(w, "%s %-22s %s", ts, kind, origin)
	}
	if detail != "" {
		fmt.Fprintf(w, " %s", detail)
	}
	_, err := fmt.Fprintln(w)
	return err
}
