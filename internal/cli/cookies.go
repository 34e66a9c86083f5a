package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/grantcarthew/storagectl/internal/cli/format"
	"github.com/grantcarthew/storagectl/internal/storage"
	"github.com/spf13/cobra"
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "List browser cookies",
	Long: `Lists every cookie in the browser, or in one browser context.

Filter flags:
  --domain DOMAIN   Only cookies whose domain equals DOMAIN
  --name NAME       Only cookies with this exact name

Subcommands:
  set <name> <value>   Set a cookie
  clear                Remove all cookies

Examples:
  cookies
  cookies --domain .github.com
  cookies --context 6A1F... --json`,
	Args: cobra.NoArgs,
	RunE: runCookies,
}

var cookiesSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a cookie",
	Long: `Sets one cookie. Either --url or --domain is required by the browser.

Examples:
  cookies set session abc123 --url https://example.com
  cookies set auth xyz --domain example.com --secure --httponly --max-age 3600
  cookies set csrf tok --domain example.com --samesite Strict`,
	Args: cobra.ExactArgs(2),
	RunE: runCookiesSet,
}

var cookiesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cookies",
	Args:  cobra.NoArgs,
	RunE:  runCookiesClear,
}

func init() {
	cookiesCmd.PersistentFlags().String("context", "", "Browser context ID (default: the default context)")
	cookiesCmd.Flags().String("domain", "", "Filter by cookie domain")
	cookiesCmd.Flags().String("name", "", "Filter by exact cookie name")

	cookiesSetCmd.Flags().String("url", "", "URL the cookie is associated with")
	cookiesSetCmd.Flags().String("domain", "", "Cookie domain")
	cookiesSetCmd.Flags().String("path", "", "Cookie path")
	cookiesSetCmd.Flags().Bool("secure", false, "Require HTTPS")
	cookiesSetCmd.Flags().Bool("httponly", false, "Hide from document.cookie")
	cookiesSetCmd.Flags().Int("max-age", 0, "Expiry in seconds from now (0 = session cookie)")
	cookiesSetCmd.Flags().String("samesite", "", "SameSite policy: Strict, Lax or None")
	cookiesSetCmd.Flags().String("priority", "", "Priority: Low, Medium or High")

	cookiesCmd.AddCommand(cookiesSetCmd, cookiesClearCmd)
	rootCmd.AddCommand(cookiesCmd)
}

// contextFlag reads --context as an optional browser context ID.
func contextFlag(cmd *cobra.Command) cdp.Opt[string] {
	id, _ := cmd.Flags().GetString("context")
	if id == "" {
		return cdp.None[string]()
	}
	return cdp.Some(id)
}

// stringFlag returns a flag value only if the user set it.
func stringFlag(cmd *cobra.Command, name string) cdp.Opt[string] {
	if !cmd.Flags().Changed(name) {
		return cdp.None[string]()
	}
	v, _ := cmd.Flags().GetString(name)
	return cdp.Some(v)
}

func boolFlag(cmd *cobra.Command, name string) cdp.Opt[bool] {
	if !cmd.Flags().Changed(name) {
		return cdp.None[bool]()
	}
	v, _ := cmd.Flags().GetBool(name)
	return cdp.Some(v)
}

func filterCookies(cookies []storage.Cookie, domain, name string) []storage.Cookie {
	if domain == "" && name == "" {
		return cookies
	}
	out := make([]storage.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if domain != "" && c.Domain != domain {
			continue
		}
		if name != "" && c.Name != name {
			continue
		}
		out = append(out, c)
	}
	return out
}

func runCookies(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	cookies, err := t.Storage.GetCookies(ctx, contextFlag(cmd))
	if err != nil {
		return outputError(err.Error())
	}

	domain, _ := cmd.Flags().GetString("domain")
	name, _ := cmd.Flags().GetString("name")
	cookies = filterCookies(cookies, domain, name)
	debugf("cookies: %d after filtering", len(cookies))

	if JSONOutput {
		return outputSuccess(map[string]any{
			"cookies": cookies,
			"count":   len(cookies),
		})
	}
	return format.Cookies(os.Stdout, cookies, format.NewOutputOptions(JSONOutput, NoColor))
}

func runCookiesSet(cmd *cobra.Command, args []string) error {
	param := storage.CookieParam{
		Name:     args[0],
		Value:    args[1],
		URL:      stringFlag(cmd, "url"),
		Domain:   stringFlag(cmd, "domain"),
		Path:     stringFlag(cmd, "path"),
		Secure:   boolFlag(cmd, "secure"),
		HTTPOnly: boolFlag(cmd, "httponly"),
	}
	if !param.URL.IsSet() && !param.Domain.IsSet() {
		return outputError("cookies set needs --url or --domain")
	}

	if maxAge, _ := cmd.Flags().GetInt("max-age"); maxAge > 0 {
		param.Expires = cdp.Some(float64(time.Now().Add(time.Duration(maxAge) * time.Second).Unix()))
	}

	if raw, ok := stringFlag(cmd, "samesite").Get(); ok {
		ss, err := storage.ParseCookieSameSite(raw)
		if err != nil {
			return outputError(fmt.Sprintf("invalid --samesite: %v", err))
		}
		param.SameSite = cdp.Some(ss)
	}

	if raw, ok := stringFlag(cmd, "priority").Get(); ok {
		p, err := storage.ParseCookiePriority(raw)
		if err != nil {
			return outputError(fmt.Sprintf("invalid --priority: %v", err))
		}
		param.Priority = cdp.Some(p)
	}

	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	if err := t.Storage.SetCookies(ctx, []storage.CookieParam{param}, contextFlag(cmd)); err != nil {
		return outputError(err.Error())
	}
	return outputSuccess(nil)
}

func runCookiesClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	if err := t.Storage.ClearCookies(ctx, contextFlag(cmd)); err != nil {
		return outputError(err.Error())
	}
	return outputSuccess(nil)
}
