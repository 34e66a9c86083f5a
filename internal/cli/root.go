package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/grantcarthew/storagectl/internal/cli/format"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Version is set at build time.
var Version = "dev"

// Debug enables verbose debug output.
var Debug bool

// JSONOutput enables JSON output format (default is text).
var JSONOutput bool

// NoColor disables color output.
var NoColor bool

// config is resolved before every command runs.
var config = DefaultConfig()

// logger is the CLI's logger; sessions log through it too.
var logger = newLogger(logrus.WarnLevel)

var rootCmd = &cobra.Command{
	Use:               "storagectl",
	Short:             "Inspect and manage browser storage over the DevTools protocol",
	Long:              "storagectl talks to a Chrome DevTools endpoint and drives its Storage domain: usage and quota, cookies, clearing data, and live cache storage and IndexedDB events.",
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("endpoint", config.Endpoint, "DevTools endpoint: ws:// URL, http://host:port, host:port or port")
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/storagectl/config.toml)")
	pf.Duration("timeout", config.Timeout, "Per-command timeout")
	pf.Int("event-buffer", config.EventBuffer, "Events queued per subscription before the oldest are dropped")
	pf.Bool("launch", false, "Launch a local Chrome instead of connecting to --endpoint")
	pf.Bool("headless", config.Headless, "Run a launched Chrome headless")
	pf.Int("port", config.Port, "Remote debugging port for a launched Chrome")
	pf.String("chrome", "", "Chrome binary for --launch (default: autodetect)")
	pf.BoolVar(&Debug, "debug", false, "Enable verbose debug output")
	pf.BoolVar(&JSONOutput, "json", false, "Output in JSON format (default is text)")
	pf.BoolVar(&NoColor, "no-color", false, "Disable color output")
	rootCmd.SetVersionTemplate(`storagectl version {{.Version}}
`)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd.Flags())
	if err != nil {
		return outputError(err.Error())
	}
	config = cfg
	logger.SetLevel(cfg.LogLevel)
	if NoColor {
		color.NoColor = true
	}
	debugf("config: endpoint=%s timeout=%s event_buffer=%d launch=%v", cfg.Endpoint, cfg.Timeout, cfg.EventBuffer, cfg.Launch)
	return nil
}

func newLogger(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return l
}

// debugf logs a debug message if debug mode is enabled.
func debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

// printedError marks an error whose message has already been written.
type printedError struct{ msg string }

func (e *printedError) Error() string { return e.msg }

// IsPrintedError reports whether err was already written to stderr.
func IsPrintedError(err error) bool {
	var pe *printedError
	return errors.As(err, &pe)
}

// Execute runs the root command.
// Supports command abbreviation via unique prefix matching.
func Execute() error {
	args := os.Args[1:]
	if len(args) > 0 {
		if expanded := tryExpandCommand(args[0]); expanded != "" {
			args[0] = expanded
			rootCmd.SetArgs(args)
		}
	}
	return rootCmd.Execute()
}

// tryExpandCommand returns the single command name prefix abbreviates,
// or "" when prefix is exact, unknown or ambiguous.
func tryExpandCommand(prefix string) string {
	var matches []string
	for _, cmd := range rootCmd.Commands() {
		name := cmd.Name()
		if name == prefix {
			return ""
		}
		if len(prefix) < len(name) && name[:len(prefix)] == prefix {
			matches = append(matches, name)
		}
	}
	if len(matches) == 1 {
		return matches[0]
	}
	return ""
}

// ExecuteArgs runs a command with the given arguments.
// Used by the REPL to execute commands parsed from user input.
// Returns true if the command was recognized (even if it failed), false if unknown.
func ExecuteArgs(args []string) (recognized bool, err error) {
	if len(args) == 0 {
		return false, nil
	}

	cmd, _, findErr := rootCmd.Find(args)
	if findErr != nil || cmd == rootCmd {
		return false, nil
	}

	rootCmd.SetArgs(args)
	err = rootCmd.Execute()

	// Flags persist between Execute calls; reset them so the next REPL
	// line starts from defaults.
	resetFlags := func(flags *pflag.FlagSet) {
		flags.VisitAll(func(f *pflag.Flag) {
			defVal := f.DefValue
			if defVal == "[]" {
				defVal = ""
			}
			_ = f.Value.Set(defVal)
			f.Changed = false
		})
	}

	resetFlags(cmd.Flags())
	resetFlags(cmd.PersistentFlags())
	for parent := cmd.Parent(); parent != nil; parent = parent.Parent() {
		resetFlags(parent.PersistentFlags())
	}

	return true, err
}

// isStdoutTTY returns true if stdout is a terminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// outputJSON writes a JSON response to the given writer.
// Pretty prints if stdout is a TTY, compact otherwise.
func outputJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if isStdoutTTY() {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

// outputSuccess writes a successful response to stdout.
// For action commands (no data), outputs "OK" in text mode.
func outputSuccess(data any) error {
	if JSONOutput {
		resp := map[string]any{
			"ok": true,
		}
		if data != nil {
			resp["data"] = data
		}
		return outputJSON(os.Stdout, resp)
	}

	if data == nil {
		if shouldUseColor() {
			color.New(color.FgGreen).Fprintln(os.Stdout, "OK")
			return nil
		}
		return format.ActionSuccess(os.Stdout)
	}

	_, err := fmt.Fprintf(os.Stdout, "%v\n", data)
	return err
}

// outputError writes an error response to stderr and returns an error
// that main will not print again.
func outputError(msg string) error {
	if JSONOutput {
		resp := map[string]any{
			"ok":    false,
			"error": msg,
		}
		_ = outputJSON(os.Stderr, resp)
	} else if shouldUseColor() {
		color.New(color.FgRed).Fprint(os.Stderr, "Error:")
		fmt.Fprintf(os.Stderr, " %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	return &printedError{msg: msg}
}

// shouldUseColor determines if color output should be used based on flags and environment.
func shouldUseColor() bool {
	if JSONOutput || NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
