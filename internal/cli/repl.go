package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell over one DevTools session",
	Long: `Opens one session and reads commands interactively. Every storagectl
command works inside the shell and reuses the session. Unique prefixes
are accepted (u=usage, co=cookies, w=watch).

Shell commands: help, history, exit, quit.`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// replCommands lists shell-only commands for abbreviation matching.
var replCommands = []string{"exit", "quit", "help", "history"}

// REPL reads command lines and runs them against a shared target.
type REPL struct {
	liner   *liner.State
	history []string
	prompt  string
	exec    func(args []string) (bool, error)
	done    <-chan struct{}
}

func runREPL(cmd *cobra.Command, args []string) error {
	if replTarget != nil {
		return outputError("already in a repl")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return outputError("repl needs an interactive terminal")
	}

	ctx, cancel := commandContext()
	t, err := sessionFactory.Open(ctx, config)
	cancel()
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	replTarget = &Target{Session: t.Session, Storage: t.Storage, shared: true}
	defer func() { replTarget = nil }()

	r := &REPL{
		prompt: "storagectl> ",
		exec:   ExecuteArgs,
		done:   t.Session.Done(),
	}
	return r.Run()
}

// Run starts the REPL loop. Blocks until exit command, EOF or the session
// closing.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.complete)

	for {
		line, err := r.liner.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if r.sessionClosed() {
			return outputError("session closed")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)
		r.history = append(r.history, line)

		if exit, handled := r.handleSpecialCommand(line); handled {
			if exit {
				return nil
			}
			continue
		}

		r.executeCommand(line)
	}
}

func (r *REPL) sessionClosed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// complete offers command names for the first word.
func (r *REPL) complete(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, cmd := range rootCmd.Commands() {
		if strings.HasPrefix(cmd.Name(), line) {
			out = append(out, cmd.Name())
		}
	}
	for _, name := range replCommands {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	return out
}

// expandAbbreviation expands a command prefix to a full command name.
// Returns the expanded command and true if exactly one match found.
func expandAbbreviation(prefix string, commands []string) (string, bool) {
	prefix = strings.ToLower(prefix)
	var matches []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, prefix) {
			matches = append(matches, cmd)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

// handleSpecialCommand handles shell-only commands.
func (r *REPL) handleSpecialCommand(line string) (exit, handled bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, false
	}
	cmd := strings.ToLower(parts[0])
	if cmd == "?" {
		cmd = "help"
	}
	if expanded, ok := expandAbbreviation(cmd, replCommands); ok {
		cmd = expanded
	}

	switch cmd {
	case "exit", "quit":
		return true, true
	case "help":
		r.printHelp()
		return false, true
	case "history":
		r.printHistory()
		return false, true
	}
	return false, false
}

// executeCommand runs one storagectl command line.
func (r *REPL) executeCommand(line string) {
	args := splitArgs(line)
	if len(args) == 0 {
		return
	}
	if args[0] == "repl" {
		outputError("already in a repl")
		return
	}

	if expanded := tryExpandCommand(args[0]); expanded != "" {
		args[0] = expanded
	}

	recognized, err := r.exec(args)
	if !recognized {
		outputError(fmt.Sprintf("unknown command: %s", args[0]))
		return
	}
	if err != nil && !IsPrintedError(err) {
		outputError(err.Error())
	}
}

// splitArgs splits a line on spaces, keeping single- or double-quoted
// sections together so JSON params survive.
func splitArgs(line string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, c := range line {
		switch {
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(c)
		case c == '\'' || c == '"':
			quote, inArg = c, true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

func (r *REPL) printHelp() {
	fmt.Println()
	fmt.Println("Commands (unique prefixes accepted):")
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "repl" || cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		fmt.Printf("  %-14s %s\n", cmd.Name(), cmd.Short)
	}
	fmt.Println()
	fmt.Println("Shell:")
	fmt.Println("  help, ?        Show this help")
	fmt.Println("  history        Show command history")
	fmt.Println("  exit, quit     Close the session and exit")
	fmt.Println()
}

func (r *REPL) printHistory() {
	for i, cmd := range r.history {
		fmt.Printf("  %d  %s\n", i+1, cmd)
	}
}
