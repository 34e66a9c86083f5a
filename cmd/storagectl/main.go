package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/grantcarthew/storagectl/internal/cli"
)

var unknownFlagRe = regexp.MustCompile(`^unknown flag: (.+)$`)

// formatCobraError converts verbose Cobra errors to user-friendly messages.
func formatCobraError(err error) string {
	msg := err.Error()

	if m := unknownFlagRe.FindStringSubmatch(msg); len(m) > 1 {
		return fmt.Sprintf("unknown flag %s (see storagectl --help)", m[1])
	}

	if strings.HasPrefix(msg, "unknown command ") {
		if i := strings.Index(msg, " for "); i > 0 {
			return msg[:i]
		}
	}

	return msg
}

func main() {
	if err := cli.Execute(); err != nil {
		if !cli.IsPrintedError(err) {
			msg := formatCobraError(err)
			if cli.JSONOutput {
				_ = json.NewEncoder(os.Stderr).Encode(map[string]any{
					"ok":    false,
					"error": msg,
				})
			} else {
				fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
			}
		}
		os.Exit(1)
	}
}
