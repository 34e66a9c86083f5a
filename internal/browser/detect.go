// Package browser locates a DevTools endpoint: it resolves user-supplied
// addresses through the /json discovery documents and can launch a local
// Chrome with remote debugging enabled.
package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ChromeEnv names the environment variable that overrides Chrome detection.
const ChromeEnv = "STORAGECTL_CHROME"

// ErrChromeNotFound is returned when no Chrome binary can be located.
var ErrChromeNotFound = errors.New("chrome not found")

func chromePaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		}
	case "linux":
		return []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium",
			"chromium-browser",
			"/snap/bin/chromium",
		}
	default:
		return nil
	}
}

// FindChrome returns the Chrome binary to launch. An explicit path wins,
// then $STORAGECTL_CHROME, then the usual install locations. An explicit
// or environment path that does not exist is an error rather than a
// reason to keep searching.
func FindChrome(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(ChromeEnv)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%w: %s", ErrChromeNotFound, p)
		}
		return p, nil
	}

	for _, path := range chromePaths() {
		if found, err := exec.LookPath(path); err == nil {
			return found, nil
		}
	}

	return "", ErrChromeNotFound
}
