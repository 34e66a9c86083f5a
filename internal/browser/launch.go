package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// DefaultPort is the default remote debugging port.
const DefaultPort = 9222

// LaunchOptions configures a launched Chrome.
type LaunchOptions struct {
	// Binary is the Chrome executable; empty means FindChrome.
	Binary string

	Headless bool

	// Port for remote debugging. Zero means DefaultPort.
	Port int

	// UserDataDir is the profile directory. Empty creates a temporary
	// profile that is removed on Close.
	UserDataDir string
}

func (o LaunchOptions) port() int {
	if o.Port == 0 {
		return DefaultPort
	}
	return o.Port
}

func buildArgs(opts LaunchOptions, dataDir string) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", opts.port()),
		fmt.Sprintf("--user-data-dir=%s", dataDir),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-background-networking",
		"--disable-sync",
	}

	switch runtime.GOOS {
	case "darwin":
		args = append(args, "--use-mock-keychain")
	case "linux":
		args = append(args, "--password-store=basic")
	}

	if opts.Headless {
		args = append(args, "--headless=new")
	}

	return append(args, "about:blank")
}

// spawn starts Chrome without waiting for it. It returns the profile
// directory and whether it is temporary.
func spawn(binPath string, opts LaunchOptions) (*exec.Cmd, string, bool, error) {
	dataDir, temp := opts.UserDataDir, false
	if dataDir == "" {
		var err error
		dataDir, err = os.MkdirTemp("", "storagectl-chrome-*")
		if err != nil {
			return nil, "", false, fmt.Errorf("create profile dir: %w", err)
		}
		temp = true
	}

	cmd := exec.Command(binPath, buildArgs(opts, dataDir)...)
	if err := cmd.Start(); err != nil {
		if temp {
			_ = os.RemoveAll(dataDir)
		}
		return nil, "", false, fmt.Errorf("start browser: %w", err)
	}

	return cmd, dataDir, temp, nil
}
