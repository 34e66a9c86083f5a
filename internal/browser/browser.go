package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// ErrStartTimeout is returned when a launched browser never exposes its
// debugging endpoint.
var ErrStartTimeout = errors.New("browser start timeout")

// StartTimeout bounds how long Start waits for the endpoint.
const StartTimeout = 30 * time.Second

// Browser is a Chrome process started by Start.
type Browser struct {
	cmd     *exec.Cmd
	addr    string
	dataDir string
	tempDir bool
	wsURL   string
}

// Start launches Chrome and waits until /json/version answers.
func Start(ctx context.Context, opts LaunchOptions) (*Browser, error) {
	binPath, err := FindChrome(opts.Binary)
	if err != nil {
		return nil, err
	}

	cmd, dataDir, temp, err := spawn(binPath, opts)
	if err != nil {
		return nil, err
	}

	b := &Browser{
		cmd:     cmd,
		addr:    net.JoinHostPort("127.0.0.1", strconv.Itoa(opts.port())),
		dataDir: dataDir,
		tempDir: temp,
	}

	ctx, cancel := context.WithTimeout(ctx, StartTimeout)
	defer cancel()

	info, err := b.waitForEndpoint(ctx)
	if err != nil {
		b.Close()
		return nil, err
	}
	if info.WebSocketURL == "" {
		b.Close()
		return nil, ErrNoDebuggerURL
	}
	b.wsURL = info.WebSocketURL

	return b, nil
}

func (b *Browser) waitForEndpoint(ctx context.Context) (*VersionInfo, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrStartTimeout, b.addr)
		case <-ticker.C:
			if info, err := FetchVersion(ctx, b.addr); err == nil {
				return info, nil
			}
		}
	}
}

// Addr returns the "host:port" of the debugging endpoint.
func (b *Browser) Addr() string { return b.addr }

// WebSocketURL returns the browser-level WebSocket URL.
func (b *Browser) WebSocketURL() string { return b.wsURL }

// PID returns the browser process ID, or 0 once closed.
func (b *Browser) PID() int {
	if b.cmd == nil || b.cmd.Process == nil {
		return 0
	}
	return b.cmd.Process.Pid
}

// Close stops the browser and removes a temporary profile. It is safe to
// call more than once.
func (b *Browser) Close() error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}

	if err := b.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = b.cmd.Process.Kill()
	}
	_ = b.cmd.Wait()

	if b.tempDir {
		_ = os.RemoveAll(b.dataDir)
	}

	b.cmd = nil
	return nil
}
