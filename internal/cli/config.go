package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/grantcarthew/storagectl/internal/browser"
	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Config is the resolved CLI configuration.
type Config struct {
	Endpoint    string
	Timeout     time.Duration
	EventBuffer int
	LogLevel    logrus.Level
	Chrome      string
	Headless    bool
	Port        int
	Launch      bool
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "127.0.0.1:9222",
		Timeout:     cdp.DefaultTimeout,
		EventBuffer: cdp.DefaultEventBuffer,
		LogLevel:    logrus.WarnLevel,
		Headless:    true,
		Port:        browser.DefaultPort,
	}
}

type fileConfig struct {
	Endpoint    string `toml:"endpoint"`
	Timeout     string `toml:"timeout"`
	EventBuffer int    `toml:"event_buffer"`
	LogLevel    string `toml:"log_level"`
	Chrome      string `toml:"chrome"`
	Headless    bool   `toml:"headless"`
	Port        int    `toml:"port"`
}

// defaultConfigPath returns $XDG_CONFIG_HOME/storagectl/config.toml, or
// the platform config dir when XDG_CONFIG_HOME is unset.
func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "storagectl", "config.toml")
}

// loadConfigFile overlays the keys present in path onto cfg. A missing
// file is not an error unless required is set.
func loadConfigFile(path string, cfg Config, required bool) (Config, error) {
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("endpoint") {
		cfg.Endpoint = strings.TrimSpace(raw.Endpoint)
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return cfg, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("event_buffer") {
		if raw.EventBuffer <= 0 {
			return cfg, fmt.Errorf("event_buffer must be positive, got %d", raw.EventBuffer)
		}
		cfg.EventBuffer = raw.EventBuffer
	}

	if meta.IsDefined("log_level") {
		lvl, err := logrus.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return cfg, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}

	if meta.IsDefined("chrome") {
		cfg.Chrome = strings.TrimSpace(raw.Chrome)
	}

	if meta.IsDefined("headless") {
		cfg.Headless = raw.Headless
	}

	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}

	return cfg, nil
}

// applyFlags overlays flags the user set explicitly.
func applyFlags(flags *pflag.FlagSet, cfg Config) (Config, error) {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "endpoint":
			cfg.Endpoint = f.Value.String()
		case "timeout":
			cfg.Timeout, err = flags.GetDuration("timeout")
		case "event-buffer":
			cfg.EventBuffer, err = flags.GetInt("event-buffer")
		case "debug":
			cfg.LogLevel = logrus.DebugLevel
		case "launch":
			cfg.Launch, err = flags.GetBool("launch")
		case "headless":
			cfg.Headless, err = flags.GetBool("headless")
		case "port":
			cfg.Port, err = flags.GetInt("port")
		case "chrome":
			cfg.Chrome = f.Value.String()
		}
	})
	if err == nil && cfg.EventBuffer <= 0 {
		err = fmt.Errorf("--event-buffer must be positive, got %d", cfg.EventBuffer)
	}
	return cfg, err
}

// resolveConfig builds the configuration in order: defaults, config file,
// explicitly set flags.
func resolveConfig(flags *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	path, required := defaultConfigPath(), false
	if f := flags.Lookup("config"); f != nil && f.Changed {
		path, required = f.Value.String(), true
	}

	cfg, err := loadConfigFile(path, cfg, required)
	if err != nil {
		return cfg, err
	}
	return applyFlags(flags, cfg)
}
