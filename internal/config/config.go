package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/scienceol/awake/internal/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file"`
	ControlAddr     string `yaml:"control_addr"`
	ActivateOnStart bool   `yaml:"activate_on_start"`
	Headless        bool   `yaml:"headless"`
}

// Overrides carries command-line flags. Empty strings and false leave the
// lower layers untouched.
type Overrides struct {
	LogLevel    string
	LogFile     string
	ControlAddr string
	NoStart     bool
	Headless    bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		LogFile:         logging.DefaultLogPath(),
		ActivateOnStart: true,
	}
}

// Load resolves configuration from flags > env > config file > defaults.
// An empty path means DefaultPath(). A missing file is not an error.
func Load(path string, o Overrides) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	// 1. Config file over defaults
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	// 2. Environment variables override config file
	if v := os.Getenv("AWAKE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AWAKE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("AWAKE_CONTROL_ADDR"); v != "" {
		cfg.ControlAddr = v
	}
	if v := os.Getenv("AWAKE_ACTIVATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AWAKE_ACTIVATE_ON_START: %w", err)
		}
		cfg.ActivateOnStart = b
	}
	if v := os.Getenv("AWAKE_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AWAKE_HEADLESS: %w", err)
		}
		cfg.Headless = b
	}

	// 3. CLI flags override everything
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.ControlAddr != "" {
		cfg.ControlAddr = o.ControlAddr
	}
	if o.NoStart {
		cfg.ActivateOnStart = false
	}
	if o.Headless {
		cfg.Headless = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("invalid log file: %w", err)
	}
	cfg.LogFile = abs

	return cfg, nil
}

// ReadFile returns the defaults overlaid with the yaml file at path.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level %q (debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFile == "" {
		return fmt.Errorf("log file path is required")
	}
	if c.ControlAddr != "" {
		host, _, err := net.SplitHostPort(c.ControlAddr)
		if err != nil {
			return fmt.Errorf("invalid control address %q: %w", c.ControlAddr, err)
		}
		if !isLoopback(host) {
			return fmt.Errorf("control address %q must be a loopback address", c.ControlAddr)
		}
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// DefaultPath returns ~/.awake/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".awake", "config.yaml")
	}
	return filepath.Join(home, ".awake", "config.yaml")
}
