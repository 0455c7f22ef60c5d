package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-jd2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // JD2PDF_CONFIG: config file name or path
	Timeout    time.Duration // JD2PDF_TIMEOUT: per-document deadline
	ProxyURL   string        // JD2PDF_PROXY_URL: logo proxy API origin
	ProxyToken string        // JD2PDF_PROXY_TOKEN: bearer token for the proxy
	OutputDir  string        // JD2PDF_OUTPUT_DIR: default output directory
	Workers    int           // JD2PDF_WORKERS: parallel browsers
	Addr       string        // JD2PDF_ADDR: serve listen address
	LogLevel   string        // JD2PDF_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid JD2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"JD2PDF_CONFIG":      true,
	"JD2PDF_TIMEOUT":     true,
	"JD2PDF_PROXY_URL":   true,
	"JD2PDF_PROXY_TOKEN": true,
	"JD2PDF_OUTPUT_DIR":  true,
	"JD2PDF_WORKERS":     true,
	"JD2PDF_ADDR":        true,
	"JD2PDF_LOG_LEVEL":   true,
	"JD2PDF_CONTAINER":   true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("JD2PDF_CONFIG"),
		ProxyURL:   os.Getenv("JD2PDF_PROXY_URL"),
		ProxyToken: os.Getenv("JD2PDF_PROXY_TOKEN"),
		OutputDir:  os.Getenv("JD2PDF_OUTPUT_DIR"),
		Addr:       os.Getenv("JD2PDF_ADDR"),
		LogLevel:   os.Getenv("JD2PDF_LOG_LEVEL"),
	}

	if timeout := os.Getenv("JD2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("JD2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized JD2PDF_* variables.
// Helps catch typos like JD2PDF_TIMEOUTS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "JD2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the variables that are
// set. Priority: CLI flags > env vars > config file > defaults.
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout
	}
	if env.ProxyURL != "" {
		cfg.Logo.ProxyURL = env.ProxyURL
	}
	if env.ProxyToken != "" {
		cfg.Logo.ProxyToken = env.ProxyToken
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}

// loadConfig loads the file named by the flag, else by JD2PDF_CONFIG,
// else returns defaults, then applies the environment.
func loadConfig(flagName string, env *envConfig) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, err
		}
	}

	applyEnvConfig(env, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
