// Package config loads the YAML settings shared by the jd2pdf CLI and
// server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-jd2pdf/internal/dateutil"
	"github.com/alnah/go-jd2pdf/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrFieldRange      = errors.New("field out of range")
)

// appDirName is the directory searched under the user config dir.
const appDirName = "go-jd2pdf"

// Field length limits.
const (
	MaxURLLength      = 2048 // Browser limit
	MaxTokenLength    = 4096 // Bearer tokens may be JWTs
	MaxNameLength     = 100  // Style and template set names
	MaxFormatLength   = dateutil.MaxDateFormatLength
	MaxCurrencyLength = 10
	MaxItemLength     = 300 // One fallback bullet
	MaxItems          = 20  // Fallback bullets per list
	MaxHostLength     = 253 // RFC 1035
)

// Config holds every setting a deployment can change.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Logo     LogoConfig     `yaml:"logo"`
	Fallback FallbackConfig `yaml:"fallback"`
	Assets   AssetsConfig   `yaml:"assets"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Workers  int            `yaml:"workers"` // 0 = sized from GOMAXPROCS
}

// RenderConfig controls layout, capture and formatting.
type RenderConfig struct {
	Timeout      time.Duration `yaml:"timeout"`      // per document, e.g. "90s"
	Scale        float64       `yaml:"scale"`        // capture pixel ratio
	JPEGQuality  int           `yaml:"jpegQuality"`  // 1-100
	SettleDelay  time.Duration `yaml:"settleDelay"`  // wait after layout, e.g. "1s"
	ReflowPasses int           `yaml:"reflowPasses"` // forced reflows before capture
	Style        string        `yaml:"style"`
	TemplateSet  string        `yaml:"templateSet"`
	DateFormat   string        `yaml:"dateFormat"` // e.g. "DD MMM YYYY" or "iso"
	Currency     string        `yaml:"currency"`   // used when a job has none
}

// LogoConfig controls company logo resolution.
type LogoConfig struct {
	ProxyURL       string        `yaml:"proxyURL"`   // API origin; empty disables the proxy strategy
	ProxyToken     string        `yaml:"proxyToken"` // prefer JD2PDF_PROXY_TOKEN
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
}

// FallbackConfig replaces the generic bullets shown for missing lists.
type FallbackConfig struct {
	Perks       []string `yaml:"perks"`
	Eligibility []string `yaml:"eligibility"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = current directory
	HTML       bool   `yaml:"html"`       // also write the markup
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedHosts    []string      `yaml:"allowedHosts"` // proxy-image hosts; empty allows any public host
	RatePerHost     float64       `yaml:"ratePerHost"`  // proxy-image requests per second per host
	Burst           int           `yaml:"burst"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Timeout:      90 * time.Second,
			Scale:        1.5,
			JPEGQuality:  85,
			SettleDelay:  time.Second,
			ReflowPasses: 3,
			Style:        "default",
			TemplateSet:  "default",
			DateFormat:   dateutil.DefaultDateFormat,
			Currency:     "INR",
		},
		Logo: LogoConfig{AttemptTimeout: 10 * time.Second},
		Server: ServerConfig{
			Addr:            ":8080",
			RatePerHost:     2,
			Burst:           4,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Validate checks lengths and ranges. Called automatically by LoadConfig,
// but available for consumers that build a Config by hand.
func (c *Config) Validate() error {
	r := c.Render
	if r.Timeout < 0 {
		return fmt.Errorf("%w: render.timeout must not be negative", ErrFieldRange)
	}
	if r.Scale != 0 && (r.Scale < 0 || r.Scale > 4) {
		return fmt.Errorf("%w: render.scale must be in (0, 4], got %.2f", ErrFieldRange, r.Scale)
	}
	if r.JPEGQuality != 0 && (r.JPEGQuality < 1 || r.JPEGQuality > 100) {
		return fmt.Errorf("%w: render.jpegQuality must be in [1, 100], got %d", ErrFieldRange, r.JPEGQuality)
	}
	if r.SettleDelay < 0 || r.SettleDelay > time.Minute {
		return fmt.Errorf("%w: render.settleDelay must be in [0, 1m], got %s", ErrFieldRange, r.SettleDelay)
	}
	if r.ReflowPasses < 0 || r.ReflowPasses > 20 {
		return fmt.Errorf("%w: render.reflowPasses must be in [0, 20], got %d", ErrFieldRange, r.ReflowPasses)
	}
	if r.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(r.DateFormat); err != nil {
			return fmt.Errorf("render.dateFormat: %w", err)
		}
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"render.style", r.Style, MaxNameLength},
		{"render.templateSet", r.TemplateSet, MaxNameLength},
		{"render.currency", r.Currency, MaxCurrencyLength},
		{"logo.proxyURL", c.Logo.ProxyURL, MaxURLLength},
		{"logo.proxyToken", c.Logo.ProxyToken, MaxTokenLength},
		{"assets.basePath", c.Assets.BasePath, MaxURLLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxURLLength},
		{"server.addr", c.Server.Addr, MaxHostLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Logo.ProxyURL != "" && !strings.HasPrefix(c.Logo.ProxyURL, "http://") && !strings.HasPrefix(c.Logo.ProxyURL, "https://") {
		return fmt.Errorf("logo.proxyURL: must be an http or https URL, got %q", c.Logo.ProxyURL)
	}
	if c.Logo.AttemptTimeout < 0 {
		return fmt.Errorf("%w: logo.attemptTimeout must not be negative", ErrFieldRange)
	}

	if err := validateItems("fallback.perks", c.Fallback.Perks); err != nil {
		return err
	}
	if err := validateItems("fallback.eligibility", c.Fallback.Eligibility); err != nil {
		return err
	}

	for i, host := range c.Server.AllowedHosts {
		if err := validateFieldLength(fmt.Sprintf("server.allowedHosts[%d]", i), host, MaxHostLength); err != nil {
			return err
		}
	}
	if c.Server.RatePerHost < 0 || c.Server.Burst < 0 || c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server limits must not be negative", ErrFieldRange)
	}

	if c.Workers < 0 || c.Workers > 64 {
		return fmt.Errorf("%w: workers must be in [0, 64], got %d", ErrFieldRange, c.Workers)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: invalid value %q (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format: invalid value %q (must be console or json)", c.Log.Format)
	}

	return nil
}

func validateItems(name string, items []string) error {
	if len(items) > MaxItems {
		return fmt.Errorf("%w: %s has %d items, max %d", ErrFieldRange, name, len(items), MaxItems)
	}
	for i, item := range items {
		if err := validateFieldLength(fmt.Sprintf("%s[%d]", name, i), item, MaxItemLength); err != nil {
			return err
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory, then ~/.config/go-jd2pdf/, .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
