package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/config"
)

// Sentinel errors for flag values.
var (
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	quiet    bool
	verbose  bool
	jsonLogs bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	company  string
	output   string
	html     bool
	timeout  string
	workers  int
	proxyURL string
	style    string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	workers int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.BoolVar(&f.jsonLogs, "json-logs", false, "write logs as JSON")
}

func parseRenderFlags(args []string, usage io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &renderFlags{}

	fs.StringVar(&f.company, "company", "", "company JSON file applied to every job")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.BoolVar(&f.html, "html", false, "also write the HTML markup")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.StringVar(&f.proxyURL, "proxy-url", "", "logo proxy API origin")
	fs.StringVar(&f.style, "style", "", "stylesheet name")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printRenderUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseServeFlags(args []string, usage io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printServeUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("serve takes no arguments, got %q", fs.Args())
	}
	return f, nil
}

// mergeCommonFlags applies logging flags. --verbose wins over --quiet.
func mergeCommonFlags(f commonFlags, cfg *config.Config) {
	switch {
	case f.verbose:
		cfg.Log.Level = "debug"
	case f.quiet:
		cfg.Log.Level = "error"
	}
	if f.jsonLogs {
		cfg.Log.Format = "json"
	}
}

// mergeRenderFlags applies explicitly set flags over cfg.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) error {
	mergeCommonFlags(f.common, cfg)

	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q (use a positive duration such as 30s or 2m)", ErrInvalidTimeout, f.timeout)
		}
		cfg.Render.Timeout = d
	}
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.output != "" {
		cfg.Output.DefaultDir = f.output
	}
	if f.html {
		cfg.Output.HTML = true
	}
	if f.proxyURL != "" {
		cfg.Logo.ProxyURL = f.proxyURL
	}
	if f.style != "" {
		cfg.Render.Style = f.style
	}
	return nil
}

// mergeServeFlags applies explicitly set flags over cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) error {
	mergeCommonFlags(f.common, cfg)

	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	return nil
}

// validateWorkers rejects negative values and values above the pool cap.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkerCount, n)
	}
	if n > jd2pdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, jd2pdf.MaxPoolSize)
	}
	return nil
}
