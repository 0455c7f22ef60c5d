package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/fileutil"
	"github.com/alnah/go-jd2pdf/internal/hints"
)

// ErrWriteOutput wraps failures writing a PDF or HTML file.
var ErrWriteOutput = errors.New("failed to write output file")

// RenderResult holds the outcome of a single job file.
type RenderResult struct {
	InputPath  string
	OutputPath string
	HTMLPath   string
	Pages      int
	Logo       string
	Warnings   []string // non-fatal problems, each with its hint
	Err        error
	Duration   time.Duration
}

// renderParams groups parameters shared across the batch.
type renderParams struct {
	company   *jd2pdf.Company // overrides the job file's company when set
	outputDir string
	html      bool
	proxy     bool // a logo proxy is configured
	claims    *nameClaims
	logger    *zap.Logger
}

// nameClaims hands out unique file names within one batch, so two jobs
// with the same title do not overwrite each other.
type nameClaims struct {
	mu   sync.Mutex
	used map[string]int
}

func newNameClaims() *nameClaims {
	return &nameClaims{used: make(map[string]int)}
}

// claim returns name, or name with a _2, _3... counter before ".pdf".
func (c *nameClaims) claim(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.used[name]++
	n := c.used[name]
	if n == 1 {
		return name
	}
	base := strings.TrimSuffix(name, ".pdf")
	return base + "_" + strconv.Itoa(n) + ".pdf"
}

// runRenderCmd parses flags, renders every job file and returns the exit code.
func runRenderCmd(args []string, env *Environment) int {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		if isHelpErr(err) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runRender(ctx, positional, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runRender orchestrates a render batch.
func runRender(ctx context.Context, paths []string, flags *renderFlags, env *Environment) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: pass one or more job JSON files, or - for stdin", ErrNoInput)
	}
	if err := validateStdinUse(paths); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeRenderFlags(flags, cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg, env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	params := &renderParams{
		outputDir: cfg.Output.DefaultDir,
		html:      cfg.Output.HTML,
		proxy:     cfg.Logo.ProxyURL != "",
		claims:    newNameClaims(),
		logger:    logger,
	}
	if params.outputDir == "" {
		params.outputDir = "."
	}
	if flags.company != "" {
		if params.company, err = readCompanyFile(flags.company); err != nil {
			return err
		}
	}

	size := min(jd2pdf.ResolvePoolSize(cfg.Workers), len(paths))
	logger.Debug("starting render", zap.Int("jobs", len(paths)), zap.Int("workers", size))

	pool := env.NewPool(size, generatorOptions(cfg, logger, env.Now)...)
	defer func() { _ = pool.Close() }()

	results := renderBatch(ctx, pool, paths, params, env)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return nil
	}

	first := firstError(results)
	if len(results) == 1 {
		return first
	}
	return fmt.Errorf("%d of %d job files failed: %w", failed, len(results), first)
}

// validateStdinUse allows "-" once.
func validateStdinUse(paths []string) error {
	n := 0
	for _, p := range paths {
		if p == stdinPath {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("%w: stdin (-) can be read only once", ErrNoInput)
	}
	return nil
}

// renderBatch processes job files concurrently using the pool.
func renderBatch(ctx context.Context, pool Pool, paths []string, params *renderParams, env *Environment) []RenderResult {
	if len(paths) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(paths))
	results := make([]RenderResult, len(paths))
	var wg sync.WaitGroup
	jobs := make(chan int, len(paths))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := pool.Acquire(ctx)
			if err != nil {
				// Generator creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = RenderResult{InputPath: paths[idx], Err: err}
				}
				return
			}
			defer pool.Release(r)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{InputPath: paths[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, r, paths[idx], params, env)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile renders a single job file and writes its outputs.
func renderFile(ctx context.Context, r Renderer, path string, params *renderParams, env *Environment) RenderResult {
	start := time.Now()
	result := RenderResult{InputPath: path}
	done := func(err error) RenderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	in, err := readJobFile(path, env.Stdin)
	if err != nil {
		return done(err)
	}
	if params.company != nil {
		in.Company = params.company
	}

	doc, err := r.Generate(ctx, in)
	if err != nil {
		return done(err)
	}
	result.Pages = doc.Pages
	result.Logo = doc.Logo
	result.Warnings = documentWarnings(in, doc, params.proxy)

	name := params.claims.claim(doc.Filename)
	if result.OutputPath, err = fileutil.WriteOutput(params.outputDir, name, doc.PDF); err != nil {
		return done(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	if params.html {
		htmlName := strings.TrimSuffix(name, ".pdf") + ".html"
		if result.HTMLPath, err = fileutil.WriteOutput(params.outputDir, htmlName, doc.HTML); err != nil {
			return done(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
	}

	params.logger.Debug("job file rendered",
		zap.String("input", path),
		zap.String("output", result.OutputPath),
		zap.Int("pages", doc.Pages))
	return done(nil)
}

// documentWarnings reports a logo that fell back to the placeholder and
// pages whose content was clipped.
func documentWarnings(in jd2pdf.Input, doc *jd2pdf.Document, proxy bool) []string {
	var warnings []string
	if doc.Logo == jd2pdf.LogoPlaceholder && in.Company != nil && strings.TrimSpace(in.Company.Logo) != "" {
		warnings = append(warnings, "logo could not be loaded, placeholder used"+hints.ForLogoFallback(proxy))
	}
	if len(doc.Overflow) > 0 {
		warnings = append(warnings,
			fmt.Sprintf("content clipped on page %s", joinInts(doc.Overflow))+hints.ForClippedPages(doc.Overflow))
	}
	return warnings
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// ResultSummary holds the count of succeeded and failed renders.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed renders.
func countResults(results []RenderResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

func firstError(results []RenderResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// printResults outputs render results and returns the failure count.
// With a single job the caller prints the error, so it is not repeated here.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			}
			continue
		}

		if quiet {
			continue
		}

		for _, w := range r.Warnings {
			fmt.Fprintf(env.Stderr, "warning: %s: %s\n", r.InputPath, w)
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, logo: %s, %v)\n",
				r.InputPath, r.OutputPath, r.Pages, r.Logo, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.HTMLPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.HTMLPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
