package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/config"
	"github.com/alnah/go-jd2pdf/internal/logging"
)

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config, env *Environment) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: env.Stderr,
	})
}

// generatorOptions maps a validated config to Generator options. Zero
// values keep the library defaults.
func generatorOptions(cfg *config.Config, logger *zap.Logger, now func() time.Time) []jd2pdf.Option {
	r := cfg.Render
	opts := []jd2pdf.Option{
		jd2pdf.WithLogger(logger),
		jd2pdf.WithClock(now),
	}

	if r.Timeout > 0 {
		opts = append(opts, jd2pdf.WithTimeout(r.Timeout))
	}
	if r.Scale > 0 {
		opts = append(opts, jd2pdf.WithRenderScale(r.Scale))
	}
	if r.JPEGQuality > 0 {
		opts = append(opts, jd2pdf.WithJPEGQuality(r.JPEGQuality))
	}
	if r.DateFormat != "" {
		opts = append(opts, jd2pdf.WithDateFormat(r.DateFormat))
	}
	if r.Currency != "" {
		opts = append(opts, jd2pdf.WithCurrency(r.Currency))
	}
	if r.Style != "" {
		opts = append(opts, jd2pdf.WithStyle(r.Style))
	}
	if r.TemplateSet != "" {
		opts = append(opts, jd2pdf.WithTemplateSet(r.TemplateSet))
	}

	stabOpts := []jd2pdf.StabilizerOption{
		jd2pdf.WithSettleDelay(r.SettleDelay),
		jd2pdf.WithStabilizerLogger(logger.Named("stabilizer")),
	}
	if r.ReflowPasses > 0 {
		stabOpts = append(stabOpts, jd2pdf.WithReflowPasses(r.ReflowPasses))
	}
	opts = append(opts, jd2pdf.WithStabilizer(jd2pdf.NewLayoutStabilizer(stabOpts...)))

	if cfg.Logo.ProxyURL != "" {
		opts = append(opts, jd2pdf.WithProxy(cfg.Logo.ProxyURL, cfg.Logo.ProxyToken))
	}
	if cfg.Logo.AttemptTimeout > 0 {
		opts = append(opts, jd2pdf.WithLogoTimeout(cfg.Logo.AttemptTimeout))
	}

	if len(cfg.Fallback.Perks) > 0 {
		opts = append(opts, jd2pdf.WithFallbackPerks(cfg.Fallback.Perks))
	}
	if len(cfg.Fallback.Eligibility) > 0 {
		opts = append(opts, jd2pdf.WithFallbackEligibility(cfg.Fallback.Eligibility))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, jd2pdf.WithAssetPath(cfg.Assets.BasePath))
	}

	return opts
}
