package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/config"
	"github.com/alnah/go-jd2pdf/internal/hostguard"
	"github.com/alnah/go-jd2pdf/internal/logo"
	"github.com/alnah/go-jd2pdf/internal/server"
)

// runServeCmd starts the HTTP API and returns the exit code once it stops.
func runServeCmd(args []string, env *Environment) int {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		if isHelpErr(err) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runServe(ctx, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func runServe(ctx context.Context, flags *serveFlags, env *Environment) error {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeServeFlags(flags, cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg, env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	policy, images := newServeFetcher(cfg)
	opts := append(generatorOptions(cfg, logger, env.Now),
		jd2pdf.WithFetchClient(images.Client),
		jd2pdf.WithURLGuard(policy.Check))

	size := jd2pdf.ResolvePoolSize(cfg.Workers)
	pool := env.NewPool(size, opts...)
	defer func() { _ = pool.Close() }()

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		AllowedHosts:    cfg.Server.AllowedHosts,
		RatePerHost:     cfg.Server.RatePerHost,
		Burst:           cfg.Server.Burst,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, &pooledRenderer{pool: pool}, images, logger.Named("http"))

	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("workers", size),
		zap.String("version", Version))
	return srv.Run(ctx)
}

// newServeFetcher builds the host policy and the guarded fetcher shared by
// the proxy endpoint and the generators behind the server. Callers reach
// only hosts the policy allows, redirects and resolved addresses included.
func newServeFetcher(cfg *config.Config) (*hostguard.Policy, *logo.FetchStrategy) {
	policy := hostguard.New(cfg.Server.AllowedHosts)
	return policy, &logo.FetchStrategy{
		Client:    hostguard.NewClient(policy, cfg.Logo.AttemptTimeout),
		UserAgent: "go-jd2pdf/" + Version,
	}
}
