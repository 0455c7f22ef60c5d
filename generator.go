package jd2pdf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf/internal/assets"
	"github.com/alnah/go-jd2pdf/internal/dateutil"
	"github.com/alnah/go-jd2pdf/internal/logo"
	"github.com/alnah/go-jd2pdf/internal/paginate"
	"github.com/alnah/go-jd2pdf/internal/pipeline"
)

// pdfCreator is written into the PDF info dictionary.
const pdfCreator = "go-jd2pdf"

// LogoResolver turns a logo URL into an inline data URL. An empty dataURL
// renders the placeholder box; source names the strategy that succeeded.
// Implementations must not fail or block past ctx.
type LogoResolver interface {
	ResolveLogo(ctx context.Context, url string) (dataURL, source string)
}

// Compile-time interface checks.
var (
	_ LogoResolver           = (*chainResolver)(nil)
	_ pipeline.MarkupBuilder = (*pipeline.Builder)(nil)
)

// chainResolver adapts the strategy chain to LogoResolver.
type chainResolver struct {
	chain *logo.Resolver
}

func (c *chainResolver) ResolveLogo(ctx context.Context, url string) (string, string) {
	img := c.chain.Resolve(ctx, url)
	if img == nil {
		return "", LogoPlaceholder
	}
	return img.DataURL, img.Source
}

// Generator produces Job-Description PDFs. A Generator is safe for
// concurrent use; each call opens its own browser tab. Call Close to
// release the browser.
type Generator struct {
	cfg        generatorConfig
	logger     *zap.Logger
	clock      func() time.Time
	stabilizer Stabilizer
	logos      LogoResolver
	chain      *logo.Resolver // nil when WithLogoResolver is used
	builder    pipeline.MarkupBuilder
	pageOpts   pipeline.Options
	host       *browserHost
	raster     rasterizer
}

// NewGenerator creates a Generator. The browser starts on the first
// Generate call, not here.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			timeout:     DefaultTimeout,
			logoTimeout: DefaultLogoTimeout,
			scale:       DefaultRenderScale,
			jpegQuality: DefaultJPEGQuality,
			currency:    DefaultCurrency,
			style:       assets.DefaultStyleName,
			templateSet: assets.DefaultTemplateSetName,
		},
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.cfg.dateFormat != "" {
		if _, err := dateutil.ParseDateFormat(g.cfg.dateFormat); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
	}
	g.pageOpts = pipeline.Options{
		DateFormat:          g.cfg.dateFormat,
		DefaultCurrency:     g.cfg.currency,
		FallbackPerks:       g.cfg.perks,
		FallbackEligibility: g.cfg.eligibility,
	}

	builder, err := g.loadBuilder()
	if err != nil {
		return nil, err
	}
	g.builder = builder

	g.host = newBrowserHost(g.logger, g.cfg.urlCheck)
	if g.stabilizer == nil {
		g.stabilizer = NewLayoutStabilizer(WithStabilizerLogger(g.logger))
	}
	if g.raster == nil {
		g.raster = newRodRenderer(g.host, g.stabilizer, g.cfg.scale, g.logger)
	}
	if g.logos == nil {
		g.chain = g.newLogoChain()
		g.logos = &chainResolver{chain: g.chain}
	}
	return g, nil
}

// loadBuilder resolves the template set and stylesheet.
func (g *Generator) loadBuilder() (*pipeline.Builder, error) {
	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	if g.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(g.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		loader = resolver
	}

	css, err := loader.LoadStyle(g.cfg.style)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return nil, fmt.Errorf("%w: %q", ErrStyleNotFound, g.cfg.style)
		}
		return nil, fmt.Errorf("loading style: %w", err)
	}

	set, err := loader.LoadTemplateSet(g.cfg.templateSet)
	if err != nil {
		if errors.Is(err, assets.ErrTemplateSetNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, g.cfg.templateSet)
		}
		return nil, fmt.Errorf("loading template set: %w", err)
	}

	builder, err := pipeline.NewBuilder(set, css, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkup, err)
	}
	return builder, nil
}

// newLogoChain wires proxy (when configured), direct fetch and browser
// element loading, in that order.
func (g *Generator) newLogoChain() *logo.Resolver {
	client := g.cfg.httpClient
	if client == nil {
		client = &http.Client{}
	}

	var strategies []logo.Strategy
	if g.cfg.proxyURL != "" {
		strategies = append(strategies, &logo.ProxyStrategy{
			BaseURL: g.cfg.proxyURL,
			Token:   g.cfg.proxyToken,
			Client:  client,
		})
	}
	fetchClient := client
	if g.cfg.fetchClient != nil {
		fetchClient = g.cfg.fetchClient
	}
	strategies = append(strategies,
		&logo.FetchStrategy{
			Client:      fetchClient,
			Credentials: g.cfg.credentials,
			Limiter:     logo.NewHostLimiter(defaultLogoRatePerHost, defaultLogoBurst),
		},
		&logo.ElementStrategy{Loader: elementLoader{host: g.host}},
	)

	opts := []logo.Option{
		logo.WithAttemptTimeout(g.cfg.logoTimeout),
		logo.WithLogger(g.logger.Named("logo")),
	}
	if g.cfg.urlCheck != nil {
		opts = append(opts, logo.WithURLCheck(g.cfg.urlCheck))
	}
	return logo.NewResolver(strategies, opts...)
}

// LogoStrategies reports the logo strategy chain in order, or nil when a
// custom LogoResolver is installed.
func (g *Generator) LogoStrategies() []string {
	if g.chain == nil {
		return nil
	}
	return g.chain.Strategies()
}

// Generate renders one job description. Missing optional fields never fail
// the call; failures come from validation, the browser or PDF assembly.
func (g *Generator) Generate(ctx context.Context, in Input) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: unexpected panic: %v", ErrGeneration, r)
		}
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.timeout)
	defer cancel()

	start := time.Now()
	now := g.clock()
	log := g.logger.With(zap.String("title", in.Job.Title))

	dataURL, source := g.logos.ResolveLogo(ctx, in.Company.logoURL())
	if dataURL == "" {
		source = LogoPlaceholder
	}

	data := pipeline.NewPageData(in.Job.toPipeline(), in.Company.toPipeline(), dataURL, now, g.pageOpts)
	markup, err := g.builder.Build(ctx, data)
	if err != nil {
		return nil, wrapStage(ErrMarkup, err)
	}

	stats, err := pipeline.Inspect(markup)
	if err != nil {
		log.Warn("markup inspection failed", zap.Error(err))
	}

	shot, err := g.raster.Rasterize(ctx, markup)
	if err != nil {
		return nil, err
	}

	if overflow := shot.Diagnostics.OverflowPages; len(overflow) > 0 {
		log.Warn("page content overflows its page and is clipped",
			zap.Ints("pages", overflow))
	}

	pages := stats.Pages
	if shot.Diagnostics.Pages > 0 {
		pages = shot.Diagnostics.Pages
	}
	raster, err := paginate.FromPNG(shot.PNG, g.cfg.jpegQuality, pages)
	if err != nil {
		return nil, wrapStage(ErrRasterize, err)
	}

	res, err := paginate.Assemble(raster, paginate.Meta{
		Title:   strings.TrimSpace(in.Job.Title),
		Author:  data.Company.Name,
		Subject: "Job Description",
		Creator: pdfCreator,
		Created: now,
	})
	if err != nil {
		return nil, wrapStage(ErrPDFAssembly, err)
	}

	log.Info("document generated",
		zap.Int("pages", res.Pages),
		zap.Int("layout_pages", stats.Pages),
		zap.Int("skill_columns", stats.SkillColumns),
		zap.String("logo", source),
		zap.Int("pdf_bytes", len(res.PDF)),
		zap.Duration("elapsed", time.Since(start)))

	return &Document{
		PDF:      res.PDF,
		HTML:     []byte(markup),
		Filename: SuggestedFilename(in.Job.Title),
		Pages:    res.Pages,
		Logo:     source,
		Overflow: shot.Diagnostics.OverflowPages,
	}, nil
}

// TryGenerate is Generate for callers that only need a success flag, such
// as a download button. The error is logged.
func (g *Generator) TryGenerate(ctx context.Context, in Input) (*Document, bool) {
	doc, err := g.Generate(ctx, in)
	if err != nil {
		g.logger.Error("document generation failed",
			zap.String("title", in.Job.Title),
			zap.Error(err))
		return nil, false
	}
	return doc, true
}

// Close releases the browser. The Generator must not be used afterwards.
func (g *Generator) Close() error {
	return errors.Join(g.raster.Close(), g.host.Close())
}

// wrapStage tags err with the failing stage, leaving context errors
// untouched so callers can still match them.
func wrapStage(stage, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", stage, err)
}
