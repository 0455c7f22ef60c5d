package jd2pdf

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf/internal/logo"
	"github.com/alnah/go-jd2pdf/internal/paginate"
)

// Option configures a Generator.
type Option func(*Generator)

// Defaults used when no option overrides them.
const (
	DefaultTimeout         = 90 * time.Second
	DefaultLogoTimeout     = logo.DefaultAttemptTimeout
	DefaultJPEGQuality     = paginate.DefaultJPEGQuality
	DefaultCurrency        = "INR"
	defaultLogoRatePerHost = 2
	defaultLogoBurst       = 4
)

// generatorConfig holds values that only matter while NewGenerator wires
// the pipeline.
type generatorConfig struct {
	timeout     time.Duration
	logoTimeout time.Duration
	proxyURL    string
	proxyToken  string
	credentials logo.Credentials
	httpClient  *http.Client
	fetchClient *http.Client
	urlCheck    func(ctx context.Context, url string) error
	scale       float64
	jpegQuality int
	dateFormat  string
	currency    string
	perks       []string
	eligibility []string
	assetPath   string
	style       string
	templateSet string
}

// WithTimeout bounds one Generate call, logo resolution and rendering
// included. Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("jd2pdf: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithLogoTimeout bounds each logo resolution attempt. Panics if d <= 0.
func WithLogoTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("jd2pdf: WithLogoTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.logoTimeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock sets the time source for the footer stamp and PDF metadata.
// A fixed clock makes output byte-identical for identical input.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.clock = now
		}
	}
}

// WithStabilizer replaces the default LayoutStabilizer.
func WithStabilizer(s Stabilizer) Option {
	return func(g *Generator) {
		g.stabilizer = s
	}
}

// WithLogoResolver replaces the proxy, fetch and browser strategy chain.
func WithLogoResolver(r LogoResolver) Option {
	return func(g *Generator) {
		g.logos = r
	}
}

// WithProxy enables the proxy strategy. baseURL is the API origin serving
// /api/v1/corporates/proxy-image; token is sent as a bearer credential.
func WithProxy(baseURL, token string) Option {
	return func(g *Generator) {
		g.cfg.proxyURL = strings.TrimSpace(baseURL)
		g.cfg.proxyToken = token
	}
}

// WithLogoCredentials sets the headers and cookies of the first direct
// fetch attempt. The retry is always anonymous.
func WithLogoCredentials(header http.Header, cookies []*http.Cookie) Option {
	return func(g *Generator) {
		g.cfg.credentials = logo.Credentials{Header: header, Cookies: cookies}
	}
}

// WithHTTPClient sets the client used by the proxy and fetch strategies.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Generator) {
		g.cfg.httpClient = c
	}
}

// WithFetchClient sets the client of the direct fetch strategy only,
// overriding WithHTTPClient for it. The proxy keeps its own client.
func WithFetchClient(c *http.Client) Option {
	return func(g *Generator) {
		g.cfg.fetchClient = c
	}
}

// WithURLGuard vets every remote URL the generator touches: the logo URL
// before any strategy runs, and each request a browser tab makes while
// loading an image or rendering. Refused logos fall back to the
// placeholder; refused browser requests fail.
func WithURLGuard(check func(ctx context.Context, url string) error) Option {
	return func(g *Generator) {
		g.cfg.urlCheck = check
	}
}

// WithRenderScale sets the capture pixel ratio. Panics unless 0 < s <= 4.
func WithRenderScale(s float64) Option {
	if s <= 0 || s > 4 {
		panic("jd2pdf: WithRenderScale must be in (0, 4]")
	}
	return func(g *Generator) {
		g.cfg.scale = s
	}
}

// WithJPEGQuality sets the page image quality. Panics unless 1 <= q <= 100.
func WithJPEGQuality(q int) Option {
	if q < 1 || q > 100 {
		panic("jd2pdf: WithJPEGQuality must be in [1, 100]")
	}
	return func(g *Generator) {
		g.cfg.jpegQuality = q
	}
}

// WithFallbackPerks replaces the perks shown when a job lists none.
func WithFallbackPerks(items []string) Option {
	return func(g *Generator) {
		g.cfg.perks = items
	}
}

// WithFallbackEligibility replaces the criteria shown when a job lists none.
func WithFallbackEligibility(items []string) Option {
	return func(g *Generator) {
		g.cfg.eligibility = items
	}
}

// WithDateFormat sets the display format of job dates, for example
// "DD MMM YYYY" or a preset name such as "iso".
func WithDateFormat(format string) Option {
	return func(g *Generator) {
		g.cfg.dateFormat = format
	}
}

// WithCurrency sets the currency shown when a job has salary bounds but no
// currency code.
func WithCurrency(code string) Option {
	return func(g *Generator) {
		g.cfg.currency = strings.ToUpper(strings.TrimSpace(code))
	}
}

// WithAssetPath loads templates and styles from dir, falling back to the
// embedded assets for names dir does not provide.
func WithAssetPath(dir string) Option {
	return func(g *Generator) {
		g.cfg.assetPath = dir
	}
}

// WithStyle selects a stylesheet by name.
func WithStyle(name string) Option {
	return func(g *Generator) {
		g.cfg.style = name
	}
}

// WithTemplateSet selects a template set by name.
func WithTemplateSet(name string) Option {
	return func(g *Generator) {
		g.cfg.templateSet = name
	}
}

// withRasterizer replaces the browser backend in tests.
func withRasterizer(r rasterizer) Option {
	return func(g *Generator) {
		g.raster = r
	}
}
