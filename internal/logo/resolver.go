package logo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultAttemptTimeout bounds a single strategy attempt.
const DefaultAttemptTimeout = 10 * time.Second

// SourceInline names images that arrived already inline.
const SourceInline = "inline"

// Image is a resolved logo.
type Image struct {
	DataURL string // data:image/...;base64,...
	MIME    string
	Source  string // strategy that produced it
}

// Strategy is one way of turning a URL into inline image data.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, url string) (*Image, error)
}

// Resolver tries its strategies in order and returns the first success.
// A Resolver is safe for concurrent use.
type Resolver struct {
	strategies     []Strategy
	attemptTimeout time.Duration
	urlCheck       func(ctx context.Context, url string) error
	logger         *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAttemptTimeout bounds each strategy attempt. Panics if d <= 0.
func WithAttemptTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("logo: attempt timeout must be positive")
	}
	return func(r *Resolver) {
		r.attemptTimeout = d
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithURLCheck vets each remote URL before any strategy sees it. A URL the
// check refuses resolves to nil.
func WithURLCheck(check func(ctx context.Context, url string) error) Option {
	return func(r *Resolver) {
		r.urlCheck = check
	}
}

// NewResolver creates a Resolver over strategies, tried in the given order.
// Nil strategies are skipped.
func NewResolver(strategies []Strategy, opts ...Option) *Resolver {
	r := &Resolver{
		attemptTimeout: DefaultAttemptTimeout,
		logger:         zap.NewNop(),
	}
	for _, s := range strategies {
		if s != nil {
			r.strategies = append(r.strategies, s)
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns inline image data for url, or nil when url is empty or no
// strategy succeeds. It never fails and never panics.
func (r *Resolver) Resolve(ctx context.Context, url string) *Image {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if IsDataURL(url) {
		mediaType, _, _ := strings.Cut(strings.TrimPrefix(url, dataURLPrefix), ";")
		return &Image{DataURL: url, MIME: mediaType, Source: SourceInline}
	}
	if r.urlCheck != nil {
		if err := r.urlCheck(ctx, url); err != nil {
			r.logger.Warn("logo url refused, using placeholder",
				zap.String("url", url),
				zap.Error(err))
			return nil
		}
	}

	var errs []error
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		start := time.Now()
		img, err := r.attempt(ctx, s, url)
		if err == nil {
			r.logger.Debug("logo resolved",
				zap.String("strategy", s.Name()),
				zap.String("mime", img.MIME),
				zap.Duration("elapsed", time.Since(start)))
			return img
		}

		attemptErr := &AttemptError{Strategy: s.Name(), URL: url, Err: err}
		errs = append(errs, attemptErr)
		r.logger.Debug("logo attempt failed",
			zap.String("strategy", s.Name()),
			zap.String("url", url),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}

	r.logger.Warn("logo unresolved, using placeholder",
		zap.String("url", url),
		zap.Int("attempts", len(errs)),
		zap.Error(errors.Join(errs...)))
	return nil
}

// attempt runs one strategy in isolation: own deadline, recovered panic,
// validated result.
func (r *Resolver) attempt(ctx context.Context, s Strategy, url string) (img *Image, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrStrategyPanic, rec)
		}
	}()

	img, err = s.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	if img == nil || !IsDataURL(img.DataURL) {
		return nil, fmt.Errorf("%w: strategy returned no inline image", ErrInvalidDataURL)
	}
	if img.Source == "" {
		img.Source = s.Name()
	}
	return img, nil
}

// Strategies reports the configured strategy names in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}
