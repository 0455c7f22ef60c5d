package jd2pdf

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Stabilizer defaults.
const (
	DefaultReflowPasses = 3
	DefaultSettleDelay  = time.Second
)

// LayoutTarget evaluates a JavaScript function in the off-screen document
// and returns its JSON encoded result.
type LayoutTarget interface {
	Eval(ctx context.Context, js string, args ...any) (json.RawMessage, error)
}

// Diagnostics describe the document after stabilization.
type Diagnostics struct {
	TextElements  int      `json:"textElements"`
	ScrollHeight  int      `json:"scrollHeight"`
	Pages         int      `json:"pages"`
	OverflowPages []int    `json:"overflowPages"` // 1-based pages whose content is clipped
	Degraded      []string `json:"-"`             // steps that failed and were skipped
}

// Stabilizer gives the layout engine time to finish before capture. It must
// never fail: a step that cannot run is skipped and reported.
type Stabilizer interface {
	Stabilize(ctx context.Context, target LayoutTarget) Diagnostics
}

// Compile-time interface checks.
var (
	_ Stabilizer = (*LayoutStabilizer)(nil)
	_ Stabilizer = NopStabilizer{}
)

const (
	jsFontsReady = `() => document.fonts && document.fonts.ready
		? document.fonts.ready.then(() => true)
		: false`

	// Reading offsetHeight forces a synchronous reflow; the frame callback
	// lets the engine paint before the next pass. The timer covers hidden
	// tabs where animation frames are throttled.
	jsReflow = `() => new Promise((resolve) => {
		void document.body.offsetHeight;
		const done = () => resolve(document.documentElement.scrollHeight);
		if (window.requestAnimationFrame) {
			requestAnimationFrame(done);
		}
		setTimeout(done, 100);
	})`

	jsTwoFrames = `() => new Promise((resolve) => {
		const done = () => resolve(true);
		if (!window.requestAnimationFrame) {
			setTimeout(done, 32);
			return;
		}
		requestAnimationFrame(() => requestAnimationFrame(done));
		setTimeout(done, 200);
	})`

	jsDiagnostics = `() => ({
		textElements: Array.from(document.querySelectorAll('h1,h2,h3,p,li,dt,dd,span'))
			.filter((el) => el.textContent.trim() !== '').length,
		scrollHeight: Math.ceil(Math.max(
			document.documentElement.scrollHeight,
			document.body ? document.body.scrollHeight : 0)),
		pages: document.querySelectorAll('div.page').length,
		overflowPages: Array.from(document.querySelectorAll('div.page'))
			.map((el, i) => (el.scrollHeight > el.clientHeight + 1 ? i + 1 : 0))
			.filter((n) => n > 0),
	})`
)

// LayoutStabilizer awaits fonts, forces reflows interleaved with frame
// yields, waits a settle delay and collects diagnostics.
type LayoutStabilizer struct {
	passes int
	settle time.Duration
	logger *zap.Logger
}

// StabilizerOption configures a LayoutStabilizer.
type StabilizerOption func(*LayoutStabilizer)

// WithReflowPasses sets the number of forced reflows. Panics if n < 1.
func WithReflowPasses(n int) StabilizerOption {
	if n < 1 {
		panic("jd2pdf: reflow passes must be at least 1")
	}
	return func(s *LayoutStabilizer) {
		s.passes = n
	}
}

// WithSettleDelay sets the fixed wait after the frame yields. Zero disables
// it. Panics if d < 0.
func WithSettleDelay(d time.Duration) StabilizerOption {
	if d < 0 {
		panic("jd2pdf: settle delay must not be negative")
	}
	return func(s *LayoutStabilizer) {
		s.settle = d
	}
}

// WithStabilizerLogger sets the diagnostics logger.
func WithStabilizerLogger(l *zap.Logger) StabilizerOption {
	return func(s *LayoutStabilizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewLayoutStabilizer returns a stabilizer with 3 reflow passes and a one
// second settle delay unless overridden.
func NewLayoutStabilizer(opts ...StabilizerOption) *LayoutStabilizer {
	s := &LayoutStabilizer{
		passes: DefaultReflowPasses,
		settle: DefaultSettleDelay,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stabilize runs every step in order. Failures degrade to a skipped step.
func (s *LayoutStabilizer) Stabilize(ctx context.Context, target LayoutTarget) Diagnostics {
	var diag Diagnostics
	start := time.Now()

	step := func(name, js string) json.RawMessage {
		if ctx.Err() != nil {
			diag.Degraded = append(diag.Degraded, name)
			return nil
		}
		out, err := target.Eval(ctx, js)
		if err != nil {
			diag.Degraded = append(diag.Degraded, name)
			s.logger.Debug("stabilizer step skipped", zap.String("step", name), zap.Error(err))
			return nil
		}
		return out
	}

	step("fonts", jsFontsReady)
	for range s.passes {
		step("reflow", jsReflow)
	}
	step("frames", jsTwoFrames)

	if s.settle > 0 {
		timer := time.NewTimer(s.settle)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			diag.Degraded = append(diag.Degraded, "settle")
		}
	}

	if out := step("diagnostics", jsDiagnostics); out != nil {
		if err := json.Unmarshal(out, &diag); err != nil {
			diag.Degraded = append(diag.Degraded, "diagnostics")
			s.logger.Debug("unreadable layout diagnostics", zap.Error(err))
		}
	}

	s.logger.Debug("layout stabilized",
		zap.Int("text_elements", diag.TextElements),
		zap.Int("scroll_height", diag.ScrollHeight),
		zap.Int("pages", diag.Pages),
		zap.Ints("overflow_pages", diag.OverflowPages),
		zap.Strings("degraded", diag.Degraded),
		zap.Duration("elapsed", time.Since(start)))
	return diag
}

// NopStabilizer skips stabilization and reports nothing.
type NopStabilizer struct{}

// Stabilize returns empty Diagnostics.
func (NopStabilizer) Stabilize(context.Context, LayoutTarget) Diagnostics {
	return Diagnostics{}
}
