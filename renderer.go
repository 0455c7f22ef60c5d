package jd2pdf

import (
	"context"
	"fmt"
	"math"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf/internal/fileutil"
	"github.com/alnah/go-jd2pdf/internal/pipeline"
)

// DefaultRenderScale is the device pixel ratio of the capture.
const DefaultRenderScale = 1.5

// maxCaptureHeight caps runaway layouts before Chrome is asked for a
// screenshot it cannot allocate.
const maxCaptureHeight = 100 * pipeline.PageHeightPx

// capture is a full-content screenshot of laid-out markup.
type capture struct {
	PNG         []byte
	Diagnostics Diagnostics
}

// rasterizer abstracts the browser so the pipeline is testable without one.
type rasterizer interface {
	Rasterize(ctx context.Context, markup string) (*capture, error)
	Close() error
}

// Compile-time interface check.
var _ rasterizer = (*rodRenderer)(nil)

// rodRenderer lays markup out in an off-screen tab and captures it.
type rodRenderer struct {
	host       *browserHost
	stabilizer Stabilizer
	scale      float64
	logger     *zap.Logger
}

func newRodRenderer(host *browserHost, stabilizer Stabilizer, scale float64, logger *zap.Logger) *rodRenderer {
	return &rodRenderer{host: host, stabilizer: stabilizer, scale: scale, logger: logger}
}

// Rasterize opens markup in a new tab, stabilizes the layout and captures
// the whole document at the configured scale. The tab and the temp file are
// released on every exit path.
func (r *rodRenderer) Rasterize(ctx context.Context, markup string) (*capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(markup, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer cleanup()

	page, release, err := r.host.page(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	viewport := proto.EmulationSetDeviceMetricsOverride{
		Width:             pipeline.PageWidthPx,
		Height:            pipeline.PageHeightPx,
		DeviceScaleFactor: 1,
	}
	if err := viewport.Call(page); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	if err := page.Navigate("file://" + path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	diag := r.stabilizer.Stabilize(ctx, pageTarget{page: page})

	// Check context after stabilizing
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	height := diag.ScrollHeight
	if height <= 0 {
		height, err = r.measure(page)
		if err != nil {
			return nil, fmt.Errorf("%w: measuring document: %v", ErrCapture, err)
		}
	}
	height = min(height, maxCaptureHeight)

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  pipeline.PageWidthPx,
			Height: float64(height),
			Scale:  r.scale,
		},
		FromSurface:           true,
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	r.logger.Debug("document captured",
		zap.Int("css_height", height),
		zap.Float64("scale", r.scale),
		zap.Int("png_bytes", len(png)))
	return &capture{PNG: png, Diagnostics: diag}, nil
}

// measure reads the document height when diagnostics are unavailable.
func (r *rodRenderer) measure(page pageEvaler) (int, error) {
	obj, err := page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return 0, err
	}
	h := int(math.Ceil(obj.Value.Num()))
	if h <= 0 {
		return 0, fmt.Errorf("document has no height")
	}
	return h, nil
}

// pageEvaler is the slice of *rod.Page that measure needs.
type pageEvaler interface {
	Eval(js string, args ...any) (*proto.RuntimeRemoteObject, error)
}

// Close releases the browser.
func (r *rodRenderer) Close() error {
	return r.host.Close()
}
