package jd2pdf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf/internal/logo"
	"github.com/alnah/go-jd2pdf/internal/process"
)

// browserHost owns one headless Chrome, launched on first use and shared by
// every tab a Generator opens. It is safe for concurrent use.
type browserHost struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
	urlCheck func(ctx context.Context, url string) error
	logger   *zap.Logger
}

func newBrowserHost(logger *zap.Logger, urlCheck func(ctx context.Context, url string) error) *browserHost {
	return &browserHost{logger: logger, urlCheck: urlCheck}
}

// get lazily launches and connects to the browser.
func (h *browserHost) get() (*rod.Browser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, fmt.Errorf("%w: generator closed", ErrBrowserConnect)
	}
	if h.browser != nil {
		return h.browser, nil
	}

	l := launcher.New().Headless(true)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	h.browser, h.launcher = browser, l
	h.logger.Debug("browser launched", zap.Int("pid", l.PID()))
	return browser, nil
}

// page opens a blank off-screen tab bound to ctx. The returned release
// closes the tab and must be called once the caller is done with it.
func (h *browserHost) page(ctx context.Context) (*rod.Page, func(), error) {
	browser, err := h.get()
	if err != nil {
		return nil, nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	page = page.Context(ctx)

	if h.urlCheck == nil {
		return page, func() { closePage(page) }, nil
	}
	router, err := h.guard(ctx, page)
	if err != nil {
		closePage(page)
		return nil, nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	return page, func() {
		_ = router.Stop()
		closePage(page)
	}, nil
}

// guard intercepts every request the tab makes and fails the remote ones
// urlCheck refuses, redirect hops included. Local files and inline data
// pass through.
func (h *browserHost) guard(ctx context.Context, page *rod.Page) (*rod.HijackRouter, error) {
	router := page.HijackRequests()
	err := router.Add("*", "", func(hj *rod.Hijack) {
		u := hj.Request.URL()
		if u != nil && (u.Scheme == "http" || u.Scheme == "https") {
			if err := h.urlCheck(ctx, u.String()); err != nil {
				h.logger.Warn("browser request blocked",
					zap.String("url", u.String()),
					zap.Error(err))
				hj.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		hj.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}
	go router.Run()
	return router, nil
}

// Close shuts the browser down and kills its process group. Later calls to
// get fail.
func (h *browserHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.browser == nil {
		return nil
	}

	err := h.browser.Close()
	process.KillProcessGroup(h.launcher.PID())
	h.launcher.Kill()

	h.browser, h.launcher = nil, nil
	return err
}

// closePage releases a tab with a fresh context so cleanup still runs after
// the caller's context is done.
func closePage(page *rod.Page) {
	if page == nil {
		return
	}
	_ = page.Context(context.Background()).Close()
}

// pageTarget adapts a rod page to LayoutTarget.
type pageTarget struct {
	page *rod.Page
}

// Eval runs js with args and returns the result as JSON.
func (p pageTarget) Eval(ctx context.Context, js string, args ...any) (json.RawMessage, error) {
	obj, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, err
	}
	return obj.Value.MarshalJSON()
}

// jsLoadImage draws a cross-origin image on a canvas and exports it. It
// fails when the host does not send CORS headers (tainted canvas).
const jsLoadImage = `(url) => new Promise((resolve, reject) => {
	const img = new Image();
	img.crossOrigin = 'anonymous';
	img.onload = () => {
		try {
			const canvas = document.createElement('canvas');
			canvas.width = img.naturalWidth;
			canvas.height = img.naturalHeight;
			canvas.getContext('2d').drawImage(img, 0, 0);
			resolve(canvas.toDataURL('image/png'));
		} catch (e) {
			reject(e);
		}
	};
	img.onerror = () => reject(new Error('image failed to load'));
	img.src = url;
})`

// elementLoader loads logos through a browser image element, the last
// resolution strategy.
type elementLoader struct {
	host *browserHost
}

var _ logo.ElementLoader = elementLoader{}

// LoadImage implements logo.ElementLoader.
func (e elementLoader) LoadImage(ctx context.Context, url string) (string, error) {
	page, release, err := e.host.page(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	obj, err := page.Eval(jsLoadImage, url)
	if err != nil {
		return "", err
	}
	dataURL := obj.Value.Str()
	if dataURL == "" {
		return "", errors.New("canvas export returned nothing")
	}
	return dataURL, nil
}
