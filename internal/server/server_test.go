package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/hostguard"
	"github.com/alnah/go-jd2pdf/internal/logo"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	last  jd2pdf.Input
	doc   *jd2pdf.Document
	err   error
	block chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, in jd2pdf.Input) (*jd2pdf.Document, error) {
	f.mu.Lock()
	f.calls++
	f.last = in
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return f.doc, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	img   *logo.Image
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*logo.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const pngDataURL = "data:image/png;base64,iVBORw0KGgo="

func newTestServer(cfg Config, gen DocumentGenerator, images ImageFetcher) *Server {
	if gen == nil {
		gen = &fakeGenerator{}
	}
	if images == nil {
		images = &fakeFetcher{img: &logo.Image{DataURL: pngDataURL, MIME: "image/png", Source: "fetch"}}
	}
	return New(cfg, gen, images, nil)
}

func decodeAPIError(t *testing.T, body io.Reader) APIError {
	t.Helper()
	var e APIError
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return e
}

// ---------------------------------------------------------------------------
// Proxy image
// ---------------------------------------------------------------------------

func TestHandleProxyImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        Config
		query      string
		fetchErr   error
		wantStatus int
		wantCode   string
		wantFetch  bool
	}{
		{
			name:       "success",
			query:      "?url=https://cdn.example.com/logo.png",
			wantStatus: http.StatusOK,
			wantFetch:  true,
		},
		{
			name:       "missing url",
			query:      "",
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_url",
		},
		{
			name:       "relative url",
			query:      "?url=/logo.png",
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_url",
		},
		{
			name:       "ftp scheme",
			query:      "?url=ftp://cdn.example.com/logo.png",
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_url",
		},
		{
			name:       "loopback refused without allow-list",
			query:      "?url=http://127.0.0.1/logo.png",
			wantStatus: http.StatusForbidden,
			wantCode:   "host_not_allowed",
		},
		{
			name:       "host outside allow-list",
			cfg:        Config{AllowedHosts: []string{"cdn.example.com"}},
			query:      "?url=https://evil.example.net/logo.png",
			wantStatus: http.StatusForbidden,
			wantCode:   "host_not_allowed",
		},
		{
			name:       "subdomain wildcard",
			cfg:        Config{AllowedHosts: []string{"*.example.com"}},
			query:      "?url=https://img.cdn.example.com/logo.png",
			wantStatus: http.StatusOK,
			wantFetch:  true,
		},
		{
			name:       "upstream failure",
			query:      "?url=https://cdn.example.com/logo.png",
			fetchErr:   fmt.Errorf("%w: 404 Not Found", logo.ErrUpstreamStatus),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_failed",
			wantFetch:  true,
		},
		{
			name:       "payload not an image",
			query:      "?url=https://cdn.example.com/logo.png",
			fetchErr:   logo.ErrNotImage,
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_failed",
			wantFetch:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetcher := &fakeFetcher{
				img: &logo.Image{DataURL: pngDataURL, MIME: "image/png", Source: "fetch"},
				err: tt.fetchErr,
			}
			srv := newTestServer(tt.cfg, nil, fetcher)

			req := httptest.NewRequest(http.MethodGet, PathProxyImage+tt.query, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if got := fetcher.count() > 0; got != tt.wantFetch {
				t.Errorf("fetch called = %v, want %v", got, tt.wantFetch)
			}

			if tt.wantCode != "" {
				e := decodeAPIError(t, rec.Body)
				if e.Error.Code != tt.wantCode {
					t.Errorf("error code = %q, want %q", e.Error.Code, tt.wantCode)
				}
				if e.Error.RequestID == "" {
					t.Error("error body missing request_id")
				}
				return
			}

			var resp logo.ProxyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if resp.DataURL != pngDataURL {
				t.Errorf("data_url = %q, want %q", resp.DataURL, pngDataURL)
			}
		})
	}
}

func TestHandleProxyImage_RateLimited(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{img: &logo.Image{DataURL: pngDataURL}}
	srv := newTestServer(Config{RatePerHost: 0.001, Burst: 1}, nil, fetcher)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, PathProxyImage+"?url=https://cdn.example.com/a.png", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
	if fetcher.count() != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.count())
	}
}

// The proxy strategy is the client of this endpoint.
func TestProxyStrategyAgainstServer(t *testing.T) {
	t.Parallel()

	srv := newTestServer(Config{}, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	strategy := &logo.ProxyStrategy{BaseURL: ts.URL, Client: ts.Client()}
	img, err := strategy.Resolve(context.Background(), "https://cdn.example.com/logo.png")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if img.DataURL != pngDataURL {
		t.Errorf("DataURL = %q, want %q", img.DataURL, pngDataURL)
	}
	if img.Source != "proxy" {
		t.Errorf("Source = %q, want proxy", img.Source)
	}
}

// An allowed upstream that redirects inward must not reach the inner host.
func TestHandleProxyImage_RedirectToInternalHost(t *testing.T) {
	t.Parallel()

	var secretHits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		secretHits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	}))
	defer internal.Close()

	_, port, _ := strings.Cut(strings.TrimPrefix(internal.URL, "http://"), ":")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://localhost:"+port+"/secret.png", http.StatusFound)
	}))
	defer upstream.Close()

	cfg := Config{AllowedHosts: []string{"127.0.0.1"}}
	fetcher := &logo.FetchStrategy{
		Client: hostguard.NewClient(hostguard.New(cfg.AllowedHosts), 5*time.Second),
	}
	srv := newTestServer(cfg, nil, fetcher)

	req := httptest.NewRequest(http.MethodGet, PathProxyImage+"?url="+url.QueryEscape(upstream.URL+"/logo.png"), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if e := decodeAPIError(t, rec.Body); e.Error.Code != "host_not_allowed" {
		t.Errorf("code = %q, want host_not_allowed", e.Error.Code)
	}
	if n := secretHits.Load(); n != 0 {
		t.Errorf("internal server hits = %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Job PDF
// ---------------------------------------------------------------------------

const validBody = `{"job":{"title":"Backend Engineer (Remote)!!","description":"Build services."},"company":{"company_name":"Acme"}}`

func TestHandleJobPDF(t *testing.T) {
	t.Parallel()

	doc := &jd2pdf.Document{
		PDF:      []byte("%PDF-1.3 fake"),
		Filename: "backend_engineer__remote____job_description.pdf",
		Pages:    2,
	}

	tests := []struct {
		name       string
		body       string
		genErr     error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"job":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_json",
		},
		{
			name:       "missing title",
			body:       `{"job":{"description":"x"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
			wantMsg:    "job.title is required",
		},
		{
			name:       "generation failure hides detail",
			body:       validBody,
			genErr:     fmt.Errorf("%w: chrome crashed", jd2pdf.ErrBrowserConnect),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "generation_failed",
			wantMsg:    genericFailure,
		},
		{
			name:       "timeout is a generation failure",
			body:       validBody,
			genErr:     context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "generation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{doc: doc, err: tt.genErr}
			srv := newTestServer(Config{}, gen, nil)

			req := httptest.NewRequest(http.MethodPost, PathJobPDF, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body)
			}

			if tt.wantCode != "" {
				e := decodeAPIError(t, rec.Body)
				if e.Error.Code != tt.wantCode {
					t.Errorf("error code = %q, want %q", e.Error.Code, tt.wantCode)
				}
				if tt.wantMsg != "" && !strings.Contains(e.Error.Message, tt.wantMsg) {
					t.Errorf("message = %q, want it to contain %q", e.Error.Message, tt.wantMsg)
				}
				if strings.Contains(e.Error.Message, "chrome") {
					t.Errorf("message leaks internal detail: %q", e.Error.Message)
				}
				return
			}

			if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
				t.Errorf("Content-Type = %q, want application/pdf", ct)
			}
			disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
			if err != nil {
				t.Fatalf("parsing Content-Disposition: %v", err)
			}
			if disposition != "attachment" {
				t.Errorf("disposition = %q, want attachment", disposition)
			}
			if params["filename"] != doc.Filename {
				t.Errorf("filename = %q, want %q", params["filename"], doc.Filename)
			}
			if rec.Body.String() != string(doc.PDF) {
				t.Errorf("body = %q, want the PDF bytes", rec.Body.String())
			}
			if gen.last.Company == nil || gen.last.Company.Name != "Acme" {
				t.Errorf("company not decoded: %+v", gen.last.Company)
			}
		})
	}
}

func TestHandleJobPDF_BodyTooLarge(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	srv := newTestServer(Config{MaxBodyBytes: 64}, gen, nil)

	body := `{"job":{"title":"t","description":"` + strings.Repeat("x", 200) + `"}}`
	req := httptest.NewRequest(http.MethodPost, PathJobPDF, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(Config{}, nil, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, PathHealth, http.StatusOK},
		{http.MethodGet, PathJobPDF, http.StatusMethodNotAllowed},
		{http.MethodPost, PathProxyImage, http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		doc:   &jd2pdf.Document{PDF: []byte("%PDF"), Filename: "a.pdf"},
		block: make(chan struct{}),
	}
	srv := newTestServer(Config{ShutdownTimeout: 5 * time.Second}, gen, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	respCh := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+PathJobPDF, "application/json", strings.NewReader(validBody))
		if err != nil {
			respCh <- nil
			return
		}
		respCh <- resp
	}()

	// Wait for the request to reach the generator before shutting down.
	deadline := time.Now().Add(5 * time.Second)
	for {
		gen.mu.Lock()
		calls := gen.calls
		gen.mu.Unlock()
		if calls > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("request never reached the generator")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	close(gen.block)

	resp := <-respCh
	if resp == nil {
		t.Fatal("in-flight request failed during shutdown")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("in-flight status = %d, want 200", resp.StatusCode)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	t.Parallel()

	srv := newTestServer(Config{Addr: "256.0.0.1:99999"}, nil, nil)
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("Run() expected listen error")
	}
}
