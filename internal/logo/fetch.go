package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultMaxBytes caps a downloaded logo.
const DefaultMaxBytes int64 = 5 << 20

// Credentials are attached to the first fetch attempt only.
type Credentials struct {
	Header  http.Header
	Cookies []*http.Cookie
}

// FetchStrategy downloads the image directly. The first request carries
// Credentials; on failure it retries exactly once without them.
type FetchStrategy struct {
	Client      *http.Client // nil uses a default client
	Credentials Credentials
	MaxBytes    int64        // <= 0 uses DefaultMaxBytes
	Limiter     *HostLimiter // optional
	UserAgent   string
}

// Name implements Strategy.
func (f *FetchStrategy) Name() string { return "fetch" }

// Resolve implements Strategy.
func (f *FetchStrategy) Resolve(ctx context.Context, rawURL string) (*Image, error) {
	if err := checkFetchable(rawURL); err != nil {
		return nil, err
	}

	img, err := f.fetch(ctx, rawURL, true)
	if err == nil {
		return img, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	img, retryErr := f.fetch(ctx, rawURL, false)
	if retryErr != nil {
		return nil, errors.Join(err, fmt.Errorf("retry without credentials: %w", retryErr))
	}
	return img, nil
}

// Fetch downloads rawURL without credentials and without the retry. The
// proxy endpoint uses it server-side.
func (f *FetchStrategy) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	if err := checkFetchable(rawURL); err != nil {
		return nil, err
	}
	return f.fetch(ctx, rawURL, false)
}

func (f *FetchStrategy) fetch(ctx context.Context, rawURL string, withCredentials bool) (*Image, error) {
	if f.Limiter != nil {
		if err := f.Limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	req.Header.Set("Accept", "image/*")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if withCredentials {
		for k, vs := range f.Credentials.Header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		for _, c := range f.Credentials.Cookies {
			req.AddCookie(c)
		}
	}

	resp, err := f.client().Do(req) // #nosec G107 -- URL scheme checked
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	body, err := readCapped(resp.Body, f.maxBytes())
	if err != nil {
		return nil, err
	}

	dataURL, mediaType, err := EncodeDataURL(body)
	if err != nil {
		return nil, err
	}
	return &Image{DataURL: dataURL, MIME: mediaType, Source: f.Name()}, nil
}

func (f *FetchStrategy) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *FetchStrategy) maxBytes() int64 {
	if f.MaxBytes > 0 {
		return f.MaxBytes
	}
	return DefaultMaxBytes
}

// readCapped reads at most limit bytes and fails if more are available.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}

// checkFetchable accepts absolute http(s) URLs only.
func checkFetchable(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrUnsupportedURL)
	}
	return nil
}

// Compile-time interface check.
var _ Strategy = (*FetchStrategy)(nil)
