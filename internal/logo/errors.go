package logo

import (
	"errors"
	"fmt"
)

// Sentinel errors for logo resolution.
var (
	// ErrInvalidDataURL indicates a value is not a base64 image data URL.
	ErrInvalidDataURL = errors.New("invalid image data URL")

	// ErrNotImage indicates the fetched payload is not an image.
	ErrNotImage = errors.New("payload is not an image")

	// ErrTooLarge indicates the image exceeds the configured size cap.
	ErrTooLarge = errors.New("image exceeds size limit")

	// ErrUnsupportedURL indicates a URL that cannot be fetched (scheme, host).
	ErrUnsupportedURL = errors.New("unsupported image URL")

	// ErrUpstreamStatus indicates a non-2xx HTTP response.
	ErrUpstreamStatus = errors.New("unexpected upstream status")

	// ErrProxyPayload indicates the proxy answered with a malformed body.
	ErrProxyPayload = errors.New("malformed proxy payload")

	// ErrNoLoader indicates the element strategy has no browser to load with.
	ErrNoLoader = errors.New("no image element loader configured")

	// ErrStrategyPanic indicates a strategy panicked; the panic was recovered.
	ErrStrategyPanic = errors.New("strategy panicked")
)

// AttemptError records why one strategy failed for one URL.
type AttemptError struct {
	Strategy string
	URL      string
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("logo %s attempt for %q: %v", e.Strategy, e.URL, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}
