package logo

import (
	"context"
	"fmt"
)

// ElementLoader loads a URL through an image element with anonymous
// cross-origin mode, draws it on a canvas and returns the canvas data URL.
// A tainted canvas must surface as an error.
type ElementLoader interface {
	LoadImage(ctx context.Context, url string) (string, error)
}

// ElementStrategy is the last resort: most prone to tainted-canvas errors.
type ElementStrategy struct {
	Loader ElementLoader
}

// Name implements Strategy.
func (e *ElementStrategy) Name() string { return "element" }

// Resolve implements Strategy.
func (e *ElementStrategy) Resolve(ctx context.Context, url string) (*Image, error) {
	if e.Loader == nil {
		return nil, ErrNoLoader
	}
	if err := checkFetchable(url); err != nil {
		return nil, err
	}

	dataURL, err := e.Loader.LoadImage(ctx, url)
	if err != nil {
		return nil, err
	}
	_, mediaType, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("canvas export: %w", err)
	}
	return &Image{DataURL: dataURL, MIME: mediaType, Source: e.Name()}, nil
}

// Compile-time interface check.
var _ Strategy = (*ElementStrategy)(nil)
