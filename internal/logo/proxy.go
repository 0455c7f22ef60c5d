package logo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ProxyPath is the backend endpoint that fetches images server-side.
const ProxyPath = "/api/v1/corporates/proxy-image"

// ProxyResponse is the proxy endpoint's JSON body.
type ProxyResponse struct {
	DataURL string `json:"data_url"`
}

// ProxyStrategy asks the backend proxy for the image. Any non-2xx response
// or malformed payload is a failure.
type ProxyStrategy struct {
	BaseURL  string       // e.g. https://api.example.com
	Token    string       // bearer token, optional
	Client   *http.Client // nil uses a default client
	MaxBytes int64        // cap on the JSON body; <= 0 derives from DefaultMaxBytes
}

// Name implements Strategy.
func (p *ProxyStrategy) Name() string { return "proxy" }

// Resolve implements Strategy.
func (p *ProxyStrategy) Resolve(ctx context.Context, imageURL string) (*Image, error) {
	endpoint, err := p.endpoint(imageURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	body, err := readCapped(resp.Body, p.maxBytes())
	if err != nil {
		return nil, err
	}

	var payload ProxyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyPayload, err)
	}
	if payload.DataURL == "" {
		return nil, fmt.Errorf("%w: missing data_url", ErrProxyPayload)
	}

	_, mediaType, err := DecodeDataURL(payload.DataURL)
	if err != nil {
		return nil, err
	}
	return &Image{DataURL: strings.TrimSpace(payload.DataURL), MIME: mediaType, Source: p.Name()}, nil
}

func (p *ProxyStrategy) endpoint(imageURL string) (string, error) {
	if strings.TrimSpace(p.BaseURL) == "" {
		return "", fmt.Errorf("%w: proxy base URL not configured", ErrUnsupportedURL)
	}
	base, err := url.Parse(strings.TrimRight(p.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	base.Path += ProxyPath
	base.RawQuery = url.Values{"url": {imageURL}}.Encode()
	return base.String(), nil
}

// The JSON body inflates base64 by a third again, plus envelope.
func (p *ProxyStrategy) maxBytes() int64 {
	if p.MaxBytes > 0 {
		return p.MaxBytes
	}
	return DefaultMaxBytes*2 + 1024
}

// Compile-time interface check.
var _ Strategy = (*ProxyStrategy)(nil)
