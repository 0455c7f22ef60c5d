package logo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestProxyStrategy_Success(t *testing.T) {
	t.Parallel()

	var (
		mu              sync.Mutex
		gotURL, gotAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ProxyPath {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		gotURL = r.URL.Query().Get("url")
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ProxyResponse{DataURL: testDataURL})
	}))
	defer srv.Close()

	p := &ProxyStrategy{BaseURL: srv.URL + "/", Token: "secret", Client: srv.Client()}
	img, err := p.Resolve(context.Background(), "https://cdn.test/logo.png?v=2&x=1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if img.DataURL != testDataURL || img.MIME != "image/png" || img.Source != "proxy" {
		t.Errorf("Resolve() = %+v", img)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotURL != "https://cdn.test/logo.png?v=2&x=1" {
		t.Errorf("proxy received url = %q", gotURL)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestProxyStrategy_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"data_url":"` + testDataURL + `"}`, ErrUpstreamStatus},
		{"not found", http.StatusNotFound, ``, ErrUpstreamStatus},
		{"malformed json", http.StatusOK, `{"data_url":`, ErrProxyPayload},
		{"missing field", http.StatusOK, `{"url":"x"}`, ErrProxyPayload},
		{"not a data URL", http.StatusOK, `{"data_url":"https://cdn.test/logo.png"}`, ErrInvalidDataURL},
		{"bad base64", http.StatusOK, `{"data_url":"data:image/png;base64,@@@"}`, ErrInvalidDataURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := &ProxyStrategy{BaseURL: srv.URL, Client: srv.Client()}
			_, err := p.Resolve(context.Background(), "https://cdn.test/logo.png")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProxyStrategy_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := (&ProxyStrategy{}).Resolve(context.Background(), "https://cdn.test/logo.png")
	if !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedURL", err)
	}
}
