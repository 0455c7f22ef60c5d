package logo

import (
	"context"
	"errors"
	"testing"
)

type fakeLoader struct {
	dataURL string
	err     error
	gotURL  string
}

func (f *fakeLoader) LoadImage(_ context.Context, url string) (string, error) {
	f.gotURL = url
	return f.dataURL, f.err
}

func TestElementStrategy(t *testing.T) {
	t.Parallel()

	errTainted := errors.New("SecurityError: tainted canvas")

	tests := []struct {
		name    string
		loader  ElementLoader
		wantErr error
	}{
		{"success", &fakeLoader{dataURL: testDataURL}, nil},
		{"tainted canvas", &fakeLoader{err: errTainted}, errTainted},
		{"blank canvas export", &fakeLoader{dataURL: "data:,"}, ErrInvalidDataURL},
		{"no loader", nil, ErrNoLoader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &ElementStrategy{Loader: tt.loader}
			img, err := s.Resolve(context.Background(), "https://cdn.test/logo.png")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if img.Source != "element" || img.MIME != "image/png" {
				t.Errorf("Resolve() = %+v", img)
			}
		})
	}
}
