//go:build integration

package jd2pdf

// Notes:
// - Needs a Chrome binary (ROD_BROWSER_BIN) or network access for rod to
//   download one on first run.
// - One pool is shared by every test and closed in TestMain.

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

var testPool *GeneratorPool

func TestMain(m *testing.M) {
	testPool = NewGeneratorPool(min(ResolvePoolSize(0), 4),
		WithClock(fixedClock),
		WithStabilizer(NewLayoutStabilizer(WithSettleDelay(100*time.Millisecond))),
	)
	code := m.Run()
	_ = testPool.Close()
	os.Exit(code)
}

func acquireGenerator(t *testing.T) *Generator {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	g, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { testPool.Release(g) })
	return g
}

func TestGenerate_Integration(t *testing.T) {
	t.Parallel()

	g := acquireGenerator(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	doc, err := g.Generate(ctx, Input{
		Job: Job{
			Title:        "Backend Engineer",
			Description:  "Build **APIs** for the hiring platform.\n\n```go\nfmt.Println(\"hi\")\n```",
			Requirements: "- Go\n- SQL\n- Kubernetes",
			Skills:       StringList{"Go", "SQL", "gRPC", "Docker", "Redis", "Kafka", "Terraform"},
		},
		Company: &Company{Name: "Acme Hiring", Website: "https://acme.test"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !bytes.HasPrefix(doc.PDF, []byte("%PDF-")) || len(doc.PDF) < 1000 {
		t.Errorf("PDF looks invalid: %d bytes", len(doc.PDF))
	}
	if doc.Pages != 3 {
		t.Errorf("Pages = %d, want 3", doc.Pages)
	}
}

func TestGenerate_Integration_ElementLogo(t *testing.T) {
	t.Parallel()

	logo := capturePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(logo)
	}))
	defer srv.Close()

	g := acquireGenerator(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	// The fetch strategy wins against a reachable CORS host; the element
	// loader is exercised directly.
	dataURL, err := elementLoader{host: g.host}.LoadImage(ctx, srv.URL+"/logo.png")
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if !bytes.HasPrefix([]byte(dataURL), []byte("data:image/png;base64,")) {
		t.Errorf("LoadImage() = %.40q", dataURL)
	}
}
