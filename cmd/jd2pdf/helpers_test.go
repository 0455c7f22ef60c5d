package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-jd2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake renderer and pool
// ---------------------------------------------------------------------------

type fakeRenderer struct {
	mu     sync.Mutex
	inputs []jd2pdf.Input
	err    error
	failOn string // title that fails with err
}

func (f *fakeRenderer) Generate(_ context.Context, in jd2pdf.Input) (*jd2pdf.Document, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil && (f.failOn == "" || f.failOn == in.Job.Title) {
		return nil, f.err
	}
	return &jd2pdf.Document{
		PDF:      []byte("%PDF-1.3 " + in.Job.Title),
		HTML:     []byte("<html>" + in.Job.Title + "</html>"),
		Filename: jd2pdf.SuggestedFilename(in.Job.Title),
		Pages:    1,
		Logo:     jd2pdf.LogoPlaceholder,
	}, nil
}

func (f *fakeRenderer) seen() []jd2pdf.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]jd2pdf.Input(nil), f.inputs...)
}

type fakePool struct {
	renderer   *fakeRenderer
	size       int
	acquireErr error

	mu       sync.Mutex
	opts     int
	released int
	closed   bool
}

func (p *fakePool) Acquire(context.Context) (Renderer, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.renderer, nil
}

func (p *fakePool) Release(Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// testEnv returns an Environment whose pool is pool and whose output is
// captured.
func testEnv(pool *fakePool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
		NewPool: func(size int, opts ...jd2pdf.Option) Pool {
			pool.mu.Lock()
			pool.opts = len(opts)
			if pool.size == 0 {
				pool.size = size
			}
			pool.mu.Unlock()
			return pool
		},
	}
	return env, stdout, stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

var errBrowser = errors.New("chrome crashed")
