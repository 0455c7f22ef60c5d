package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-jd2pdf"
)

// Renderer is the part of a Generator the CLI uses.
type Renderer interface {
	Generate(ctx context.Context, in jd2pdf.Input) (*jd2pdf.Document, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*jd2pdf.Generator)(nil)

// Pool abstracts generator pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Renderer, error)
	Release(Renderer)
	Size() int
	Close() error
}

// poolAdapter exposes a jd2pdf.GeneratorPool as a Pool.
type poolAdapter struct {
	pool *jd2pdf.GeneratorPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire(ctx context.Context) (Renderer, error) {
	g, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Release panics if r did not come from Acquire.
func (a *poolAdapter) Release(r Renderer) {
	g, ok := r.(*jd2pdf.Generator)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", r))
	}
	a.pool.Release(g)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }

// pooledRenderer borrows a Renderer for each call, so the HTTP server can
// render up to Size documents at once.
type pooledRenderer struct {
	pool Pool
}

func (p *pooledRenderer) Generate(ctx context.Context, in jd2pdf.Input) (*jd2pdf.Document, error) {
	r, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.pool.Release(r)
	return r.Generate(ctx, in)
}
