package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-jd2pdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool func(size int, opts ...jd2pdf.Option) Pool
}

// DefaultEnv returns the production environment backed by real browsers.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewPool: func(size int, opts ...jd2pdf.Option) Pool {
			return &poolAdapter{pool: jd2pdf.NewGeneratorPool(size, opts...)}
		},
	}
}
