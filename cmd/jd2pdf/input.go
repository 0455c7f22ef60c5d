package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alnah/go-jd2pdf"
)

// maxJobFileSize caps one job file; inline base64 logos dominate its size.
const maxJobFileSize = 16 << 20

// Sentinel errors for job input.
var (
	ErrNoInput  = errors.New("no job file specified")
	ErrReadJob  = errors.New("failed to read job file")
	ErrParseJob = errors.New("failed to parse job file")
)

// stdinPath selects standard input as the job source.
const stdinPath = "-"

// readJobFile reads an envelope or a bare job from path ("-" for stdin).
func readJobFile(path string, stdin io.Reader) (jd2pdf.Input, error) {
	var r io.Reader = stdin
	if path != stdinPath {
		f, err := os.Open(path) // #nosec G304 -- user-provided input path
		if err != nil {
			return jd2pdf.Input{}, fmt.Errorf("%w: %w", ErrReadJob, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxJobFileSize+1))
	if err != nil {
		return jd2pdf.Input{}, fmt.Errorf("%w: %w", ErrReadJob, err)
	}
	if len(data) > maxJobFileSize {
		return jd2pdf.Input{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrReadJob, path, maxJobFileSize)
	}
	return parseInput(data)
}

// parseInput accepts {"job": {...}, "company": {...}} or a bare job object.
func parseInput(data []byte) (jd2pdf.Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return jd2pdf.Input{}, fmt.Errorf("%w: empty document", ErrParseJob)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return jd2pdf.Input{}, fmt.Errorf("%w: %v", ErrParseJob, err)
	}

	var in jd2pdf.Input
	if _, ok := envelope["job"]; ok {
		if err := json.Unmarshal(data, &in); err != nil {
			return jd2pdf.Input{}, fmt.Errorf("%w: %v", ErrParseJob, err)
		}
		return in, nil
	}

	if err := json.Unmarshal(data, &in.Job); err != nil {
		return jd2pdf.Input{}, fmt.Errorf("%w: %v", ErrParseJob, err)
	}
	return in, nil
}

// readCompanyFile reads the company shared by every job of a batch.
func readCompanyFile(path string) (*jd2pdf.Company, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadJob, err)
	}
	var c jd2pdf.Company
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: company %s: %v", ErrParseJob, path, err)
	}
	return &c, nil
}
