package main

import (
	"errors"
	"os"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/config"
	"github.com/alnah/go-jd2pdf/internal/logging"
)

// Exit codes for the jd2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All documents rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or job data
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, jd2pdf.ErrBrowserConnect) ||
		errors.Is(err, jd2pdf.ErrPageCreate) ||
		errors.Is(err, jd2pdf.ErrPageLoad) ||
		errors.Is(err, jd2pdf.ErrCapture) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadJob) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrFieldRange) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, jd2pdf.ErrInvalidInput) ||
		errors.Is(err, jd2pdf.ErrInvalidOption) ||
		errors.Is(err, jd2pdf.ErrStyleNotFound) ||
		errors.Is(err, jd2pdf.ErrTemplateSetNotFound) ||
		errors.Is(err, jd2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, ErrParseJob) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
