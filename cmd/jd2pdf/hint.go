package main

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/assets"
	"github.com/alnah/go-jd2pdf/internal/config"
	"github.com/alnah/go-jd2pdf/internal/hints"
	"github.com/alnah/go-jd2pdf/internal/hostguard"
)

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, jd2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("config"))
	case errors.Is(err, jd2pdf.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().StyleNames())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrParseJob):
		return hints.ForJobFile()
	case errors.Is(err, hostguard.ErrHostNotAllowed):
		return hints.ForHostNotAllowed()
	}
	return ""
}

func isHelpErr(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
