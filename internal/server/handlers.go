package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/hints"
	"github.com/alnah/go-jd2pdf/internal/hostguard"
	"github.com/alnah/go-jd2pdf/internal/logo"
)

// genericFailure is the only detail clients get for a failed render.
const genericFailure = "could not generate document, try again"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "missing_url", "url query parameter is required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_url", "url must be an absolute http or https URL")
		return
	}
	if !s.hosts.Allows(u.Hostname()) {
		writeError(w, r, http.StatusForbidden, "host_not_allowed", fmt.Sprintf("host %q is not allowed: %s", u.Hostname(), hints.HostNotAllowed))
		return
	}
	if !s.limiter.AllowURL(raw) {
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests for this host")
		return
	}

	img, err := s.images.Fetch(r.Context(), raw)
	if err != nil {
		s.logger.Warn("proxy image fetch failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("url", raw),
			zap.Error(err))
		if errors.Is(err, hostguard.ErrHostNotAllowed) {
			writeError(w, r, http.StatusForbidden, "host_not_allowed", "url leads to a host that is not allowed: "+hints.HostNotAllowed)
			return
		}
		if errors.Is(err, logo.ErrUnsupportedURL) {
			writeError(w, r, http.StatusBadRequest, "invalid_url", "url cannot be fetched")
			return
		}
		writeError(w, r, http.StatusBadGateway, "upstream_failed", "could not fetch image")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	writeJSON(w, http.StatusOK, logo.ProxyResponse{DataURL: img.DataURL})
}

func (s *Server) handleJobPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var in jd2pdf.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_json", "request body must be a JSON object with a job field")
		return
	}

	doc, err := s.gen.Generate(r.Context(), in)
	if err != nil {
		if errors.Is(err, jd2pdf.ErrInvalidInput) {
			writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		log := s.logger.With(
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("title", in.Job.Title),
			zap.Error(err))
		if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
			log.Info("client went away during generation")
			return
		}
		log.Error("document generation failed")
		writeError(w, r, http.StatusInternalServerError, "generation_failed", genericFailure)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.PDF)))
	w.Header().Set("X-Page-Count", strconv.Itoa(doc.Pages))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.PDF)
}
