// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	correlationscmd "github.com/bureau-foundation/crashstats/cmd/crashstats/correlations"
	pingscmd "github.com/bureau-foundation/crashstats/cmd/crashstats/pings"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	"github.com/bureau-foundation/crashstats/lib/cache"
	"github.com/bureau-foundation/crashstats/lib/correlations"
	"github.com/bureau-foundation/crashstats/lib/crashapi"
	"github.com/bureau-foundation/crashstats/lib/pings"
	"github.com/bureau-foundation/crashstats/lib/socorro"
	"github.com/bureau-foundation/crashstats/lib/version"
)

const requestTimeout = 60 * time.Second

// httpStatus maps error categories to response codes.
var httpStatus = map[cli.ErrorCategory]int{
	cli.CategoryValidation: http.StatusBadRequest,
	cli.CategoryNotFound:   http.StatusNotFound,
	cli.CategoryForbidden:  http.StatusBadGateway,
	cli.CategoryTransient:  http.StatusServiceUnavailable,
	cli.CategoryInternal:   http.StatusInternalServerError,
}

// server answers crash data queries over HTTP with the same clients
// and cache the CLI commands use.
type server struct {
	client *crashapi.Client
	store  cache.Store
	logger *slog.Logger
}

func (s *server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.logRequests)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/healthz", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Get("/pings/{date}", s.handlePings)
		r.Get("/pings/{date}/stack/{crashID}", s.handlePingStack)
		r.Get("/correlations/{channel}", s.handleCorrelations)
	})
	router.Get("/pings/{date}", s.handlePingsPage)
	return router
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.Status(),
			"bytes", wrapped.BytesWritten(),
			"elapsed", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Short(),
	})
}

func (s *server) handlePings(w http.ResponseWriter, r *http.Request) {
	summary, err := s.aggregate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *server) handlePingsPage(w http.ResponseWriter, r *http.Request) {
	summary, err := s.aggregate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTMLPage(w, "Crash Pings for "+summary.Date, render.MarkdownPings(summary)); err != nil {
		s.logger.Warn("rendering page failed", "error", err)
	}
}

// aggregate loads the day named in the path and aggregates it by the
// query's facet, limit and filters.
func (s *server) aggregate(r *http.Request) (*pings.Summary, error) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, cli.Validation("invalid date %q: expected YYYY-MM-DD", date)
	}
	query := r.URL.Query()

	facet := query.Get("facet")
	if facet == "" {
		facet = pings.FacetSignature
	}
	if !pings.ValidFacet(facet) {
		return nil, cli.Validation("Unknown facet %q. Valid facets: %s", facet, strings.Join(pings.Facets, ", "))
	}
	limit := 10
	if text := query.Get("limit"); text != "" {
		parsed, err := strconv.Atoi(text)
		if err != nil || parsed < 0 {
			return nil, cli.Validation("invalid limit %q", text)
		}
		limit = parsed
	}
	filter := pings.Filter{
		Channel:   query.Get("channel"),
		OS:        query.Get("os"),
		Process:   query.Get("process"),
		Version:   query.Get("version"),
		Signature: query.Get("signature"),
		Arch:      query.Get("arch"),
	}

	records, err := pingscmd.Load(r.Context(), s.client, s.store, date, s.logger)
	if err != nil {
		return nil, err
	}
	return pings.Aggregate(records, filter, facet, limit, date), nil
}

func (s *server) handlePingStack(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	crashID := chi.URLParam(r, "crashID")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		s.writeError(w, r, cli.Validation("invalid date %q: expected YYYY-MM-DD", date))
		return
	}
	if err := socorro.ValidateCrashID(crashID); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := s.client.PingStack(r.Context(), date, crashID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	response, err := pings.DecodeStack(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, response.Summarize(crashID, date))
}

func (s *server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	signature := r.URL.Query().Get("signature")
	if signature == "" {
		s.writeError(w, r, cli.Validation("the signature query parameter is required"))
		return
	}
	if !correlations.ValidChannel(channel) {
		s.writeError(w, r, &correlations.UnknownChannelError{Channel: channel})
		return
	}

	summary, _, err := correlationscmd.Fetch(r.Context(), s.client, channel, signature)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := render.WriteJSON(w, value); err != nil {
		s.logger.Warn("writing response failed", "error", err)
	}
}

// writeError reports err as {"error", "category"} with a status code
// derived from its category.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = cli.Classify(err)
	category := cli.CategoryOf(err)
	status, ok := httpStatus[category]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var toolError *cli.ToolError
	if errors.As(err, &toolError) {
		message = toolError.Err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, map[string]string{
		"error":    message,
		"category": string(category),
	})
}
