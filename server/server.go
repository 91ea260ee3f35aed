// Package server exposes the aggregated feed over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scipunch/finfeed/cache"
	"github.com/scipunch/finfeed/feed"
	"github.com/scipunch/finfeed/render"
)

// FeedCache is the read path for the cached XML document.
type FeedCache interface {
	GetOrRefresh(ctx context.Context) (string, error)
	Status() cache.Status
}

// Aggregator produces a fresh combined feed, bypassing the cache.
type Aggregator interface {
	Aggregate(ctx context.Context) feed.Aggregated
	Sources() []feed.Source
}

// Server wires the cache, the aggregator, and the renderers into the HTTP
// surface.
type Server struct {
	cache     FeedCache
	agg       Aggregator
	log       *zap.SugaredLogger
	startedAt time.Time
}

// New creates a server; startedAt feeds the /status uptime field.
func New(cache FeedCache, agg Aggregator, log *zap.SugaredLogger) *Server {
	return &Server{
		cache:     cache,
		agg:       agg,
		log:       log,
		startedAt: time.Now(),
	}
}

// Handler builds the route table. Every request goes through the access-log
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /rss", s.handleRSS)
	mux.HandleFunc("GET /json", s.handleJSON)
	mux.HandleFunc("GET /status", s.handleStatus)
	return s.withAccessLog(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Financial news feed aggregator",
		"endpoints": map[string]string{
			"rss":    "/rss",
			"json":   "/json",
			"status": "/status",
		},
		"sources": feed.Names(s.agg.Sources()),
	})
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	document, err := s.cache.GetOrRefresh(r.Context())
	if err != nil {
		s.log.Errorw("rss endpoint failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate RSS feed"})
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	_, _ = w.Write([]byte(document))
}

// handleJSON always runs a fresh aggregation so API consumers can opt out of
// the staleness window.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	aggregated := s.agg.Aggregate(r.Context())
	writeJSON(w, http.StatusOK, render.JSON(aggregated, s.agg.Sources()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.cache.Status()

	payload := map[string]any{
		"status":  "running",
		"sources": len(s.agg.Sources()),
		"uptime":  time.Since(s.startedAt).String(),
	}
	if status.LastUpdate.IsZero() {
		payload["lastUpdate"] = nil
		payload["cacheAge"] = nil
	} else {
		payload["lastUpdate"] = status.LastUpdate
		payload["cacheAge"] = status.Age.String()
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.log.Infow("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start).String(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
