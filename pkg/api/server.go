// Package api exposes the price engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"pricescout/pkg/logger"
	"pricescout/pkg/metrics"
	"pricescout/pkg/models"

	"go.uber.org/zap"
)

// Engine is the price discovery pipeline.
type Engine interface {
	Search(productName string) *models.SearchResponse
	ScrapePage(rawURL string) *models.PageDetails
}

// ResponseCache stores assembled search responses by flash pid.
type ResponseCache interface {
	Get(flashPID string) (*models.SearchResponse, bool)
	Set(resp *models.SearchResponse)
}

type Options struct {
	Port          string
	DocsDir       string
	MaxConcurrent int
	// Country is used when a search request names none.
	Country string
	// PrimaryEnabled is reported by the health endpoint.
	PrimaryEnabled bool
}

type Server struct {
	opts       Options
	engine     Engine
	cache      ResponseCache
	metrics    *metrics.Metrics
	log        *zap.Logger
	dedup      *logger.Deduper
	searches   chan struct{}
	router     http.Handler
	httpServer *http.Server
}

// NewServer wires the routes. cache may be nil.
func NewServer(opts Options, engine Engine, cache ResponseCache, m *metrics.Metrics, log *zap.Logger) *Server {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Country == "" {
		opts.Country = "IN"
	}
	s := &Server{
		opts:     opts,
		engine:   engine,
		cache:    cache,
		metrics:  m,
		log:      log,
		dedup:    logger.NewDeduper(log, 2*time.Second),
		searches: make(chan struct{}, opts.MaxConcurrent),
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              ":" + s.opts.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.dedup.Flush()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
