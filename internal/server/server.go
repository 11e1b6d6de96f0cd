// Package server exposes the annotation backend: document ingestion, chunk
// listing, and one streaming annotation channel per chunk.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/marginalia-reader/marginalia/internal/annotator"
	"github.com/marginalia-reader/marginalia/internal/chunker"
	"github.com/marginalia-reader/marginalia/internal/gutenberg"
	"github.com/marginalia-reader/marginalia/internal/library"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Goal     string // default annotation goal when the channel supplies none
	AllowAll bool   // allow all CORS origins (dev mode)
}

// Server is the marginalia annotation backend.
type Server struct {
	cfg        Config
	lib        *library.Library
	fetcher    *gutenberg.Fetcher
	splitter   *chunker.Splitter
	annotator  *annotator.Annotator
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, lib *library.Library, fetcher *gutenberg.Fetcher, splitter *chunker.Splitter, ann *annotator.Annotator) *Server {
	s := &Server{
		cfg:       cfg,
		lib:       lib,
		fetcher:   fetcher,
		splitter:  splitter,
		annotator: ann,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Get("/documents/{documentID}/chunks", s.handleChunks)
	})
	r.Get("/ws/chunks/{chunkID}", s.handleAnnotationChannel)

	return r
}

// Router returns the chi router, with all API routes registered.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("marginalia server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
