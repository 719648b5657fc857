// Package server hosts the catalog forms over HTTP. Every request rebuilds
// its own session from the posted values, so no form state is shared
// between requests.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-stepform/pkg/catalog"
	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
)

var ErrNoCatalog = errors.New("server: catalog is required")

// Config wires the server's collaborators. Only Catalog is required.
type Config struct {
	Catalog *catalog.Store
	// Renderer defaults to the embedded HTML templates.
	Renderer render.Renderer
	// Submitter receives direct-mode submissions. Without it the submit
	// action reports an error.
	Submitter gate.Submitter
	Uploader  engine.Uploader
	Options   engine.OptionsLoader
	// MaxUploadBytes bounds the in-memory part of multipart posts.
	MaxUploadBytes int64
}

// Server serves the form catalog.
type Server struct {
	catalog   *catalog.Store
	renderer  render.Renderer
	submitter gate.Submitter
	uploader  engine.Uploader
	options   engine.OptionsLoader
	maxMemory int64
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, ErrNoCatalog
	}
	renderer := cfg.Renderer
	if renderer == nil {
		htmlRenderer, err := html.New(html.WithDefaultStyles())
		if err != nil {
			return nil, err
		}
		renderer = htmlRenderer
	}
	maxMemory := cfg.MaxUploadBytes
	if maxMemory <= 0 {
		maxMemory = 10 << 20
	}
	return &Server{
		catalog:   cfg.Catalog,
		renderer:  renderer,
		submitter: cfg.Submitter,
		uploader:  cfg.Uploader,
		options:   cfg.Options,
		maxMemory: maxMemory,
	}, nil
}

// Handler returns the router with every route and middleware registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(RequestID)
	r.Use(Logging)

	r.Get("/healthz", s.health)
	r.Route("/forms", func(r chi.Router) {
		r.Get("/", s.listForms)
		r.Get("/{slug}", s.showForm)
		r.Post("/{slug}", s.postForm)
		r.Get("/{slug}/view", s.showView)
	})

	return r
}

// Run serves handler on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("serving forms on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
