package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// NewHandlers wires handlers around one shared session.
func NewHandlers(db *sql.DB, cfg *config.Config, version string, logger *zap.Logger) (*Handlers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	return &Handlers{
		db:       db,
		cfg:      cfg,
		session:  session.New(cfg.UndoDepth),
		renderer: NewRenderer(templateSub, version, logger),
		metrics:  NewMetrics(),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// NewRouter builds the chi router for the UI, JSON API, health, and metrics.
func NewRouter(h *Handlers) (http.Handler, error) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(h.logger))
	r.Use(securityHeaders)

	r.Get("/", h.HandleKeypad)
	r.Get("/report", h.HandleReport)
	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", h.metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.HandleState)
		r.Post("/input", h.HandleInput)
		r.Post("/delete", h.HandleDelete)
		r.Post("/clear", h.HandleClear)
		r.Post("/sign", h.HandleToggleSign)
		r.Post("/commit", h.HandleCommit)
		r.Post("/undo", h.HandleUndo)
		r.Post("/redo", h.HandleRedo)

		r.Get("/history", h.HandleHistoryList)
		r.Delete("/history", h.HandleHistoryClear)
		r.Post("/history/{id}/reuse", h.HandleHistoryReuse)

		r.Get("/stats", h.HandleStats)
		r.Get("/purchases", h.HandlePurchases)

		r.Get("/settings", h.HandleSettingsGet)
		r.Put("/settings", h.HandleSettingsUpdate)
	})

	return r, nil
}

// NewServer creates the HTTP server for the Tally web UI.
func NewServer(db *sql.DB, cfg *config.Config, version, bind string, port int, logger *zap.Logger) (*http.Server, error) {
	h, err := NewHandlers(db, cfg, version, logger)
	if err != nil {
		return nil, err
	}
	router, err := NewRouter(h)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", zap.String("url", "http://"+srv.Addr))

	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
