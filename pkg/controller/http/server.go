package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
)

// maxBodySize bounds request bodies of the JSON endpoints
const maxBodySize = 1 << 20

// Config holds HTTP controller settings
type Config struct {
	Addr     string
	Passcode string
	// BaseURL is the externally visible URL of the service, derived from the request when empty
	BaseURL string
}

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, cfg Config, ingestUC usecase.IngestUseCase, digestUC usecase.DigestUseCase) *Server {
	router := chi.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	ingest := &ingestHandler{uc: ingestUC, passcode: cfg.Passcode}
	digest := &digestHandler{uc: digestUC, baseURL: cfg.BaseURL}

	// Health check
	router.Get("/health", handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Get("/ingest", ingest.handleInfo)
		r.Post("/ingest", ingest.handleSubmit)

		r.Get("/combine", digest.handleInfo)
		r.Post("/combine", digest.handleAggregate)

		r.Route("/weeks/{week}", func(r chi.Router) {
			r.Get("/status", digest.handleStatus)
			r.Get("/report", digest.handleReport)
			r.With(RequirePasscode(cfg.Passcode)).Post("/combine", digest.handleCombineWeek)
		})
	})

	return &Server{
		Server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "weeklydigest",
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}
