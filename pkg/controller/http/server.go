package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/usecase"
	"github.com/verdicttrace/verdicttrace/pkg/utils/apperr"
)

// Server exposes the JSON API: a scan trigger, case browsing and human
// actions, notifications, scan settings, and a health check. HTML rendering
// lives outside this service.
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, scanUC *usecase.ScanUseCase, actionUC *usecase.ActionUseCase, repo interfaces.Repository) *Server {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(ctx))

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", handleScan(scanUC))

		r.Get("/cases", handleListCases(repo))
		r.Route("/cases/{caseID}", func(r chi.Router) {
			r.Get("/", handleGetCase(repo))
			r.Post("/escalate", handleCaseAction(actionUC.Escalate))
			r.Post("/dismiss", handleCaseAction(actionUC.Dismiss))
			r.Post("/resolve", handleCaseAction(actionUC.Resolve))
			r.Post("/comment", handleCaseAction(actionUC.Comment))
		})

		r.Get("/notifications", handleListNotifications(repo))

		r.Get("/settings", handleGetSettings(repo))
		r.Put("/settings", handlePutSettings(repo))
	})

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScan triggers one detection scan and returns its summary counters
func handleScan(scanUC *usecase.ScanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := scanUC.RunScan(ctx)
		if err != nil {
			apperr.Handle(ctx, err)
			http.Error(w, "scan failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			apperr.Handle(ctx, err)
		}
	}
}

// loggingMiddleware injects the base logger into request contexts and logs
// each request
func loggingMiddleware(baseCtx context.Context) func(http.Handler) http.Handler {
	logger := ctxlog.From(baseCtx)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := ctxlog.With(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).String(),
			)
		})
	}
}
