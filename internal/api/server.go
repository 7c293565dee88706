package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chatapi "github.com/futig/jarvis-backend/internal/api/chat"
	"github.com/futig/jarvis-backend/internal/api/docs"
	"github.com/futig/jarvis-backend/internal/api/middleware"
	"github.com/futig/jarvis-backend/internal/observability"
	"github.com/futig/jarvis-backend/internal/pkg/response"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatHandler *chatapi.Handler, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.Metrics(metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", metrics.Handler())

	docs.RegisterRoutes(r)

	chatapi.RegisterRoutes(r, chatHandler, 120*time.Second)

	return r
}
