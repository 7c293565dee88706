package chat

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers chat routes. The timeout applies to POST /chat
// only; websocket connections stay open until the client leaves.
func RegisterRoutes(r chi.Router, h *Handler, timeout time.Duration) {
	r.Route("/chat", func(r chi.Router) {
		r.With(middleware.Timeout(timeout)).Post("/", h.Chat)
		r.Get("/ws", h.ChatWS)
	})
}
