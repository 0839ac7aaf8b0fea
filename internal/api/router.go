package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// Item endpoints
		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetItem)
				r.Get("/history", s.handleGetItemHistory)
			})
		})

		// Command endpoints
		r.Post("/remote", s.handleRemote)
		r.Post("/zap", s.handleZap)
		r.Post("/commands/{id}", s.handleNamedCommand)

		// On-screen message endpoints
		r.Post("/message", s.handleSendMessage)
		r.Get("/message/answer", s.handleMessageAnswer)

		// Audio track enumeration
		r.Get("/audiotracks", s.handleAudioTracks)

		// WebSocket item feed
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
