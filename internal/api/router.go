package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gebo/internal/contract"
	"github.com/starford/gebo/internal/convert"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *contract.Service, conv convert.Converter, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, conv)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Employment contracts.
	r.Get("/contracts", h.ListArtifacts)
	r.Post("/contracts", h.CreateContract)
	r.Post("/contracts/generate", h.GenerateContract)
	r.Get("/contracts/{id}/download", h.DownloadContract)

	// Leave contracts. Downloads resolve through the same registry, so
	// the handler is shared.
	r.Post("/leave-contract", h.CreateLeaveContract)
	r.Post("/leave-contract/generate", h.GenerateLeaveContract)
	r.Get("/leave-contract/{id}/download", h.DownloadContract)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
