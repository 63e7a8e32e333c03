// Package http provides http transport for transcription
package http

import (
	stdhttp "net/http"

	"codespeak/internal/modkit/httpkit"
	"codespeak/internal/services/transcription/domain"
	svc "codespeak/internal/services/transcription/service"
)

// Register mounts transcription endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// the body is validated by the service so every violation is
	// reported together, hence RawJSON instead of the bind layer
	r.Post("/process", httpkit.RawJSON[domain.ProcessInput](h.process))
	httpkit.Get(r, "/live/{lectureId}", h.live)
	httpkit.Get(r, "/{lectureId}/full", h.full)
}

type handlers struct{ svc svc.Service }

func (h *handlers) process(r *stdhttp.Request, in domain.ProcessInput) (any, error) {
	return h.svc.Process(r.Context(), httpkit.MustUser(r), in)
}

func (h *handlers) live(r *stdhttp.Request) (any, error) {
	return h.svc.Live(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "lectureId"))
}

func (h *handlers) full(r *stdhttp.Request) (any, error) {
	search := r.URL.Query().Get("search")
	return h.svc.Full(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "lectureId"), search)
}
