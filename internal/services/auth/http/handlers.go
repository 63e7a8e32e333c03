// Package http provides http transport for auth
package http

import (
	stdhttp "net/http"

	"codespeak/internal/modkit/httpkit"
	"codespeak/internal/services/auth/domain"
	svc "codespeak/internal/services/auth/service"
)

// Register mounts auth endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.RegisterInput](r, "/register", h.register)
	httpkit.PostJSON[domain.LoginInput](r, "/login", h.login)
	httpkit.Post(r, "/logout", h.logout)
}

type handlers struct{ svc svc.Service }

func (h *handlers) register(r *stdhttp.Request, in domain.RegisterInput) (any, error) {
	out, err := h.svc.Register(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

func (h *handlers) login(r *stdhttp.Request, in domain.LoginInput) (any, error) {
	return h.svc.Login(r.Context(), in)
}

// logout is client side token discard; the server keeps no session state
func (h *handlers) logout(_ *stdhttp.Request) (any, error) {
	return map[string]string{"message": "Logged out successfully"}, nil
}
