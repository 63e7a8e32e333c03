// Package http provides http transport for lectures
package http

import (
	stdhttp "net/http"
	"strconv"

	"codespeak/internal/modkit/httpkit"
	"codespeak/internal/services/lectures/domain"
	svc "codespeak/internal/services/lectures/service"
)

// Register mounts lecture endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.StartInput](r, "/start", h.start)
	httpkit.Post(r, "/end/{lectureId}", h.end)
	httpkit.Get(r, "/history", h.history)
	httpkit.Get(r, "/search", h.search)
	httpkit.Get(r, "/{lectureId}", h.get)
	httpkit.Delete(r, "/{lectureId}", h.del)
	httpkit.Post(r, "/{lectureId}/recorrect", h.recorrect)
}

type handlers struct{ svc svc.Service }

func (h *handlers) start(r *stdhttp.Request, in domain.StartInput) (any, error) {
	out, err := h.svc.Start(r.Context(), httpkit.MustUser(r), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

func (h *handlers) end(r *stdhttp.Request) (any, error) {
	return h.svc.End(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "lectureId"))
}

func (h *handlers) history(r *stdhttp.Request) (any, error) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	views, total, err := h.svc.History(r.Context(), httpkit.MustUser(r), page, limit)
	if err != nil {
		return nil, err
	}
	return httpkit.List(views, total, page, limit), nil
}

func (h *handlers) search(r *stdhttp.Request) (any, error) {
	q := r.URL.Query().Get("q")
	return h.svc.Search(r.Context(), httpkit.MustUser(r), q)
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "lectureId"))
}

func (h *handlers) del(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "lectureId")); err != nil {
		return nil, err
	}
	return map[string]string{"message": "Lecture deleted successfully"}, nil
}

func (h *handlers) recorrect(r *stdhttp.Request) (any, error) {
	return h.svc.Recorrect(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "lectureId"))
}

func queryInt(r *stdhttp.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
