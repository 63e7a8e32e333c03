// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"codespeak/internal/core/version"
	"codespeak/internal/modkit/httpkit"
)

// Pinger is satisfied by backend adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Guarder is satisfied by the store facade, which verifies whichever
// backend is active
type Guarder interface {
	Guard(stdctx.Context) error
}

// MLPort is the slice of the classifier client meta needs
type MLPort interface {
	CheckHealth(ctx stdctx.Context) map[string]any
	ModelStats(ctx stdctx.Context) map[string]any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	StoreDriver string
	Store       any
	ML          MLPort
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/ml", h.ml)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	store := ReadyCheck{Name: h.deps.StoreDriver, Status: "skipped"}
	if h.deps.Store != nil {
		store.Status = "unknown"
		var check func(stdctx.Context) error
		switch s := h.deps.Store.(type) {
		case Guarder:
			check = s.Guard
		case Pinger:
			check = s.Ping
		}
		if check != nil {
			store.Status = "ok"
			if err := check(ctx); err != nil {
				store.Status = "fail"
				store.Error = err.Error()
			}
		}
	}

	// the classifier is advisory: a dead classifier degrades, never fails,
	// because ingestion survives on fallbacks
	ml := ReadyCheck{Name: "mlsvc", Status: "skipped"}
	if h.deps.ML != nil {
		ml.Status = "ok"
		if health := h.deps.ML.CheckHealth(ctx); health["status"] == "unhealthy" {
			ml.Status = "fail"
			if e, ok := health["error"].(string); ok {
				ml.Error = e
			}
		}
	}

	overall := "ok"
	if store.Status == "fail" {
		overall = "fail"
	} else if ml.Status == "fail" {
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{store, ml},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// ml proxies classifier model metadata, null-safe when unreachable
func (h *handlers) ml(r *http.Request) (any, error) {
	if h.deps.ML == nil {
		return map[string]any{"available": false}, nil
	}
	stats := h.deps.ML.ModelStats(r.Context())
	if stats == nil {
		return map[string]any{"available": false}, nil
	}
	return map[string]any{"available": true, "stats": stats}, nil
}
