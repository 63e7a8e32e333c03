// Package module wires the meta endpoints into the API using modkit
package module

import (
	"net/http"
	"time"

	modkit "codespeak/internal/modkit"
	"codespeak/internal/modkit/httpkit"
	str "codespeak/internal/platform/strings"
	metahttp "codespeak/internal/services/meta/http"
)

// Ports are the dependencies meta consumes from the rest of the process
type Ports struct {
	ServiceName string
	StartedAt   time.Time
	StoreDriver string
	Store       any
	ML          metahttp.MLPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)

	var p Ports
	if pp, ok := b.Ports.(Ports); ok {
		p = pp
	}
	if p.ServiceName == "" {
		p.ServiceName = "codespeak-api"
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now()
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: p.ServiceName,
			StartedAt:   p.StartedAt,
			StoreDriver: p.StoreDriver,
			Store:       p.Store,
			ML:          p.ML,
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Ports implements the modkit.Module interface; meta exposes nothing
func (m *Module) Ports() any { return nil }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
