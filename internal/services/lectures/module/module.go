// Package module wires lectures into the API using modkit
package module

import (
	"net/http"

	modkit "codespeak/internal/modkit"
	"codespeak/internal/modkit/httpkit"
	str "codespeak/internal/platform/strings"
	lechttp "codespeak/internal/services/lectures/http"
	lecrepo "codespeak/internal/services/lectures/repo"
	lecsvc "codespeak/internal/services/lectures/service"
)

// Ports are the cross module dependencies lectures consumes
type Ports struct {
	Corrector lecsvc.BatchCorrector
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc lecsvc.Service
}

// New constructs a lectures module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("lectures"), modkit.WithPrefix("/lectures")}, opts...)...)

	var corrector lecsvc.BatchCorrector
	if p, ok := b.Ports.(Ports); ok {
		corrector = p.Corrector
	}

	var r lecrepo.Repo
	if deps.PG != nil {
		r = lecrepo.NewPG(deps.PG)
	} else {
		r = lecrepo.NewMem(deps.Mem)
	}
	svc := lecsvc.New(r, corrector)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptLecturesPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		lechttp.Register(r, m.svc)
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

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
