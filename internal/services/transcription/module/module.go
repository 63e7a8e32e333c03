// Package module wires transcription into the API using modkit
package module

import (
	"net/http"

	"codespeak/internal/core/ratelimit"
	modkit "codespeak/internal/modkit"
	"codespeak/internal/modkit/httpkit"
	str "codespeak/internal/platform/strings"
	trhttp "codespeak/internal/services/transcription/http"
	trrepo "codespeak/internal/services/transcription/repo"
	trsvc "codespeak/internal/services/transcription/service"
)

// Ports are the cross module dependencies transcription consumes
type Ports struct {
	Classifier trsvc.Classifier
	Limiter    *ratelimit.Limiter
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

	svc trsvc.Service
}

// New constructs a transcription module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("transcription"),
		modkit.WithPrefix("/transcription"),
	}, opts...)...)

	p, ok := b.Ports.(Ports)
	if !ok || p.Classifier == nil {
		panic("transcription module requires a Classifier port")
	}

	var r trrepo.Repo
	if deps.PG != nil {
		r = trrepo.NewPG(deps.PG)
	} else {
		r = trrepo.NewMem(deps.Mem)
	}
	svc := trsvc.New(r, p.Classifier, p.Limiter)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptTranscriptionPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		trhttp.Register(r, m.svc)
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
