package module

import (
	"net/http"

	"codespeak/internal/modkit/httpkit"
	"codespeak/internal/platform/net/middleware"
	authsvc "codespeak/internal/services/auth/service"
)

// Ports are the cross module capabilities auth exposes
type Ports struct {
	// Verifier satisfies the platform auth middleware contract
	Verifier middleware.AuthPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// verifierPort adapts the auth service to middleware.AuthPort
type verifierPort struct{ svc authsvc.Service }

// Parse extracts and verifies the bearer token on a request
func (p verifierPort) Parse(r *http.Request) (string, error) {
	raw, err := httpkit.JWT(r)
	if err != nil {
		return "", err
	}
	return p.svc.Verify(r.Context(), raw)
}
