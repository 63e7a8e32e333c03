// Package modkit provides module wiring and core deps
package modkit

import (
	"codespeak/internal/modkit/repokit"
	"codespeak/internal/platform/config"
	"codespeak/internal/platform/logger"
	"codespeak/internal/platform/store/mem"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
// exactly one of PG or Mem is set, matching the active store driver
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	Mem *mem.DB
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
