// Package api composes the HTTP API for the application
package api

import (
	"time"

	"codespeak/internal/platform/config"
	"codespeak/internal/platform/logger"
	phttp "codespeak/internal/platform/net/http"
	"codespeak/internal/platform/store"

	"codespeak/internal/modkit"
	"codespeak/internal/modkit/httpkit"
	"codespeak/internal/modkit/module"

	"codespeak/internal/adapters/mlsvc"
	"codespeak/internal/core/ratelimit"

	authmod "codespeak/internal/services/auth/module"
	lecmod "codespeak/internal/services/lectures/module"
	metamod "codespeak/internal/services/meta/module"
	trmod "codespeak/internal/services/transcription/module"
)

// Options are the API options
type Options struct {
	// Config is the root (unprefixed) configuration
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger

	// StartedAt stamps the health endpoint; zero means now
	StartedAt time.Time
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		Mem: opt.Store.Mem,
	}

	// classifier client shared by transcription (detect) and lectures (recorrect)
	mlCfg := opt.Config.Prefix("ML_")
	ml := mlsvc.New(mlsvc.Options{
		BaseURL: mlCfg.MayString("SERVICE_URL", "http://localhost:8000"),
		Timeout: mlCfg.MayDuration("TIMEOUT", 5*time.Second),
	})

	rlCfg := opt.Config.Prefix("RATELIMIT_")
	limiter := ratelimit.New(ratelimit.Options{
		Limit:  rlCfg.MayInt("LIMIT", ratelimit.DefaultLimit),
		Window: rlCfg.MayDuration("WINDOW", ratelimit.DefaultWindow),
	})

	// Auth first so its Verifier port can guard the other modules
	authDeps := deps
	authDeps.Cfg = opt.Config.Prefix("AUTH_")
	auth := authmod.New(authDeps)
	verifier := module.MustPortsOf[authmod.Ports](auth).Verifier

	lectures := lecmod.New(deps, modkit.WithPorts(lecmod.Ports{
		Corrector: ml,
	}))
	transcription := trmod.New(deps, modkit.WithPorts(trmod.Ports{
		Classifier: ml,
		Limiter:    limiter,
	}))

	driver := "memory"
	if opt.Store.PG != nil {
		driver = "postgres"
	}
	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{
		ServiceName: "codespeak-api",
		StartedAt:   opt.StartedAt,
		StoreDriver: driver,
		Store:       opt.Store,
		ML:          ml,
	}))

	public := []module.Module{meta, auth}
	protected := []module.Module{lectures, transcription}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range public {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
		api.Group(func(priv httpkit.Router) {
			priv.Use(httpkit.Auth(verifier))
			for _, m := range protected {
				module.Register(m.Name(), m.Ports())
				m.MountRoutes(priv)
			}
		})
	})
}
