package main

import (
	"context"
	"time"

	"codespeak/internal/platform/config"
	"codespeak/internal/platform/logger"
	phttp "codespeak/internal/platform/net/http"
	"codespeak/internal/platform/store"

	"codespeak/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	// bring up logging early
	l := logger.Get()

	// error envelopes carry diagnostic detail outside production
	phttp.SetDebugDetail(apiCfg.MayString("ENV", "development") != "production")

	driver := store.Driver(root.MayEnum("SERVICE_STORE_DRIVER", string(store.DriverPostgres),
		string(store.DriverPostgres), string(store.DriverMemory)))

	cfg := store.Config{
		AppName: "codespeak-api",
		Driver:  driver,
	}
	if driver == store.DriverPostgres {
		cfg.PG = store.PGConfig{
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		}
	}

	st, err := store.Open(context.Background(), cfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:    root,
			Store:     st,
			Logger:    l,
			StartedAt: time.Now(),
		},
	)

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
