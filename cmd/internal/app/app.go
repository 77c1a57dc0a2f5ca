// Package app wires the gravity server runtime: config, logging, stores,
// HTTP routes, and the realtime gateway.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"gravity/cmd/identity"
	authapi "gravity/cmd/internal/auth/api"
	"gravity/cmd/internal/auth/session"
	"gravity/cmd/internal/hostel"
	hostelapi "gravity/cmd/internal/hostel/api"
	"gravity/cmd/internal/realtime"
)

// App is the gravity server runtime. It owns the connection pool and the
// wired handlers; Run drives the HTTP server and background workers.
type App struct {
	cfg Config
	log Logger

	pool     *pgxpool.Pool
	sessions *session.Service

	hub    *realtime.Hub
	ws     *realtime.Gateway
	auth   *authapi.Handler
	hostel *hostelapi.Handler

	metrics *Metrics
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogPretty)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := MigrateUp(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a, err := build(cfg, log, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg Config, log Logger, pool *pgxpool.Pool) (*App, error) {
	ids, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	codec, err := session.NewJWTCodec(sessCfg)
	if err != nil {
		return nil, err
	}
	sessStore, err := session.NewPostgresStore(pool, cfg.DBSchema)
	if err != nil {
		return nil, err
	}

	// Role claims come from the identity store, never from client input.
	roles := session.RoleSourceFunc(func(ctx context.Context, userID string) (string, error) {
		u, err := ids.GetUserByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return string(u.Role), nil
	})
	sessions := session.NewService(sessCfg, sessStore, codec, roles)

	auth, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), ids, sessions, codec, pool)
	if err != nil {
		return nil, err
	}

	hostelStore, err := hostel.NewPostgresStore(pool, hostel.WithSchema(cfg.DBSchema))
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(log)
	ws, err := realtime.NewGateway(log, hub, codec)
	if err != nil {
		return nil, err
	}

	hostelHandler, err := hostelapi.NewHandler(log, hostelapi.DefaultConfig(), ids, hostelStore, codec, hub)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		sessions: sessions,
		hub:      hub,
		ws:       ws,
		auth:     auth,
		hostel:   hostelHandler,
		metrics:  NewMetrics(hub.Connections),
	}, nil
}

// Run starts the HTTP server and background workers, blocking until context
// cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.pool, a.auth, a.hostel, a.ws, a.metrics)

	handler := WithSecurityHeaders(mux)
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithRequestLogging(handler, a.log, a.metrics)
	handler = WithRequestID(handler)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server.fail", "err", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.runSessionSweeper(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("server.shutdown.fail", "err", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	a.pool.Close()
	a.log.Info("server.stopped")
	return err
}

// runSessionSweeper deletes expired sessions on a fixed cadence so the
// sessions table does not accumulate dead rows.
func (a *App) runSessionSweeper(ctx context.Context) {
	if a.cfg.SessionSweepInterval <= 0 {
		return
	}

	t := time.NewTicker(a.cfg.SessionSweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.sessions.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				a.log.Error("session.sweep.fail", "err", err)
				continue
			}
			if n > 0 {
				a.log.Info("session.sweep", "deleted", n)
			}
		}
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
