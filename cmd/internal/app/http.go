package app

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	authapi "gravity/cmd/internal/auth/api"
	hostelapi "gravity/cmd/internal/hostel/api"
	"gravity/cmd/internal/realtime"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	pool *pgxpool.Pool,
	auth *authapi.Handler,
	hostel *hostelapi.Handler,
	ws *realtime.Gateway,
	metrics *Metrics,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireDB {
			if pool == nil {
				http.Error(w, "db not configured", http.StatusServiceUnavailable)
				return
			}
			if err := PingDB(r.Context(), pool, 2*time.Second); err != nil {
				log.Info("readyz.db.not_ready", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	if auth != nil {
		auth.Register(mux)
	}
	if hostel != nil {
		hostel.Register(mux)
	}
	if ws != nil {
		mux.HandleFunc("/ws", ws.HandleWS)
	}
}
