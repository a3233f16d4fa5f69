package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
)

type HTTPServer struct {
	srv *http.Server
}

// StartHTTP поднимает /healthz, /metrics и /loglevel (GET — текущий уровень, PUT — новый).
// db может быть nil, если сессии в памяти; level — nil, если менять уровень нельзя.
func StartHTTP(ctx context.Context, addr string, db *sql.DB, level http.Handler, log *zap.Logger) *HTTPServer {
	mux := newMux(db, level)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", zap.String("addr", addr), zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}

func newMux(db *sql.DB, level http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz(db))
	mux.Handle("/metrics", metrics.Handler())
	if level != nil {
		mux.Handle("/loglevel", level)
	}
	return mux
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
			defer cancel()
			t0 := time.Now()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
			metrics.ObserveDBPing(time.Since(t0))
		}
		_, _ = w.Write([]byte("ok"))
	}
}
