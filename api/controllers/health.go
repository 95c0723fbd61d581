package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pharmalink/pharmacy-pos/api/responses"
	"github.com/pharmalink/pharmacy-pos/pkg/config"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
)

const envHeader = "X-PharmaPOS-Env"

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the local store. A nil store pinger (memory driver) is
// always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{"store": "ok"}
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "local store unavailable").
					WithDetails(map[string]string{"store": "unreachable"}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
