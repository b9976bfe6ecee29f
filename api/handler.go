package api

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/advayc/visits/internal/config"
	"github.com/advayc/visits/internal/logging"
	"github.com/advayc/visits/internal/metrics"
)

// Process-wide server for serverless entrypoints (lazy init)
var (
	defaultOnce   sync.Once
	defaultServer *Server
	defaultErr    error
)

// Default returns the process-wide Server built from the environment.
func Default() (*Server, error) {
	defaultOnce.Do(func() {
		cfg, err := config.FromEnv()
		if err != nil {
			defaultErr = err
			return
		}
		log, err := logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			defaultErr = err
			return
		}
		logging.SetGlobal(log)
		defaultServer, defaultErr = FromConfig(context.Background(), cfg, log, metrics.New())
		if defaultErr == nil {
			logging.Info("visitor counter initialised",
				zap.String("backend", cfg.Backend),
				zap.String("vault", cfg.VaultURL),
			)
		}
	})
	return defaultServer, defaultErr
}

// Handler is the serverless entrypoint for /visitor and /health.
func Handler(w http.ResponseWriter, r *http.Request) {
	srv, err := Default()
	if err != nil {
		logging.Error("visitor counter misconfigured", zap.Error(err))
		rt := visitorRoute
		if matched := routeOf(r); matched != nil {
			rt = *matched
		}
		setCORS(w.Header(), rt)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Internal server error",
			Details: genericErrorText,
		})
		return
	}
	srv.ServeHTTP(w, r)
}
