package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/advayc/visits/internal/config"
	"github.com/advayc/visits/internal/metrics"
	"github.com/advayc/visits/internal/secrets"
	"github.com/advayc/visits/internal/store"
)

// FromConfig builds a Server for cfg's store backend. The cosmos and redis
// backends read their connection string from Key Vault; the memory backend
// runs entirely in process with a static vault.
func FromConfig(ctx context.Context, cfg config.Config, log *zap.Logger, m *metrics.Metrics) (*Server, error) {
	var (
		opener secrets.Opener = secrets.AzureOpener{ClientID: cfg.ClientID}
		open   store.Opener
		mem    *store.Memory
	)
	switch cfg.Backend {
	case config.BackendRedis:
		open = store.OpenRedis
	case config.BackendMemory:
		var err error
		mem, err = store.NewMemory(ctx, cfg.InitialCount)
		if err != nil {
			return nil, err
		}
		opener = secrets.StaticVault{cfg.SecretName: "memory"}
		open = mem.Opener()
	default:
		open = store.OpenCosmos
	}

	srv := New(Options{
		Resolver:    secrets.NewResolver(opener, cfg.VaultURL, cfg.SecretName),
		OpenStore:   open,
		Development: cfg.Development(),
		Logger:      log,
		Metrics:     m,
	})
	if mem != nil {
		srv.owned = mem
	}
	return srv, nil
}
