package api

import (
	"context"
	"sync"

	"github.com/advayc/visits/internal/secrets"
	"github.com/advayc/visits/internal/store"
)

// connection opens the store on first use and keeps it for later requests.
// A failed open is not remembered, so the next request tries again.
type connection struct {
	resolver *secrets.Resolver
	open     store.Opener

	mu    sync.Mutex
	store store.Store
}

func (c *connection) get(ctx context.Context) (store.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		return c.store, nil
	}

	secret, err := c.resolver.ResolveConnectionSecret(ctx, "")
	if err != nil {
		return nil, err
	}
	st, err := c.open(ctx, secret)
	if err != nil {
		return nil, err
	}
	c.store = st
	return st, nil
}

// invalidate drops st if it is still the cached store, forcing the next
// request to resolve the secret again.
func (c *connection) invalidate(st store.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == st {
		c.store = nil
		_ = st.Close()
	}
}

func (c *connection) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}
