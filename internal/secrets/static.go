package secrets

import (
	"context"

	apierrors "github.com/advayc/visits/internal/errors"
)

// StaticVault serves secrets from memory. It is used by the dev server.
type StaticVault map[string]string

func (v StaticVault) GetSecret(_ context.Context, name string) (string, error) {
	s, ok := v[name]
	if !ok {
		return "", apierrors.New(apierrors.KindNotFound, "secret "+name+" not found")
	}
	return s, nil
}

// Open returns v for any vault URL.
func (v StaticVault) Open(context.Context, string) (Vault, error) {
	return v, nil
}
