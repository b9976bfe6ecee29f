// Package secrets resolves the store connection secret from a key vault
// using the platform's managed identity.
package secrets

import (
	"context"
	"fmt"
)

// Vault fetches secrets by name.
type Vault interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Opener acquires a credential and binds a Vault client to vaultURL.
type Opener interface {
	Open(ctx context.Context, vaultURL string) (Vault, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, vaultURL string) (Vault, error)

func (f OpenerFunc) Open(ctx context.Context, vaultURL string) (Vault, error) {
	return f(ctx, vaultURL)
}

// RetrievalError reports a failure to obtain a secret: the vault was
// unreachable, the identity was rejected or the secret does not exist.
type RetrievalError struct {
	VaultURL string
	Secret   string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve secret %q from %s: %v", e.Secret, e.VaultURL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Resolver resolves the connection secret. It holds no credentials itself;
// every call goes back to the Opener.
type Resolver struct {
	opener     Opener
	vaultURL   string
	secretName string
}

// NewResolver returns a Resolver using vaultURL unless a call overrides it.
func NewResolver(opener Opener, vaultURL, secretName string) *Resolver {
	return &Resolver{opener: opener, vaultURL: vaultURL, secretName: secretName}
}

// VaultURL returns override when set, otherwise the configured vault URL.
func (r *Resolver) VaultURL(override string) string {
	if override != "" {
		return override
	}
	return r.vaultURL
}

// Binding is a vault client bound to one endpoint.
type Binding struct {
	URL    string
	vault  Vault
	secret string
}

// Open acquires a credential and binds the vault. It does not contact the vault.
func (r *Resolver) Open(ctx context.Context, override string) (*Binding, error) {
	url := r.VaultURL(override)
	v, err := r.opener.Open(ctx, url)
	if err != nil {
		return nil, &RetrievalError{VaultURL: url, Secret: r.secretName, Err: err}
	}
	return &Binding{URL: url, vault: v, secret: r.secretName}, nil
}

// ConnectionSecret fetches the connection secret from the bound vault.
func (b *Binding) ConnectionSecret(ctx context.Context) (string, error) {
	v, err := b.vault.GetSecret(ctx, b.secret)
	if err != nil {
		return "", &RetrievalError{VaultURL: b.URL, Secret: b.secret, Err: err}
	}
	return v, nil
}

// ResolveConnectionSecret opens the vault and fetches the connection secret.
func (r *Resolver) ResolveConnectionSecret(ctx context.Context, override string) (string, error) {
	b, err := r.Open(ctx, override)
	if err != nil {
		return "", err
	}
	return b.ConnectionSecret(ctx)
}
