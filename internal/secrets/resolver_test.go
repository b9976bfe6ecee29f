package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	apierrors "github.com/advayc/visits/internal/errors"
)

const defaultURL = "https://azure-resume-kv-default.vault.azure.net/"

func TestVaultURL(t *testing.T) {
	r := NewResolver(StaticVault{}, defaultURL, "cosmos-connection-string")
	if got := r.VaultURL(""); got != defaultURL {
		t.Errorf("VaultURL(\"\") = %q, want %q", got, defaultURL)
	}
	if got := r.VaultURL("https://other.vault.azure.net/"); got != "https://other.vault.azure.net/" {
		t.Errorf("VaultURL(override) = %q", got)
	}
}

func TestResolveConnectionSecret(t *testing.T) {
	var seenURL string
	opener := OpenerFunc(func(_ context.Context, url string) (Vault, error) {
		seenURL = url
		return StaticVault{"cosmos-connection-string": "AccountEndpoint=x;AccountKey=y;"}, nil
	})
	r := NewResolver(opener, defaultURL, "cosmos-connection-string")

	got, err := r.ResolveConnectionSecret(context.Background(), "")
	if err != nil {
		t.Fatalf("ResolveConnectionSecret: %v", err)
	}
	if got != "AccountEndpoint=x;AccountKey=y;" {
		t.Errorf("secret = %q", got)
	}
	if seenURL != defaultURL {
		t.Errorf("opened %q, want %q", seenURL, defaultURL)
	}
}

func TestResolveConnectionSecretMissing(t *testing.T) {
	r := NewResolver(StaticVault{}, defaultURL, "cosmos-connection-string")

	_, err := r.ResolveConnectionSecret(context.Background(), "")
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %T %v", err, err)
	}
	if re.Secret != "cosmos-connection-string" || re.VaultURL != defaultURL {
		t.Errorf("RetrievalError = %+v", re)
	}
	if apierrors.KindOf(err) != apierrors.KindNotFound {
		t.Errorf("KindOf = %v, want not_found", apierrors.KindOf(err))
	}
}

func TestOpenFailure(t *testing.T) {
	opener := OpenerFunc(func(context.Context, string) (Vault, error) {
		return nil, fmt.Errorf("ManagedIdentityCredential authentication unavailable")
	})
	r := NewResolver(opener, defaultURL, "cosmos-connection-string")

	_, err := r.Open(context.Background(), "")
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if got := apierrors.StatusCode(err); got != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", got)
	}
}

func responseError(t *testing.T, status int) error {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://kv.vault.azure.net/secrets/x", nil)
	if err != nil {
		t.Fatal(err)
	}
	return runtime.NewResponseError(&http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(`{"error":{"code":"X","message":"x"}}`)),
		Request:    req,
	})
}

func TestClassifyAzureError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   int
	}{
		{"unauthorized", http.StatusUnauthorized, http.StatusUnauthorized},
		{"missing secret", http.StatusNotFound, http.StatusNotFound},
		{"forbidden", http.StatusForbidden, http.StatusInternalServerError},
		{"throttled", http.StatusTooManyRequests, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyAzureError(responseError(t, tt.status))
			if got := apierrors.KindOf(err).StatusCode(); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
