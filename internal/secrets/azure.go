package secrets

import (
	"context"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	apierrors "github.com/advayc/visits/internal/errors"
)

// AzureOpener opens Azure Key Vault with a managed identity credential.
type AzureOpener struct {
	// ClientID selects a user-assigned identity. Empty uses the system identity.
	ClientID string
}

func (o AzureOpener) Open(_ context.Context, vaultURL string) (Vault, error) {
	var opts *azidentity.ManagedIdentityCredentialOptions
	if o.ClientID != "" {
		opts = &azidentity.ManagedIdentityCredentialOptions{ID: azidentity.ClientID(o.ClientID)}
	}
	cred, err := azidentity.NewManagedIdentityCredential(opts)
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.KindUnknown, "managed identity credential")
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.KindUnknown, "key vault client")
	}
	return &azureVault{client: client}, nil
}

type azureVault struct {
	client *azsecrets.Client
}

func (v *azureVault) GetSecret(ctx context.Context, name string) (string, error) {
	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", classifyAzureError(err)
	}
	if resp.Value == nil {
		return "", apierrors.New(apierrors.KindNotFound, "secret "+name+" not found")
	}
	return *resp.Value, nil
}

// classifyAzureError tags identity and HTTP failures. 403 is left to the
// message classifier, which reports it as an internal error.
func classifyAzureError(err error) error {
	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return apierrors.Wrap(err, apierrors.KindUnauthorized, "authentication failed")
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized:
			return apierrors.Wrap(err, apierrors.KindUnauthorized, "key vault unauthorized")
		case http.StatusNotFound:
			return apierrors.Wrap(err, apierrors.KindNotFound, "secret not found")
		}
	}
	return apierrors.Wrap(err, apierrors.KindUnknown, "key vault request")
}
