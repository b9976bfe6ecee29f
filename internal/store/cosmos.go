package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	apierrors "github.com/advayc/visits/internal/errors"
)

// Cosmos stores the record in an Azure Cosmos DB container.
type Cosmos struct {
	container *azcosmos.ContainerClient
	pk        azcosmos.PartitionKey
}

// OpenCosmos connects to resumedb/visitors using a Cosmos connection string.
func OpenCosmos(_ context.Context, conn string) (Store, error) {
	client, err := azcosmos.NewClientFromConnectionString(conn, nil)
	if err != nil {
		return nil, backendError("connect", apierrors.KindUnknown, err)
	}
	container, err := client.NewContainer(DatabaseName, ContainerName)
	if err != nil {
		return nil, backendError("connect", apierrors.KindUnknown, err)
	}
	return &Cosmos{container: container, pk: azcosmos.NewPartitionKeyString(CounterID)}, nil
}

func (c *Cosmos) ReadCounter(ctx context.Context) (Record, error) {
	resp, err := c.container.ReadItem(ctx, c.pk, CounterID, nil)
	if err != nil {
		return Record{}, cosmosError("read", err)
	}
	var rec Record
	if err := json.Unmarshal(resp.Value, &rec); err != nil {
		return Record{}, backendError("decode", apierrors.KindInternal, err)
	}
	return rec, nil
}

func (c *Cosmos) CreateCounter(ctx context.Context, count int64) error {
	body, err := json.Marshal(Record{ID: CounterID, Count: count})
	if err != nil {
		return backendError("encode", apierrors.KindInternal, err)
	}
	if _, err := c.container.CreateItem(ctx, c.pk, body, nil); err != nil {
		return cosmosError("create", err)
	}
	return nil
}

func (c *Cosmos) ReplaceCounter(ctx context.Context, rec Record) error {
	rec.ID = CounterID
	body, err := json.Marshal(rec)
	if err != nil {
		return backendError("encode", apierrors.KindInternal, err)
	}
	if _, err := c.container.ReplaceItem(ctx, c.pk, CounterID, body, nil); err != nil {
		return cosmosError("replace", err)
	}
	return nil
}

// Close is a no-op; the Cosmos client holds no closable resources.
func (c *Cosmos) Close() error { return nil }

func cosmosError(op string, err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return notFound(err)
		case http.StatusConflict:
			return conflict(err)
		case http.StatusUnauthorized:
			return backendError(op, apierrors.KindUnauthorized, err)
		}
	}
	return backendError(op, apierrors.KindUnknown, err)
}
