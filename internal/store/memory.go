package store

import (
	"context"

	"gocloud.dev/docstore"
	"gocloud.dev/docstore/memdocstore"
	"gocloud.dev/gcerrors"

	apierrors "github.com/advayc/visits/internal/errors"
)

// Memory keeps the record in an in-process document collection. The record
// has no revision field, so replaces are unconditional like the other backends.
type Memory struct {
	coll *docstore.Collection
}

// NewMemory opens an empty collection, seeded with count when it is non-nil.
func NewMemory(ctx context.Context, seed *int64) (*Memory, error) {
	coll, err := memdocstore.OpenCollection("id", nil)
	if err != nil {
		return nil, backendError("connect", apierrors.KindInternal, err)
	}
	m := &Memory{coll: coll}
	if seed != nil {
		if err := m.CreateCounter(ctx, *seed); err != nil {
			coll.Close()
			return nil, err
		}
	}
	return m, nil
}

// Opener returns an Opener that hands out m whatever the connection secret.
// Closing an opened handle leaves m usable; only m.Close releases it.
func (m *Memory) Opener() Opener {
	return func(context.Context, string) (Store, error) { return sharedMemory{m}, nil }
}

type sharedMemory struct{ *Memory }

func (sharedMemory) Close() error { return nil }

func (m *Memory) ReadCounter(ctx context.Context) (Record, error) {
	rec := Record{ID: CounterID}
	if err := m.coll.Get(ctx, &rec); err != nil {
		return Record{}, docstoreError("read", err)
	}
	return rec, nil
}

func (m *Memory) CreateCounter(ctx context.Context, count int64) error {
	if err := m.coll.Create(ctx, &Record{ID: CounterID, Count: count}); err != nil {
		return docstoreError("create", err)
	}
	return nil
}

func (m *Memory) ReplaceCounter(ctx context.Context, rec Record) error {
	rec.ID = CounterID
	if err := m.coll.Replace(ctx, &rec); err != nil {
		return docstoreError("replace", err)
	}
	return nil
}

func (m *Memory) Close() error { return m.coll.Close() }

func docstoreError(op string, err error) error {
	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		return notFound(err)
	case gcerrors.AlreadyExists:
		return conflict(err)
	case gcerrors.PermissionDenied:
		return backendError(op, apierrors.KindUnauthorized, err)
	}
	return backendError(op, apierrors.KindUnknown, err)
}
