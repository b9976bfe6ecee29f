// Package store persists the visitor counter record.
package store

import (
	"context"
	"fmt"

	apierrors "github.com/advayc/visits/internal/errors"
)

const (
	// CounterID identifies the single counter record. It is also the partition key.
	CounterID = "visitor-count"

	DatabaseName  = "resumedb"
	ContainerName = "visitors"
)

// Record is the persisted counter document.
type Record struct {
	ID    string `json:"id" docstore:"id"`
	Count int64  `json:"count" docstore:"count"`
}

var (
	// ErrNotFound is returned by ReadCounter and ReplaceCounter when no record exists.
	ErrNotFound = apierrors.New(apierrors.KindNotFound, "counter record not found")
	// ErrConflict is returned by CreateCounter when the record already exists.
	ErrConflict = apierrors.New(apierrors.KindConflict, "counter record already exists")
)

// Store reads and writes the counter record. Implementations apply no
// concurrency control: ReplaceCounter overwrites unconditionally.
type Store interface {
	ReadCounter(ctx context.Context) (Record, error)
	CreateCounter(ctx context.Context, count int64) error
	ReplaceCounter(ctx context.Context, rec Record) error
	Close() error
}

// Opener builds a Store from a connection secret.
type Opener func(ctx context.Context, conn string) (Store, error)

func notFound(cause error) error {
	return fmt.Errorf("%w: %v", ErrNotFound, cause)
}

func conflict(cause error) error {
	return fmt.Errorf("%w: %v", ErrConflict, cause)
}

// backendError wraps any other backend fault.
func backendError(op string, kind apierrors.Kind, cause error) error {
	return apierrors.Wrap(cause, kind, "counter store "+op)
}
