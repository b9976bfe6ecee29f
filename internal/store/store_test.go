package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	apierrors "github.com/advayc/visits/internal/errors"
)

func newMemory(t *testing.T, seed *int64) *Memory {
	t.Helper()
	m, err := NewMemory(context.Background(), seed)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMemoryReadMissing(t *testing.T) {
	m := newMemory(t, nil)

	_, err := m.ReadCounter(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadCounter err = %v, want ErrNotFound", err)
	}
	if apierrors.KindOf(err) != apierrors.KindNotFound {
		t.Errorf("KindOf = %v", apierrors.KindOf(err))
	}
}

func TestMemoryCreateReadReplace(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t, nil)

	if err := m.CreateCounter(ctx, 0); err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}
	rec, err := m.ReadCounter(ctx)
	if err != nil {
		t.Fatalf("ReadCounter: %v", err)
	}
	if rec.ID != CounterID || rec.Count != 0 {
		t.Errorf("record = %+v", rec)
	}

	rec.Count = 7
	if err := m.ReplaceCounter(ctx, rec); err != nil {
		t.Fatalf("ReplaceCounter: %v", err)
	}
	rec, err = m.ReadCounter(ctx)
	if err != nil {
		t.Fatalf("ReadCounter: %v", err)
	}
	if rec.Count != 7 {
		t.Errorf("Count = %d, want 7", rec.Count)
	}
}

func TestMemoryCreateConflict(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t, nil)

	if err := m.CreateCounter(ctx, 1); err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}
	err := m.CreateCounter(ctx, 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second CreateCounter err = %v, want ErrConflict", err)
	}
	if got := apierrors.StatusCode(err); got != http.StatusInternalServerError {
		t.Errorf("conflict status = %d, want 500", got)
	}
}

func TestMemoryReplaceMissing(t *testing.T) {
	m := newMemory(t, nil)
	err := m.ReplaceCounter(context.Background(), Record{Count: 3})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReplaceCounter err = %v, want ErrNotFound", err)
	}
}

func TestMemorySeed(t *testing.T) {
	seed := int64(41)
	m := newMemory(t, &seed)

	rec, err := m.ReadCounter(context.Background())
	if err != nil {
		t.Fatalf("ReadCounter: %v", err)
	}
	if rec.Count != 41 {
		t.Errorf("Count = %d, want 41", rec.Count)
	}

	s, err := m.Opener()(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Opener: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("handle Close: %v", err)
	}
	if _, err := m.ReadCounter(context.Background()); err != nil {
		t.Errorf("store unusable after closing a handle: %v", err)
	}
}

func cosmosResponse(t *testing.T, status int) error {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://acct.documents.azure.com/dbs/resumedb/colls/visitors/docs/visitor-count", nil)
	if err != nil {
		t.Fatal(err)
	}
	return runtime.NewResponseError(&http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(`{"code":"X","message":"x"}`)),
		Request:    req,
	})
}

func TestCosmosError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
		want     apierrors.Kind
	}{
		{"missing", http.StatusNotFound, ErrNotFound, apierrors.KindNotFound},
		{"conflict", http.StatusConflict, ErrConflict, apierrors.KindConflict},
		{"bad key", http.StatusUnauthorized, nil, apierrors.KindUnauthorized},
		{"throttled", http.StatusTooManyRequests, nil, apierrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cosmosError("read", cosmosResponse(t, tt.status))
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v) = false", tt.sentinel)
			}
			if got := apierrors.KindOf(err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenCosmosBadConnectionString(t *testing.T) {
	if _, err := OpenCosmos(context.Background(), "not-a-connection-string"); err == nil {
		t.Fatal("expected error for malformed connection string")
	}
}

func TestOpenRedis(t *testing.T) {
	s, err := OpenRedis(context.Background(), "redis://localhost:6379/0")
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer s.Close()

	if _, err := OpenRedis(context.Background(), "http://localhost"); err == nil {
		t.Error("expected error for non-redis URL")
	}
}

func TestRedisKey(t *testing.T) {
	if RedisKey != "resumedb:visitors:visitor-count" {
		t.Errorf("RedisKey = %q", RedisKey)
	}
}
