package store

import (
	"context"
	"encoding/json"
	"errors"

	redis "github.com/redis/go-redis/v9"

	apierrors "github.com/advayc/visits/internal/errors"
)

// RedisKey is where the record document is kept.
const RedisKey = DatabaseName + ":" + ContainerName + ":" + CounterID

// Redis stores the record as a JSON document under RedisKey.
type Redis struct {
	client redis.UniversalClient
}

// OpenRedis connects using a redis:// or rediss:// URL. The server is not
// contacted until the first operation.
func OpenRedis(_ context.Context, conn string) (Store, error) {
	opt, err := redis.ParseURL(conn)
	if err != nil {
		return nil, backendError("connect", apierrors.KindInternal, err)
	}
	return NewRedis(redis.NewClient(opt)), nil
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) ReadCounter(ctx context.Context) (Record, error) {
	b, err := r.client.Get(ctx, RedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, notFound(err)
	}
	if err != nil {
		return Record{}, backendError("read", apierrors.KindUnknown, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, backendError("decode", apierrors.KindInternal, err)
	}
	return rec, nil
}

func (r *Redis) CreateCounter(ctx context.Context, count int64) error {
	body, err := json.Marshal(Record{ID: CounterID, Count: count})
	if err != nil {
		return backendError("encode", apierrors.KindInternal, err)
	}
	ok, err := r.client.SetNX(ctx, RedisKey, body, 0).Result()
	if err != nil {
		return backendError("create", apierrors.KindUnknown, err)
	}
	if !ok {
		return conflict(errors.New(RedisKey + " exists"))
	}
	return nil
}

func (r *Redis) ReplaceCounter(ctx context.Context, rec Record) error {
	rec.ID = CounterID
	body, err := json.Marshal(rec)
	if err != nil {
		return backendError("encode", apierrors.KindInternal, err)
	}
	ok, err := r.client.SetXX(ctx, RedisKey, body, 0).Result()
	if err != nil {
		return backendError("replace", apierrors.KindUnknown, err)
	}
	if !ok {
		return notFound(errors.New(RedisKey + " missing"))
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }
