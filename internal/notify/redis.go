package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisContainer stores the toasts of one page in a Redis hash so every
// dashboard instance sees the same toast feed.
type RedisContainer struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisContainer builds the container for pageID. The hash expires ttl
// after its last write.
func NewRedisContainer(client *redis.Client, pageID string, ttl time.Duration) *RedisContainer {
	return &RedisContainer{
		client: client,
		key:    strings.Join([]string{"dashboard", "toasts", pageID}, ":"),
		ttl:    ttl,
	}
}

// Append implements Container.
func (r *RedisContainer) Append(ctx context.Context, toast Toast) error {
	return r.write(ctx, toast)
}

// updateAttempts bounds retries when the page hash changes under a watch.
const updateAttempts = 5

// Update implements Container. Toasts already removed are not resurrected:
// the existence check and the write run under WATCH, so a concurrent Remove
// aborts the write and the retry sees the toast gone.
func (r *RedisContainer) Update(ctx context.Context, toast Toast) error {
	raw, err := json.Marshal(toast)
	if err != nil {
		return err
	}
	update := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, r.key, toast.ID).Result()
		if err != nil || !exists {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.queueWrite(ctx, pipe, toast.ID, raw)
			return nil
		})
		return err
	}
	for i := 0; i < updateAttempts; i++ {
		err = r.client.Watch(ctx, update, r.key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// Remove implements Container.
func (r *RedisContainer) Remove(ctx context.Context, id string) error {
	return r.client.HDel(ctx, r.key, id).Err()
}

// List implements Container, oldest first.
func (r *RedisContainer) List(ctx context.Context) ([]Toast, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	toasts := make([]Toast, 0, len(values))
	for _, raw := range values {
		var toast Toast
		if err := json.Unmarshal([]byte(raw), &toast); err != nil {
			return nil, err
		}
		toasts = append(toasts, toast)
	}
	sort.SliceStable(toasts, func(i, j int) bool {
		return toasts[i].CreatedAt.Before(toasts[j].CreatedAt)
	})
	return toasts, nil
}

func (r *RedisContainer) write(ctx context.Context, toast Toast) error {
	raw, err := json.Marshal(toast)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	r.queueWrite(ctx, pipe, toast.ID, raw)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisContainer) queueWrite(ctx context.Context, pipe redis.Pipeliner, id string, raw []byte) {
	pipe.HSet(ctx, r.key, id, raw)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
}
