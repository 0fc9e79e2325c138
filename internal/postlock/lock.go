package postlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "postlock:"
	retryInterval = 100 * time.Millisecond
)

// Locker serializes pipeline work per post with a Redis lease. Both the
// queue worker and human actions take the lease before touching a post, so
// an approve can never interleave with a running stage on the same post.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Locker whose leases expire after ttl, bounding how long a
// crashed holder can block a post.
func New(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Acquire blocks until the lease on postID is held or ctx is done. The
// returned func releases the lease; release is owner-checked, so a lease
// that expired and was re-acquired elsewhere is never deleted by the old
// holder.
func (l *Locker) Acquire(ctx context.Context, postID string) (func(), error) {
	key := keyPrefix + postID
	owner := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		current, err := l.client.Get(releaseCtx, key).Result()
		if err != nil || current != owner {
			return
		}
		l.client.Del(releaseCtx, key)
	}
	return release, nil
}
