package stores

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MrEthical07/authstate/keyspace"
	"github.com/redis/go-redis/v9"
)

// IDAllocator mints session ids from a shared INCR counter. Ids are never
// handed out twice, even when the session that requested one fails to open.
type IDAllocator struct {
	redis redis.UniversalClient
	key   string
}

func NewIDAllocator(client redis.UniversalClient, namespace string) *IDAllocator {
	return &IDAllocator{
		redis: client,
		key:   keyspace.CounterKey(namespace),
	}
}

// Next increments the counter and returns the new value.
func (a *IDAllocator) Next(ctx context.Context) (string, error) {
	n, err := a.redis.Incr(ctx, a.key).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return strconv.FormatInt(n, 10), nil
}
