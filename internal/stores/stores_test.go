package stores

import (
	"context"
	"testing"

	"github.com/MrEthical07/authstate/internal/batch"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const testNamespace = "baileys"

type storesFixture struct {
	mr    *miniredis.Miniredis
	rdb   *redis.Client
	ids   *IDAllocator
	creds *CredentialStore
	keys  *KeyMaterialStore
}

func newStoresTest(t *testing.T, normalize Normalizer) *storesFixture {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	logger := zerolog.New(nil).Level(zerolog.Disabled)
	exec := batch.NewExecutor(rdb, logger, nil)
	return &storesFixture{
		mr:    mr,
		rdb:   rdb,
		ids:   NewIDAllocator(rdb, testNamespace),
		creds: NewCredentialStore(rdb, testNamespace, logger),
		keys:  NewKeyMaterialStore(rdb, exec, testNamespace, normalize, logger),
	}
}

// warm opens the client connection so later command counts only include
// the commands under test.
func (f *storesFixture) warm(t *testing.T) {
	t.Helper()
	if err := f.rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
