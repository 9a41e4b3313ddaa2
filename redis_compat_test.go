//go:build integration

package authstate_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// redisMode is one backend the compatibility suite runs against.
type redisMode struct {
	name     string
	// multiKey reports whether DEL over one session's keys is allowed.
	// Cluster rejects it because the layout carries no hash tags.
	multiKey bool
	setup    func(t *testing.T) redis.UniversalClient
}

// redisModes always includes miniredis. REDIS_ADDR, REDIS_CLUSTER_ADDRS and
// REDIS_SENTINEL_ADDRS add real backends.
func redisModes() []redisMode {
	modes := []redisMode{{
		name:     "miniredis",
		multiKey: true,
		setup: func(t *testing.T) redis.UniversalClient {
			mr := miniredis.RunT(t)
			return redis.NewClient(&redis.Options{Addr: mr.Addr()})
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name:     "standalone:" + addr,
			multiKey: true,
			setup: func(*testing.T) redis.UniversalClient {
				return redis.NewClient(&redis.Options{Addr: addr})
			},
		})
	}
	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(*testing.T) redis.UniversalClient {
				return redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
			},
		})
	}
	if addrs := os.Getenv("REDIS_SENTINEL_ADDRS"); addrs != "" {
		master := os.Getenv("REDIS_SENTINEL_MASTER")
		if master == "" {
			master = "mymaster"
		}
		modes = append(modes, redisMode{
			name:     "sentinel",
			multiKey: true,
			setup: func(*testing.T) redis.UniversalClient {
				return redis.NewFailoverClient(&redis.FailoverOptions{
					MasterName:    master,
					SentinelAddrs: splitAddrs(addrs),
				})
			},
		})
	}
	return modes
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

func compatStore(t *testing.T, mode redisMode) (*authstate.Store, redis.UniversalClient) {
	t.Helper()
	rdb := mode.setup(t)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("cannot connect to %s: %v", mode.name, err)
	}

	// A fresh namespace per test keeps runs against shared servers apart.
	cfg := authstate.DefaultConfig()
	cfg.Namespace = "compat-" + uuid.NewString()
	cfg.TTL = time.Hour
	store, err := authstate.New().WithRedis(rdb).WithConfig(cfg).Build()
	require.NoError(t, err)
	return store, rdb
}

func TestRedisCompatSessionLifecycle(t *testing.T) {
	for _, mode := range redisModes() {
		t.Run(mode.name, func(t *testing.T) {
			store, rdb := compatStore(t, mode)
			ctx := context.Background()
			ns := store.Namespace()

			sess, err := store.Open(ctx, authstate.OpenOptions{})
			require.NoError(t, err)
			require.Equal(t, "1", sess.ID())

			sess.SetCredentials(map[string]any{"noiseKey": []byte{0, 255, 7}})
			require.NoError(t, sess.SaveCredentials(ctx))
			require.NoError(t, sess.Set(ctx, authstate.KeyUpdates{
				authstate.PreKey:     {"5": map[string]any{"k": "v"}, "7": nil},
				authstate.SessionKey: {"a": []byte("record")},
			}))

			raw, err := rdb.HGet(ctx, ns+":session:1:pre-key", "5").Result()
			require.NoError(t, err)
			require.Equal(t, `{"k":"v"}`, raw)

			ttl, err := rdb.TTL(ctx, ns+":session:1:session").Result()
			require.NoError(t, err)
			require.Greater(t, ttl, 59*time.Minute)

			got, err := sess.Get(ctx, authstate.SessionKey, "a", "b")
			require.NoError(t, err)
			require.Equal(t, map[string]any{"a": []byte("record"), "b": nil}, got)

			reopened, err := store.Open(ctx, authstate.OpenOptions{SessionID: "1"})
			require.NoError(t, err)
			require.Equal(t, map[string]any{"noiseKey": []byte{0, 255, 7}}, reopened.Credentials())

			if !mode.multiKey {
				return
			}
			n, err := sess.Delete(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(3), n)
		})
	}
}
