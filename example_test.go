package authstate_test

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authstate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// ExampleNew builds a store on an existing client.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	store, _ := authstate.New().
		WithRedis(rdb).
		WithCredentialsFactory(func() any { return map[string]any{"registered": false} }).
		Build()
	_ = store
}

// ExampleStore_Open shows the full lifecycle of one session.
func ExampleStore_Open() {
	mr, _ := miniredis.Run()
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	store, _ := authstate.New().WithRedis(rdb).Build()

	sess, _ := store.Open(ctx, authstate.OpenOptions{})
	fmt.Println("id:", sess.ID(), "created:", sess.Created())

	_ = sess.SaveCredentials(ctx)
	_ = sess.Set(ctx, authstate.KeyUpdates{
		authstate.PreKey:     {"5": map[string]any{"k": "v"}},
		authstate.SessionKey: {"a": []byte{1, 2}},
		authstate.DeviceList: {"u": []any{"0"}},
	})

	items, _ := sess.Get(ctx, authstate.PreKey, "5", "7")
	fmt.Println("pre-key 5:", items["5"], "pre-key 7:", items["7"])

	removed, _ := sess.Delete(ctx)
	fmt.Println("removed:", removed)
	// Output:
	// id: 1 created: true
	// pre-key 5: map[k:v] pre-key 7: <nil>
	// removed: 4
}
