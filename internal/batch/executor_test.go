package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	calls  int
	total  int
	failed int
}

func (r *recordingObserver) ObserveBatch(total, failed int, _ time.Duration) {
	r.calls++
	r.total = total
	r.failed = failed
}

func newExecutorTest(t *testing.T) (*Executor, *miniredis.Miniredis, *redis.Client, *recordingObserver) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	obs := &recordingObserver{}
	return NewExecutor(rdb, zerolog.Nop(), obs), mr, rdb, obs
}

func TestExecEmptyBatchIsNoop(t *testing.T) {
	exec, mr, rdb, obs := newExecutorTest(t)
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	before := mr.CommandCount()
	results, err := exec.Exec(ctx, New())
	require.NoError(t, err)
	require.Nil(t, results)

	results, err = exec.Exec(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, results)

	require.Equal(t, before, mr.CommandCount(), "empty batch must not reach the store")
	require.Zero(t, obs.calls)
}

func TestExecResultsInSubmissionOrder(t *testing.T) {
	exec, mr, _, obs := newExecutorTest(t)
	ctx := context.Background()

	b := New()
	b.HSet("h", []Field{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}})
	b.Expire("h", time.Minute)
	b.HDel("h", "a", "missing")
	b.Del("absent")

	results, err := exec.Exec(ctx, b)
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.Equal(t, CmdHSet, results[0].Command)
	require.Equal(t, int64(2), results[0].Val)
	require.Equal(t, CmdExpire, results[1].Command)
	require.Equal(t, true, results[1].Val)
	require.Equal(t, CmdHDel, results[2].Command)
	require.Equal(t, int64(1), results[2].Val)
	require.Equal(t, CmdDel, results[3].Command)
	require.Equal(t, int64(0), results[3].Val)

	require.Equal(t, "2", mr.HGet("h", "b"))
	require.False(t, mr.Exists("absent"))
	require.Equal(t, time.Minute, mr.TTL("h"))

	require.Equal(t, 1, obs.calls)
	require.Equal(t, 4, obs.total)
	require.Zero(t, obs.failed)
}

func TestExecPartialFailureKeepsSuccesses(t *testing.T) {
	exec, mr, _, obs := newExecutorTest(t)
	ctx := context.Background()

	// String keys make hash commands fail with WRONGTYPE.
	require.NoError(t, mr.Set("str1", "x"))
	require.NoError(t, mr.Set("str2", "y"))

	b := New()
	b.HSet("str1", []Field{{Name: "f", Value: "v"}})
	b.HSet("h1", []Field{{Name: "f", Value: "v1"}})
	b.HDel("str2", "f")
	b.Expire("h1", time.Hour)
	b.HSet("h2", []Field{{Name: "g", Value: "v2"}})
	require.Equal(t, 5, b.Len())

	results, err := exec.Exec(ctx, b)
	require.Error(t, err)
	require.Len(t, results, 5)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	require.Equal(t, 2, batchErr.Failed)
	require.Equal(t, 5, batchErr.Total)
	require.Equal(t, "pipeline: 2/5 commands failed", batchErr.Error())
	require.Len(t, batchErr.Errors, 2)
	require.Equal(t, 0, batchErr.Errors[0].Index)
	require.Equal(t, 2, batchErr.Errors[1].Index)
	require.Equal(t, []string{"str2"}, batchErr.Errors[1].Keys)

	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	require.Error(t, results[2].Err)
	require.NoError(t, results[3].Err)
	require.NoError(t, results[4].Err)

	require.Equal(t, "v1", mr.HGet("h1", "f"))
	require.Equal(t, "v2", mr.HGet("h2", "g"))
	require.Equal(t, time.Hour, mr.TTL("h1"))
	require.Equal(t, 2, obs.failed)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	require.Equal(t, CmdHSet, cmdErr.Command)
}

func TestExecStoreDownFailsEveryCommand(t *testing.T) {
	exec, mr, _, _ := newExecutorTest(t)
	mr.Close()

	b := New()
	b.HSet("h", []Field{{Name: "a", Value: "1"}})
	b.Expire("h", time.Second)

	_, err := exec.Exec(context.Background(), b)
	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	require.Equal(t, 2, batchErr.Failed)
	require.Equal(t, 2, batchErr.Total)
}

func TestBatchSkipsEmptyStages(t *testing.T) {
	b := New()
	b.HSet("h", nil)
	b.HDel("h")
	b.Del()
	b.Expire("h", 0)
	require.Zero(t, b.Len())

	fields := []string{"a"}
	b.HDel("h", fields...)
	fields[0] = "mutated"
	cmds := b.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, CmdHDel, cmds[0].Name)
}
