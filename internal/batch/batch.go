package batch

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Command names as sent on the wire.
const (
	CmdHSet   = "HSET"
	CmdHDel   = "HDEL"
	CmdExpire = "EXPIRE"
	CmdDel    = "DEL"
)

// Field is one hash field staged by [Batch.HSet].
type Field struct {
	Name  string
	Value string
}

// Command is a staged mutation. Name and Keys describe it for error reports.
type Command struct {
	Name string
	Keys []string

	stage func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder
}

// Batch is an ordered list of staged mutations. It is not safe for
// concurrent use; build one per call and discard it after [Executor.Exec].
type Batch struct {
	cmds []Command
}

// New returns an empty batch.
func New() *Batch {
	return &Batch{}
}

// HSet stages HSET key f1 v1 f2 v2 ... Fields keep their given order. An
// empty field list stages nothing.
func (b *Batch) HSet(key string, fields []Field) {
	if len(fields) == 0 {
		return
	}
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Name, f.Value)
	}
	b.cmds = append(b.cmds, Command{
		Name: CmdHSet,
		Keys: []string{key},
		stage: func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
			return pipe.HSet(ctx, key, args...)
		},
	})
}

// HDel stages HDEL key field...
func (b *Batch) HDel(key string, fields ...string) {
	if len(fields) == 0 {
		return
	}
	fields = append([]string(nil), fields...)
	b.cmds = append(b.cmds, Command{
		Name: CmdHDel,
		Keys: []string{key},
		stage: func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
			return pipe.HDel(ctx, key, fields...)
		},
	})
}

// Expire stages EXPIRE key seconds. Non-positive ttls stage nothing.
func (b *Batch) Expire(key string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b.cmds = append(b.cmds, Command{
		Name: CmdExpire,
		Keys: []string{key},
		stage: func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
			return pipe.Expire(ctx, key, ttl)
		},
	})
}

// Del stages DEL key...
func (b *Batch) Del(keys ...string) {
	if len(keys) == 0 {
		return
	}
	keys = append([]string(nil), keys...)
	b.cmds = append(b.cmds, Command{
		Name: CmdDel,
		Keys: keys,
		stage: func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
			return pipe.Del(ctx, keys...)
		},
	})
}

// Len returns the number of staged commands.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.cmds)
}

// Commands returns the staged commands in submission order.
func (b *Batch) Commands() []Command {
	if b == nil {
		return nil
	}
	out := make([]Command, len(b.cmds))
	copy(out, b.cmds)
	return out
}
