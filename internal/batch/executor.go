package batch

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Result is the outcome of one command.
type Result struct {
	Command string
	Keys    []string
	Val     interface{}
	Err     error
}

// Observer receives one call per submitted pipeline.
type Observer interface {
	ObserveBatch(total, failed int, took time.Duration)
}

// Executor submits batches over a shared client.
type Executor struct {
	redis    redis.UniversalClient
	logger   zerolog.Logger
	observer Observer
}

// NewExecutor creates an [Executor]. observer may be nil.
func NewExecutor(client redis.UniversalClient, logger zerolog.Logger, observer Observer) *Executor {
	return &Executor{
		redis:    client,
		logger:   logger.With().Str("component", "batch").Logger(),
		observer: observer,
	}
}

// Exec sends every staged command in one pipeline and returns their results
// in submission order. If any command failed the returned error is a
// [*BatchError]; the results are still returned in full.
func (e *Executor) Exec(ctx context.Context, b *Batch) ([]Result, error) {
	if b.Len() == 0 {
		return nil, nil
	}

	pipe := e.redis.Pipeline()
	cmders := make([]redis.Cmder, len(b.cmds))
	for i, c := range b.cmds {
		cmders[i] = c.stage(ctx, pipe)
	}

	start := time.Now()
	// Exec only reports the first failure; per-command errors are read below.
	_, execErr := pipe.Exec(ctx)
	took := time.Since(start)
	if errors.Is(execErr, redis.Nil) {
		execErr = nil
	}
	// A pipeline that never reached the server (dial or write failure) may
	// leave every command without an error of its own.
	unsent := execErr != nil && !hasCmdErr(cmders)

	results := make([]Result, len(cmders))
	var failures []*CommandError
	for i, cmder := range cmders {
		c := b.cmds[i]
		res := Result{Command: c.Name, Keys: c.Keys, Val: cmdValue(cmder)}
		err := cmder.Err()
		if errors.Is(err, redis.Nil) {
			err = nil
		}
		if err == nil && unsent {
			err = execErr
		}
		if err != nil {
			res.Err = err
			failures = append(failures, &CommandError{
				Index:   i,
				Command: c.Name,
				Keys:    c.Keys,
				Err:     err,
			})
			e.logger.Debug().
				Int("index", i).
				Str("command", c.Name).
				Strs("keys", c.Keys).
				Err(err).
				Msg("pipelined command failed")
		}
		results[i] = res
	}

	if e.observer != nil {
		e.observer.ObserveBatch(len(cmders), len(failures), took)
	}

	if len(failures) > 0 {
		return results, &BatchError{
			Failed: len(failures),
			Total:  len(cmders),
			Errors: failures,
		}
	}
	return results, nil
}

func hasCmdErr(cmders []redis.Cmder) bool {
	for _, c := range cmders {
		if err := c.Err(); err != nil && !errors.Is(err, redis.Nil) {
			return true
		}
	}
	return false
}

func cmdValue(cmder redis.Cmder) interface{} {
	switch c := cmder.(type) {
	case *redis.IntCmd:
		return c.Val()
	case *redis.BoolCmd:
		return c.Val()
	case *redis.StatusCmd:
		return c.Val()
	case *redis.StringCmd:
		return c.Val()
	default:
		return nil
	}
}
