package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authstate"
	promexport "github.com/MrEthical07/authstate/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (set + get)")
		items       = flag.Int("items", 8, "pre-key items written per set")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		namespace   = flag.String("namespace", "loadtest", "key namespace")
		ttl         = flag.Duration("ttl", 0, "ttl for written keys; 0 disables expiry")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 || *items <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, ops, and items must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}

	conn := authstate.NewConnection(redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	}), logger)
	defer conn.Close()

	cfg := authstate.DefaultConfig()
	cfg.Namespace = *namespace
	cfg.TTL = *ttl
	store, err := authstate.New().
		WithConfig(cfg).
		WithConnection(conn).
		WithLogger(logger).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: promexport.NewPrometheusExporter(store).Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
		fmt.Printf("serving metrics on %s\n", *metricsAddr)
	}

	handles := make([]*authstate.Session, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := range handles {
		sess, err := store.Open(ctx, authstate.OpenOptions{SessionID: uuid.NewString()})
		if err != nil {
			fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
			os.Exit(1)
		}
		if err := sess.SaveCredentials(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
		handles[i] = sess
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	itemIDs := make([]string, *items)
	for i := range itemIDs {
		itemIDs[i] = strconv.Itoa(i)
	}

	setStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand, i int) error {
		sess := handles[r.Intn(len(handles))]
		preKeys := make(map[string]any, len(itemIDs))
		for _, id := range itemIDs {
			preKeys[id] = map[string]any{"keyId": i, "public": keyBytes(i, 32), "private": keyBytes(i+1, 32)}
		}
		return sess.Set(ctx, authstate.KeyUpdates{
			authstate.PreKey:     preKeys,
			authstate.SessionKey: {"peer-" + strconv.Itoa(i%64): keyBytes(i, 128)},
		})
	})
	getStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand, _ int) error {
		sess := handles[r.Intn(len(handles))]
		_, err := sess.Get(ctx, authstate.PreKey, itemIDs...)
		return err
	})

	fmt.Println("---- results ----")
	printStats("set", setStats)
	printStats("get", getStats)

	snap := store.MetricsSnapshot()
	fmt.Printf("get failures=%d set failures=%d batch failures=%d\n",
		snap.Counters[authstate.MetricKeysGetFailure],
		snap.Counters[authstate.MetricKeysSetFailure],
		snap.Counters[authstate.MetricBatchPartialFailure],
	)
}

func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	switch {
	case len(samples) == 0:
		return 0
	case p <= 0:
		return samples[0]
	case p >= 100:
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func keyBytes(seed, n int) []byte {
	out := make([]byte, n)
	for j := range out {
		out[j] = byte((seed + j*17 + 11) % 251)
	}
	return out
}
