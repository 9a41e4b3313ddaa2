// Command authstate inspects and manages stored sessions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// GlobalOptions are the flags shared by every subcommand.
type GlobalOptions struct {
	RedisAddr string
	Namespace string
	TTL       time.Duration
	Memory    bool

	store   *authstate.Store
	cleanup []func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd, globalOptions := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	globalOptions.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *GlobalOptions) {
	globalOptions := &GlobalOptions{}
	rootCmd := &cobra.Command{
		Use:          "authstate",
		Short:        "Inspect and manage sessions stored in Redis",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return globalOptions.open(cmd)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalOptions.RedisAddr, "redis-addr", "", "redis address (default from AUTHSTATE_REDIS_ADDRS)")
	flags.StringVar(&globalOptions.Namespace, "namespace", "", "key namespace (default from AUTHSTATE_NAMESPACE)")
	flags.DurationVar(&globalOptions.TTL, "ttl", 0, "expiry applied to writes (default from AUTHSTATE_TTL)")
	flags.BoolVar(&globalOptions.Memory, "memory", false, "use an in-process miniredis instead of a server")

	registerSessionCommands(rootCmd, globalOptions)
	registerKeyCommands(rootCmd, globalOptions)
	return rootCmd, globalOptions
}

func (o *GlobalOptions) open(cmd *cobra.Command) error {
	cfg, err := authstate.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("namespace") {
		cfg.Namespace = o.Namespace
	}
	if flags.Changed("ttl") {
		cfg.TTL = o.TTL
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addrs = []string{o.RedisAddr}
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if o.Memory {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		o.cleanup = append(o.cleanup, mr.Close)
		cfg.Redis.Addrs = []string{mr.Addr()}
	}

	conn, err := authstate.Connect(cmd.Context(), cfg.Redis, logger)
	if err != nil {
		o.close()
		return err
	}
	o.cleanup = append(o.cleanup, func() { _ = conn.Close() })

	o.store, err = authstate.New().
		WithConfig(cfg).
		WithConnection(conn).
		WithLogger(logger).
		Build()
	if err != nil {
		o.close()
		return err
	}
	return nil
}

func (o *GlobalOptions) close() {
	for i := len(o.cleanup) - 1; i >= 0; i-- {
		o.cleanup[i]()
	}
	o.cleanup = nil
}
