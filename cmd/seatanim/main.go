package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/srgjo27/seat_animation/internal/app"
	"github.com/srgjo27/seat_animation/internal/cmd/seatanim"
	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/platform/config"
)

func main() {
	cfg, err := seatanim.ParseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			seatanim.Usage(os.Stderr)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("%s failed: %v", cfg.Command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seatanim.Config) error {
	env, err := config.Load(".env")
	if err != nil && cfg.NeedsStore() {
		return err
	}

	runner := &seatanim.Runner{EventType: env.EventType, Out: os.Stdout}
	if runner.EventType == "" {
		runner.EventType = domain.DefaultEventType
	}

	if cfg.NeedsStore() {
		a, err := app.New(ctx, env)
		if err != nil {
			return err
		}
		defer a.Close()

		runner.Deployer = a.Deployer
		runner.Verifier = a.Verifier
		runner.Cleaner = a.Cleaner
		runner.Expiry = a.Expiry
		runner.Migrator = a.Migrator
	}

	return runner.Run(ctx, cfg)
}
