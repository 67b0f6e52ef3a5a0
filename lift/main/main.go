package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/michael-deng/elevator/config"
	"github.com/michael-deng/elevator/console"
	"github.com/michael-deng/elevator/lift"
	"github.com/michael-deng/elevator/logger"
)

var Log = logger.GetLogger()

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", "", ".env file with LIFT_* overrides")
	restorePath := flag.String("restore", "", "start from a fleet state saved with the save command")
	auto := flag.Bool("auto", false, "tick on the configured interval instead of only on the tick command")
	logLevel := flag.String("log-level", "", "trace, debug, info, warn, error or disabled")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		fail(err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Finish(); err != nil {
		fail(err)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fail(err)
	}
	logger.GetLoggerConfigured(level)

	var sys *lift.System
	if *restorePath != "" {
		snap, err := console.LoadSnapshot(*restorePath)
		if err != nil {
			fail(err)
		}
		sys, err = lift.Restore(snap)
		if err != nil {
			fail(err)
		}
	} else {
		sys, err = cfg.Build()
		if err != nil {
			fail(err)
		}
	}
	Log.Info().Msgf("System %s serving floors %s..%s with %d cars", cfg.Name, sys.Bottom(), sys.Top(), len(sys.Cars()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickEvery := cfg.TickInterval
	if !*auto {
		tickEvery = 0
	}
	srv := lift.NewServer(sys)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx, tickEvery); err != nil && !errors.Is(err, context.Canceled) {
			Log.Error().Err(err).Msg("Server stopped")
		}
	}()

	// Reading stdin does not watch ctx, so a signal must not wait for it.
	consoleDone := make(chan error, 1)
	go func() { consoleDone <- console.New(srv, os.Stdout).Run(ctx, os.Stdin) }()
	select {
	case err = <-consoleDone:
	case <-ctx.Done():
	}
	stop()
	wg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, lift.ErrStopped) {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "lift:", err)
	os.Exit(1)
}
