// Command agent runs on every monitored host. It collects telemetry
// snapshots and pushes them to the manager on a fixed interval.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fleetmon/internal/agent"
	"fleetmon/internal/client"
	"fleetmon/internal/collector"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agent: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg := agent.ConfigFromEnv()

	collectorCfg := collector.DefaultCollectorConfig()
	if err := collectorCfg.Validate(); err != nil {
		return fmt.Errorf("collector config: %w", err)
	}

	pusher, err := agent.NewPusher(
		collector.NewSystemCollector(collectorCfg),
		client.New(cfg.ManagerURL),
		cfg.PushInterval,
		log,
	)
	if err != nil {
		return err
	}

	if err := pusher.Start(context.Background()); err != nil {
		return err
	}
	log.Info("agent started",
		zap.String("manager", cfg.ManagerURL),
		zap.Duration("interval", cfg.PushInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.String("signal", sig.String()))

	pusher.Stop()
	return nil
}
