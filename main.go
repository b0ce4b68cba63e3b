// Command fleetmon runs the manager: it ingests telemetry pushed by agents,
// persists it to MySQL, keeps the live scoreboard, and serves the query API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"fleetmon/internal/hostmgr"
	"fleetmon/internal/query"
	"fleetmon/internal/server"
	"fleetmon/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fleetmon: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	dbCfg := store.Config{
		Host:     envOr("FLEETMON_DB_HOST", "127.0.0.1"),
		Port:     envInt("FLEETMON_DB_PORT", 3306),
		User:     envOr("FLEETMON_DB_USER", "root"),
		Password: os.Getenv("FLEETMON_DB_PASSWORD"),
		Database: envOr("FLEETMON_DB_NAME", "fleetmon"),
		Timeout:  10 * time.Second,
	}
	listenAddr := envOr("FLEETMON_LISTEN", "0.0.0.0:50051")
	if len(os.Args) > 1 {
		listenAddr = os.Args[1]
	}

	client, err := store.NewClient(dbCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	st := store.New(client, log)
	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	log.Sugar().Infow("database ready",
		"host", dbCfg.Host, "port", dbCfg.Port, "database", dbCfg.Database)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager := hostmgr.New(st, log,
		hostmgr.WithMetrics(hostmgr.NewMetrics(registry)))
	manager.Start()
	defer manager.Stop()

	queries := query.New(st, log)

	srv := server.New(manager, queries, log,
		server.WithMetrics(server.NewServerMetrics(registry)),
		server.WithGatherer(registry))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(listenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return nil
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop http server: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
