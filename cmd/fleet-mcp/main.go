// Command fleet-mcp serves the fleet query API as MCP tools over stdio,
// proxying to a running manager.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"fleetmon/internal/client"
	"fleetmon/internal/mcpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fleet-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Stdout carries the MCP transport; logs go to stderr.
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stderr"}
	log, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	managerURL := os.Getenv("FLEETMON_MANAGER_URL")
	if managerURL == "" {
		managerURL = "http://localhost:50051"
	}

	srv, err := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "fleetmon",
		ServerVersion: "1.0.0",
	}, client.New(managerURL), log)
	if err != nil {
		return err
	}

	log.Info("proxying manager", zap.String("manager", managerURL))
	return srv.Start(context.Background())
}
