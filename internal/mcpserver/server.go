// Package mcpserver exposes the fleet query API as MCP tools so LLM agents
// can inspect cluster health over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"fleetmon/internal/protocol"
)

// Querier is the slice of the manager API the tools need. *client.Client
// satisfies it.
type Querier interface {
	Performance(ctx context.Context, req *protocol.PerformanceRequest) (*protocol.PerformanceResponse, error)
	Trend(ctx context.Context, req *protocol.TrendRequest) (*protocol.TrendResponse, error)
	Anomalies(ctx context.Context, req *protocol.AnomalyRequest) (*protocol.AnomalyResponse, error)
	ScoreRank(ctx context.Context, req *protocol.ScoreRankRequest) (*protocol.ScoreRankResponse, error)
	LatestScores(ctx context.Context, req *protocol.LatestScoreRequest) (*protocol.LatestScoreResponse, error)
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// Server wraps the MCP server with fleet query capabilities.
type Server struct {
	mcpServer *mcp.Server
	queries   Querier
	log       *zap.Logger
}

// NewServer creates a new MCP server instance over the given manager client.
func NewServer(cfg Config, queries Querier, log *zap.Logger) (*Server, error) {
	if queries == nil {
		return nil, fmt.Errorf("querier is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "fleetmon"
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		queries:   queries,
		log:       log,
	}
	s.registerTools()
	return s, nil
}

// LatestScoresArgs defines the input for the latest_scores tool.
type LatestScoresArgs struct {
	Profile string `json:"profile,omitempty" jsonschema:"scoring profile: balanced, high_concurrency, io_intensive, memory_sensitive"`
}

// ScoreRankArgs defines the input for the score_rank tool.
type ScoreRankArgs struct {
	Ascending bool   `json:"ascending,omitempty" jsonschema:"worst hosts first when true"`
	Page      int    `json:"page,omitempty" jsonschema:"result page, starting at 1"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"hosts per page"`
	Profile   string `json:"profile,omitempty" jsonschema:"scoring profile"`
}

// AnomaliesArgs defines the input for the anomalies tool.
type AnomaliesArgs struct {
	ServerName    string  `json:"server_name,omitempty" jsonschema:"restrict to one host"`
	LookbackHours float64 `json:"lookback_hours,omitempty" jsonschema:"how far back to scan, default 1"`
	CPUThreshold  float64 `json:"cpu_threshold,omitempty" jsonschema:"cpu percent threshold, default 80"`
	MemThreshold  float64 `json:"mem_threshold,omitempty" jsonschema:"memory percent threshold, default 90"`
	DiskThreshold float64 `json:"disk_threshold,omitempty" jsonschema:"disk utilization threshold, default 85"`
	RateThreshold float64 `json:"rate_threshold,omitempty" jsonschema:"change-rate threshold, default 0.5"`
}

// PerformanceArgs defines the input for the host_performance tool.
type PerformanceArgs struct {
	ServerName    string  `json:"server_name" jsonschema:"host to inspect"`
	LookbackHours float64 `json:"lookback_hours,omitempty" jsonschema:"how far back to read, default 1"`
	Page          int     `json:"page,omitempty" jsonschema:"result page, starting at 1"`
	PageSize      int     `json:"page_size,omitempty" jsonschema:"samples per page"`
	Profile       string  `json:"profile,omitempty" jsonschema:"scoring profile"`
}

// TrendArgs defines the input for the host_trend tool.
type TrendArgs struct {
	ServerName      string  `json:"server_name" jsonschema:"host to inspect"`
	LookbackHours   float64 `json:"lookback_hours,omitempty" jsonschema:"how far back to read, default 24"`
	IntervalSeconds int     `json:"interval_seconds,omitempty" jsonschema:"bucket width in seconds, 0 for raw samples"`
	Profile         string  `json:"profile,omitempty" jsonschema:"scoring profile"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "latest_scores",
		Description: "Get every host's latest telemetry, health score, and online status plus cluster aggregates (best/worst host, averages). Use this first to get an overview of the fleet.",
	}, s.handleLatestScores)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "score_rank",
		Description: "Rank hosts by health score. Descending order surfaces the best placement targets; ascending surfaces the most loaded hosts.",
	}, s.handleScoreRank)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "anomalies",
		Description: "Scan recent samples for threshold breaches: high CPU, memory, disk utilization, or sudden change-rate spikes. Returns WARNING and CRITICAL findings.",
	}, s.handleAnomalies)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "host_performance",
		Description: "Read one host's recent aggregate samples: CPU, load, memory, disk utilization, network rates, and health score.",
	}, s.handlePerformance)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "host_trend",
		Description: "Read one host's metric trend over time, optionally averaged into fixed buckets. Use for time-series analysis and capacity questions.",
	}, s.handleTrend)
}

func lookbackRange(hours, fallback float64) protocol.TimeRange {
	if hours <= 0 {
		hours = fallback
	}
	now := time.Now()
	return protocol.TimeRange{
		StartTime: now.Add(-time.Duration(hours * float64(time.Hour))).Unix(),
		EndTime:   now.Unix(),
	}
}

func (s *Server) handleLatestScores(ctx context.Context, _ *mcp.CallToolRequest, args LatestScoresArgs) (*mcp.CallToolResult, *protocol.LatestScoreResponse, error) {
	resp, err := s.queries.LatestScores(ctx, &protocol.LatestScoreRequest{Profile: args.Profile})
	if err != nil {
		return nil, nil, fmt.Errorf("latest scores failed: %w", err)
	}
	return nil, resp, nil
}

func (s *Server) handleScoreRank(ctx context.Context, _ *mcp.CallToolRequest, args ScoreRankArgs) (*mcp.CallToolResult, *protocol.ScoreRankResponse, error) {
	resp, err := s.queries.ScoreRank(ctx, &protocol.ScoreRankRequest{
		Ascending:  args.Ascending,
		Pagination: protocol.Pagination{Page: args.Page, PageSize: args.PageSize},
		Profile:    args.Profile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("score rank failed: %w", err)
	}
	return nil, resp, nil
}

func (s *Server) handleAnomalies(ctx context.Context, _ *mcp.CallToolRequest, args AnomaliesArgs) (*mcp.CallToolResult, *protocol.AnomalyResponse, error) {
	resp, err := s.queries.Anomalies(ctx, &protocol.AnomalyRequest{
		ServerName: args.ServerName,
		TimeRange:  lookbackRange(args.LookbackHours, 1),
		Thresholds: protocol.AnomalyThresholds{
			CPUThreshold:        args.CPUThreshold,
			MemThreshold:        args.MemThreshold,
			DiskThreshold:       args.DiskThreshold,
			ChangeRateThreshold: args.RateThreshold,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("anomaly scan failed: %w", err)
	}
	return nil, resp, nil
}

func (s *Server) handlePerformance(ctx context.Context, _ *mcp.CallToolRequest, args PerformanceArgs) (*mcp.CallToolResult, *protocol.PerformanceResponse, error) {
	if args.ServerName == "" {
		return nil, nil, fmt.Errorf("server_name is required")
	}
	resp, err := s.queries.Performance(ctx, &protocol.PerformanceRequest{
		ServerName: args.ServerName,
		TimeRange:  lookbackRange(args.LookbackHours, 1),
		Pagination: protocol.Pagination{Page: args.Page, PageSize: args.PageSize},
		Profile:    args.Profile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("performance query failed: %w", err)
	}
	return nil, resp, nil
}

func (s *Server) handleTrend(ctx context.Context, _ *mcp.CallToolRequest, args TrendArgs) (*mcp.CallToolResult, *protocol.TrendResponse, error) {
	if args.ServerName == "" {
		return nil, nil, fmt.Errorf("server_name is required")
	}
	resp, err := s.queries.Trend(ctx, &protocol.TrendRequest{
		ServerName:      args.ServerName,
		TimeRange:       lookbackRange(args.LookbackHours, 24),
		IntervalSeconds: args.IntervalSeconds,
		Profile:         args.Profile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("trend query failed: %w", err)
	}
	return nil, resp, nil
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("mcp server starting on stdio")
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}
