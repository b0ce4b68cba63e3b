// Package client is the JSON HTTP client for the manager API, shared by the
// agent, the CLI, and the MCP server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fleetmon/internal/protocol"
)

// Client talks to one manager.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New builds a client for the manager at baseURL, e.g. "http://fleet:50051".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) post(ctx context.Context, path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", path, apiErr.Error, httpResp.StatusCode)
		}
		return fmt.Errorf("%s: unexpected status %d", path, httpResp.StatusCode)
	}

	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Push submits one telemetry snapshot.
func (c *Client) Push(ctx context.Context, info *protocol.MonitorInfo) (*protocol.PushResponse, error) {
	var resp protocol.PushResponse
	if err := c.post(ctx, "/api/v1/push", info, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Performance fetches one page of a host's samples.
func (c *Client) Performance(ctx context.Context, req *protocol.PerformanceRequest) (*protocol.PerformanceResponse, error) {
	var resp protocol.PerformanceResponse
	if err := c.post(ctx, "/api/v1/query/performance", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Trend fetches a host's bucketed or raw trend.
func (c *Client) Trend(ctx context.Context, req *protocol.TrendRequest) (*protocol.TrendResponse, error) {
	var resp protocol.TrendResponse
	if err := c.post(ctx, "/api/v1/query/trend", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Anomalies fetches threshold breaches.
func (c *Client) Anomalies(ctx context.Context, req *protocol.AnomalyRequest) (*protocol.AnomalyResponse, error) {
	var resp protocol.AnomalyResponse
	if err := c.post(ctx, "/api/v1/query/anomalies", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScoreRank fetches the fleet ranked by score.
func (c *Client) ScoreRank(ctx context.Context, req *protocol.ScoreRankRequest) (*protocol.ScoreRankResponse, error) {
	var resp protocol.ScoreRankResponse
	if err := c.post(ctx, "/api/v1/query/score-rank", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LatestScores fetches every host's latest state plus cluster aggregates.
func (c *Client) LatestScores(ctx context.Context, req *protocol.LatestScoreRequest) (*protocol.LatestScoreResponse, error) {
	var resp protocol.LatestScoreResponse
	if err := c.post(ctx, "/api/v1/query/latest-scores", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NetDetail fetches per-interface samples.
func (c *Client) NetDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.NetDetailResponse, error) {
	var resp protocol.NetDetailResponse
	if err := c.post(ctx, "/api/v1/query/net-detail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DiskDetail fetches per-device samples.
func (c *Client) DiskDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.DiskDetailResponse, error) {
	var resp protocol.DiskDetailResponse
	if err := c.post(ctx, "/api/v1/query/disk-detail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MemDetail fetches detailed memory samples.
func (c *Client) MemDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.MemDetailResponse, error) {
	var resp protocol.MemDetailResponse
	if err := c.post(ctx, "/api/v1/query/mem-detail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SoftIrqDetail fetches per-cpu softirq samples.
func (c *Client) SoftIrqDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.SoftIrqDetailResponse, error) {
	var resp protocol.SoftIrqDetailResponse
	if err := c.post(ctx, "/api/v1/query/softirq-detail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CPUCoreDetail fetches the latest per-core breakdown.
func (c *Client) CPUCoreDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.CPUCoreDetailResponse, error) {
	var resp protocol.CPUCoreDetailResponse
	if err := c.post(ctx, "/api/v1/query/cpu-core-detail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
