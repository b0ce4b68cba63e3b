package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetmon/internal/protocol"
)

// mockQuerier implements Querier for testing.
type mockQuerier struct {
	perfReq    *protocol.PerformanceRequest
	trendReq   *protocol.TrendRequest
	anomalyReq *protocol.AnomalyRequest
	rankReq    *protocol.ScoreRankRequest
	latestReq  *protocol.LatestScoreRequest
	err        error
}

func (m *mockQuerier) Performance(ctx context.Context, req *protocol.PerformanceRequest) (*protocol.PerformanceResponse, error) {
	m.perfReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &protocol.PerformanceResponse{TotalCount: 3}, nil
}

func (m *mockQuerier) Trend(ctx context.Context, req *protocol.TrendRequest) (*protocol.TrendResponse, error) {
	m.trendReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &protocol.TrendResponse{}, nil
}

func (m *mockQuerier) Anomalies(ctx context.Context, req *protocol.AnomalyRequest) (*protocol.AnomalyResponse, error) {
	m.anomalyReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &protocol.AnomalyResponse{}, nil
}

func (m *mockQuerier) ScoreRank(ctx context.Context, req *protocol.ScoreRankRequest) (*protocol.ScoreRankResponse, error) {
	m.rankReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &protocol.ScoreRankResponse{}, nil
}

func (m *mockQuerier) LatestScores(ctx context.Context, req *protocol.LatestScoreRequest) (*protocol.LatestScoreResponse, error) {
	m.latestReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &protocol.LatestScoreResponse{
		Cluster: protocol.ClusterStats{TotalServers: 2},
	}, nil
}

func TestNewServerValidation(t *testing.T) {
	if _, err := NewServer(Config{}, nil, nil); err == nil {
		t.Error("expected error for nil querier")
	}
	s, err := NewServer(Config{}, &mockQuerier{}, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s.mcpServer == nil {
		t.Error("mcp server not initialized")
	}
}

func TestHandleLatestScores(t *testing.T) {
	q := &mockQuerier{}
	s, err := NewServer(Config{}, q, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, resp, err := s.handleLatestScores(context.Background(), nil, LatestScoresArgs{Profile: "io_intensive"})
	if err != nil {
		t.Fatalf("handleLatestScores() error = %v", err)
	}
	if resp.Cluster.TotalServers != 2 {
		t.Errorf("total servers = %d", resp.Cluster.TotalServers)
	}
	if q.latestReq.Profile != "io_intensive" {
		t.Errorf("profile = %q", q.latestReq.Profile)
	}
}

func TestHandleScoreRank(t *testing.T) {
	q := &mockQuerier{}
	s, err := NewServer(Config{}, q, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = s.handleScoreRank(context.Background(), nil, ScoreRankArgs{
		Ascending: true,
		Page:      2,
		PageSize:  10,
	})
	if err != nil {
		t.Fatalf("handleScoreRank() error = %v", err)
	}
	if !q.rankReq.Ascending {
		t.Error("ascending not forwarded")
	}
	if q.rankReq.Pagination.Page != 2 || q.rankReq.Pagination.PageSize != 10 {
		t.Errorf("pagination = %+v", q.rankReq.Pagination)
	}
}

func TestHandleAnomaliesLookback(t *testing.T) {
	q := &mockQuerier{}
	s, err := NewServer(Config{}, q, nil)
	if err != nil {
		t.Fatal(err)
	}

	before := time.Now()
	_, _, err = s.handleAnomalies(context.Background(), nil, AnomaliesArgs{
		ServerName:    "web-01",
		LookbackHours: 2,
		CPUThreshold:  70,
	})
	if err != nil {
		t.Fatalf("handleAnomalies() error = %v", err)
	}
	if q.anomalyReq.ServerName != "web-01" {
		t.Errorf("server = %q", q.anomalyReq.ServerName)
	}
	if q.anomalyReq.Thresholds.CPUThreshold != 70 {
		t.Errorf("cpu threshold = %v", q.anomalyReq.Thresholds.CPUThreshold)
	}

	span := q.anomalyReq.TimeRange.EndTime - q.anomalyReq.TimeRange.StartTime
	if span < 7195 || span > 7205 {
		t.Errorf("window = %ds, want ~7200", span)
	}
	if q.anomalyReq.TimeRange.EndTime < before.Unix() {
		t.Error("end time in the past")
	}
}

func TestHandlePerformanceRequiresServer(t *testing.T) {
	s, err := NewServer(Config{}, &mockQuerier{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.handlePerformance(context.Background(), nil, PerformanceArgs{}); err == nil {
		t.Error("expected error for missing server_name")
	}

	_, resp, err := s.handlePerformance(context.Background(), nil, PerformanceArgs{ServerName: "web-01"})
	if err != nil {
		t.Fatalf("handlePerformance() error = %v", err)
	}
	if resp.TotalCount != 3 {
		t.Errorf("total = %d", resp.TotalCount)
	}
}

func TestHandleTrendDefaults(t *testing.T) {
	q := &mockQuerier{}
	s, err := NewServer(Config{}, q, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.handleTrend(context.Background(), nil, TrendArgs{}); err == nil {
		t.Error("expected error for missing server_name")
	}

	_, _, err = s.handleTrend(context.Background(), nil, TrendArgs{
		ServerName:      "web-01",
		IntervalSeconds: 300,
	})
	if err != nil {
		t.Fatalf("handleTrend() error = %v", err)
	}
	if q.trendReq.IntervalSeconds != 300 {
		t.Errorf("interval = %d", q.trendReq.IntervalSeconds)
	}

	// Default lookback is 24h.
	span := q.trendReq.TimeRange.EndTime - q.trendReq.TimeRange.StartTime
	if span < 86395 || span > 86405 {
		t.Errorf("window = %ds, want ~86400", span)
	}
}

func TestQuerierErrorsSurfaced(t *testing.T) {
	q := &mockQuerier{err: errors.New("manager unreachable")}
	s, err := NewServer(Config{}, q, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.handleLatestScores(context.Background(), nil, LatestScoresArgs{}); err == nil {
		t.Error("latest_scores should surface the error")
	}
	if _, _, err := s.handleAnomalies(context.Background(), nil, AnomaliesArgs{}); err == nil {
		t.Error("anomalies should surface the error")
	}
}
