package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetmon/internal/protocol"
)

func TestPush(t *testing.T) {
	var gotPath string
	var gotInfo protocol.MonitorInfo
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotInfo); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(protocol.PushResponse{Status: "ok"})
	}))
	defer ts.Close()

	c := New(ts.URL + "/")
	resp, err := c.Push(context.Background(), &protocol.MonitorInfo{
		Host: &protocol.HostInfo{Hostname: "web-01"},
	})
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if gotPath != "/api/v1/push" {
		t.Errorf("path = %q", gotPath)
	}
	if gotInfo.Host == nil || gotInfo.Host.Hostname != "web-01" {
		t.Errorf("server received %+v", gotInfo)
	}
}

func TestQueryPaths(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	c := New(ts.URL)
	ctx := context.Background()
	detail := &protocol.DetailRequest{ServerName: "web-01"}

	calls := []func() error{
		func() error {
			_, err := c.Performance(ctx, &protocol.PerformanceRequest{})
			return err
		},
		func() error { _, err := c.Trend(ctx, &protocol.TrendRequest{}); return err },
		func() error { _, err := c.Anomalies(ctx, &protocol.AnomalyRequest{}); return err },
		func() error { _, err := c.ScoreRank(ctx, &protocol.ScoreRankRequest{}); return err },
		func() error { _, err := c.LatestScores(ctx, &protocol.LatestScoreRequest{}); return err },
		func() error { _, err := c.NetDetail(ctx, detail); return err },
		func() error { _, err := c.DiskDetail(ctx, detail); return err },
		func() error { _, err := c.MemDetail(ctx, detail); return err },
		func() error { _, err := c.SoftIrqDetail(ctx, detail); return err },
		func() error { _, err := c.CPUCoreDetail(ctx, detail); return err },
	}
	for i, call := range calls {
		if err := call(); err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
	}

	want := []string{
		"/api/v1/query/performance",
		"/api/v1/query/trend",
		"/api/v1/query/anomalies",
		"/api/v1/query/score-rank",
		"/api/v1/query/latest-scores",
		"/api/v1/query/net-detail",
		"/api/v1/query/disk-detail",
		"/api/v1/query/mem-detail",
		"/api/v1/query/softirq-detail",
		"/api/v1/query/cpu-core-detail",
	}
	if len(paths) != len(want) {
		t.Fatalf("calls = %d, want %d", len(paths), len(want))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "start time is after end time"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Performance(context.Background(), &protocol.PerformanceRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "start time is after end time") {
		t.Errorf("error %q should carry the server message", err)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error %q should carry the status", err)
	}
}

func TestNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream dead</html>"))
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.LatestScores(context.Background(), &protocol.LatestScoreRequest{})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %v, want status 502 surfaced", err)
	}
}
