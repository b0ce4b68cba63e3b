package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"fleetmon/internal/hostmgr"
	"fleetmon/internal/protocol"
	"fleetmon/internal/query"
)

type fakeIngestor struct {
	got *protocol.MonitorInfo
	err error
}

func (f *fakeIngestor) Ingest(_ context.Context, info *protocol.MonitorInfo) error {
	f.got = info
	return f.err
}

type fakeQueries struct {
	err error
}

func (f *fakeQueries) Performance(context.Context, *protocol.PerformanceRequest) (*protocol.PerformanceResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &protocol.PerformanceResponse{TotalCount: 7, Page: 1, PageSize: 100, RescoreCPUCores: 4}, nil
}

func (f *fakeQueries) Trend(context.Context, *protocol.TrendRequest) (*protocol.TrendResponse, error) {
	return &protocol.TrendResponse{RescoreCPUCores: 4}, f.err
}

func (f *fakeQueries) Anomalies(context.Context, *protocol.AnomalyRequest) (*protocol.AnomalyResponse, error) {
	return &protocol.AnomalyResponse{}, f.err
}

func (f *fakeQueries) ScoreRank(context.Context, *protocol.ScoreRankRequest) (*protocol.ScoreRankResponse, error) {
	return &protocol.ScoreRankResponse{}, f.err
}

func (f *fakeQueries) LatestScores(context.Context, *protocol.LatestScoreRequest) (*protocol.LatestScoreResponse, error) {
	return &protocol.LatestScoreResponse{}, f.err
}

func (f *fakeQueries) NetDetail(context.Context, *protocol.DetailRequest) (*protocol.NetDetailResponse, error) {
	return &protocol.NetDetailResponse{}, f.err
}

func (f *fakeQueries) DiskDetail(context.Context, *protocol.DetailRequest) (*protocol.DiskDetailResponse, error) {
	return &protocol.DiskDetailResponse{}, f.err
}

func (f *fakeQueries) MemDetail(context.Context, *protocol.DetailRequest) (*protocol.MemDetailResponse, error) {
	return &protocol.MemDetailResponse{}, f.err
}

func (f *fakeQueries) SoftIrqDetail(context.Context, *protocol.DetailRequest) (*protocol.SoftIrqDetailResponse, error) {
	return &protocol.SoftIrqDetailResponse{}, f.err
}

func (f *fakeQueries) CPUCoreDetail(context.Context, *protocol.DetailRequest) (*protocol.CPUCoreDetailResponse, error) {
	return &protocol.CPUCoreDetailResponse{}, f.err
}

func newTestServer(ingest *fakeIngestor, queries *fakeQueries) *httptest.Server {
	reg := prometheus.NewRegistry()
	srv := New(ingest, queries, nil,
		WithMetrics(NewServerMetrics(reg)),
		WithGatherer(reg))
	return httptest.NewServer(srv.Handler())
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestPushAccepted(t *testing.T) {
	ingest := &fakeIngestor{}
	ts := newTestServer(ingest, &fakeQueries{})
	defer ts.Close()

	snapshot := protocol.MonitorInfo{
		Host: &protocol.HostInfo{Hostname: "web-01", IPAddress: "10.0.0.5"},
	}
	resp := postJSON(t, ts.URL+"/api/v1/push", snapshot)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var ack protocol.PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatal(err)
	}
	if ack.Status != "ok" {
		t.Errorf("ack status = %q, want ok", ack.Status)
	}
	if ingest.got == nil || ingest.got.Host.Hostname != "web-01" {
		t.Errorf("ingestor got %+v", ingest.got)
	}
}

func TestPushRejections(t *testing.T) {
	tests := []struct {
		name       string
		ingestErr  error
		body       string
		wantStatus int
	}{
		{
			name:       "malformed body",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing identity",
			ingestErr:  hostmgr.ErrMissingHostKey,
			body:       "{}",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&fakeIngestor{err: tt.ingestErr}, &fakeQueries{})
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/api/v1/push", "application/json",
				bytes.NewReader([]byte(tt.body)))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestQueryRoutes(t *testing.T) {
	ts := newTestServer(&fakeIngestor{}, &fakeQueries{})
	defer ts.Close()

	routes := []string{
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
	for _, route := range routes {
		resp := postJSON(t, ts.URL+route, map[string]any{})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", route, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid range", query.ErrInvalidTimeRange, http.StatusBadRequest},
		{"store unavailable", query.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&fakeIngestor{}, &fakeQueries{err: tt.err})
			defer ts.Close()

			resp := postJSON(t, ts.URL+"/api/v1/query/performance", protocol.PerformanceRequest{})
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error == "" {
				t.Error("error body is empty")
			}
		})
	}
}

func TestPerformanceResponseBody(t *testing.T) {
	ts := newTestServer(&fakeIngestor{}, &fakeQueries{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/v1/query/performance", protocol.PerformanceRequest{
		ServerName: "web-01",
		TimeRange:  protocol.TimeRange{StartTime: 1, EndTime: 2},
	})
	defer resp.Body.Close()

	var body protocol.PerformanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.TotalCount != 7 || body.RescoreCPUCores != 4 {
		t.Errorf("body = %+v", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(&fakeIngestor{}, &fakeQueries{})
	defer ts.Close()

	health, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", health.StatusCode)
	}

	metrics, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	metrics.Body.Close()
	if metrics.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", metrics.StatusCode)
	}
}
