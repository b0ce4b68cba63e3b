// Package server exposes the manager over HTTP: snapshot ingest, the query
// API, health, and Prometheus metrics. All API bodies are JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fleetmon/internal/hostmgr"
	"fleetmon/internal/protocol"
	"fleetmon/internal/query"
)

// Ingestor accepts pushed snapshots. *hostmgr.Manager satisfies it.
type Ingestor interface {
	Ingest(ctx context.Context, info *protocol.MonitorInfo) error
}

// QueryService answers the read API. *query.Service satisfies it.
type QueryService interface {
	Performance(ctx context.Context, req *protocol.PerformanceRequest) (*protocol.PerformanceResponse, error)
	Trend(ctx context.Context, req *protocol.TrendRequest) (*protocol.TrendResponse, error)
	Anomalies(ctx context.Context, req *protocol.AnomalyRequest) (*protocol.AnomalyResponse, error)
	ScoreRank(ctx context.Context, req *protocol.ScoreRankRequest) (*protocol.ScoreRankResponse, error)
	LatestScores(ctx context.Context, req *protocol.LatestScoreRequest) (*protocol.LatestScoreResponse, error)
	NetDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.NetDetailResponse, error)
	DiskDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.DiskDetailResponse, error)
	MemDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.MemDetailResponse, error)
	SoftIrqDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.SoftIrqDetailResponse, error)
	CPUCoreDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.CPUCoreDetailResponse, error)
}

// Metrics counts API requests by handler and status class.
type Metrics struct {
	Requests *prometheus.CounterVec
}

// NewServerMetrics registers the HTTP metrics on reg.
func NewServerMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "fleetmon_http_requests_total",
			Help: "API requests by handler and status code.",
		}, []string{"handler", "code"}),
	}
}

// Server is the manager's HTTP front end.
type Server struct {
	ingest   Ingestor
	queries  QueryService
	log      *zap.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer

	httpServer *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithMetrics attaches request counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New builds the HTTP front end.
func New(ingest Ingestor, queries QueryService, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		ingest:   ingest,
		queries:  queries,
		log:      log,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/push", s.handlePush)
	mux.Handle("POST /api/v1/query/performance", handle(s, "performance", s.queries.Performance))
	mux.Handle("POST /api/v1/query/trend", handle(s, "trend", s.queries.Trend))
	mux.Handle("POST /api/v1/query/anomalies", handle(s, "anomalies", s.queries.Anomalies))
	mux.Handle("POST /api/v1/query/score-rank", handle(s, "score_rank", s.queries.ScoreRank))
	mux.Handle("POST /api/v1/query/latest-scores", handle(s, "latest_scores", s.queries.LatestScores))
	mux.Handle("POST /api/v1/query/net-detail", handle(s, "net_detail", s.queries.NetDetail))
	mux.Handle("POST /api/v1/query/disk-detail", handle(s, "disk_detail", s.queries.DiskDetail))
	mux.Handle("POST /api/v1/query/mem-detail", handle(s, "mem_detail", s.queries.MemDetail))
	mux.Handle("POST /api/v1/query/softirq-detail", handle(s, "softirq_detail", s.queries.SoftIrqDetail))
	mux.Handle("POST /api/v1/query/cpu-core-detail", handle(s, "cpu_core_detail", s.queries.CPUCoreDetail))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start begins serving on addr. Blocks until the listener fails or Stop
// shuts it down.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("http server listening", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ===== HANDLERS =====

func (s *Server) count(handler string, code int) {
	if s.metrics != nil {
		s.metrics.Requests.WithLabelValues(handler, fmt.Sprintf("%d", code)).Inc()
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, handler string, code int, body any) {
	s.count(handler, code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("response encode failed",
			zap.String("handler", handler), zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidTimeRange), errors.Is(err, hostmgr.ErrMissingHostKey):
		return http.StatusBadRequest
	case errors.Is(err, query.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var info protocol.MonitorInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		s.writeJSON(w, "push", http.StatusBadRequest, errorBody{Error: "malformed snapshot"})
		return
	}
	if err := s.ingest.Ingest(r.Context(), &info); err != nil {
		s.writeJSON(w, "push", statusFor(err), errorBody{Error: err.Error()})
		return
	}
	s.writeJSON(w, "push", http.StatusOK, protocol.PushResponse{Status: "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, "healthz", http.StatusOK, map[string]string{"status": "ok"})
}

// handle adapts one query method into an HTTP handler.
func handle[Req any, Resp any](s *Server, name string, fn func(context.Context, *Req) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, name, http.StatusBadRequest, errorBody{Error: "malformed request"})
			return
		}
		resp, err := fn(r.Context(), &req)
		if err != nil {
			s.writeJSON(w, name, statusFor(err), errorBody{Error: err.Error()})
			return
		}
		s.writeJSON(w, name, http.StatusOK, resp)
	}
}
