// Package query serves the read API over persisted telemetry. Scores are
// recomputed on read under the requested profile so one fleet can be ranked
// for different workloads without re-ingesting.
package query

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"fleetmon/internal/protocol"
	"fleetmon/internal/scoring"
	"fleetmon/internal/store"
)

var (
	// ErrInvalidTimeRange marks a range whose start is after its end.
	ErrInvalidTimeRange = errors.New("start time is after end time")
	// ErrStoreUnavailable marks a service with no backing store.
	ErrStoreUnavailable = errors.New("telemetry store is not available")
)

// onlineWindow is how recent the newest sample must be for a host to
// count as online.
const onlineWindow = 60 * time.Second

// Default anomaly thresholds, applied when the request carries none.
const (
	defaultCPUThreshold  = 80.0
	defaultMemThreshold  = 90.0
	defaultDiskThreshold = 85.0
	defaultRateThreshold = 0.5
)

// Severity cutoffs. Utilization above criticalValue, or an absolute change
// rate above criticalRate, upgrades WARNING to CRITICAL.
const (
	criticalValue = 95.0
	criticalRate  = 1.0
)

const (
	severityWarning  = "WARNING"
	severityCritical = "CRITICAL"
)

// Backend is the read catalog the service runs on. *store.Store satisfies it.
type Backend interface {
	CountPerformance(ctx context.Context, server, start, end string) (int, error)
	SelectPerformance(ctx context.Context, server, start, end string, limit, offset int) ([]store.PerfSelectRow, error)
	SelectTrendBuckets(ctx context.Context, server, start, end string, interval int) ([]store.TrendSelectRow, error)
	SelectTrendRaw(ctx context.Context, server, start, end string) ([]store.TrendSelectRow, error)
	CountAnomalySources(ctx context.Context, server, start, end string, f store.AnomalyFilters) (int, error)
	SelectAnomalySources(ctx context.Context, server, start, end string, f store.AnomalyFilters, limit, offset int) ([]store.AnomalySourceRow, error)
	CountServers(ctx context.Context) (int, error)
	SelectLatestPerServer(ctx context.Context) ([]store.LatestPerfRow, error)
	CountNetDetail(ctx context.Context, server, start, end string) (int, error)
	SelectNetDetail(ctx context.Context, server, start, end string, limit, offset int) ([]store.NetDetailSelectRow, error)
	CountDiskDetail(ctx context.Context, server, start, end string) (int, error)
	SelectDiskDetail(ctx context.Context, server, start, end string, limit, offset int) ([]store.DiskDetailSelectRow, error)
	CountMemDetail(ctx context.Context, server, start, end string) (int, error)
	SelectMemDetail(ctx context.Context, server, start, end string, limit, offset int) ([]store.MemDetailSelectRow, error)
	CountSoftIrqDetail(ctx context.Context, server, start, end string) (int, error)
	SelectSoftIrqDetail(ctx context.Context, server, start, end string, limit, offset int) ([]store.SoftIrqDetailSelectRow, error)
	CountCPUCores(ctx context.Context, server, start, end string) (int, error)
	SelectLatestCPUCores(ctx context.Context, server, start, end string, limit, offset int) ([]store.CPUCoreDetailSelectRow, error)
}

// Service answers telemetry queries.
type Service struct {
	store Backend
	log   *zap.Logger
	now   func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithNowFunc overrides the clock.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New builds a query service over a backend.
func New(backend Backend, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: backend, log: log, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ===== SHARED COERCION =====

func normalizePage(p protocol.Pagination) (page, size int) {
	page, size = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 100
	}
	return page, size
}

// rangeBounds validates a time range and renders its wall-clock bounds.
func rangeBounds(tr protocol.TimeRange) (start, end string, err error) {
	if tr.StartTime > tr.EndTime {
		return "", "", ErrInvalidTimeRange
	}
	start = store.FormatTime(time.Unix(tr.StartTime, 0))
	end = store.FormatTime(time.Unix(tr.EndTime, 0))
	return start, end, nil
}

func (s *Service) ready() error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	return nil
}

// queryFailed logs a store error; callers return empty results instead of
// surfacing transient read failures.
func (s *Service) queryFailed(op string, err error) {
	s.log.Error("query failed", zap.String("op", op), zap.Error(err))
}

func (s *Service) status(timestamp string) string {
	ts := store.ParseTime(timestamp)
	if !ts.IsZero() && s.now().Sub(ts) <= onlineWindow {
		return protocol.StatusOnline
	}
	return protocol.StatusOffline
}

// ===== PERFORMANCE =====

// Performance returns one page of samples for a host, newest first,
// rescored under the requested profile.
func (s *Service) Performance(ctx context.Context, req *protocol.PerformanceRequest) (*protocol.PerformanceResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.PerformanceResponse{
		Records:         []protocol.PerformanceRecord{},
		Page:            page,
		PageSize:        size,
		RescoreCPUCores: scoring.DefaultRescoreCores,
	}

	total, err := s.store.CountPerformance(ctx, req.ServerName, start, end)
	if err != nil {
		s.queryFailed("performance", err)
		return resp, nil
	}
	rows, err := s.store.SelectPerformance(ctx, req.ServerName, start, end, size, (page-1)*size)
	if err != nil {
		s.queryFailed("performance", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, perfRecord(r, req.Profile))
	}
	return resp, nil
}

func perfRecord(r store.PerfSelectRow, profile string) protocol.PerformanceRecord {
	return protocol.PerformanceRecord{
		ServerName:          r.ServerName,
		Timestamp:           r.Timestamp,
		CPUPercent:          r.CPUPercent,
		UsrPercent:          r.UsrPercent,
		SystemPercent:       r.SystemPercent,
		NicePercent:         r.NicePercent,
		IdlePercent:         r.IdlePercent,
		IOWaitPercent:       r.IOWaitPercent,
		IrqPercent:          r.IrqPercent,
		SoftIrqPercent:      r.SoftIrqPercent,
		LoadAvg1:            r.LoadAvg1,
		LoadAvg3:            r.LoadAvg3,
		LoadAvg15:           r.LoadAvg15,
		MemUsedPercent:      r.MemUsedPercent,
		MemTotal:            r.Total,
		MemFree:             r.Free,
		MemAvail:            r.Avail,
		DiskUtilPercent:     r.DiskUtilPercent,
		SendRate:            r.SendRate,
		RcvRate:             r.RcvRate,
		Score:               scoring.Rescore(profile, r.CPUPercent, r.MemUsedPercent, r.LoadAvg1, r.DiskUtilPercent, r.SendRate, r.RcvRate),
		CPUPercentRate:      r.CPUPercentRate,
		MemUsedPercentRate:  r.MemUsedPercentRate,
		DiskUtilPercentRate: r.DiskUtilPercentRate,
		LoadAvg1Rate:        r.LoadAvg1Rate,
		SendRateRate:        r.SendRateRate,
		RcvRateRate:         r.RcvRateRate,
	}
}

// ===== TREND =====

// Trend returns a host's samples oldest first, averaged into
// interval-second buckets when an interval is given.
func (s *Service) Trend(ctx context.Context, req *protocol.TrendRequest) (*protocol.TrendResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	resp := &protocol.TrendResponse{
		Records:         []protocol.PerformanceRecord{},
		RescoreCPUCores: scoring.DefaultRescoreCores,
	}

	var rows []store.TrendSelectRow
	if req.IntervalSeconds > 0 {
		rows, err = s.store.SelectTrendBuckets(ctx, req.ServerName, start, end, req.IntervalSeconds)
	} else {
		rows, err = s.store.SelectTrendRaw(ctx, req.ServerName, start, end)
	}
	if err != nil {
		s.queryFailed("trend", err)
		return resp, nil
	}

	for _, r := range rows {
		resp.Records = append(resp.Records, protocol.PerformanceRecord{
			ServerName:          r.ServerName,
			Timestamp:           r.Timestamp,
			CPUPercent:          r.CPUPercent,
			UsrPercent:          r.UsrPercent,
			SystemPercent:       r.SystemPercent,
			IOWaitPercent:       r.IOWaitPercent,
			LoadAvg1:            r.LoadAvg1,
			LoadAvg3:            r.LoadAvg3,
			LoadAvg15:           r.LoadAvg15,
			MemUsedPercent:      r.MemUsedPercent,
			DiskUtilPercent:     r.DiskUtilPercent,
			SendRate:            r.SendRate,
			RcvRate:             r.RcvRate,
			Score:               scoring.Rescore(req.Profile, r.CPUPercent, r.MemUsedPercent, r.LoadAvg1, r.DiskUtilPercent, r.SendRate, r.RcvRate),
			CPUPercentRate:      r.CPUPercentRate,
			MemUsedPercentRate:  r.MemUsedPercentRate,
			DiskUtilPercentRate: r.DiskUtilPercentRate,
			LoadAvg1Rate:        r.LoadAvg1Rate,
		})
	}
	return resp, nil
}

// ===== ANOMALIES =====

func effectiveThresholds(t protocol.AnomalyThresholds) store.AnomalyFilters {
	f := store.AnomalyFilters{
		CPU:  t.CPUThreshold,
		Mem:  t.MemThreshold,
		Disk: t.DiskThreshold,
		Rate: t.ChangeRateThreshold,
	}
	if f.CPU <= 0 {
		f.CPU = defaultCPUThreshold
	}
	if f.Mem <= 0 {
		f.Mem = defaultMemThreshold
	}
	if f.Disk <= 0 {
		f.Disk = defaultDiskThreshold
	}
	if f.Rate <= 0 {
		f.Rate = defaultRateThreshold
	}
	return f
}

func valueSeverity(v float64) string {
	if v > criticalValue {
		return severityCritical
	}
	return severityWarning
}

func rateSeverity(v float64) string {
	if math.Abs(v) > criticalRate {
		return severityCritical
	}
	return severityWarning
}

// expandAnomalies emits one record per breached predicate of one source row.
func expandAnomalies(r store.AnomalySourceRow, f store.AnomalyFilters) []protocol.AnomalyRecord {
	var out []protocol.AnomalyRecord
	if r.CPUPercent > f.CPU {
		out = append(out, protocol.AnomalyRecord{
			ServerName:  r.ServerName,
			Timestamp:   r.Timestamp,
			AnomalyType: "CPU_HIGH",
			Severity:    valueSeverity(r.CPUPercent),
			Value:       r.CPUPercent,
			Threshold:   f.CPU,
			MetricName:  "cpu_percent",
		})
	}
	if r.MemUsedPercent > f.Mem {
		out = append(out, protocol.AnomalyRecord{
			ServerName:  r.ServerName,
			Timestamp:   r.Timestamp,
			AnomalyType: "MEM_HIGH",
			Severity:    valueSeverity(r.MemUsedPercent),
			Value:       r.MemUsedPercent,
			Threshold:   f.Mem,
			MetricName:  "mem_used_percent",
		})
	}
	if r.DiskUtilPercent > f.Disk {
		out = append(out, protocol.AnomalyRecord{
			ServerName:  r.ServerName,
			Timestamp:   r.Timestamp,
			AnomalyType: "DISK_HIGH",
			Severity:    valueSeverity(r.DiskUtilPercent),
			Value:       r.DiskUtilPercent,
			Threshold:   f.Disk,
			MetricName:  "disk_util_percent",
		})
	}
	if math.Abs(r.CPUPercentRate) > f.Rate {
		out = append(out, protocol.AnomalyRecord{
			ServerName:  r.ServerName,
			Timestamp:   r.Timestamp,
			AnomalyType: "RATE_SPIKE",
			Severity:    rateSeverity(r.CPUPercentRate),
			Value:       r.CPUPercentRate,
			Threshold:   f.Rate,
			MetricName:  "cpu_percent_rate",
		})
	}
	if math.Abs(r.MemUsedPercentRate) > f.Rate {
		out = append(out, protocol.AnomalyRecord{
			ServerName:  r.ServerName,
			Timestamp:   r.Timestamp,
			AnomalyType: "RATE_SPIKE",
			Severity:    rateSeverity(r.MemUsedPercentRate),
			Value:       r.MemUsedPercentRate,
			Threshold:   f.Rate,
			MetricName:  "mem_used_percent_rate",
		})
	}
	return out
}

// Anomalies scans for threshold breaches. TotalCount counts breaching
// source samples; a sample breaching several predicates expands into
// several records.
func (s *Service) Anomalies(ctx context.Context, req *protocol.AnomalyRequest) (*protocol.AnomalyResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	f := effectiveThresholds(req.Thresholds)
	resp := &protocol.AnomalyResponse{
		Records:  []protocol.AnomalyRecord{},
		Page:     page,
		PageSize: size,
	}

	total, err := s.store.CountAnomalySources(ctx, req.ServerName, start, end, f)
	if err != nil {
		s.queryFailed("anomaly", err)
		return resp, nil
	}
	rows, err := s.store.SelectAnomalySources(ctx, req.ServerName, start, end, f, size, (page-1)*size)
	if err != nil {
		s.queryFailed("anomaly", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, expandAnomalies(r, f)...)
	}
	return resp, nil
}

// ===== SCORE RANK / LATEST =====

func (s *Service) latestSummaries(ctx context.Context, profile string) ([]protocol.ServerScoreSummary, []store.LatestPerfRow, error) {
	rows, err := s.store.SelectLatestPerServer(ctx)
	if err != nil {
		return nil, nil, err
	}
	summaries := make([]protocol.ServerScoreSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, protocol.ServerScoreSummary{
			ServerName:      r.ServerName,
			Score:           scoring.Rescore(profile, r.CPUPercent, r.MemUsedPercent, r.LoadAvg1, r.DiskUtilPercent, r.SendRate, r.RcvRate),
			LastUpdate:      r.Timestamp,
			Status:          s.status(r.Timestamp),
			CPUPercent:      r.CPUPercent,
			MemUsedPercent:  r.MemUsedPercent,
			DiskUtilPercent: r.DiskUtilPercent,
			LoadAvg1:        r.LoadAvg1,
		})
	}
	return summaries, rows, nil
}

// ScoreRank ranks every host by its latest rescored sample.
func (s *Service) ScoreRank(ctx context.Context, req *protocol.ScoreRankRequest) (*protocol.ScoreRankResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.ScoreRankResponse{
		Servers:         []protocol.ServerScoreSummary{},
		Page:            page,
		PageSize:        size,
		RescoreCPUCores: scoring.DefaultRescoreCores,
	}

	total, err := s.store.CountServers(ctx)
	if err != nil {
		s.queryFailed("score_rank", err)
		return resp, nil
	}
	summaries, _, err := s.latestSummaries(ctx, req.Profile)
	if err != nil {
		s.queryFailed("score_rank", err)
		return resp, nil
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if req.Ascending {
			return summaries[i].Score < summaries[j].Score
		}
		return summaries[i].Score > summaries[j].Score
	})

	resp.TotalCount = total
	offset := (page - 1) * size
	if offset < len(summaries) {
		endIdx := offset + size
		if endIdx > len(summaries) {
			endIdx = len(summaries)
		}
		resp.Servers = summaries[offset:endIdx]
	}
	return resp, nil
}

// LatestScores returns every host's latest rescored state plus fleet-wide
// aggregates, best score first.
func (s *Service) LatestScores(ctx context.Context, req *protocol.LatestScoreRequest) (*protocol.LatestScoreResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	resp := &protocol.LatestScoreResponse{
		Servers:         []protocol.ServerScoreSummary{},
		RescoreCPUCores: scoring.DefaultRescoreCores,
	}

	summaries, _, err := s.latestSummaries(ctx, req.Profile)
	if err != nil {
		s.queryFailed("latest_scores", err)
		return resp, nil
	}

	stats := protocol.ClusterStats{MaxScore: -1, MinScore: 101}
	for _, sum := range summaries {
		stats.TotalServers++
		if sum.Status == protocol.StatusOnline {
			stats.OnlineServers++
		} else {
			stats.OfflineServers++
		}
		stats.AvgScore += sum.Score
		if sum.Score > stats.MaxScore {
			stats.MaxScore = sum.Score
			stats.BestServer = sum.ServerName
		}
		if sum.Score < stats.MinScore {
			stats.MinScore = sum.Score
			stats.WorstServer = sum.ServerName
		}
	}
	if stats.TotalServers > 0 {
		stats.AvgScore /= float64(stats.TotalServers)
	}
	if stats.MaxScore < 0 {
		stats.MaxScore = 0
	}
	if stats.MinScore > 100 {
		stats.MinScore = 0
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Score > summaries[j].Score
	})

	resp.Servers = summaries
	resp.Cluster = stats
	return resp, nil
}

// ===== DETAIL READS =====

// NetDetail returns per-interface samples for a host, newest first.
func (s *Service) NetDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.NetDetailResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.NetDetailResponse{
		Records:  []protocol.NetDetailRecord{},
		Page:     page,
		PageSize: size,
	}

	total, err := s.store.CountNetDetail(ctx, req.ServerName, start, end)
	if err != nil {
		s.queryFailed("net_detail", err)
		return resp, nil
	}
	rows, err := s.store.SelectNetDetail(ctx, req.ServerName, start, end, size, (page-1)*size)
	if err != nil {
		s.queryFailed("net_detail", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, protocol.NetDetailRecord{
			ServerName:     r.ServerName,
			NetName:        r.NetName,
			Timestamp:      r.Timestamp,
			ErrIn:          r.ErrIn,
			ErrOut:         r.ErrOut,
			DropIn:         r.DropIn,
			DropOut:        r.DropOut,
			RcvBytesRate:   r.RcvBytesRate,
			SndBytesRate:   r.SndBytesRate,
			RcvPacketsRate: r.RcvPacketsRate,
			SndPacketsRate: r.SndPacketsRate,
		})
	}
	return resp, nil
}

// DiskDetail returns per-device samples for a host, newest first.
func (s *Service) DiskDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.DiskDetailResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.DiskDetailResponse{
		Records:  []protocol.DiskDetailRecord{},
		Page:     page,
		PageSize: size,
	}

	total, err := s.store.CountDiskDetail(ctx, req.ServerName, start, end)
	if err != nil {
		s.queryFailed("disk_detail", err)
		return resp, nil
	}
	rows, err := s.store.SelectDiskDetail(ctx, req.ServerName, start, end, size, (page-1)*size)
	if err != nil {
		s.queryFailed("disk_detail", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, protocol.DiskDetailRecord{
			ServerName:        r.ServerName,
			DiskName:          r.DiskName,
			Timestamp:         r.Timestamp,
			ReadBytesPerSec:   r.ReadBytesPerSec,
			WriteBytesPerSec:  r.WriteBytesPerSec,
			ReadIOPS:          r.ReadIOPS,
			WriteIOPS:         r.WriteIOPS,
			AvgReadLatencyMS:  r.AvgReadLatencyMS,
			AvgWriteLatencyMS: r.AvgWriteLatencyMS,
			UtilPercent:       r.UtilPercent,
		})
	}
	return resp, nil
}

// MemDetail returns detailed memory samples for a host, newest first.
func (s *Service) MemDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.MemDetailResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.MemDetailResponse{
		Records:  []protocol.MemDetailRecord{},
		Page:     page,
		PageSize: size,
	}

	total, err := s.store.CountMemDetail(ctx, req.ServerName, start, end)
	if err != nil {
		s.queryFailed("mem_detail", err)
		return resp, nil
	}
	rows, err := s.store.SelectMemDetail(ctx, req.ServerName, start, end, size, (page-1)*size)
	if err != nil {
		s.queryFailed("mem_detail", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, protocol.MemDetailRecord{
			ServerName: r.ServerName,
			Timestamp:  r.Timestamp,
			Total:      r.Total,
			Free:       r.Free,
			Avail:      r.Avail,
			Buffers:    r.Buffers,
			Cached:     r.Cached,
			Active:     r.Active,
			Inactive:   r.Inactive,
			Dirty:      r.Dirty,
		})
	}
	return resp, nil
}

// SoftIrqDetail returns per-cpu softirq samples for a host, newest first.
func (s *Service) SoftIrqDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.SoftIrqDetailResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.SoftIrqDetailResponse{
		Records:  []protocol.SoftIrqDetailRecord{},
		Page:     page,
		PageSize: size,
	}

	total, err := s.store.CountSoftIrqDetail(ctx, req.ServerName, start, end)
	if err != nil {
		s.queryFailed("softirq_detail", err)
		return resp, nil
	}
	rows, err := s.store.SelectSoftIrqDetail(ctx, req.ServerName, start, end, size, (page-1)*size)
	if err != nil {
		s.queryFailed("softirq_detail", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, protocol.SoftIrqDetailRecord{
			ServerName: r.ServerName,
			CPUName:    r.CPUName,
			Timestamp:  r.Timestamp,
			HI:         r.HI,
			Timer:      r.Timer,
			NetTx:      r.NetTx,
			NetRx:      r.NetRx,
			Block:      r.Block,
			Sched:      r.Sched,
		})
	}
	return resp, nil
}

// CPUCoreDetail returns the newest sample per core inside the range,
// ordered by core name. TotalCount counts distinct cores.
func (s *Service) CPUCoreDetail(ctx context.Context, req *protocol.DetailRequest) (*protocol.CPUCoreDetailResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, end, err := rangeBounds(req.TimeRange)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(req.Pagination)
	resp := &protocol.CPUCoreDetailResponse{
		Records:  []protocol.CPUCoreDetailRecord{},
		Page:     page,
		PageSize: size,
	}

	total, err := s.store.CountCPUCores(ctx, req.ServerName, start, end)
	if err != nil {
		s.queryFailed("cpu_core_detail", err)
		return resp, nil
	}
	rows, err := s.store.SelectLatestCPUCores(ctx, req.ServerName, start, end, size, (page-1)*size)
	if err != nil {
		s.queryFailed("cpu_core_detail", err)
		return resp, nil
	}

	resp.TotalCount = total
	for _, r := range rows {
		resp.Records = append(resp.Records, protocol.CPUCoreDetailRecord{
			ServerName:     r.ServerName,
			CPUName:        r.CPUName,
			Timestamp:      r.Timestamp,
			CPUPercent:     r.CPUPercent,
			UsrPercent:     r.UsrPercent,
			SystemPercent:  r.SystemPercent,
			NicePercent:    r.NicePercent,
			IdlePercent:    r.IdlePercent,
			IOWaitPercent:  r.IOWaitPercent,
			IrqPercent:     r.IrqPercent,
			SoftIrqPercent: r.SoftIrqPercent,
		})
	}
	return resp, nil
}
