// Package hostmgr ingests agent snapshots: it derives change rates, scores
// each host, maintains the live scoreboard, and fans the sample out to the
// telemetry tables.
package hostmgr

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"fleetmon/internal/protocol"
	"fleetmon/internal/rate"
	"fleetmon/internal/scoring"
	"fleetmon/internal/store"
)

// ErrMissingHostKey marks a snapshot with no usable host identity.
var ErrMissingHostKey = errors.New("snapshot carries no host identity")

const (
	// staleAfter is how long a host stays on the scoreboard without a
	// fresh snapshot.
	staleAfter = 60 * time.Second
	// sweepInterval is how often stale scoreboard entries are evicted.
	sweepInterval = 60 * time.Second
)

// Sink receives the fan-out writes. *store.Store satisfies it.
type Sink interface {
	InsertPerformance(ctx context.Context, row store.PerformanceRow) error
	InsertNetDetail(ctx context.Context, row store.NetDetailRow) error
	InsertSoftIrqDetail(ctx context.Context, row store.SoftIrqDetailRow) error
	InsertMemDetail(ctx context.Context, row store.MemDetailRow) error
	InsertDiskDetail(ctx context.Context, row store.DiskDetailRow) error
	InsertCPUCoreDetail(ctx context.Context, row store.CPUCoreDetailRow) error
}

// HostKey derives the scoreboard identity of a snapshot.
// Hosts reporting both hostname and ip key as "hostname_ip"; otherwise
// whichever is present, falling back to the legacy name field.
func HostKey(info *protocol.MonitorInfo) (string, bool) {
	if info.Host != nil {
		hostname, ip := info.Host.Hostname, info.Host.IPAddress
		switch {
		case hostname != "" && ip != "":
			return hostname + "_" + ip, true
		case hostname != "":
			return hostname, true
		case ip != "":
			return ip, true
		}
	}
	if info.Name != "" {
		return info.Name, true
	}
	return "", false
}

type scoreEntry struct {
	score float64
	seen  time.Time
}

// Manager is the ingest pipeline plus the live scoreboard.
type Manager struct {
	sink    Sink
	rates   *rate.Engine
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu         sync.RWMutex
	scoreboard map[string]scoreEntry

	sweepMu sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Option configures the manager.
type Option func(*Manager)

// WithMetrics attaches ingest metrics.
func WithMetrics(m *Metrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(now func() time.Time) Option {
	return func(mgr *Manager) {
		mgr.now = now
	}
}

// New builds a manager over a sink.
func New(sink Sink, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		sink:       sink,
		rates:      rate.NewEngine(),
		log:        log,
		now:        time.Now,
		scoreboard: make(map[string]scoreEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Ingest processes one snapshot: change rates, score, scoreboard update,
// then fan-out to the telemetry tables. Store failures are logged and
// counted, never fatal; the snapshot already advanced the rate state.
func (m *Manager) Ingest(ctx context.Context, info *protocol.MonitorInfo) error {
	key, ok := HostKey(info)
	if !ok {
		m.log.Error("dropping snapshot without host identity")
		if m.metrics != nil {
			m.metrics.SamplesDropped.Inc()
		}
		return ErrMissingHostKey
	}

	started := time.Now()
	now := m.now()
	ts := store.FormatTime(now)

	sample := perfSample(info)
	rates := m.rates.PerfRates(key, sample)

	maxUtil := maxDiskUtil(info)
	diskUtilRate := m.rates.DiskUtilRate(key, maxUtil)

	score := scoring.ScoreSnapshot(info, protocol.ProfileBalanced)

	m.mu.Lock()
	m.scoreboard[key] = scoreEntry{score: score, seen: now}
	size := len(m.scoreboard)
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.SamplesIngested.Inc()
		m.metrics.ScoreboardSize.Set(float64(size))
	}

	m.writePerformance(ctx, key, ts, info, sample, rates, maxUtil, diskUtilRate, score)
	m.writeNetDetail(ctx, key, ts, info)
	m.writeSoftIrqDetail(ctx, key, ts, info)
	m.writeMemDetail(ctx, key, ts, info)
	m.writeDiskDetail(ctx, key, ts, info)
	m.writeCPUCoreDetail(ctx, key, ts, info)

	if m.metrics != nil {
		m.metrics.IngestDuration.Observe(time.Since(started).Seconds())
	}
	m.log.Debug("ingested snapshot",
		zap.String("host", key),
		zap.Float64("score", score))
	return nil
}

// perfSample flattens the snapshot into the aggregate figures the rate
// engine tracks. Net throughput is tracked in MB/s.
func perfSample(info *protocol.MonitorInfo) rate.PerfSample {
	var s rate.PerfSample
	if len(info.CPUStats) > 0 {
		agg := info.CPUStats[0]
		s.CPUPercent = agg.CPUPercent
		s.UsrPercent = agg.UsrPercent
		s.SystemPercent = agg.SystemPercent
		s.NicePercent = agg.NicePercent
		s.IdlePercent = agg.IdlePercent
		s.IOWaitPercent = agg.IOWaitPercent
		s.IrqPercent = agg.IrqPercent
		s.SoftIrqPercent = agg.SoftIrqPercent
		s.StealPercent = agg.StealPercent
		s.GuestPercent = agg.GuestPercent
		s.GuestNicePercent = agg.GuestNicePercent
	}
	if info.CPULoad != nil {
		s.LoadAvg1 = info.CPULoad.LoadAvg1
		s.LoadAvg3 = info.CPULoad.LoadAvg3
		s.LoadAvg15 = info.CPULoad.LoadAvg15
	}
	if info.Mem != nil {
		s.MemUsedPercent = info.Mem.UsedPercent
		s.MemTotal = info.Mem.Total
		s.MemFree = info.Mem.Free
		s.MemAvail = info.Mem.Avail
	}
	if len(info.Nets) > 0 {
		s.NetInRate = info.Nets[0].RcvRate / (1024.0 * 1024.0)
		s.NetOutRate = info.Nets[0].SendRate / (1024.0 * 1024.0)
	}
	return s
}

func maxDiskUtil(info *protocol.MonitorInfo) float64 {
	var util float64
	for _, d := range info.Disks {
		if d.UtilPercent > util {
			util = d.UtilPercent
		}
	}
	return util
}

func (m *Manager) writeFailed(table, host string, err error) {
	m.log.Warn("store write failed",
		zap.String("table", table),
		zap.String("host", host),
		zap.Error(err))
	if m.metrics != nil {
		m.metrics.WriteFailures.Inc()
	}
}

func (m *Manager) writePerformance(ctx context.Context, key, ts string, info *protocol.MonitorInfo, sample, rates rate.PerfSample, maxUtil, diskUtilRate, score float64) {
	row := store.PerformanceRow{
		ServerName:          key,
		CPUPercent:          sample.CPUPercent,
		UsrPercent:          sample.UsrPercent,
		SystemPercent:       sample.SystemPercent,
		NicePercent:         sample.NicePercent,
		IdlePercent:         sample.IdlePercent,
		IOWaitPercent:       sample.IOWaitPercent,
		IrqPercent:          sample.IrqPercent,
		SoftIrqPercent:      sample.SoftIrqPercent,
		LoadAvg1:            sample.LoadAvg1,
		LoadAvg3:            sample.LoadAvg3,
		LoadAvg15:           sample.LoadAvg15,
		MemUsedPercent:      sample.MemUsedPercent,
		Total:               sample.MemTotal,
		Free:                sample.MemFree,
		Avail:               sample.MemAvail,
		DiskUtilPercent:     maxUtil,
		Score:               score,
		CPUPercentRate:      rates.CPUPercent,
		UsrPercentRate:      rates.UsrPercent,
		SystemPercentRate:   rates.SystemPercent,
		NicePercentRate:     rates.NicePercent,
		IdlePercentRate:     rates.IdlePercent,
		IOWaitPercentRate:   rates.IOWaitPercent,
		IrqPercentRate:      rates.IrqPercent,
		SoftIrqPercentRate:  rates.SoftIrqPercent,
		LoadAvg1Rate:        rates.LoadAvg1,
		LoadAvg3Rate:        rates.LoadAvg3,
		LoadAvg15Rate:       rates.LoadAvg15,
		MemUsedPercentRate:  rates.MemUsedPercent,
		TotalRate:           rates.MemTotal,
		FreeRate:            rates.MemFree,
		AvailRate:           rates.MemAvail,
		DiskUtilPercentRate: diskUtilRate,
		SendRateRate:        rates.NetOutRate,
		RcvRateRate:         rates.NetInRate,
		Timestamp:           ts,
	}
	// Persisted throughput is KB/s of the first interface.
	if len(info.Nets) > 0 {
		row.SendRate = info.Nets[0].SendRate / 1024.0
		row.RcvRate = info.Nets[0].RcvRate / 1024.0
	}
	if err := m.sink.InsertPerformance(ctx, row); err != nil {
		m.writeFailed("server_performance", key, err)
	}
}

func (m *Manager) writeNetDetail(ctx context.Context, key, ts string, info *protocol.MonitorInfo) {
	for _, n := range info.Nets {
		curr := rate.NetSample{
			RcvBytesRate:   n.RcvRate,
			RcvPacketsRate: n.RcvPacketsRate,
			SndBytesRate:   n.SendRate,
			SndPacketsRate: n.SendPacketsRate,
			ErrIn:          n.ErrIn,
			ErrOut:         n.ErrOut,
			DropIn:         n.DropIn,
			DropOut:        n.DropOut,
		}
		r := m.rates.NetRates(key, n.Name, curr)
		row := store.NetDetailRow{
			ServerName:         key,
			NetName:            n.Name,
			ErrIn:              n.ErrIn,
			ErrOut:             n.ErrOut,
			DropIn:             n.DropIn,
			DropOut:            n.DropOut,
			RcvBytesRate:       n.RcvRate,
			RcvPacketsRate:     n.RcvPacketsRate,
			SndBytesRate:       n.SendRate,
			SndPacketsRate:     n.SendPacketsRate,
			RcvBytesRateRate:   r.RcvBytesRate,
			RcvPacketsRateRate: r.RcvPacketsRate,
			SndBytesRateRate:   r.SndBytesRate,
			SndPacketsRateRate: r.SndPacketsRate,
			ErrInRate:          r.ErrIn,
			ErrOutRate:         r.ErrOut,
			DropInRate:         r.DropIn,
			DropOutRate:        r.DropOut,
			Timestamp:          ts,
		}
		if err := m.sink.InsertNetDetail(ctx, row); err != nil {
			m.writeFailed("server_net_detail", key, err)
		}
	}
}

func (m *Manager) writeSoftIrqDetail(ctx context.Context, key, ts string, info *protocol.MonitorInfo) {
	for _, si := range info.SoftIrqs {
		curr := rate.SoftIrqSample{
			HI:      si.HI,
			Timer:   si.Timer,
			NetTx:   si.NetTx,
			NetRx:   si.NetRx,
			Block:   si.Block,
			IrqPoll: si.IrqPoll,
			Tasklet: si.Tasklet,
			Sched:   si.Sched,
			HRTimer: si.HRTimer,
			RCU:     si.RCU,
		}
		r := m.rates.SoftIrqRates(key, si.CPU, curr)
		row := store.SoftIrqDetailRow{
			ServerName:  key,
			CPUName:     si.CPU,
			HI:          si.HI,
			Timer:       si.Timer,
			NetTx:       si.NetTx,
			NetRx:       si.NetRx,
			Block:       si.Block,
			IrqPoll:     si.IrqPoll,
			Tasklet:     si.Tasklet,
			Sched:       si.Sched,
			HRTimer:     si.HRTimer,
			RCU:         si.RCU,
			HIRate:      r.HI,
			TimerRate:   r.Timer,
			NetTxRate:   r.NetTx,
			NetRxRate:   r.NetRx,
			BlockRate:   r.Block,
			IrqPollRate: r.IrqPoll,
			TaskletRate: r.Tasklet,
			SchedRate:   r.Sched,
			HRTimerRate: r.HRTimer,
			RCURate:     r.RCU,
			Timestamp:   ts,
		}
		if err := m.sink.InsertSoftIrqDetail(ctx, row); err != nil {
			m.writeFailed("server_softirq_detail", key, err)
		}
	}
}

func (m *Manager) writeMemDetail(ctx context.Context, key, ts string, info *protocol.MonitorInfo) {
	if info.Mem == nil {
		return
	}
	mem := info.Mem
	curr := rate.MemSample{
		Total:        mem.Total,
		Free:         mem.Free,
		Avail:        mem.Avail,
		Buffers:      mem.Buffers,
		Cached:       mem.Cached,
		SwapCached:   mem.SwapCached,
		Active:       mem.Active,
		Inactive:     mem.Inactive,
		ActiveAnon:   mem.ActiveAnon,
		InactiveAnon: mem.InactiveAnon,
		ActiveFile:   mem.ActiveFile,
		InactiveFile: mem.InactiveFile,
		Dirty:        mem.Dirty,
		Writeback:    mem.Writeback,
		AnonPages:    mem.AnonPages,
		Mapped:       mem.Mapped,
		KReclaimable: mem.KReclaimable,
		SReclaimable: mem.SReclaimable,
		SUnreclaim:   mem.SUnreclaim,
	}
	r := m.rates.MemRates(key, curr)
	row := store.MemDetailRow{
		ServerName:       key,
		Total:            mem.Total,
		Free:             mem.Free,
		Avail:            mem.Avail,
		Buffers:          mem.Buffers,
		Cached:           mem.Cached,
		SwapCached:       mem.SwapCached,
		Active:           mem.Active,
		Inactive:         mem.Inactive,
		ActiveAnon:       mem.ActiveAnon,
		InactiveAnon:     mem.InactiveAnon,
		ActiveFile:       mem.ActiveFile,
		InactiveFile:     mem.InactiveFile,
		Dirty:            mem.Dirty,
		Writeback:        mem.Writeback,
		AnonPages:        mem.AnonPages,
		Mapped:           mem.Mapped,
		KReclaimable:     mem.KReclaimable,
		SReclaimable:     mem.SReclaimable,
		SUnreclaim:       mem.SUnreclaim,
		TotalRate:        r.Total,
		FreeRate:         r.Free,
		AvailRate:        r.Avail,
		BuffersRate:      r.Buffers,
		CachedRate:       r.Cached,
		SwapCachedRate:   r.SwapCached,
		ActiveRate:       r.Active,
		InactiveRate:     r.Inactive,
		ActiveAnonRate:   r.ActiveAnon,
		InactiveAnonRate: r.InactiveAnon,
		ActiveFileRate:   r.ActiveFile,
		InactiveFileRate: r.InactiveFile,
		DirtyRate:        r.Dirty,
		WritebackRate:    r.Writeback,
		AnonPagesRate:    r.AnonPages,
		MappedRate:       r.Mapped,
		KReclaimableRate: r.KReclaimable,
		SReclaimableRate: r.SReclaimable,
		SUnreclaimRate:   r.SUnreclaim,
		Timestamp:        ts,
	}
	if err := m.sink.InsertMemDetail(ctx, row); err != nil {
		m.writeFailed("server_mem_detail", key, err)
	}
}

func (m *Manager) writeDiskDetail(ctx context.Context, key, ts string, info *protocol.MonitorInfo) {
	for _, d := range info.Disks {
		curr := rate.DiskSample{
			ReadBytesPerSec:   d.ReadBytesPerSec,
			WriteBytesPerSec:  d.WriteBytesPerSec,
			ReadIOPS:          d.ReadIOPS,
			WriteIOPS:         d.WriteIOPS,
			AvgReadLatencyMS:  d.AvgReadLatencyMS,
			AvgWriteLatencyMS: d.AvgWriteLatencyMS,
			UtilPercent:       d.UtilPercent,
		}
		r := m.rates.DiskRates(key, d.Name, curr)
		row := store.DiskDetailRow{
			ServerName:            key,
			DiskName:              d.Name,
			Reads:                 d.Reads,
			Writes:                d.Writes,
			SectorsRead:           d.SectorsRead,
			SectorsWritten:        d.SectorsWritten,
			ReadTimeMS:            d.ReadTimeMS,
			WriteTimeMS:           d.WriteTimeMS,
			IOInProgress:          d.IOInProgress,
			IOTimeMS:              d.IOTimeMS,
			WeightedIOTimeMS:      d.WeightedIOTimeMS,
			ReadBytesPerSec:       d.ReadBytesPerSec,
			WriteBytesPerSec:      d.WriteBytesPerSec,
			ReadIOPS:              d.ReadIOPS,
			WriteIOPS:             d.WriteIOPS,
			AvgReadLatencyMS:      d.AvgReadLatencyMS,
			AvgWriteLatencyMS:     d.AvgWriteLatencyMS,
			UtilPercent:           d.UtilPercent,
			ReadBytesPerSecRate:   r.ReadBytesPerSec,
			WriteBytesPerSecRate:  r.WriteBytesPerSec,
			ReadIOPSRate:          r.ReadIOPS,
			WriteIOPSRate:         r.WriteIOPS,
			AvgReadLatencyMSRate:  r.AvgReadLatencyMS,
			AvgWriteLatencyMSRate: r.AvgWriteLatencyMS,
			UtilPercentRate:       r.UtilPercent,
			Timestamp:             ts,
		}
		if err := m.sink.InsertDiskDetail(ctx, row); err != nil {
			m.writeFailed("server_disk_detail", key, err)
		}
	}
}

// writeCPUCoreDetail persists the per-core lines. Index 0 is the aggregate
// and is skipped.
func (m *Manager) writeCPUCoreDetail(ctx context.Context, key, ts string, info *protocol.MonitorInfo) {
	if len(info.CPUStats) < 2 {
		return
	}
	for _, c := range info.CPUStats[1:] {
		row := store.CPUCoreDetailRow{
			ServerName:     key,
			CPUName:        c.CPUName,
			CPUPercent:     c.CPUPercent,
			UsrPercent:     c.UsrPercent,
			SystemPercent:  c.SystemPercent,
			NicePercent:    c.NicePercent,
			IdlePercent:    c.IdlePercent,
			IOWaitPercent:  c.IOWaitPercent,
			IrqPercent:     c.IrqPercent,
			SoftIrqPercent: c.SoftIrqPercent,
			Timestamp:      ts,
		}
		if err := m.sink.InsertCPUCoreDetail(ctx, row); err != nil {
			m.writeFailed("server_cpu_core_detail", key, err)
		}
	}
}

// ===== SCOREBOARD =====

// AllHostScores returns a copy of the live scoreboard.
func (m *Manager) AllHostScores() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.scoreboard))
	for host, e := range m.scoreboard {
		out[host] = e.score
	}
	return out
}

// BestHost returns the highest-scoring live host, or "" when none.
func (m *Manager) BestHost() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := ""
	bestScore := -1.0
	for host, e := range m.scoreboard {
		if e.score > bestScore {
			best = host
			bestScore = e.score
		}
	}
	return best
}

// sweep evicts scoreboard entries not refreshed within staleAfter.
func (m *Manager) sweep() {
	cutoff := m.now().Add(-staleAfter)
	m.mu.Lock()
	for host, e := range m.scoreboard {
		if e.seen.Before(cutoff) {
			delete(m.scoreboard, host)
			m.log.Info("evicted stale host", zap.String("host", host))
		}
	}
	size := len(m.scoreboard)
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.ScoreboardSize.Set(float64(size))
	}
}

// Start launches the background sweeper.
func (m *Manager) Start() {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
	m.log.Info("scoreboard sweeper started",
		zap.Duration("interval", sweepInterval))
}

// Stop halts the sweeper and waits for it to exit.
func (m *Manager) Stop() {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()
	if !m.running {
		return
	}
	close(m.stop)
	m.wg.Wait()
	m.running = false
	m.log.Info("scoreboard sweeper stopped")
}
