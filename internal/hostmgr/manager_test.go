package hostmgr

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fleetmon/internal/protocol"
	"fleetmon/internal/store"
)

type fakeSink struct {
	perf    []store.PerformanceRow
	nets    []store.NetDetailRow
	softirq []store.SoftIrqDetailRow
	mem     []store.MemDetailRow
	disks   []store.DiskDetailRow
	cores   []store.CPUCoreDetailRow
	err     error
}

func (f *fakeSink) InsertPerformance(_ context.Context, row store.PerformanceRow) error {
	f.perf = append(f.perf, row)
	return f.err
}

func (f *fakeSink) InsertNetDetail(_ context.Context, row store.NetDetailRow) error {
	f.nets = append(f.nets, row)
	return f.err
}

func (f *fakeSink) InsertSoftIrqDetail(_ context.Context, row store.SoftIrqDetailRow) error {
	f.softirq = append(f.softirq, row)
	return f.err
}

func (f *fakeSink) InsertMemDetail(_ context.Context, row store.MemDetailRow) error {
	f.mem = append(f.mem, row)
	return f.err
}

func (f *fakeSink) InsertDiskDetail(_ context.Context, row store.DiskDetailRow) error {
	f.disks = append(f.disks, row)
	return f.err
}

func (f *fakeSink) InsertCPUCoreDetail(_ context.Context, row store.CPUCoreDetailRow) error {
	f.cores = append(f.cores, row)
	return f.err
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		name    string
		info    *protocol.MonitorInfo
		want    string
		wantOK  bool
	}{
		{
			name: "hostname and ip",
			info: &protocol.MonitorInfo{
				Host: &protocol.HostInfo{Hostname: "web-01", IPAddress: "10.0.0.5"},
			},
			want:   "web-01_10.0.0.5",
			wantOK: true,
		},
		{
			name: "hostname only",
			info: &protocol.MonitorInfo{
				Host: &protocol.HostInfo{Hostname: "web-01"},
			},
			want:   "web-01",
			wantOK: true,
		},
		{
			name: "ip only",
			info: &protocol.MonitorInfo{
				Host: &protocol.HostInfo{IPAddress: "10.0.0.5"},
			},
			want:   "10.0.0.5",
			wantOK: true,
		},
		{
			name:   "legacy name",
			info:   &protocol.MonitorInfo{Name: "legacy-host"},
			want:   "legacy-host",
			wantOK: true,
		},
		{
			name: "empty host info falls back to name",
			info: &protocol.MonitorInfo{
				Name: "legacy-host",
				Host: &protocol.HostInfo{},
			},
			want:   "legacy-host",
			wantOK: true,
		},
		{
			name:   "no identity",
			info:   &protocol.MonitorInfo{},
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HostKey(tt.info)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("HostKey() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func testSnapshot() *protocol.MonitorInfo {
	return &protocol.MonitorInfo{
		Host: &protocol.HostInfo{Hostname: "web-01", IPAddress: "10.0.0.5"},
		CPUStats: []protocol.CPUStat{
			{CPUName: "cpu", CPUPercent: 40, UsrPercent: 25, SystemPercent: 10},
			{CPUName: "cpu0", CPUPercent: 42},
			{CPUName: "cpu1", CPUPercent: 38},
		},
		CPULoad: &protocol.CPULoad{LoadAvg1: 1.5, LoadAvg3: 1.2, LoadAvg15: 1.0},
		Mem: &protocol.MemInfo{
			UsedPercent: 55, Total: 16000, Free: 4000, Avail: 7200,
			Buffers: 300, Cached: 2400, Active: 6000, Inactive: 3000, Dirty: 12,
		},
		Nets: []protocol.NetInfo{
			{Name: "eth0", SendRate: 2048 * 1024, RcvRate: 4096 * 1024, SendPacketsRate: 900, RcvPacketsRate: 1800, ErrIn: 2, DropOut: 1},
			{Name: "eth1", SendRate: 1024, RcvRate: 512},
		},
		Disks: []protocol.DiskInfo{
			{Name: "sda", Reads: 100, Writes: 50, ReadBytesPerSec: 5e6, WriteBytesPerSec: 2e6, UtilPercent: 30},
			{Name: "sdb", Reads: 10, UtilPercent: 65},
		},
		SoftIrqs: []protocol.SoftIrq{
			{CPU: "cpu0", Timer: 1000, NetRx: 500, Sched: 700},
			{CPU: "cpu1", Timer: 900, NetRx: 450, Sched: 650},
		},
	}
}

func TestIngestFanOut(t *testing.T) {
	sink := &fakeSink{}
	m := New(sink, nil)

	if err := m.Ingest(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(sink.perf) != 1 {
		t.Fatalf("performance rows = %d, want 1", len(sink.perf))
	}
	if len(sink.nets) != 2 {
		t.Errorf("net rows = %d, want 2", len(sink.nets))
	}
	if len(sink.softirq) != 2 {
		t.Errorf("softirq rows = %d, want 2", len(sink.softirq))
	}
	if len(sink.mem) != 1 {
		t.Errorf("mem rows = %d, want 1", len(sink.mem))
	}
	if len(sink.disks) != 2 {
		t.Errorf("disk rows = %d, want 2", len(sink.disks))
	}
	if len(sink.cores) != 2 {
		t.Errorf("core rows = %d, want 2", len(sink.cores))
	}

	p := sink.perf[0]
	if p.ServerName != "web-01_10.0.0.5" {
		t.Errorf("server name = %q", p.ServerName)
	}
	if p.CPUPercent != 40 || p.MemUsedPercent != 55 {
		t.Errorf("aggregate figures = (%v, %v), want (40, 55)", p.CPUPercent, p.MemUsedPercent)
	}
	// Stored throughput is KB/s of the first interface.
	if p.SendRate != 2048 || p.RcvRate != 4096 {
		t.Errorf("throughput KB/s = (%v, %v), want (2048, 4096)", p.SendRate, p.RcvRate)
	}
	// Highest util across devices.
	if p.DiskUtilPercent != 65 {
		t.Errorf("disk util = %v, want 65", p.DiskUtilPercent)
	}
	if p.Score <= 0 || p.Score > 100 {
		t.Errorf("score = %v, want in (0, 100]", p.Score)
	}
	// First sample has no prior.
	if p.CPUPercentRate != 0 || p.MemUsedPercentRate != 0 || p.DiskUtilPercentRate != 0 {
		t.Errorf("first-sample rates = (%v, %v, %v), want zeros",
			p.CPUPercentRate, p.MemUsedPercentRate, p.DiskUtilPercentRate)
	}

	if sink.cores[0].CPUName != "cpu0" || sink.cores[1].CPUName != "cpu1" {
		t.Errorf("core names = (%q, %q)", sink.cores[0].CPUName, sink.cores[1].CPUName)
	}
}

func TestIngestChangeRates(t *testing.T) {
	sink := &fakeSink{}
	m := New(sink, nil)
	ctx := context.Background()

	first := testSnapshot()
	if err := m.Ingest(ctx, first); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}

	second := testSnapshot()
	second.CPUStats[0].CPUPercent = 60 // 40 -> 60
	second.Disks[1].UtilPercent = 130  // 65 -> 130
	if err := m.Ingest(ctx, second); err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}

	p := sink.perf[1]
	if math.Abs(p.CPUPercentRate-0.5) > 1e-9 {
		t.Errorf("cpu rate = %v, want 0.5", p.CPUPercentRate)
	}
	if math.Abs(p.DiskUtilPercentRate-1.0) > 1e-9 {
		t.Errorf("disk util rate = %v, want 1.0", p.DiskUtilPercentRate)
	}
	if p.MemUsedPercentRate != 0 {
		t.Errorf("mem rate = %v, want 0 for unchanged metric", p.MemUsedPercentRate)
	}
}

func TestIngestMissingIdentity(t *testing.T) {
	sink := &fakeSink{}
	m := New(sink, nil)

	err := m.Ingest(context.Background(), &protocol.MonitorInfo{})
	if !errors.Is(err, ErrMissingHostKey) {
		t.Fatalf("Ingest() error = %v, want ErrMissingHostKey", err)
	}
	if len(sink.perf) != 0 {
		t.Errorf("performance rows = %d, want 0", len(sink.perf))
	}
	if len(m.AllHostScores()) != 0 {
		t.Errorf("scoreboard not empty after rejected snapshot")
	}
}

func TestIngestWriteFailureNotFatal(t *testing.T) {
	sink := &fakeSink{err: errors.New("connection lost")}
	m := New(sink, nil)

	if err := m.Ingest(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Ingest() error = %v, want nil on store failure", err)
	}
	if len(m.AllHostScores()) != 1 {
		t.Errorf("scoreboard should advance despite store failure")
	}
}

func TestScoreboard(t *testing.T) {
	sink := &fakeSink{}
	m := New(sink, nil)
	ctx := context.Background()

	if got := m.BestHost(); got != "" {
		t.Errorf("BestHost() on empty board = %q, want \"\"", got)
	}

	busy := testSnapshot()
	busy.Host = &protocol.HostInfo{Hostname: "busy"}
	busy.CPUStats[0].CPUPercent = 95
	busy.Mem.UsedPercent = 92
	if err := m.Ingest(ctx, busy); err != nil {
		t.Fatal(err)
	}

	idle := testSnapshot()
	idle.Host = &protocol.HostInfo{Hostname: "idle"}
	idle.CPUStats[0].CPUPercent = 5
	idle.Mem.UsedPercent = 10
	if err := m.Ingest(ctx, idle); err != nil {
		t.Fatal(err)
	}

	scores := m.AllHostScores()
	if len(scores) != 2 {
		t.Fatalf("scoreboard size = %d, want 2", len(scores))
	}
	if scores["idle"] <= scores["busy"] {
		t.Errorf("idle score %v should beat busy score %v", scores["idle"], scores["busy"])
	}
	if got := m.BestHost(); got != "idle" {
		t.Errorf("BestHost() = %q, want idle", got)
	}

	// Mutating the copy must not touch the board.
	scores["idle"] = -1
	if m.AllHostScores()["idle"] == -1 {
		t.Error("AllHostScores() returned the live map")
	}
}

func TestSweepEvictsStaleHosts(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	sink := &fakeSink{}
	m := New(sink, nil, WithNowFunc(func() time.Time { return clock }))
	ctx := context.Background()

	stale := testSnapshot()
	stale.Host = &protocol.HostInfo{Hostname: "stale"}
	if err := m.Ingest(ctx, stale); err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(45 * time.Second)
	fresh := testSnapshot()
	fresh.Host = &protocol.HostInfo{Hostname: "fresh"}
	if err := m.Ingest(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(30 * time.Second)
	m.sweep()

	scores := m.AllHostScores()
	if _, ok := scores["stale"]; ok {
		t.Error("stale host survived the sweep")
	}
	if _, ok := scores["fresh"]; !ok {
		t.Error("fresh host was evicted")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	m := New(&fakeSink{}, nil)
	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}
