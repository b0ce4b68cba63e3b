package scoring

import (
	"math"
	"testing"

	"fleetmon/internal/protocol"
)

func TestProfileWeights(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		cpu     float64
		mem     float64
		coeff   float64
	}{
		{"balanced", protocol.ProfileBalanced, 0.35, 0.30, 1.5},
		{"high concurrency", protocol.ProfileHighConcurrency, 0.45, 0.25, 1.2},
		{"io intensive", protocol.ProfileIOIntensive, 0.20, 0.15, 2.0},
		{"memory sensitive", protocol.ProfileMemorySensitive, 0.20, 0.45, 1.5},
		{"unknown falls back to balanced", "turbo", 0.35, 0.30, 1.5},
		{"empty falls back to balanced", "", 0.35, 0.30, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ProfileWeights(tt.profile)
			if w.CPU != tt.cpu || w.Mem != tt.mem || w.LoadCoeff != tt.coeff {
				t.Errorf("ProfileWeights(%q) = cpu %.2f mem %.2f coeff %.2f, want %.2f/%.2f/%.2f",
					tt.profile, w.CPU, w.Mem, w.LoadCoeff, tt.cpu, tt.mem, tt.coeff)
			}
			if w.MaxBandwidth != 125000000.0 {
				t.Errorf("MaxBandwidth = %f, want 1.25e8", w.MaxBandwidth)
			}
			total := w.CPU + w.Mem + w.Load + w.Disk + w.Net
			if math.Abs(total-1.0) > 1e-9 {
				t.Errorf("weights for %q sum to %f, want 1.0", tt.profile, total)
			}
		})
	}
}

func TestScoreSnapshot(t *testing.T) {
	// 4 cores -> 5 cpu stat entries, aggregate first.
	snap := &protocol.MonitorInfo{
		CPUStats: []protocol.CPUStat{
			{CPUName: "cpu", CPUPercent: 50},
			{CPUName: "cpu0"}, {CPUName: "cpu1"}, {CPUName: "cpu2"}, {CPUName: "cpu3"},
		},
		CPULoad: &protocol.CPULoad{LoadAvg1: 2.0},
		Mem:     &protocol.MemInfo{UsedPercent: 40},
		Nets:    []protocol.NetInfo{{Name: "eth0", RcvRate: 1e6, SendRate: 1e6}},
		Disks:   []protocol.DiskInfo{{Name: "sda", UtilPercent: 10}},
	}

	got := ScoreSnapshot(snap, protocol.ProfileBalanced)
	if math.Abs(got-63.47) > 0.05 {
		t.Errorf("balanced score = %.4f, want ~63.47", got)
	}
}

func TestScoreSnapshot_Edges(t *testing.T) {
	tests := []struct {
		name string
		snap *protocol.MonitorInfo
		want float64
	}{
		{
			name: "empty snapshot scores as fully idle",
			snap: &protocol.MonitorInfo{},
			want: 100,
		},
		{
			name: "saturated host floors at zero",
			snap: &protocol.MonitorInfo{
				CPUStats: []protocol.CPUStat{{CPUPercent: 100}, {}},
				CPULoad:  &protocol.CPULoad{LoadAvg1: 50},
				Mem:      &protocol.MemInfo{UsedPercent: 100},
				Nets:     []protocol.NetInfo{{RcvRate: 2e8, SendRate: 2e8}},
				Disks:    []protocol.DiskInfo{{UtilPercent: 100}},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreSnapshot(tt.snap, protocol.ProfileBalanced)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScoreSnapshot_MaxDiskUtil(t *testing.T) {
	snap := &protocol.MonitorInfo{
		Disks: []protocol.DiskInfo{
			{Name: "sda", UtilPercent: 10},
			{Name: "sdb", UtilPercent: 90},
			{Name: "sdc", UtilPercent: 40},
		},
	}
	// disk sub-score must come from the busiest device (0.1), not an average
	got := ScoreSnapshot(snap, protocol.ProfileBalanced)
	want := (1.0*0.35 + 1.0*0.30 + 1.0*0.15 + 0.1*0.15 + 1.0*0.05) * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("score = %f, want %f", got, want)
	}
}

func TestRescore_ProfileSwap(t *testing.T) {
	// cpu hot, memory cold: the memory-sensitive profile must rate this host
	// higher than the balanced one.
	balanced := Rescore(protocol.ProfileBalanced, 90, 10, 0.5, 5, 1, 1)
	memSensitive := Rescore(protocol.ProfileMemorySensitive, 90, 10, 0.5, 5, 1, 1)
	if memSensitive <= balanced {
		t.Errorf("memory_sensitive %.2f should exceed balanced %.2f", memSensitive, balanced)
	}
}

func TestRescore_KBToBytes(t *testing.T) {
	// stored rates are KB/s; saturating 1 Gbps in KB terms must zero the
	// net sub-score
	sat := 125000000.0 / 1024.0
	got := Rescore(protocol.ProfileBalanced, 0, 0, 0, 0, sat, sat)
	want := (1.0*0.35 + 1.0*0.30 + 1.0*0.15 + 1.0*0.15 + 0.0*0.05) * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("score = %f, want %f", got, want)
	}
}

func TestScore_CoreFloor(t *testing.T) {
	w := ProfileWeights(protocol.ProfileBalanced)
	a := Score(w, 0, 0, 1.0, 0, 0, 0, 0)
	b := Score(w, 0, 0, 1.0, 0, 0, 0, 1)
	if a != b {
		t.Errorf("core count 0 should behave as 1: got %f vs %f", a, b)
	}
}
