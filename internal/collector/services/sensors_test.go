package services

import (
	"math"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
)

func TestCPUStatFromDelta(t *testing.T) {
	prev := cpu.TimesStat{CPU: "cpu", User: 100, System: 50, Idle: 800, Iowait: 50}
	curr := cpu.TimesStat{CPU: "cpu", User: 130, System: 60, Idle: 850, Iowait: 60}
	// Deltas: user 30, system 10, idle 50, iowait 10, total 100.

	stat := cpuStatFromDelta("cpu", curr, prev)
	if stat.CPUName != "cpu" {
		t.Errorf("name = %q", stat.CPUName)
	}
	if math.Abs(stat.UsrPercent-30) > 1e-9 {
		t.Errorf("usr = %v, want 30", stat.UsrPercent)
	}
	if math.Abs(stat.SystemPercent-10) > 1e-9 {
		t.Errorf("system = %v, want 10", stat.SystemPercent)
	}
	if math.Abs(stat.IdlePercent-50) > 1e-9 {
		t.Errorf("idle = %v, want 50", stat.IdlePercent)
	}
	if math.Abs(stat.IOWaitPercent-10) > 1e-9 {
		t.Errorf("iowait = %v, want 10", stat.IOWaitPercent)
	}
	// Busy excludes idle and iowait.
	if math.Abs(stat.CPUPercent-40) > 1e-9 {
		t.Errorf("cpu = %v, want 40", stat.CPUPercent)
	}
}

func TestCPUStatFromDeltaNoProgress(t *testing.T) {
	same := cpu.TimesStat{CPU: "cpu0", User: 100, Idle: 900}
	stat := cpuStatFromDelta("cpu0", same, same)
	if stat.CPUPercent != 0 || stat.IdlePercent != 0 {
		t.Errorf("zero-delta stat = %+v, want all zeros", stat)
	}
}

func TestCounterRate(t *testing.T) {
	tests := []struct {
		name    string
		now     uint64
		prev    uint64
		elapsed float64
		want    float64
	}{
		{"steady", 3000, 1000, 2, 1000},
		{"no elapsed", 3000, 1000, 0, 0},
		{"counter reset", 100, 5000, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterRate(tt.now, tt.prev, tt.elapsed); got != tt.want {
				t.Errorf("counterRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvgLatency(t *testing.T) {
	// 200ms spent over 50 ops.
	if got := avgLatency(1200, 1000, 150, 100); got != 4 {
		t.Errorf("avgLatency() = %v, want 4", got)
	}
	if got := avgLatency(1200, 1000, 100, 100); got != 0 {
		t.Errorf("avgLatency() with no ops = %v, want 0", got)
	}
}

const memInfoSample = `MemTotal:       16316412 kB
MemFree:         2048000 kB
MemAvailable:    8158206 kB
Buffers:          512000 kB
Cached:          4096000 kB
SwapCached:        10240 kB
Active:          6144000 kB
Inactive:        3072000 kB
Active(anon):    4096000 kB
Inactive(anon):   102400 kB
Active(file):    2048000 kB
Inactive(file):  2969600 kB
Unevictable:           0 kB
Mlocked:               0 kB
Dirty:              2048 kB
Writeback:             0 kB
AnonPages:       4198400 kB
Mapped:           819200 kB
Shmem:            204800 kB
KReclaimable:     409600 kB
Slab:             614400 kB
SReclaimable:     409600 kB
SUnreclaim:       204800 kB
`

func TestParseMemInfo(t *testing.T) {
	mem, err := ParseMemInfo(strings.NewReader(memInfoSample))
	if err != nil {
		t.Fatalf("ParseMemInfo() error = %v", err)
	}

	if math.Abs(mem.Total-16316412.0/1024) > 1e-6 {
		t.Errorf("total = %v MB", mem.Total)
	}
	if math.Abs(mem.Avail-8158206.0/1024) > 1e-6 {
		t.Errorf("avail = %v MB", mem.Avail)
	}
	if math.Abs(mem.ActiveAnon-4096000.0/1024) > 1e-6 {
		t.Errorf("active(anon) = %v MB", mem.ActiveAnon)
	}
	if math.Abs(mem.SUnreclaim-204800.0/1024) > 1e-6 {
		t.Errorf("sunreclaim = %v MB", mem.SUnreclaim)
	}
	// Avail is exactly half of total here.
	if math.Abs(mem.UsedPercent-50.0) > 0.01 {
		t.Errorf("used percent = %v, want ~50", mem.UsedPercent)
	}
}

func TestParseMemInfoMissingTotal(t *testing.T) {
	if _, err := ParseMemInfo(strings.NewReader("MemFree: 1000 kB\n")); err == nil {
		t.Fatal("ParseMemInfo() without MemTotal should fail")
	}
}

const softIrqSample = `                    CPU0       CPU1
          HI:          3          1
       TIMER:     331520     322026
      NET_TX:          2          1
      NET_RX:     270221        225
       BLOCK:     134282      32588
    IRQ_POLL:          0          0
     TASKLET:     196835          2
       SCHED:     161852     146745
     HRTIMER:          5          0
         RCU:     337707     289397
`

func TestParseSoftIrqs(t *testing.T) {
	irqs, err := ParseSoftIrqs(strings.NewReader(softIrqSample))
	if err != nil {
		t.Fatalf("ParseSoftIrqs() error = %v", err)
	}
	if len(irqs) != 2 {
		t.Fatalf("cpus = %d, want 2", len(irqs))
	}

	cpu0 := irqs[0]
	if cpu0.CPU != "cpu0" {
		t.Errorf("cpu name = %q, want cpu0", cpu0.CPU)
	}
	if cpu0.HI != 3 || cpu0.Timer != 331520 || cpu0.NetRx != 270221 {
		t.Errorf("cpu0 counters = %+v", cpu0)
	}
	if cpu0.Block != 134282 || cpu0.Tasklet != 196835 || cpu0.HRTimer != 5 || cpu0.RCU != 337707 {
		t.Errorf("cpu0 counters = %+v", cpu0)
	}

	cpu1 := irqs[1]
	if cpu1.CPU != "cpu1" || cpu1.Sched != 146745 || cpu1.NetRx != 225 {
		t.Errorf("cpu1 counters = %+v", cpu1)
	}
}

func TestParseSoftIrqsEmpty(t *testing.T) {
	if _, err := ParseSoftIrqs(strings.NewReader("")); err == nil {
		t.Fatal("ParseSoftIrqs() on empty input should fail")
	}
}
