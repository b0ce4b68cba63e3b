package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"fleetmon/internal/protocol"
)

// sectorSize is the kernel's fixed accounting unit for block counters.
const sectorSize = 512

// DiskResult carries per-device raw counters plus derived rates.
type DiskResult struct {
	Disks []protocol.DiskInfo
}

// DiskSensor snapshots block-device counters and derives throughput, IOPS,
// latency, and utilization from the delta to the previous collection. The
// first collection reports zero derived figures.
type DiskSensor struct {
	mu      sync.Mutex
	prior   map[string]disk.IOCountersStat
	priorAt time.Time
	now     func() time.Time
}

func NewDiskSensor() *DiskSensor {
	return &DiskSensor{
		prior: make(map[string]disk.IOCountersStat),
		now:   time.Now,
	}
}

func (s *DiskSensor) Name() string {
	return "Disk"
}

func (s *DiskSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Collect(ctx context.Context) (any, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk counters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	elapsed := now.Sub(s.priorAt).Seconds()
	first := s.priorAt.IsZero()

	var out []protocol.DiskInfo
	for name, c := range counters {
		info := protocol.DiskInfo{
			Name:             name,
			Reads:            c.ReadCount,
			Writes:           c.WriteCount,
			SectorsRead:      c.ReadBytes / sectorSize,
			SectorsWritten:   c.WriteBytes / sectorSize,
			ReadTimeMS:       c.ReadTime,
			WriteTimeMS:      c.WriteTime,
			IOInProgress:     c.IopsInProgress,
			IOTimeMS:         c.IoTime,
			WeightedIOTimeMS: c.WeightedIO,
		}
		if prev, ok := s.prior[name]; ok && !first && elapsed > 0 {
			info.ReadBytesPerSec = counterRate(c.ReadBytes, prev.ReadBytes, elapsed)
			info.WriteBytesPerSec = counterRate(c.WriteBytes, prev.WriteBytes, elapsed)
			info.ReadIOPS = counterRate(c.ReadCount, prev.ReadCount, elapsed)
			info.WriteIOPS = counterRate(c.WriteCount, prev.WriteCount, elapsed)
			info.AvgReadLatencyMS = avgLatency(c.ReadTime, prev.ReadTime, c.ReadCount, prev.ReadCount)
			info.AvgWriteLatencyMS = avgLatency(c.WriteTime, prev.WriteTime, c.WriteCount, prev.WriteCount)
			if c.IoTime >= prev.IoTime {
				info.UtilPercent = float64(c.IoTime-prev.IoTime) / (elapsed * 1000.0) * 100.0
				if info.UtilPercent > 100 {
					info.UtilPercent = 100
				}
			}
		}
		out = append(out, info)
		s.prior[name] = c
	}
	s.priorAt = now

	return DiskResult{Disks: out}, nil
}

// avgLatency is time spent per operation over the interval, in ms.
func avgLatency(nowTime, prevTime, nowOps, prevOps uint64) float64 {
	if nowTime < prevTime || nowOps <= prevOps {
		return 0
	}
	return float64(nowTime-prevTime) / float64(nowOps-prevOps)
}
