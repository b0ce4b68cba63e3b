package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"

	"fleetmon/internal/protocol"
)

// CPUResult carries the aggregate line followed by one line per core.
type CPUResult struct {
	Stats []protocol.CPUStat
}

// CPUSensor derives percent breakdowns from cumulative CPU times. The first
// collection reports averages since boot; later ones cover the interval
// since the previous collection.
type CPUSensor struct {
	mu       sync.Mutex
	prior    map[string]cpu.TimesStat
	priorAgg cpu.TimesStat
}

func NewCPUSensor() *CPUSensor {
	return &CPUSensor{prior: make(map[string]cpu.TimesStat)}
}

func (s *CPUSensor) Name() string {
	return "CPU"
}

func (s *CPUSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Collect(ctx context.Context) (any, error) {
	agg, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(agg) == 0 {
		return nil, fmt.Errorf("failed to get aggregate cpu times: %w", err)
	}
	perCore, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-core cpu times: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make([]protocol.CPUStat, 0, len(perCore)+1)
	stats = append(stats, cpuStatFromDelta("cpu", agg[0], s.priorAgg))
	s.priorAgg = agg[0]

	for _, t := range perCore {
		stats = append(stats, cpuStatFromDelta(t.CPU, t, s.prior[t.CPU]))
		s.prior[t.CPU] = t
	}

	return CPUResult{Stats: stats}, nil
}

// cpuStatFromDelta turns two cumulative time readings into a percent
// breakdown over the interval between them.
func cpuStatFromDelta(name string, curr, prev cpu.TimesStat) protocol.CPUStat {
	dUser := curr.User - prev.User
	dSystem := curr.System - prev.System
	dNice := curr.Nice - prev.Nice
	dIdle := curr.Idle - prev.Idle
	dIowait := curr.Iowait - prev.Iowait
	dIrq := curr.Irq - prev.Irq
	dSoftirq := curr.Softirq - prev.Softirq
	dSteal := curr.Steal - prev.Steal
	dGuest := curr.Guest - prev.Guest
	dGuestNice := curr.GuestNice - prev.GuestNice

	total := dUser + dSystem + dNice + dIdle + dIowait + dIrq + dSoftirq + dSteal + dGuest + dGuestNice
	if total <= 0 {
		return protocol.CPUStat{CPUName: name}
	}

	pct := func(d float64) float64 { return d / total * 100.0 }
	return protocol.CPUStat{
		CPUName:          name,
		CPUPercent:       pct(total - dIdle - dIowait),
		UsrPercent:       pct(dUser),
		SystemPercent:    pct(dSystem),
		NicePercent:      pct(dNice),
		IdlePercent:      pct(dIdle),
		IOWaitPercent:    pct(dIowait),
		IrqPercent:       pct(dIrq),
		SoftIrqPercent:   pct(dSoftirq),
		StealPercent:     pct(dSteal),
		GuestPercent:     pct(dGuest),
		GuestNicePercent: pct(dGuestNice),
	}
}
