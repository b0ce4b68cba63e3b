package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	gnet "github.com/shirou/gopsutil/v4/net"

	"fleetmon/internal/protocol"
)

// NetResult carries per-interface throughput rates and error counters.
type NetResult struct {
	Interfaces []protocol.NetInfo
}

// NetSensor derives bytes/s and packets/s from cumulative interface
// counters. The first collection reports zero rates.
type NetSensor struct {
	mu      sync.Mutex
	prior   map[string]gnet.IOCountersStat
	priorAt time.Time
	now     func() time.Time
}

func NewNetSensor() *NetSensor {
	return &NetSensor{
		prior: make(map[string]gnet.IOCountersStat),
		now:   time.Now,
	}
}

func (s *NetSensor) Name() string {
	return "Network"
}

func (s *NetSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *NetSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *NetSensor) Collect(ctx context.Context) (any, error) {
	counters, err := gnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get interface counters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	elapsed := now.Sub(s.priorAt).Seconds()
	first := s.priorAt.IsZero()

	var out []protocol.NetInfo
	for _, c := range counters {
		if c.Name == "lo" {
			continue
		}
		info := protocol.NetInfo{
			Name:    c.Name,
			ErrIn:   c.Errin,
			ErrOut:  c.Errout,
			DropIn:  c.Dropin,
			DropOut: c.Dropout,
		}
		if prev, ok := s.prior[c.Name]; ok && !first && elapsed > 0 {
			info.SendRate = counterRate(c.BytesSent, prev.BytesSent, elapsed)
			info.RcvRate = counterRate(c.BytesRecv, prev.BytesRecv, elapsed)
			info.SendPacketsRate = counterRate(c.PacketsSent, prev.PacketsSent, elapsed)
			info.RcvPacketsRate = counterRate(c.PacketsRecv, prev.PacketsRecv, elapsed)
		}
		out = append(out, info)
		s.prior[c.Name] = c
	}
	s.priorAt = now

	return NetResult{Interfaces: out}, nil
}

// counterRate is the per-second delta of a cumulative counter; a counter
// reset reads as zero rather than a huge negative rate.
func counterRate(now, prev uint64, elapsed float64) float64 {
	if now < prev || elapsed <= 0 {
		return 0
	}
	return float64(now-prev) / elapsed
}
