// Package collector assembles full telemetry snapshots on the agent side.
// Each metric family has its own sensor; a snapshot fans the sensors out
// concurrently and merges their results.
package collector

import (
	"context"
	"fmt"
	"sync"

	"fleetmon/internal/collector/services"
	"fleetmon/internal/protocol"
)

// ============================================================================
// INTERFACE DEFINITION
// ============================================================================

// SnapshotProvider defines the contract for any snapshot collector.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*protocol.MonitorInfo, error)
}

// ============================================================================
// CONCRETE IMPLEMENTATION
// ============================================================================

type SystemCollector struct {
	config        CollectorConfig
	hostSensor    services.Sensor
	cpuSensor     services.Sensor
	loadSensor    services.Sensor
	memSensor     services.Sensor
	netSensor     services.Sensor
	diskSensor    services.Sensor
	softirqSensor services.Sensor
}

func NewSystemCollector(config CollectorConfig) *SystemCollector {
	return &SystemCollector{
		config:        config,
		hostSensor:    services.NewHostSensor(),
		cpuSensor:     services.NewCPUSensor(),
		loadSensor:    services.NewLoadSensor(),
		memSensor:     services.NewMemSensorAt(config.MemInfoPath),
		netSensor:     services.NewNetSensor(),
		diskSensor:    services.NewDiskSensor(),
		softirqSensor: services.NewSoftIrqSensorAt(config.SoftIrqsPath),
	}
}

// Internal result types for concurrency
type hostResult struct {
	stats services.HostResult
	err   error
}

type cpuResult struct {
	stats services.CPUResult
	err   error
}

type loadResult struct {
	stats services.LoadResult
	err   error
}

type memResult struct {
	stats services.MemResult
	err   error
}

type netResult struct {
	stats services.NetResult
	err   error
}

type diskResult struct {
	stats services.DiskResult
	err   error
}

type softirqResult struct {
	stats services.SoftIrqResult
	err   error
}

// Snapshot collects one full telemetry snapshot. Host identity and CPU
// figures are mandatory; the detail families degrade to empty when their
// sensor fails.
func (s *SystemCollector) Snapshot(ctx context.Context) (*protocol.MonitorInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.CollectTimeout)
	defer cancel()

	hostCh := make(chan hostResult, 1)
	cpuCh := make(chan cpuResult, 1)
	loadCh := make(chan loadResult, 1)
	memCh := make(chan memResult, 1)
	netCh := make(chan netResult, 1)
	diskCh := make(chan diskResult, 1)
	softirqCh := make(chan softirqResult, 1)

	var wg sync.WaitGroup
	wg.Add(7)

	go func() {
		defer wg.Done()
		res, err := s.hostSensor.Collect(ctx)
		if err != nil {
			hostCh <- hostResult{err: err}
			return
		}
		hostCh <- hostResult{stats: res.(services.HostResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.cpuSensor.Collect(ctx)
		if err != nil {
			cpuCh <- cpuResult{err: err}
			return
		}
		cpuCh <- cpuResult{stats: res.(services.CPUResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.loadSensor.Collect(ctx)
		if err != nil {
			loadCh <- loadResult{err: err}
			return
		}
		loadCh <- loadResult{stats: res.(services.LoadResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.memSensor.Collect(ctx)
		if err != nil {
			memCh <- memResult{err: err}
			return
		}
		memCh <- memResult{stats: res.(services.MemResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.netSensor.Collect(ctx)
		if err != nil {
			netCh <- netResult{err: err}
			return
		}
		netCh <- netResult{stats: res.(services.NetResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.diskSensor.Collect(ctx)
		if err != nil {
			diskCh <- diskResult{err: err}
			return
		}
		diskCh <- diskResult{stats: res.(services.DiskResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.softirqSensor.Collect(ctx)
		if err != nil {
			softirqCh <- softirqResult{err: err}
			return
		}
		softirqCh <- softirqResult{stats: res.(services.SoftIrqResult)}
	}()

	wg.Wait()

	hostRes := <-hostCh
	cpuRes := <-cpuCh
	loadRes := <-loadCh
	memRes := <-memCh
	netRes := <-netCh
	diskRes := <-diskCh
	softirqRes := <-softirqCh

	if hostRes.err != nil {
		return nil, fmt.Errorf("failed to get host identity: %w", hostRes.err)
	}
	if cpuRes.err != nil {
		return nil, fmt.Errorf("failed to get CPU metrics: %w", cpuRes.err)
	}

	info := &protocol.MonitorInfo{
		Host:     &hostRes.stats.Host,
		CPUStats: cpuRes.stats.Stats,
	}
	if loadRes.err == nil {
		info.CPULoad = &loadRes.stats.Load
	}
	if memRes.err == nil {
		info.Mem = &memRes.stats.Mem
	}
	if netRes.err == nil {
		info.Nets = netRes.stats.Interfaces
	}
	if diskRes.err == nil {
		info.Disks = diskRes.stats.Disks
	}
	if softirqRes.err == nil {
		info.SoftIrqs = softirqRes.stats.SoftIrqs
	}
	return info, nil
}
