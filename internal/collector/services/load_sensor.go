package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/load"

	"fleetmon/internal/protocol"
)

// LoadResult carries the load averages.
type LoadResult struct {
	Load protocol.CPULoad
}

type LoadSensor struct{}

func NewLoadSensor() *LoadSensor {
	return &LoadSensor{}
}

func (s *LoadSensor) Name() string {
	return "Load"
}

func (s *LoadSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *LoadSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *LoadSensor) Collect(ctx context.Context) (any, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get load average: %w", err)
	}
	return LoadResult{
		Load: protocol.CPULoad{
			LoadAvg1:  avg.Load1,
			LoadAvg3:  avg.Load5,
			LoadAvg15: avg.Load15,
		},
	}, nil
}
