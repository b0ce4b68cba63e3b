package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fleetmon/internal/protocol"
)

// SoftIrqResult carries cumulative softirq counters, one entry per CPU.
type SoftIrqResult struct {
	SoftIrqs []protocol.SoftIrq
}

// SoftIrqSensor reads /proc/softirqs; no summary API exposes these.
type SoftIrqSensor struct {
	path string
}

func NewSoftIrqSensor() *SoftIrqSensor {
	return &SoftIrqSensor{path: "/proc/softirqs"}
}

// NewSoftIrqSensorAt reads an alternate softirqs file.
func NewSoftIrqSensorAt(path string) *SoftIrqSensor {
	return &SoftIrqSensor{path: path}
}

func (s *SoftIrqSensor) Name() string {
	return "SoftIRQ"
}

func (s *SoftIrqSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *SoftIrqSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *SoftIrqSensor) Collect(ctx context.Context) (any, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	irqs, err := ParseSoftIrqs(f)
	if err != nil {
		return nil, err
	}
	return SoftIrqResult{SoftIrqs: irqs}, nil
}

// ParseSoftIrqs reads the /proc/softirqs table: a CPU header row followed
// by one row per softirq type with a column per CPU.
func ParseSoftIrqs(r io.Reader) ([]protocol.SoftIrq, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read softirqs: %w", err)
		}
		return nil, fmt.Errorf("softirqs table is empty")
	}

	header := strings.Fields(scanner.Text())
	irqs := make([]protocol.SoftIrq, len(header))
	for i, cpu := range header {
		irqs[i].CPU = strings.ToLower(cpu)
	}

	for scanner.Scan() {
		label, rest, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		values := strings.Fields(rest)
		for i := range irqs {
			if i >= len(values) {
				break
			}
			v, err := strconv.ParseUint(values[i], 10, 64)
			if err != nil {
				continue
			}
			switch strings.TrimSpace(label) {
			case "HI":
				irqs[i].HI = v
			case "TIMER":
				irqs[i].Timer = v
			case "NET_TX":
				irqs[i].NetTx = v
			case "NET_RX":
				irqs[i].NetRx = v
			case "BLOCK":
				irqs[i].Block = v
			case "IRQ_POLL":
				irqs[i].IrqPoll = v
			case "TASKLET":
				irqs[i].Tasklet = v
			case "SCHED":
				irqs[i].Sched = v
			case "HRTIMER":
				irqs[i].HRTimer = v
			case "RCU":
				irqs[i].RCU = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read softirqs: %w", err)
	}
	return irqs, nil
}
