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

// MemResult carries the detailed memory figures in MB.
type MemResult struct {
	Mem protocol.MemInfo
}

// MemSensor reads /proc/meminfo directly; the kernel file carries the
// anon/file splits that summary APIs drop.
type MemSensor struct {
	path string
}

func NewMemSensor() *MemSensor {
	return &MemSensor{path: "/proc/meminfo"}
}

// NewMemSensorAt reads an alternate meminfo file.
func NewMemSensorAt(path string) *MemSensor {
	return &MemSensor{path: path}
}

func (s *MemSensor) Name() string {
	return "Memory"
}

func (s *MemSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Collect(ctx context.Context) (any, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	mem, err := ParseMemInfo(f)
	if err != nil {
		return nil, err
	}
	return MemResult{Mem: *mem}, nil
}

// ParseMemInfo reads meminfo-format lines ("MemTotal:  16316412 kB") into
// MB figures plus the derived used percentage.
func ParseMemInfo(r io.Reader) (*protocol.MemInfo, error) {
	fields := map[string]*float64{}
	var mem protocol.MemInfo
	fields["MemTotal"] = &mem.Total
	fields["MemFree"] = &mem.Free
	fields["MemAvailable"] = &mem.Avail
	fields["Buffers"] = &mem.Buffers
	fields["Cached"] = &mem.Cached
	fields["SwapCached"] = &mem.SwapCached
	fields["Active"] = &mem.Active
	fields["Inactive"] = &mem.Inactive
	fields["Active(anon)"] = &mem.ActiveAnon
	fields["Inactive(anon)"] = &mem.InactiveAnon
	fields["Active(file)"] = &mem.ActiveFile
	fields["Inactive(file)"] = &mem.InactiveFile
	fields["Dirty"] = &mem.Dirty
	fields["Writeback"] = &mem.Writeback
	fields["AnonPages"] = &mem.AnonPages
	fields["Mapped"] = &mem.Mapped
	fields["KReclaimable"] = &mem.KReclaimable
	fields["SReclaimable"] = &mem.SReclaimable
	fields["SUnreclaim"] = &mem.SUnreclaim

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, rest, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		dst, wanted := fields[strings.TrimSpace(key)]
		if !wanted {
			continue
		}
		parts := strings.Fields(rest)
		if len(parts) == 0 {
			continue
		}
		kb, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			continue
		}
		*dst = kb / 1024.0
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read meminfo: %w", err)
	}
	if mem.Total == 0 {
		return nil, fmt.Errorf("meminfo carries no MemTotal")
	}

	mem.UsedPercent = (mem.Total - mem.Avail) / mem.Total * 100.0
	return &mem, nil
}
