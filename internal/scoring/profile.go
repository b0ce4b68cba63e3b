// Package scoring turns resource utilization into a 0-100 health score.
// Higher is healthier. Weights depend on the workload profile.
package scoring

import (
	"fleetmon/internal/protocol"
)

// DefaultRescoreCores is assumed when rescoring persisted aggregates; the
// per-core vector is not stored, so the core count is fixed.
const DefaultRescoreCores = 4

// Weights configures the score model for one profile.
type Weights struct {
	CPU          float64
	Mem          float64
	Load         float64
	Disk         float64
	Net          float64
	LoadCoeff    float64
	MaxBandwidth float64 // bytes/s, 1 Gbps
}

// ProfileWeights returns the weight set for a profile name.
// Unknown names get the balanced set.
func ProfileWeights(profile string) Weights {
	switch profile {
	case protocol.ProfileHighConcurrency:
		return Weights{CPU: 0.45, Mem: 0.25, Load: 0.15, Disk: 0.10, Net: 0.05, LoadCoeff: 1.2, MaxBandwidth: 125000000.0}
	case protocol.ProfileIOIntensive:
		return Weights{CPU: 0.20, Mem: 0.15, Load: 0.20, Disk: 0.35, Net: 0.10, LoadCoeff: 2.0, MaxBandwidth: 125000000.0}
	case protocol.ProfileMemorySensitive:
		return Weights{CPU: 0.20, Mem: 0.45, Load: 0.15, Disk: 0.10, Net: 0.10, LoadCoeff: 1.5, MaxBandwidth: 125000000.0}
	default:
		return Weights{CPU: 0.35, Mem: 0.30, Load: 0.15, Disk: 0.15, Net: 0.05, LoadCoeff: 1.5, MaxBandwidth: 125000000.0}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score computes the weighted score from raw utilization figures.
// Net rates are in bytes/s.
func Score(w Weights, cpuPercent, memPercent, loadAvg1, diskUtilPercent, sendBytes, rcvBytes float64, cpuCores int) float64 {
	if cpuCores < 1 {
		cpuCores = 1
	}

	cpuScore := clamp01(1.0 - cpuPercent/100.0)
	memScore := clamp01(1.0 - memPercent/100.0)
	loadScore := clamp01(1.0 - loadAvg1/(float64(cpuCores)*w.LoadCoeff))
	diskScore := clamp01(1.0 - diskUtilPercent/100.0)
	netRcvScore := clamp01(1.0 - rcvBytes/w.MaxBandwidth)
	netSndScore := clamp01(1.0 - sendBytes/w.MaxBandwidth)
	netScore := (netRcvScore + netSndScore) / 2.0

	score := cpuScore*w.CPU + memScore*w.Mem + loadScore*w.Load +
		diskScore*w.Disk + netScore*w.Net
	return clamp01(score) * 100.0
}

// ScoreSnapshot scores a live snapshot under a profile. The core count comes
// from the per-core stat vector (index 0 is the aggregate).
func ScoreSnapshot(info *protocol.MonitorInfo, profile string) float64 {
	w := ProfileWeights(profile)

	var cpuPercent, loadAvg1, memPercent float64
	var sendBytes, rcvBytes, diskUtil float64
	cores := 1

	if len(info.CPUStats) > 0 {
		cpuPercent = info.CPUStats[0].CPUPercent
		cores = len(info.CPUStats) - 1
		if cores < 1 {
			cores = 1
		}
	}
	if info.CPULoad != nil {
		loadAvg1 = info.CPULoad.LoadAvg1
	}
	if info.Mem != nil {
		memPercent = info.Mem.UsedPercent
	}
	if len(info.Nets) > 0 {
		rcvBytes = info.Nets[0].RcvRate
		sendBytes = info.Nets[0].SendRate
	}
	for _, d := range info.Disks {
		if d.UtilPercent > diskUtil {
			diskUtil = d.UtilPercent
		}
	}

	return Score(w, cpuPercent, memPercent, loadAvg1, diskUtil, sendBytes, rcvBytes, cores)
}

// Rescore recomputes a score from persisted aggregates under a profile.
// Send/rcv rates are the stored KB/s values; the core count is assumed.
func Rescore(profile string, cpuPercent, memPercent, loadAvg1, diskUtilPercent, sendRateKB, rcvRateKB float64) float64 {
	w := ProfileWeights(profile)
	return Score(w, cpuPercent, memPercent, loadAvg1, diskUtilPercent,
		sendRateKB*1024.0, rcvRateKB*1024.0, DefaultRescoreCores)
}
