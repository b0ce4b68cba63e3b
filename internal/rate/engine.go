// Package rate tracks the previous sample per host (and per sub-entity) and
// derives relative change rates: (now - prior) / prior, 0 when no prior or
// the prior is 0.
package rate

import "sync"

// PerfSample holds the aggregate figures that feed the performance table.
// The same struct carries the derived rates.
type PerfSample struct {
	CPUPercent       float64
	UsrPercent       float64
	SystemPercent    float64
	NicePercent      float64
	IdlePercent      float64
	IOWaitPercent    float64
	IrqPercent       float64
	SoftIrqPercent   float64
	StealPercent     float64
	GuestPercent     float64
	GuestNicePercent float64
	LoadAvg1         float64
	LoadAvg3         float64
	LoadAvg15        float64
	MemUsedPercent   float64
	MemTotal         float64
	MemFree          float64
	MemAvail         float64
	NetInRate        float64
	NetOutRate       float64
}

// NetSample holds per-interface rates and error counters.
type NetSample struct {
	RcvBytesRate   float64
	RcvPacketsRate float64
	SndBytesRate   float64
	SndPacketsRate float64
	ErrIn          uint64
	ErrOut         uint64
	DropIn         uint64
	DropOut        uint64
}

// NetRates holds the change rates for a NetSample.
type NetRates struct {
	RcvBytesRate   float64
	RcvPacketsRate float64
	SndBytesRate   float64
	SndPacketsRate float64
	ErrIn          float64
	ErrOut         float64
	DropIn         float64
	DropOut        float64
}

// SoftIrqSample holds cumulative softirq counters for one CPU.
type SoftIrqSample struct {
	HI      uint64
	Timer   uint64
	NetTx   uint64
	NetRx   uint64
	Block   uint64
	IrqPoll uint64
	Tasklet uint64
	Sched   uint64
	HRTimer uint64
	RCU     uint64
}

// SoftIrqRates holds the change rates for a SoftIrqSample.
type SoftIrqRates struct {
	HI      float64
	Timer   float64
	NetTx   float64
	NetRx   float64
	Block   float64
	IrqPoll float64
	Tasklet float64
	Sched   float64
	HRTimer float64
	RCU     float64
}

// MemSample holds the detailed memory figures (MB).
type MemSample struct {
	Total        float64
	Free         float64
	Avail        float64
	Buffers      float64
	Cached       float64
	SwapCached   float64
	Active       float64
	Inactive     float64
	ActiveAnon   float64
	InactiveAnon float64
	ActiveFile   float64
	InactiveFile float64
	Dirty        float64
	Writeback    float64
	AnonPages    float64
	Mapped       float64
	KReclaimable float64
	SReclaimable float64
	SUnreclaim   float64
}

// DiskSample holds per-device derived figures.
type DiskSample struct {
	ReadBytesPerSec   float64
	WriteBytesPerSec  float64
	ReadIOPS          float64
	WriteIOPS         float64
	AvgReadLatencyMS  float64
	AvgWriteLatencyMS float64
	UtilPercent       float64
}

// Engine keeps prior samples keyed by host (and interface/cpu/device where
// applicable). Safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	perf     map[string]PerfSample
	diskUtil map[string]float64
	net      map[string]map[string]NetSample
	softirq  map[string]map[string]SoftIrqSample
	mem      map[string]MemSample
	disk     map[string]map[string]DiskSample
}

func NewEngine() *Engine {
	return &Engine{
		perf:     make(map[string]PerfSample),
		diskUtil: make(map[string]float64),
		net:      make(map[string]map[string]NetSample),
		softirq:  make(map[string]map[string]SoftIrqSample),
		mem:      make(map[string]MemSample),
		disk:     make(map[string]map[string]DiskSample),
	}
}

// Change is the relative change rate between two samples of one metric.
func Change(now, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (now - prior) / prior
}

// ChangeU64 is Change over counter values.
func ChangeU64(now, prior uint64) float64 {
	if prior == 0 {
		return 0
	}
	return (float64(now) - float64(prior)) / float64(prior)
}

// PerfRates returns the change rates against the host's prior aggregate
// sample and stores curr as the new prior. The first sample yields zeros.
func (e *Engine) PerfRates(host string, curr PerfSample) PerfSample {
	e.mu.Lock()
	last := e.perf[host]
	e.perf[host] = curr
	e.mu.Unlock()

	return PerfSample{
		CPUPercent:       Change(curr.CPUPercent, last.CPUPercent),
		UsrPercent:       Change(curr.UsrPercent, last.UsrPercent),
		SystemPercent:    Change(curr.SystemPercent, last.SystemPercent),
		NicePercent:      Change(curr.NicePercent, last.NicePercent),
		IdlePercent:      Change(curr.IdlePercent, last.IdlePercent),
		IOWaitPercent:    Change(curr.IOWaitPercent, last.IOWaitPercent),
		IrqPercent:       Change(curr.IrqPercent, last.IrqPercent),
		SoftIrqPercent:   Change(curr.SoftIrqPercent, last.SoftIrqPercent),
		StealPercent:     Change(curr.StealPercent, last.StealPercent),
		GuestPercent:     Change(curr.GuestPercent, last.GuestPercent),
		GuestNicePercent: Change(curr.GuestNicePercent, last.GuestNicePercent),
		LoadAvg1:         Change(curr.LoadAvg1, last.LoadAvg1),
		LoadAvg3:         Change(curr.LoadAvg3, last.LoadAvg3),
		LoadAvg15:        Change(curr.LoadAvg15, last.LoadAvg15),
		MemUsedPercent:   Change(curr.MemUsedPercent, last.MemUsedPercent),
		MemTotal:         Change(curr.MemTotal, last.MemTotal),
		MemFree:          Change(curr.MemFree, last.MemFree),
		MemAvail:         Change(curr.MemAvail, last.MemAvail),
		NetInRate:        Change(curr.NetInRate, last.NetInRate),
		NetOutRate:       Change(curr.NetOutRate, last.NetOutRate),
	}
}

// DiskUtilRate returns the change rate of the host's max disk utilization.
func (e *Engine) DiskUtilRate(host string, util float64) float64 {
	e.mu.Lock()
	last := e.diskUtil[host]
	e.diskUtil[host] = util
	e.mu.Unlock()
	return Change(util, last)
}

// NetRates returns per-interface change rates.
func (e *Engine) NetRates(host, iface string, curr NetSample) NetRates {
	e.mu.Lock()
	m := e.net[host]
	if m == nil {
		m = make(map[string]NetSample)
		e.net[host] = m
	}
	last := m[iface]
	m[iface] = curr
	e.mu.Unlock()

	return NetRates{
		RcvBytesRate:   Change(curr.RcvBytesRate, last.RcvBytesRate),
		RcvPacketsRate: Change(curr.RcvPacketsRate, last.RcvPacketsRate),
		SndBytesRate:   Change(curr.SndBytesRate, last.SndBytesRate),
		SndPacketsRate: Change(curr.SndPacketsRate, last.SndPacketsRate),
		ErrIn:          ChangeU64(curr.ErrIn, last.ErrIn),
		ErrOut:         ChangeU64(curr.ErrOut, last.ErrOut),
		DropIn:         ChangeU64(curr.DropIn, last.DropIn),
		DropOut:        ChangeU64(curr.DropOut, last.DropOut),
	}
}

// SoftIrqRates returns per-cpu change rates.
func (e *Engine) SoftIrqRates(host, cpu string, curr SoftIrqSample) SoftIrqRates {
	e.mu.Lock()
	m := e.softirq[host]
	if m == nil {
		m = make(map[string]SoftIrqSample)
		e.softirq[host] = m
	}
	last := m[cpu]
	m[cpu] = curr
	e.mu.Unlock()

	return SoftIrqRates{
		HI:      ChangeU64(curr.HI, last.HI),
		Timer:   ChangeU64(curr.Timer, last.Timer),
		NetTx:   ChangeU64(curr.NetTx, last.NetTx),
		NetRx:   ChangeU64(curr.NetRx, last.NetRx),
		Block:   ChangeU64(curr.Block, last.Block),
		IrqPoll: ChangeU64(curr.IrqPoll, last.IrqPoll),
		Tasklet: ChangeU64(curr.Tasklet, last.Tasklet),
		Sched:   ChangeU64(curr.Sched, last.Sched),
		HRTimer: ChangeU64(curr.HRTimer, last.HRTimer),
		RCU:     ChangeU64(curr.RCU, last.RCU),
	}
}

// MemRates returns the change rates for the detailed memory figures.
func (e *Engine) MemRates(host string, curr MemSample) MemSample {
	e.mu.Lock()
	last := e.mem[host]
	e.mem[host] = curr
	e.mu.Unlock()

	return MemSample{
		Total:        Change(curr.Total, last.Total),
		Free:         Change(curr.Free, last.Free),
		Avail:        Change(curr.Avail, last.Avail),
		Buffers:      Change(curr.Buffers, last.Buffers),
		Cached:       Change(curr.Cached, last.Cached),
		SwapCached:   Change(curr.SwapCached, last.SwapCached),
		Active:       Change(curr.Active, last.Active),
		Inactive:     Change(curr.Inactive, last.Inactive),
		ActiveAnon:   Change(curr.ActiveAnon, last.ActiveAnon),
		InactiveAnon: Change(curr.InactiveAnon, last.InactiveAnon),
		ActiveFile:   Change(curr.ActiveFile, last.ActiveFile),
		InactiveFile: Change(curr.InactiveFile, last.InactiveFile),
		Dirty:        Change(curr.Dirty, last.Dirty),
		Writeback:    Change(curr.Writeback, last.Writeback),
		AnonPages:    Change(curr.AnonPages, last.AnonPages),
		Mapped:       Change(curr.Mapped, last.Mapped),
		KReclaimable: Change(curr.KReclaimable, last.KReclaimable),
		SReclaimable: Change(curr.SReclaimable, last.SReclaimable),
		SUnreclaim:   Change(curr.SUnreclaim, last.SUnreclaim),
	}
}

// DiskRates returns per-device change rates.
func (e *Engine) DiskRates(host, device string, curr DiskSample) DiskSample {
	e.mu.Lock()
	m := e.disk[host]
	if m == nil {
		m = make(map[string]DiskSample)
		e.disk[host] = m
	}
	last := m[device]
	m[device] = curr
	e.mu.Unlock()

	return DiskSample{
		ReadBytesPerSec:   Change(curr.ReadBytesPerSec, last.ReadBytesPerSec),
		WriteBytesPerSec:  Change(curr.WriteBytesPerSec, last.WriteBytesPerSec),
		ReadIOPS:          Change(curr.ReadIOPS, last.ReadIOPS),
		WriteIOPS:         Change(curr.WriteIOPS, last.WriteIOPS),
		AvgReadLatencyMS:  Change(curr.AvgReadLatencyMS, last.AvgReadLatencyMS),
		AvgWriteLatencyMS: Change(curr.AvgWriteLatencyMS, last.AvgWriteLatencyMS),
		UtilPercent:       Change(curr.UtilPercent, last.UtilPercent),
	}
}
