// Package protocol defines the wire contracts shared by agents, the manager,
// and query clients. Snapshots travel agent -> manager; the query envelopes
// mirror the manager's HTTP API.
package protocol

// HostInfo identifies the reporting host.
type HostInfo struct {
	Hostname  string `json:"hostname"`
	IPAddress string `json:"ip_address"`
}

// CPUStat carries percent usage for one CPU line. Index 0 of
// MonitorInfo.CPUStats is the aggregate, the rest are per-core.
type CPUStat struct {
	CPUName          string  `json:"cpu_name"`
	CPUPercent       float64 `json:"cpu_percent"`
	UsrPercent       float64 `json:"usr_percent"`
	SystemPercent    float64 `json:"system_percent"`
	NicePercent      float64 `json:"nice_percent"`
	IdlePercent      float64 `json:"idle_percent"`
	IOWaitPercent    float64 `json:"io_wait_percent"`
	IrqPercent       float64 `json:"irq_percent"`
	SoftIrqPercent   float64 `json:"soft_irq_percent"`
	StealPercent     float64 `json:"steal_percent"`
	GuestPercent     float64 `json:"guest_percent"`
	GuestNicePercent float64 `json:"guest_nice_percent"`
}

// CPULoad holds the load averages.
type CPULoad struct {
	LoadAvg1  float64 `json:"load_avg_1"`
	LoadAvg3  float64 `json:"load_avg_3"`
	LoadAvg15 float64 `json:"load_avg_15"`
}

// MemInfo holds memory figures in MB, plus the used percentage.
type MemInfo struct {
	UsedPercent  float64 `json:"used_percent"`
	Total        float64 `json:"total"`
	Free         float64 `json:"free"`
	Avail        float64 `json:"avail"`
	Buffers      float64 `json:"buffers"`
	Cached       float64 `json:"cached"`
	SwapCached   float64 `json:"swap_cached"`
	Active       float64 `json:"active"`
	Inactive     float64 `json:"inactive"`
	ActiveAnon   float64 `json:"active_anon"`
	InactiveAnon float64 `json:"inactive_anon"`
	ActiveFile   float64 `json:"active_file"`
	InactiveFile float64 `json:"inactive_file"`
	Dirty        float64 `json:"dirty"`
	Writeback    float64 `json:"writeback"`
	AnonPages    float64 `json:"anon_pages"`
	Mapped       float64 `json:"mapped"`
	KReclaimable float64 `json:"kreclaimable"`
	SReclaimable float64 `json:"sreclaimable"`
	SUnreclaim   float64 `json:"sunreclaim"`
}

// NetInfo carries per-interface rates (bytes/s, packets/s) and error counters.
type NetInfo struct {
	Name            string  `json:"name"`
	SendRate        float64 `json:"send_rate"`
	RcvRate         float64 `json:"rcv_rate"`
	SendPacketsRate float64 `json:"send_packets_rate"`
	RcvPacketsRate  float64 `json:"rcv_packets_rate"`
	ErrIn           uint64  `json:"err_in"`
	ErrOut          uint64  `json:"err_out"`
	DropIn          uint64  `json:"drop_in"`
	DropOut         uint64  `json:"drop_out"`
}

// DiskInfo carries raw block-device counters plus agent-derived rates.
type DiskInfo struct {
	Name             string  `json:"name"`
	Reads            uint64  `json:"reads"`
	Writes           uint64  `json:"writes"`
	SectorsRead      uint64  `json:"sectors_read"`
	SectorsWritten   uint64  `json:"sectors_written"`
	ReadTimeMS       uint64  `json:"read_time_ms"`
	WriteTimeMS      uint64  `json:"write_time_ms"`
	IOInProgress     uint64  `json:"io_in_progress"`
	IOTimeMS         uint64  `json:"io_time_ms"`
	WeightedIOTimeMS uint64  `json:"weighted_io_time_ms"`
	ReadBytesPerSec  float64 `json:"read_bytes_per_sec"`
	WriteBytesPerSec float64 `json:"write_bytes_per_sec"`
	ReadIOPS         float64 `json:"read_iops"`
	WriteIOPS        float64 `json:"write_iops"`
	AvgReadLatencyMS float64 `json:"avg_read_latency_ms"`
	AvgWriteLatencyMS float64 `json:"avg_write_latency_ms"`
	UtilPercent      float64 `json:"util_percent"`
}

// SoftIrq carries cumulative softirq counters for one CPU.
type SoftIrq struct {
	CPU     string `json:"cpu"`
	HI      uint64 `json:"hi"`
	Timer   uint64 `json:"timer"`
	NetTx   uint64 `json:"net_tx"`
	NetRx   uint64 `json:"net_rx"`
	Block   uint64 `json:"block"`
	IrqPoll uint64 `json:"irq_poll"`
	Tasklet uint64 `json:"tasklet"`
	Sched   uint64 `json:"sched"`
	HRTimer uint64 `json:"hrtimer"`
	RCU     uint64 `json:"rcu"`
}

// MonitorInfo is one telemetry snapshot pushed by an agent.
// Name is the legacy identifier, kept for agents that predate HostInfo.
type MonitorInfo struct {
	Name     string    `json:"name,omitempty"`
	Host     *HostInfo `json:"host_info,omitempty"`
	CPUStats []CPUStat `json:"cpu_stats,omitempty"`
	CPULoad  *CPULoad  `json:"cpu_load,omitempty"`
	Mem      *MemInfo  `json:"mem_info,omitempty"`
	Nets     []NetInfo `json:"net_info,omitempty"`
	Disks    []DiskInfo `json:"disk_info,omitempty"`
	SoftIrqs []SoftIrq `json:"soft_irq,omitempty"`
}
