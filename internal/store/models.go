package store

import "time"

// TimeLayout is the wall-clock format used for every persisted and
// serialized timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders a timestamp in local wall-clock form.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// ParseTime parses a wall-clock timestamp back into local time.
// The zero time is returned for malformed input.
func ParseTime(s string) time.Time {
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// =============================================================================
// WRITE-SIDE ROWS
// =============================================================================

// PerformanceRow is one aggregate sample destined for server_performance.
type PerformanceRow struct {
	ServerName          string  `db:"server_name"`
	CPUPercent          float64 `db:"cpu_percent"`
	UsrPercent          float64 `db:"usr_percent"`
	SystemPercent       float64 `db:"system_percent"`
	NicePercent         float64 `db:"nice_percent"`
	IdlePercent         float64 `db:"idle_percent"`
	IOWaitPercent       float64 `db:"io_wait_percent"`
	IrqPercent          float64 `db:"irq_percent"`
	SoftIrqPercent      float64 `db:"soft_irq_percent"`
	LoadAvg1            float64 `db:"load_avg_1"`
	LoadAvg3            float64 `db:"load_avg_3"`
	LoadAvg15           float64 `db:"load_avg_15"`
	MemUsedPercent      float64 `db:"mem_used_percent"`
	Total               float64 `db:"total"`
	Free                float64 `db:"free"`
	Avail               float64 `db:"avail"`
	DiskUtilPercent     float64 `db:"disk_util_percent"`
	SendRate            float64 `db:"send_rate"`
	RcvRate             float64 `db:"rcv_rate"`
	Score               float64 `db:"score"`
	CPUPercentRate      float64 `db:"cpu_percent_rate"`
	UsrPercentRate      float64 `db:"usr_percent_rate"`
	SystemPercentRate   float64 `db:"system_percent_rate"`
	NicePercentRate     float64 `db:"nice_percent_rate"`
	IdlePercentRate     float64 `db:"idle_percent_rate"`
	IOWaitPercentRate   float64 `db:"io_wait_percent_rate"`
	IrqPercentRate      float64 `db:"irq_percent_rate"`
	SoftIrqPercentRate  float64 `db:"soft_irq_percent_rate"`
	LoadAvg1Rate        float64 `db:"load_avg_1_rate"`
	LoadAvg3Rate        float64 `db:"load_avg_3_rate"`
	LoadAvg15Rate       float64 `db:"load_avg_15_rate"`
	MemUsedPercentRate  float64 `db:"mem_used_percent_rate"`
	TotalRate           float64 `db:"total_rate"`
	FreeRate            float64 `db:"free_rate"`
	AvailRate           float64 `db:"avail_rate"`
	DiskUtilPercentRate float64 `db:"disk_util_percent_rate"`
	SendRateRate        float64 `db:"send_rate_rate"`
	RcvRateRate         float64 `db:"rcv_rate_rate"`
	Timestamp           string  `db:"timestamp"`
}

// NetDetailRow is one per-interface sample for server_net_detail.
type NetDetailRow struct {
	ServerName         string  `db:"server_name"`
	NetName            string  `db:"net_name"`
	ErrIn              uint64  `db:"err_in"`
	ErrOut             uint64  `db:"err_out"`
	DropIn             uint64  `db:"drop_in"`
	DropOut            uint64  `db:"drop_out"`
	RcvBytesRate       float64 `db:"rcv_bytes_rate"`
	RcvPacketsRate     float64 `db:"rcv_packets_rate"`
	SndBytesRate       float64 `db:"snd_bytes_rate"`
	SndPacketsRate     float64 `db:"snd_packets_rate"`
	RcvBytesRateRate   float64 `db:"rcv_bytes_rate_rate"`
	RcvPacketsRateRate float64 `db:"rcv_packets_rate_rate"`
	SndBytesRateRate   float64 `db:"snd_bytes_rate_rate"`
	SndPacketsRateRate float64 `db:"snd_packets_rate_rate"`
	ErrInRate          float64 `db:"err_in_rate"`
	ErrOutRate         float64 `db:"err_out_rate"`
	DropInRate         float64 `db:"drop_in_rate"`
	DropOutRate        float64 `db:"drop_out_rate"`
	Timestamp          string  `db:"timestamp"`
}

// SoftIrqDetailRow is one per-cpu sample for server_softirq_detail.
type SoftIrqDetailRow struct {
	ServerName  string  `db:"server_name"`
	CPUName     string  `db:"cpu_name"`
	HI          uint64  `db:"hi"`
	Timer       uint64  `db:"timer"`
	NetTx       uint64  `db:"net_tx"`
	NetRx       uint64  `db:"net_rx"`
	Block       uint64  `db:"block"`
	IrqPoll     uint64  `db:"irq_poll"`
	Tasklet     uint64  `db:"tasklet"`
	Sched       uint64  `db:"sched"`
	HRTimer     uint64  `db:"hrtimer"`
	RCU         uint64  `db:"rcu"`
	HIRate      float64 `db:"hi_rate"`
	TimerRate   float64 `db:"timer_rate"`
	NetTxRate   float64 `db:"net_tx_rate"`
	NetRxRate   float64 `db:"net_rx_rate"`
	BlockRate   float64 `db:"block_rate"`
	IrqPollRate float64 `db:"irq_poll_rate"`
	TaskletRate float64 `db:"tasklet_rate"`
	SchedRate   float64 `db:"sched_rate"`
	HRTimerRate float64 `db:"hrtimer_rate"`
	RCURate     float64 `db:"rcu_rate"`
	Timestamp   string  `db:"timestamp"`
}

// MemDetailRow is one memory sample for server_mem_detail.
type MemDetailRow struct {
	ServerName       string  `db:"server_name"`
	Total            float64 `db:"total"`
	Free             float64 `db:"free"`
	Avail            float64 `db:"avail"`
	Buffers          float64 `db:"buffers"`
	Cached           float64 `db:"cached"`
	SwapCached       float64 `db:"swap_cached"`
	Active           float64 `db:"active"`
	Inactive         float64 `db:"inactive"`
	ActiveAnon       float64 `db:"active_anon"`
	InactiveAnon     float64 `db:"inactive_anon"`
	ActiveFile       float64 `db:"active_file"`
	InactiveFile     float64 `db:"inactive_file"`
	Dirty            float64 `db:"dirty"`
	Writeback        float64 `db:"writeback"`
	AnonPages        float64 `db:"anon_pages"`
	Mapped           float64 `db:"mapped"`
	KReclaimable     float64 `db:"kreclaimable"`
	SReclaimable     float64 `db:"sreclaimable"`
	SUnreclaim       float64 `db:"sunreclaim"`
	TotalRate        float64 `db:"total_rate"`
	FreeRate         float64 `db:"free_rate"`
	AvailRate        float64 `db:"avail_rate"`
	BuffersRate      float64 `db:"buffers_rate"`
	CachedRate       float64 `db:"cached_rate"`
	SwapCachedRate   float64 `db:"swap_cached_rate"`
	ActiveRate       float64 `db:"active_rate"`
	InactiveRate     float64 `db:"inactive_rate"`
	ActiveAnonRate   float64 `db:"active_anon_rate"`
	InactiveAnonRate float64 `db:"inactive_anon_rate"`
	ActiveFileRate   float64 `db:"active_file_rate"`
	InactiveFileRate float64 `db:"inactive_file_rate"`
	DirtyRate        float64 `db:"dirty_rate"`
	WritebackRate    float64 `db:"writeback_rate"`
	AnonPagesRate    float64 `db:"anon_pages_rate"`
	MappedRate       float64 `db:"mapped_rate"`
	KReclaimableRate float64 `db:"kreclaimable_rate"`
	SReclaimableRate float64 `db:"sreclaimable_rate"`
	SUnreclaimRate   float64 `db:"sunreclaim_rate"`
	Timestamp        string  `db:"timestamp"`
}

// DiskDetailRow is one per-device sample for server_disk_detail.
type DiskDetailRow struct {
	ServerName            string  `db:"server_name"`
	DiskName              string  `db:"disk_name"`
	Reads                 uint64  `db:"reads"`
	Writes                uint64  `db:"writes"`
	SectorsRead           uint64  `db:"sectors_read"`
	SectorsWritten        uint64  `db:"sectors_written"`
	ReadTimeMS            uint64  `db:"read_time_ms"`
	WriteTimeMS           uint64  `db:"write_time_ms"`
	IOInProgress          uint64  `db:"io_in_progress"`
	IOTimeMS              uint64  `db:"io_time_ms"`
	WeightedIOTimeMS      uint64  `db:"weighted_io_time_ms"`
	ReadBytesPerSec       float64 `db:"read_bytes_per_sec"`
	WriteBytesPerSec      float64 `db:"write_bytes_per_sec"`
	ReadIOPS              float64 `db:"read_iops"`
	WriteIOPS             float64 `db:"write_iops"`
	AvgReadLatencyMS      float64 `db:"avg_read_latency_ms"`
	AvgWriteLatencyMS     float64 `db:"avg_write_latency_ms"`
	UtilPercent           float64 `db:"util_percent"`
	ReadBytesPerSecRate   float64 `db:"read_bytes_per_sec_rate"`
	WriteBytesPerSecRate  float64 `db:"write_bytes_per_sec_rate"`
	ReadIOPSRate          float64 `db:"read_iops_rate"`
	WriteIOPSRate         float64 `db:"write_iops_rate"`
	AvgReadLatencyMSRate  float64 `db:"avg_read_latency_ms_rate"`
	AvgWriteLatencyMSRate float64 `db:"avg_write_latency_ms_rate"`
	UtilPercentRate       float64 `db:"util_percent_rate"`
	Timestamp             string  `db:"timestamp"`
}

// CPUCoreDetailRow is one per-core sample for server_cpu_core_detail.
type CPUCoreDetailRow struct {
	ServerName     string  `db:"server_name"`
	CPUName        string  `db:"cpu_name"`
	CPUPercent     float64 `db:"cpu_percent"`
	UsrPercent     float64 `db:"usr_percent"`
	SystemPercent  float64 `db:"system_percent"`
	NicePercent    float64 `db:"nice_percent"`
	IdlePercent    float64 `db:"idle_percent"`
	IOWaitPercent  float64 `db:"io_wait_percent"`
	IrqPercent     float64 `db:"irq_percent"`
	SoftIrqPercent float64 `db:"soft_irq_percent"`
	Timestamp      string  `db:"timestamp"`
}

// =============================================================================
// READ-SIDE ROWS
// =============================================================================

// PerfSelectRow is the column set read back for performance queries.
type PerfSelectRow struct {
	ServerName          string  `db:"server_name"`
	Timestamp           string  `db:"timestamp"`
	CPUPercent          float64 `db:"cpu_percent"`
	UsrPercent          float64 `db:"usr_percent"`
	SystemPercent       float64 `db:"system_percent"`
	NicePercent         float64 `db:"nice_percent"`
	IdlePercent         float64 `db:"idle_percent"`
	IOWaitPercent       float64 `db:"io_wait_percent"`
	IrqPercent          float64 `db:"irq_percent"`
	SoftIrqPercent      float64 `db:"soft_irq_percent"`
	LoadAvg1            float64 `db:"load_avg_1"`
	LoadAvg3            float64 `db:"load_avg_3"`
	LoadAvg15           float64 `db:"load_avg_15"`
	MemUsedPercent      float64 `db:"mem_used_percent"`
	Total               float64 `db:"total"`
	Free                float64 `db:"free"`
	Avail               float64 `db:"avail"`
	DiskUtilPercent     float64 `db:"disk_util_percent"`
	SendRate            float64 `db:"send_rate"`
	RcvRate             float64 `db:"rcv_rate"`
	Score               float64 `db:"score"`
	CPUPercentRate      float64 `db:"cpu_percent_rate"`
	MemUsedPercentRate  float64 `db:"mem_used_percent_rate"`
	DiskUtilPercentRate float64 `db:"disk_util_percent_rate"`
	LoadAvg1Rate        float64 `db:"load_avg_1_rate"`
	SendRateRate        float64 `db:"send_rate_rate"`
	RcvRateRate         float64 `db:"rcv_rate_rate"`
}

// TrendSelectRow is the reduced column set for trend queries (bucketed or raw).
type TrendSelectRow struct {
	ServerName          string  `db:"server_name"`
	Timestamp           string  `db:"timestamp"`
	CPUPercent          float64 `db:"cpu_percent"`
	UsrPercent          float64 `db:"usr_percent"`
	SystemPercent       float64 `db:"system_percent"`
	IOWaitPercent       float64 `db:"io_wait_percent"`
	LoadAvg1            float64 `db:"load_avg_1"`
	LoadAvg3            float64 `db:"load_avg_3"`
	LoadAvg15           float64 `db:"load_avg_15"`
	MemUsedPercent      float64 `db:"mem_used_percent"`
	DiskUtilPercent     float64 `db:"disk_util_percent"`
	SendRate            float64 `db:"send_rate"`
	RcvRate             float64 `db:"rcv_rate"`
	Score               float64 `db:"score"`
	CPUPercentRate      float64 `db:"cpu_percent_rate"`
	MemUsedPercentRate  float64 `db:"mem_used_percent_rate"`
	DiskUtilPercentRate float64 `db:"disk_util_percent_rate"`
	LoadAvg1Rate        float64 `db:"load_avg_1_rate"`
}

// AnomalySourceRow is one performance row that breached at least one
// anomaly predicate.
type AnomalySourceRow struct {
	ServerName         string  `db:"server_name"`
	Timestamp          string  `db:"timestamp"`
	CPUPercent         float64 `db:"cpu_percent"`
	MemUsedPercent     float64 `db:"mem_used_percent"`
	DiskUtilPercent    float64 `db:"disk_util_percent"`
	CPUPercentRate     float64 `db:"cpu_percent_rate"`
	MemUsedPercentRate float64 `db:"mem_used_percent_rate"`
}

// LatestPerfRow is the newest performance row of one host.
type LatestPerfRow struct {
	ServerName      string  `db:"server_name"`
	Score           float64 `db:"score"`
	Timestamp       string  `db:"timestamp"`
	CPUPercent      float64 `db:"cpu_percent"`
	MemUsedPercent  float64 `db:"mem_used_percent"`
	DiskUtilPercent float64 `db:"disk_util_percent"`
	LoadAvg1        float64 `db:"load_avg_1"`
	SendRate        float64 `db:"send_rate"`
	RcvRate         float64 `db:"rcv_rate"`
}

// NetDetailSelectRow mirrors the net detail read columns.
type NetDetailSelectRow struct {
	ServerName     string  `db:"server_name"`
	NetName        string  `db:"net_name"`
	Timestamp      string  `db:"timestamp"`
	ErrIn          uint64  `db:"err_in"`
	ErrOut         uint64  `db:"err_out"`
	DropIn         uint64  `db:"drop_in"`
	DropOut        uint64  `db:"drop_out"`
	RcvBytesRate   float64 `db:"rcv_bytes_rate"`
	SndBytesRate   float64 `db:"snd_bytes_rate"`
	RcvPacketsRate float64 `db:"rcv_packets_rate"`
	SndPacketsRate float64 `db:"snd_packets_rate"`
}

// DiskDetailSelectRow mirrors the disk detail read columns.
type DiskDetailSelectRow struct {
	ServerName        string  `db:"server_name"`
	DiskName          string  `db:"disk_name"`
	Timestamp         string  `db:"timestamp"`
	ReadBytesPerSec   float64 `db:"read_bytes_per_sec"`
	WriteBytesPerSec  float64 `db:"write_bytes_per_sec"`
	ReadIOPS          float64 `db:"read_iops"`
	WriteIOPS         float64 `db:"write_iops"`
	AvgReadLatencyMS  float64 `db:"avg_read_latency_ms"`
	AvgWriteLatencyMS float64 `db:"avg_write_latency_ms"`
	UtilPercent       float64 `db:"util_percent"`
}

// MemDetailSelectRow mirrors the mem detail read columns.
type MemDetailSelectRow struct {
	ServerName string  `db:"server_name"`
	Timestamp  string  `db:"timestamp"`
	Total      float64 `db:"total"`
	Free       float64 `db:"free"`
	Avail      float64 `db:"avail"`
	Buffers    float64 `db:"buffers"`
	Cached     float64 `db:"cached"`
	Active     float64 `db:"active"`
	Inactive   float64 `db:"inactive"`
	Dirty      float64 `db:"dirty"`
}

// SoftIrqDetailSelectRow mirrors the softirq detail read columns.
type SoftIrqDetailSelectRow struct {
	ServerName string `db:"server_name"`
	CPUName    string `db:"cpu_name"`
	Timestamp  string `db:"timestamp"`
	HI         int64  `db:"hi"`
	Timer      int64  `db:"timer"`
	NetTx      int64  `db:"net_tx"`
	NetRx      int64  `db:"net_rx"`
	Block      int64  `db:"block"`
	Sched      int64  `db:"sched"`
}

// CPUCoreDetailSelectRow mirrors the cpu core detail read columns.
type CPUCoreDetailSelectRow struct {
	ServerName     string  `db:"server_name"`
	CPUName        string  `db:"cpu_name"`
	Timestamp      string  `db:"timestamp"`
	CPUPercent     float64 `db:"cpu_percent"`
	UsrPercent     float64 `db:"usr_percent"`
	SystemPercent  float64 `db:"system_percent"`
	NicePercent    float64 `db:"nice_percent"`
	IdlePercent    float64 `db:"idle_percent"`
	IOWaitPercent  float64 `db:"io_wait_percent"`
	IrqPercent     float64 `db:"irq_percent"`
	SoftIrqPercent float64 `db:"soft_irq_percent"`
}
