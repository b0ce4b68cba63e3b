package protocol

// Scoring profiles select the weight set used when scores are recomputed at
// query time. Unknown values fall back to balanced.
const (
	ProfileBalanced        = "balanced"
	ProfileHighConcurrency = "high_concurrency"
	ProfileIOIntensive     = "io_intensive"
	ProfileMemorySensitive = "memory_sensitive"
)

// Server liveness, derived from the age of the latest sample.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

// TimeRange bounds a query in unix seconds, inclusive.
type TimeRange struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
}

// Pagination selects a result page. Page < 1 is coerced to 1,
// PageSize < 1 to 100.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// AnomalyThresholds configures anomaly detection. Values <= 0 take the
// defaults: cpu 80, mem 90, disk 85, change rate 0.5.
type AnomalyThresholds struct {
	CPUThreshold        float64 `json:"cpu_threshold"`
	MemThreshold        float64 `json:"mem_threshold"`
	DiskThreshold       float64 `json:"disk_threshold"`
	ChangeRateThreshold float64 `json:"change_rate_threshold"`
}

// PerformanceRecord is one aggregate sample, timestamps serialized as
// "2006-01-02 15:04:05" local time.
type PerformanceRecord struct {
	ServerName          string  `json:"server_name"`
	Timestamp           string  `json:"timestamp"`
	CPUPercent          float64 `json:"cpu_percent"`
	UsrPercent          float64 `json:"usr_percent"`
	SystemPercent       float64 `json:"system_percent"`
	NicePercent         float64 `json:"nice_percent"`
	IdlePercent         float64 `json:"idle_percent"`
	IOWaitPercent       float64 `json:"io_wait_percent"`
	IrqPercent          float64 `json:"irq_percent"`
	SoftIrqPercent      float64 `json:"soft_irq_percent"`
	LoadAvg1            float64 `json:"load_avg_1"`
	LoadAvg3            float64 `json:"load_avg_3"`
	LoadAvg15           float64 `json:"load_avg_15"`
	MemUsedPercent      float64 `json:"mem_used_percent"`
	MemTotal            float64 `json:"mem_total"`
	MemFree             float64 `json:"mem_free"`
	MemAvail            float64 `json:"mem_avail"`
	DiskUtilPercent     float64 `json:"disk_util_percent"`
	SendRate            float64 `json:"send_rate"`
	RcvRate             float64 `json:"rcv_rate"`
	Score               float64 `json:"score"`
	CPUPercentRate      float64 `json:"cpu_percent_rate"`
	MemUsedPercentRate  float64 `json:"mem_used_percent_rate"`
	DiskUtilPercentRate float64 `json:"disk_util_percent_rate"`
	LoadAvg1Rate        float64 `json:"load_avg_1_rate"`
	SendRateRate        float64 `json:"send_rate_rate"`
	RcvRateRate         float64 `json:"rcv_rate_rate"`
}

// AnomalyRecord is one breached predicate on one source sample.
type AnomalyRecord struct {
	ServerName  string  `json:"server_name"`
	Timestamp   string  `json:"timestamp"`
	AnomalyType string  `json:"anomaly_type"` // CPU_HIGH, MEM_HIGH, DISK_HIGH, RATE_SPIKE
	Severity    string  `json:"severity"`     // WARNING, CRITICAL
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
	MetricName  string  `json:"metric_name"`
}

// ServerScoreSummary is the latest state of one host, rescored on read.
type ServerScoreSummary struct {
	ServerName      string  `json:"server_name"`
	Score           float64 `json:"score"`
	LastUpdate      string  `json:"last_update"`
	Status          string  `json:"status"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemUsedPercent  float64 `json:"mem_used_percent"`
	DiskUtilPercent float64 `json:"disk_util_percent"`
	LoadAvg1        float64 `json:"load_avg_1"`
}

// ClusterStats aggregates the latest scores across the fleet.
type ClusterStats struct {
	TotalServers   int     `json:"total_servers"`
	OnlineServers  int     `json:"online_servers"`
	OfflineServers int     `json:"offline_servers"`
	AvgScore       float64 `json:"avg_score"`
	MaxScore       float64 `json:"max_score"`
	MinScore       float64 `json:"min_score"`
	BestServer     string  `json:"best_server"`
	WorstServer    string  `json:"worst_server"`
}

type NetDetailRecord struct {
	ServerName     string  `json:"server_name"`
	NetName        string  `json:"net_name"`
	Timestamp      string  `json:"timestamp"`
	ErrIn          uint64  `json:"err_in"`
	ErrOut         uint64  `json:"err_out"`
	DropIn         uint64  `json:"drop_in"`
	DropOut        uint64  `json:"drop_out"`
	RcvBytesRate   float64 `json:"rcv_bytes_rate"`
	SndBytesRate   float64 `json:"snd_bytes_rate"`
	RcvPacketsRate float64 `json:"rcv_packets_rate"`
	SndPacketsRate float64 `json:"snd_packets_rate"`
}

type DiskDetailRecord struct {
	ServerName        string  `json:"server_name"`
	DiskName          string  `json:"disk_name"`
	Timestamp         string  `json:"timestamp"`
	ReadBytesPerSec   float64 `json:"read_bytes_per_sec"`
	WriteBytesPerSec  float64 `json:"write_bytes_per_sec"`
	ReadIOPS          float64 `json:"read_iops"`
	WriteIOPS         float64 `json:"write_iops"`
	AvgReadLatencyMS  float64 `json:"avg_read_latency_ms"`
	AvgWriteLatencyMS float64 `json:"avg_write_latency_ms"`
	UtilPercent       float64 `json:"util_percent"`
}

type MemDetailRecord struct {
	ServerName string  `json:"server_name"`
	Timestamp  string  `json:"timestamp"`
	Total      float64 `json:"total"`
	Free       float64 `json:"free"`
	Avail      float64 `json:"avail"`
	Buffers    float64 `json:"buffers"`
	Cached     float64 `json:"cached"`
	Active     float64 `json:"active"`
	Inactive   float64 `json:"inactive"`
	Dirty      float64 `json:"dirty"`
}

type SoftIrqDetailRecord struct {
	ServerName string `json:"server_name"`
	CPUName    string `json:"cpu_name"`
	Timestamp  string `json:"timestamp"`
	HI         int64  `json:"hi"`
	Timer      int64  `json:"timer"`
	NetTx      int64  `json:"net_tx"`
	NetRx      int64  `json:"net_rx"`
	Block      int64  `json:"block"`
	Sched      int64  `json:"sched"`
}

type CPUCoreDetailRecord struct {
	ServerName     string  `json:"server_name"`
	CPUName        string  `json:"cpu_name"`
	Timestamp      string  `json:"timestamp"`
	CPUPercent     float64 `json:"cpu_percent"`
	UsrPercent     float64 `json:"usr_percent"`
	SystemPercent  float64 `json:"system_percent"`
	NicePercent    float64 `json:"nice_percent"`
	IdlePercent    float64 `json:"idle_percent"`
	IOWaitPercent  float64 `json:"io_wait_percent"`
	IrqPercent     float64 `json:"irq_percent"`
	SoftIrqPercent float64 `json:"soft_irq_percent"`
}

// ===== REQUEST / RESPONSE ENVELOPES =====

type PerformanceRequest struct {
	ServerName string     `json:"server_name"`
	TimeRange  TimeRange  `json:"time_range"`
	Pagination Pagination `json:"pagination"`
	Profile    string     `json:"profile,omitempty"`
}

type PerformanceResponse struct {
	Records         []PerformanceRecord `json:"records"`
	TotalCount      int                 `json:"total_count"`
	Page            int                 `json:"page"`
	PageSize        int                 `json:"page_size"`
	RescoreCPUCores int                 `json:"rescore_cpu_cores"`
}

type TrendRequest struct {
	ServerName      string    `json:"server_name"`
	TimeRange       TimeRange `json:"time_range"`
	IntervalSeconds int       `json:"interval_seconds"`
	Profile         string    `json:"profile,omitempty"`
}

type TrendResponse struct {
	Records         []PerformanceRecord `json:"records"`
	RescoreCPUCores int                 `json:"rescore_cpu_cores"`
}

type AnomalyRequest struct {
	ServerName string            `json:"server_name,omitempty"`
	TimeRange  TimeRange         `json:"time_range"`
	Thresholds AnomalyThresholds `json:"thresholds"`
	Pagination Pagination        `json:"pagination"`
}

type AnomalyResponse struct {
	Records    []AnomalyRecord `json:"records"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

type ScoreRankRequest struct {
	Ascending  bool       `json:"ascending"`
	Pagination Pagination `json:"pagination"`
	Profile    string     `json:"profile,omitempty"`
}

type ScoreRankResponse struct {
	Servers         []ServerScoreSummary `json:"servers"`
	TotalCount      int                  `json:"total_count"`
	Page            int                  `json:"page"`
	PageSize        int                  `json:"page_size"`
	RescoreCPUCores int                  `json:"rescore_cpu_cores"`
}

type LatestScoreRequest struct {
	Profile string `json:"profile,omitempty"`
}

type LatestScoreResponse struct {
	Servers         []ServerScoreSummary `json:"servers"`
	Cluster         ClusterStats         `json:"cluster"`
	RescoreCPUCores int                  `json:"rescore_cpu_cores"`
}

// DetailRequest is shared by the net/disk/mem/softirq/cpu-core detail queries.
type DetailRequest struct {
	ServerName string     `json:"server_name"`
	TimeRange  TimeRange  `json:"time_range"`
	Pagination Pagination `json:"pagination"`
}

type NetDetailResponse struct {
	Records    []NetDetailRecord `json:"records"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

type DiskDetailResponse struct {
	Records    []DiskDetailRecord `json:"records"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

type MemDetailResponse struct {
	Records    []MemDetailRecord `json:"records"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

type SoftIrqDetailResponse struct {
	Records    []SoftIrqDetailRecord `json:"records"`
	TotalCount int                   `json:"total_count"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
}

type CPUCoreDetailResponse struct {
	Records    []CPUCoreDetailRecord `json:"records"`
	TotalCount int                   `json:"total_count"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
}

// PushResponse acknowledges an ingested snapshot.
type PushResponse struct {
	Status string `json:"status"`
}
