package store

import (
	"context"
	"fmt"
)

// AnomalyFilters carries the effective (already defaulted) thresholds for
// the anomaly source scan.
type AnomalyFilters struct {
	CPU  float64
	Mem  float64
	Disk float64
	Rate float64
}

// CountPerformance returns the number of samples for a host in a range.
func (s *Store) CountPerformance(ctx context.Context, server, start, end string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM server_performance
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?`,
		server, start, end)
	if err != nil {
		return 0, fmt.Errorf("count server_performance: %w", err)
	}
	return n, nil
}

// SelectPerformance returns one page of samples, newest first.
func (s *Store) SelectPerformance(ctx context.Context, server, start, end string, limit, offset int) ([]PerfSelectRow, error) {
	var rows []PerfSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, timestamp, cpu_percent, usr_percent,
		        system_percent, nice_percent, idle_percent, io_wait_percent,
		        irq_percent, soft_irq_percent, load_avg_1, load_avg_3, load_avg_15,
		        mem_used_percent, total, free, avail, disk_util_percent,
		        send_rate, rcv_rate, score, cpu_percent_rate, mem_used_percent_rate,
		        disk_util_percent_rate, load_avg_1_rate, send_rate_rate, rcv_rate_rate
		 FROM server_performance
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		server, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select server_performance: %w", err)
	}
	return rows, nil
}

// MySQL resolves a bare name in GROUP BY against table columns before
// select aliases, so the bucket alias must not collide with the raw
// timestamp column or each sample becomes its own group.
const selectTrendBucketsSQL = `
SELECT server_name,
       FROM_UNIXTIME(FLOOR(UNIX_TIMESTAMP(timestamp) / ?) * ?) AS time_bucket,
       AVG(cpu_percent) AS cpu_percent,
       AVG(usr_percent) AS usr_percent,
       AVG(system_percent) AS system_percent,
       AVG(io_wait_percent) AS io_wait_percent,
       AVG(load_avg_1) AS load_avg_1,
       AVG(load_avg_3) AS load_avg_3,
       AVG(load_avg_15) AS load_avg_15,
       AVG(mem_used_percent) AS mem_used_percent,
       AVG(disk_util_percent) AS disk_util_percent,
       AVG(send_rate) AS send_rate,
       AVG(rcv_rate) AS rcv_rate,
       AVG(score) AS score,
       AVG(cpu_percent_rate) AS cpu_percent_rate,
       AVG(mem_used_percent_rate) AS mem_used_percent_rate,
       AVG(disk_util_percent_rate) AS disk_util_percent_rate,
       AVG(load_avg_1_rate) AS load_avg_1_rate
FROM server_performance
WHERE server_name = ? AND timestamp BETWEEN ? AND ?
GROUP BY server_name, time_bucket
ORDER BY time_bucket`

// trendBucketRow scans the bucketed statement; the bucket start comes back
// under the time_bucket alias.
type trendBucketRow struct {
	TrendSelectRow
	TimeBucket string `db:"time_bucket"`
}

// SelectTrendBuckets averages samples into interval-second buckets,
// oldest bucket first.
func (s *Store) SelectTrendBuckets(ctx context.Context, server, start, end string, interval int) ([]TrendSelectRow, error) {
	var scanned []trendBucketRow
	err := s.db.SelectContext(ctx, &scanned, selectTrendBucketsSQL,
		interval, interval, server, start, end)
	if err != nil {
		return nil, fmt.Errorf("select trend buckets: %w", err)
	}
	rows := make([]TrendSelectRow, 0, len(scanned))
	for _, r := range scanned {
		r.TrendSelectRow.Timestamp = r.TimeBucket
		rows = append(rows, r.TrendSelectRow)
	}
	return rows, nil
}

// SelectTrendRaw returns unaggregated samples, oldest first.
func (s *Store) SelectTrendRaw(ctx context.Context, server, start, end string) ([]TrendSelectRow, error) {
	var rows []TrendSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, timestamp, cpu_percent, usr_percent,
		        system_percent, io_wait_percent, load_avg_1, load_avg_3,
		        load_avg_15, mem_used_percent, disk_util_percent, send_rate,
		        rcv_rate, score, cpu_percent_rate, mem_used_percent_rate,
		        disk_util_percent_rate, load_avg_1_rate
		 FROM server_performance
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp`,
		server, start, end)
	if err != nil {
		return nil, fmt.Errorf("select trend raw: %w", err)
	}
	return rows, nil
}

func anomalyWhere(server string) string {
	where := `timestamp BETWEEN ? AND ?`
	if server != "" {
		where += ` AND server_name = ?`
	}
	where += ` AND (cpu_percent > ? OR mem_used_percent > ? OR disk_util_percent > ?
	           OR ABS(cpu_percent_rate) > ? OR ABS(mem_used_percent_rate) > ?)`
	return where
}

// CountAnomalySources counts the performance rows that breach at least one
// threshold. The count is over source rows, not expanded records.
func (s *Store) CountAnomalySources(ctx context.Context, server, start, end string, f AnomalyFilters) (int, error) {
	where := anomalyWhere(server)
	args := []any{start, end}
	if server != "" {
		args = append(args, server)
	}
	args = append(args, f.CPU, f.Mem, f.Disk, f.Rate, f.Rate)

	var n int
	if err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM server_performance WHERE `+where, args...); err != nil {
		return 0, fmt.Errorf("count anomaly sources: %w", err)
	}
	return n, nil
}

// SelectAnomalySources returns one page of breaching rows, newest first.
func (s *Store) SelectAnomalySources(ctx context.Context, server, start, end string, f AnomalyFilters, limit, offset int) ([]AnomalySourceRow, error) {
	where := anomalyWhere(server)
	args := []any{start, end}
	if server != "" {
		args = append(args, server)
	}
	args = append(args, f.CPU, f.Mem, f.Disk, f.Rate, f.Rate, limit, offset)

	var rows []AnomalySourceRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, timestamp, cpu_percent, mem_used_percent,
		        disk_util_percent, cpu_percent_rate, mem_used_percent_rate
		 FROM server_performance WHERE `+where+`
		 ORDER BY timestamp DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("select anomaly sources: %w", err)
	}
	return rows, nil
}

// CountServers returns the number of distinct hosts ever persisted.
func (s *Store) CountServers(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(DISTINCT server_name) FROM server_performance`)
	if err != nil {
		return 0, fmt.Errorf("count servers: %w", err)
	}
	return n, nil
}

// SelectLatestPerServer returns the newest sample of every host,
// newest host first.
func (s *Store) SelectLatestPerServer(ctx context.Context) ([]LatestPerfRow, error) {
	var rows []LatestPerfRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT p1.server_name, p1.score, p1.timestamp, p1.cpu_percent,
		        p1.mem_used_percent, p1.disk_util_percent, p1.load_avg_1,
		        p1.send_rate, p1.rcv_rate
		 FROM server_performance p1
		 INNER JOIN (
		   SELECT server_name, MAX(timestamp) AS max_ts
		   FROM server_performance GROUP BY server_name
		 ) p2 ON p1.server_name = p2.server_name AND p1.timestamp = p2.max_ts
		 ORDER BY p1.timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("select latest per server: %w", err)
	}
	return rows, nil
}

// ===== DETAIL TABLES =====

func (s *Store) countDetail(ctx context.Context, table, server, start, end string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM `+table+`
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?`,
		server, start, end)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// CountNetDetail returns the row count for the net detail page.
func (s *Store) CountNetDetail(ctx context.Context, server, start, end string) (int, error) {
	return s.countDetail(ctx, "server_net_detail", server, start, end)
}

// SelectNetDetail returns one page of per-interface samples, newest first.
func (s *Store) SelectNetDetail(ctx context.Context, server, start, end string, limit, offset int) ([]NetDetailSelectRow, error) {
	var rows []NetDetailSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, net_name, timestamp, err_in, err_out,
		        drop_in, drop_out, rcv_bytes_rate, snd_bytes_rate,
		        rcv_packets_rate, snd_packets_rate
		 FROM server_net_detail
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		server, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select server_net_detail: %w", err)
	}
	return rows, nil
}

// CountDiskDetail returns the row count for the disk detail page.
func (s *Store) CountDiskDetail(ctx context.Context, server, start, end string) (int, error) {
	return s.countDetail(ctx, "server_disk_detail", server, start, end)
}

// SelectDiskDetail returns one page of per-device samples, newest first.
func (s *Store) SelectDiskDetail(ctx context.Context, server, start, end string, limit, offset int) ([]DiskDetailSelectRow, error) {
	var rows []DiskDetailSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, disk_name, timestamp, read_bytes_per_sec,
		        write_bytes_per_sec, read_iops, write_iops, avg_read_latency_ms,
		        avg_write_latency_ms, util_percent
		 FROM server_disk_detail
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		server, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select server_disk_detail: %w", err)
	}
	return rows, nil
}

// CountMemDetail returns the row count for the mem detail page.
func (s *Store) CountMemDetail(ctx context.Context, server, start, end string) (int, error) {
	return s.countDetail(ctx, "server_mem_detail", server, start, end)
}

// SelectMemDetail returns one page of memory samples, newest first.
func (s *Store) SelectMemDetail(ctx context.Context, server, start, end string, limit, offset int) ([]MemDetailSelectRow, error) {
	var rows []MemDetailSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, timestamp, total, free, avail, buffers,
		        cached, active, inactive, dirty
		 FROM server_mem_detail
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		server, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select server_mem_detail: %w", err)
	}
	return rows, nil
}

// CountSoftIrqDetail returns the row count for the softirq detail page.
func (s *Store) CountSoftIrqDetail(ctx context.Context, server, start, end string) (int, error) {
	return s.countDetail(ctx, "server_softirq_detail", server, start, end)
}

// SelectSoftIrqDetail returns one page of softirq samples, newest first.
func (s *Store) SelectSoftIrqDetail(ctx context.Context, server, start, end string, limit, offset int) ([]SoftIrqDetailSelectRow, error) {
	var rows []SoftIrqDetailSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT server_name, cpu_name, timestamp, hi, timer, net_tx,
		        net_rx, block, sched
		 FROM server_softirq_detail
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		server, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select server_softirq_detail: %w", err)
	}
	return rows, nil
}

// CountCPUCores returns the number of distinct cores observed in a range.
func (s *Store) CountCPUCores(ctx context.Context, server, start, end string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(DISTINCT cpu_name) FROM server_cpu_core_detail
		 WHERE server_name = ? AND timestamp BETWEEN ? AND ?`,
		server, start, end)
	if err != nil {
		return 0, fmt.Errorf("count cpu cores: %w", err)
	}
	return n, nil
}

// SelectLatestCPUCores returns the newest sample per core inside the range,
// ordered by core name.
func (s *Store) SelectLatestCPUCores(ctx context.Context, server, start, end string, limit, offset int) ([]CPUCoreDetailSelectRow, error) {
	var rows []CPUCoreDetailSelectRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT d.server_name, d.cpu_name, d.timestamp, d.cpu_percent,
		        d.usr_percent, d.system_percent, d.nice_percent, d.idle_percent,
		        d.io_wait_percent, d.irq_percent, d.soft_irq_percent
		 FROM server_cpu_core_detail d
		 INNER JOIN (
		   SELECT cpu_name, MAX(timestamp) AS latest_ts
		   FROM server_cpu_core_detail
		   WHERE server_name = ? AND timestamp BETWEEN ? AND ?
		   GROUP BY cpu_name
		 ) latest ON d.cpu_name = latest.cpu_name AND d.timestamp = latest.latest_ts
		 WHERE d.server_name = ?
		 ORDER BY d.cpu_name ASC LIMIT ? OFFSET ?`,
		server, start, end, server, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select latest cpu cores: %w", err)
	}
	return rows, nil
}
