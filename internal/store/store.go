package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store is the repository over the telemetry tables. Writes are serialized
// through the mutex; the manager process is the only writer.
type Store struct {
	db  *sqlx.DB
	mu  sync.Mutex
	log *zap.Logger
}

// New wraps an open client in a repository.
func New(client *Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: client.DB(), log: log}
}

// Migrate applies the schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(SchemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// =============================================================================
// WRITES
// =============================================================================

const insertPerformanceSQL = `
INSERT INTO server_performance
  (server_name, cpu_percent, usr_percent, system_percent, nice_percent,
   idle_percent, io_wait_percent, irq_percent, soft_irq_percent,
   load_avg_1, load_avg_3, load_avg_15,
   mem_used_percent, total, free, avail,
   disk_util_percent, send_rate, rcv_rate, score,
   cpu_percent_rate, usr_percent_rate, system_percent_rate,
   nice_percent_rate, idle_percent_rate, io_wait_percent_rate,
   irq_percent_rate, soft_irq_percent_rate,
   load_avg_1_rate, load_avg_3_rate, load_avg_15_rate,
   mem_used_percent_rate, total_rate, free_rate, avail_rate,
   disk_util_percent_rate, send_rate_rate, rcv_rate_rate, timestamp)
VALUES
  (:server_name, :cpu_percent, :usr_percent, :system_percent, :nice_percent,
   :idle_percent, :io_wait_percent, :irq_percent, :soft_irq_percent,
   :load_avg_1, :load_avg_3, :load_avg_15,
   :mem_used_percent, :total, :free, :avail,
   :disk_util_percent, :send_rate, :rcv_rate, :score,
   :cpu_percent_rate, :usr_percent_rate, :system_percent_rate,
   :nice_percent_rate, :idle_percent_rate, :io_wait_percent_rate,
   :irq_percent_rate, :soft_irq_percent_rate,
   :load_avg_1_rate, :load_avg_3_rate, :load_avg_15_rate,
   :mem_used_percent_rate, :total_rate, :free_rate, :avail_rate,
   :disk_util_percent_rate, :send_rate_rate, :rcv_rate_rate, :timestamp)`

// InsertPerformance appends one aggregate sample.
func (s *Store) InsertPerformance(ctx context.Context, row PerformanceRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertPerformanceSQL, row); err != nil {
		return fmt.Errorf("insert server_performance: %w", err)
	}
	return nil
}

const insertNetDetailSQL = `
INSERT INTO server_net_detail
  (server_name, net_name, err_in, err_out, drop_in, drop_out,
   rcv_bytes_rate, rcv_packets_rate, snd_bytes_rate, snd_packets_rate,
   rcv_bytes_rate_rate, rcv_packets_rate_rate,
   snd_bytes_rate_rate, snd_packets_rate_rate,
   err_in_rate, err_out_rate, drop_in_rate, drop_out_rate, timestamp)
VALUES
  (:server_name, :net_name, :err_in, :err_out, :drop_in, :drop_out,
   :rcv_bytes_rate, :rcv_packets_rate, :snd_bytes_rate, :snd_packets_rate,
   :rcv_bytes_rate_rate, :rcv_packets_rate_rate,
   :snd_bytes_rate_rate, :snd_packets_rate_rate,
   :err_in_rate, :err_out_rate, :drop_in_rate, :drop_out_rate, :timestamp)`

// InsertNetDetail appends one per-interface sample.
func (s *Store) InsertNetDetail(ctx context.Context, row NetDetailRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertNetDetailSQL, row); err != nil {
		return fmt.Errorf("insert server_net_detail: %w", err)
	}
	return nil
}

const insertSoftIrqDetailSQL = `
INSERT INTO server_softirq_detail
  (server_name, cpu_name, hi, timer, net_tx, net_rx, block,
   irq_poll, tasklet, sched, hrtimer, rcu,
   hi_rate, timer_rate, net_tx_rate, net_rx_rate, block_rate,
   irq_poll_rate, tasklet_rate, sched_rate, hrtimer_rate, rcu_rate, timestamp)
VALUES
  (:server_name, :cpu_name, :hi, :timer, :net_tx, :net_rx, :block,
   :irq_poll, :tasklet, :sched, :hrtimer, :rcu,
   :hi_rate, :timer_rate, :net_tx_rate, :net_rx_rate, :block_rate,
   :irq_poll_rate, :tasklet_rate, :sched_rate, :hrtimer_rate, :rcu_rate, :timestamp)`

// InsertSoftIrqDetail appends one per-cpu softirq sample.
func (s *Store) InsertSoftIrqDetail(ctx context.Context, row SoftIrqDetailRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertSoftIrqDetailSQL, row); err != nil {
		return fmt.Errorf("insert server_softirq_detail: %w", err)
	}
	return nil
}

const insertMemDetailSQL = `
INSERT INTO server_mem_detail
  (server_name, total, free, avail, buffers, cached, swap_cached,
   active, inactive, active_anon, inactive_anon, active_file, inactive_file,
   dirty, writeback, anon_pages, mapped, kreclaimable, sreclaimable, sunreclaim,
   total_rate, free_rate, avail_rate, buffers_rate, cached_rate, swap_cached_rate,
   active_rate, inactive_rate, active_anon_rate, inactive_anon_rate,
   active_file_rate, inactive_file_rate, dirty_rate, writeback_rate,
   anon_pages_rate, mapped_rate, kreclaimable_rate, sreclaimable_rate,
   sunreclaim_rate, timestamp)
VALUES
  (:server_name, :total, :free, :avail, :buffers, :cached, :swap_cached,
   :active, :inactive, :active_anon, :inactive_anon, :active_file, :inactive_file,
   :dirty, :writeback, :anon_pages, :mapped, :kreclaimable, :sreclaimable, :sunreclaim,
   :total_rate, :free_rate, :avail_rate, :buffers_rate, :cached_rate, :swap_cached_rate,
   :active_rate, :inactive_rate, :active_anon_rate, :inactive_anon_rate,
   :active_file_rate, :inactive_file_rate, :dirty_rate, :writeback_rate,
   :anon_pages_rate, :mapped_rate, :kreclaimable_rate, :sreclaimable_rate,
   :sunreclaim_rate, :timestamp)`

// InsertMemDetail appends one detailed memory sample.
func (s *Store) InsertMemDetail(ctx context.Context, row MemDetailRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertMemDetailSQL, row); err != nil {
		return fmt.Errorf("insert server_mem_detail: %w", err)
	}
	return nil
}

const insertDiskDetailSQL = `
INSERT INTO server_disk_detail
  (server_name, disk_name, ` + "`reads`, `writes`" + `, sectors_read, sectors_written,
   read_time_ms, write_time_ms, io_in_progress, io_time_ms, weighted_io_time_ms,
   read_bytes_per_sec, write_bytes_per_sec, read_iops, write_iops,
   avg_read_latency_ms, avg_write_latency_ms, util_percent,
   read_bytes_per_sec_rate, write_bytes_per_sec_rate, read_iops_rate, write_iops_rate,
   avg_read_latency_ms_rate, avg_write_latency_ms_rate, util_percent_rate, timestamp)
VALUES
  (:server_name, :disk_name, :reads, :writes, :sectors_read, :sectors_written,
   :read_time_ms, :write_time_ms, :io_in_progress, :io_time_ms, :weighted_io_time_ms,
   :read_bytes_per_sec, :write_bytes_per_sec, :read_iops, :write_iops,
   :avg_read_latency_ms, :avg_write_latency_ms, :util_percent,
   :read_bytes_per_sec_rate, :write_bytes_per_sec_rate, :read_iops_rate, :write_iops_rate,
   :avg_read_latency_ms_rate, :avg_write_latency_ms_rate, :util_percent_rate, :timestamp)`

// InsertDiskDetail appends one per-device sample.
func (s *Store) InsertDiskDetail(ctx context.Context, row DiskDetailRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertDiskDetailSQL, row); err != nil {
		return fmt.Errorf("insert server_disk_detail: %w", err)
	}
	return nil
}

const insertCPUCoreDetailSQL = `
INSERT INTO server_cpu_core_detail
  (server_name, cpu_name, cpu_percent, usr_percent, system_percent,
   nice_percent, idle_percent, io_wait_percent, irq_percent,
   soft_irq_percent, timestamp)
VALUES
  (:server_name, :cpu_name, :cpu_percent, :usr_percent, :system_percent,
   :nice_percent, :idle_percent, :io_wait_percent, :irq_percent,
   :soft_irq_percent, :timestamp)`

// InsertCPUCoreDetail appends one per-core sample.
func (s *Store) InsertCPUCoreDetail(ctx context.Context, row CPUCoreDetailRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertCPUCoreDetailSQL, row); err != nil {
		return fmt.Errorf("insert server_cpu_core_detail: %w", err)
	}
	return nil
}
