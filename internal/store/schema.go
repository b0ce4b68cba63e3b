package store

// SchemaSQL defines the six telemetry tables. One row per snapshot in the
// performance table; the detail tables fan out per interface, cpu, and
// device. All timestamps are local wall-clock DATETIMEs.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS server_performance (
  id                     BIGINT AUTO_INCREMENT PRIMARY KEY,
  server_name            VARCHAR(255) NOT NULL,
  cpu_percent            DOUBLE DEFAULT 0,
  usr_percent            DOUBLE DEFAULT 0,
  system_percent         DOUBLE DEFAULT 0,
  nice_percent           DOUBLE DEFAULT 0,
  idle_percent           DOUBLE DEFAULT 0,
  io_wait_percent        DOUBLE DEFAULT 0,
  irq_percent            DOUBLE DEFAULT 0,
  soft_irq_percent       DOUBLE DEFAULT 0,
  load_avg_1             DOUBLE DEFAULT 0,
  load_avg_3             DOUBLE DEFAULT 0,
  load_avg_15            DOUBLE DEFAULT 0,
  mem_used_percent       DOUBLE DEFAULT 0,
  total                  DOUBLE DEFAULT 0,
  free                   DOUBLE DEFAULT 0,
  avail                  DOUBLE DEFAULT 0,
  disk_util_percent      DOUBLE DEFAULT 0,
  send_rate              DOUBLE DEFAULT 0,
  rcv_rate               DOUBLE DEFAULT 0,
  score                  DOUBLE DEFAULT 0,
  cpu_percent_rate       DOUBLE DEFAULT 0,
  usr_percent_rate       DOUBLE DEFAULT 0,
  system_percent_rate    DOUBLE DEFAULT 0,
  nice_percent_rate      DOUBLE DEFAULT 0,
  idle_percent_rate      DOUBLE DEFAULT 0,
  io_wait_percent_rate   DOUBLE DEFAULT 0,
  irq_percent_rate       DOUBLE DEFAULT 0,
  soft_irq_percent_rate  DOUBLE DEFAULT 0,
  load_avg_1_rate        DOUBLE DEFAULT 0,
  load_avg_3_rate        DOUBLE DEFAULT 0,
  load_avg_15_rate       DOUBLE DEFAULT 0,
  mem_used_percent_rate  DOUBLE DEFAULT 0,
  total_rate             DOUBLE DEFAULT 0,
  free_rate              DOUBLE DEFAULT 0,
  avail_rate             DOUBLE DEFAULT 0,
  disk_util_percent_rate DOUBLE DEFAULT 0,
  send_rate_rate         DOUBLE DEFAULT 0,
  rcv_rate_rate          DOUBLE DEFAULT 0,
  timestamp              DATETIME NOT NULL,
  INDEX idx_perf_server_ts (server_name, timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS server_net_detail (
  id                    BIGINT AUTO_INCREMENT PRIMARY KEY,
  server_name           VARCHAR(255) NOT NULL,
  net_name              VARCHAR(64) NOT NULL,
  err_in                BIGINT UNSIGNED DEFAULT 0,
  err_out               BIGINT UNSIGNED DEFAULT 0,
  drop_in               BIGINT UNSIGNED DEFAULT 0,
  drop_out              BIGINT UNSIGNED DEFAULT 0,
  rcv_bytes_rate        DOUBLE DEFAULT 0,
  rcv_packets_rate      DOUBLE DEFAULT 0,
  snd_bytes_rate        DOUBLE DEFAULT 0,
  snd_packets_rate      DOUBLE DEFAULT 0,
  rcv_bytes_rate_rate   DOUBLE DEFAULT 0,
  rcv_packets_rate_rate DOUBLE DEFAULT 0,
  snd_bytes_rate_rate   DOUBLE DEFAULT 0,
  snd_packets_rate_rate DOUBLE DEFAULT 0,
  err_in_rate           DOUBLE DEFAULT 0,
  err_out_rate          DOUBLE DEFAULT 0,
  drop_in_rate          DOUBLE DEFAULT 0,
  drop_out_rate         DOUBLE DEFAULT 0,
  timestamp             DATETIME NOT NULL,
  INDEX idx_net_server_ts (server_name, timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS server_softirq_detail (
  id            BIGINT AUTO_INCREMENT PRIMARY KEY,
  server_name   VARCHAR(255) NOT NULL,
  cpu_name      VARCHAR(32) NOT NULL,
  hi            BIGINT UNSIGNED DEFAULT 0,
  timer         BIGINT UNSIGNED DEFAULT 0,
  net_tx        BIGINT UNSIGNED DEFAULT 0,
  net_rx        BIGINT UNSIGNED DEFAULT 0,
  block         BIGINT UNSIGNED DEFAULT 0,
  irq_poll      BIGINT UNSIGNED DEFAULT 0,
  tasklet       BIGINT UNSIGNED DEFAULT 0,
  sched         BIGINT UNSIGNED DEFAULT 0,
  hrtimer       BIGINT UNSIGNED DEFAULT 0,
  rcu           BIGINT UNSIGNED DEFAULT 0,
  hi_rate       DOUBLE DEFAULT 0,
  timer_rate    DOUBLE DEFAULT 0,
  net_tx_rate   DOUBLE DEFAULT 0,
  net_rx_rate   DOUBLE DEFAULT 0,
  block_rate    DOUBLE DEFAULT 0,
  irq_poll_rate DOUBLE DEFAULT 0,
  tasklet_rate  DOUBLE DEFAULT 0,
  sched_rate    DOUBLE DEFAULT 0,
  hrtimer_rate  DOUBLE DEFAULT 0,
  rcu_rate      DOUBLE DEFAULT 0,
  timestamp     DATETIME NOT NULL,
  INDEX idx_softirq_server_ts (server_name, timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS server_mem_detail (
  id                 BIGINT AUTO_INCREMENT PRIMARY KEY,
  server_name        VARCHAR(255) NOT NULL,
  total              DOUBLE DEFAULT 0,
  free               DOUBLE DEFAULT 0,
  avail              DOUBLE DEFAULT 0,
  buffers            DOUBLE DEFAULT 0,
  cached             DOUBLE DEFAULT 0,
  swap_cached        DOUBLE DEFAULT 0,
  active             DOUBLE DEFAULT 0,
  inactive           DOUBLE DEFAULT 0,
  active_anon        DOUBLE DEFAULT 0,
  inactive_anon      DOUBLE DEFAULT 0,
  active_file        DOUBLE DEFAULT 0,
  inactive_file      DOUBLE DEFAULT 0,
  dirty              DOUBLE DEFAULT 0,
  writeback          DOUBLE DEFAULT 0,
  anon_pages         DOUBLE DEFAULT 0,
  mapped             DOUBLE DEFAULT 0,
  kreclaimable       DOUBLE DEFAULT 0,
  sreclaimable       DOUBLE DEFAULT 0,
  sunreclaim         DOUBLE DEFAULT 0,
  total_rate         DOUBLE DEFAULT 0,
  free_rate          DOUBLE DEFAULT 0,
  avail_rate         DOUBLE DEFAULT 0,
  buffers_rate       DOUBLE DEFAULT 0,
  cached_rate        DOUBLE DEFAULT 0,
  swap_cached_rate   DOUBLE DEFAULT 0,
  active_rate        DOUBLE DEFAULT 0,
  inactive_rate      DOUBLE DEFAULT 0,
  active_anon_rate   DOUBLE DEFAULT 0,
  inactive_anon_rate DOUBLE DEFAULT 0,
  active_file_rate   DOUBLE DEFAULT 0,
  inactive_file_rate DOUBLE DEFAULT 0,
  dirty_rate         DOUBLE DEFAULT 0,
  writeback_rate     DOUBLE DEFAULT 0,
  anon_pages_rate    DOUBLE DEFAULT 0,
  mapped_rate        DOUBLE DEFAULT 0,
  kreclaimable_rate  DOUBLE DEFAULT 0,
  sreclaimable_rate  DOUBLE DEFAULT 0,
  sunreclaim_rate    DOUBLE DEFAULT 0,
  timestamp          DATETIME NOT NULL,
  INDEX idx_mem_server_ts (server_name, timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS server_disk_detail (
  id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
  server_name              VARCHAR(255) NOT NULL,
  disk_name                VARCHAR(64) NOT NULL,
  ` + "`reads`" + `                  BIGINT UNSIGNED DEFAULT 0,
  ` + "`writes`" + `                 BIGINT UNSIGNED DEFAULT 0,
  sectors_read             BIGINT UNSIGNED DEFAULT 0,
  sectors_written          BIGINT UNSIGNED DEFAULT 0,
  read_time_ms             BIGINT UNSIGNED DEFAULT 0,
  write_time_ms            BIGINT UNSIGNED DEFAULT 0,
  io_in_progress           BIGINT UNSIGNED DEFAULT 0,
  io_time_ms               BIGINT UNSIGNED DEFAULT 0,
  weighted_io_time_ms      BIGINT UNSIGNED DEFAULT 0,
  read_bytes_per_sec       DOUBLE DEFAULT 0,
  write_bytes_per_sec      DOUBLE DEFAULT 0,
  read_iops                DOUBLE DEFAULT 0,
  write_iops               DOUBLE DEFAULT 0,
  avg_read_latency_ms      DOUBLE DEFAULT 0,
  avg_write_latency_ms     DOUBLE DEFAULT 0,
  util_percent             DOUBLE DEFAULT 0,
  read_bytes_per_sec_rate  DOUBLE DEFAULT 0,
  write_bytes_per_sec_rate DOUBLE DEFAULT 0,
  read_iops_rate           DOUBLE DEFAULT 0,
  write_iops_rate          DOUBLE DEFAULT 0,
  avg_read_latency_ms_rate DOUBLE DEFAULT 0,
  avg_write_latency_ms_rate DOUBLE DEFAULT 0,
  util_percent_rate        DOUBLE DEFAULT 0,
  timestamp                DATETIME NOT NULL,
  INDEX idx_disk_server_ts (server_name, timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS server_cpu_core_detail (
  id               BIGINT AUTO_INCREMENT PRIMARY KEY,
  server_name      VARCHAR(255) NOT NULL,
  cpu_name         VARCHAR(32) NOT NULL,
  cpu_percent      DOUBLE DEFAULT 0,
  usr_percent      DOUBLE DEFAULT 0,
  system_percent   DOUBLE DEFAULT 0,
  nice_percent     DOUBLE DEFAULT 0,
  idle_percent     DOUBLE DEFAULT 0,
  io_wait_percent  DOUBLE DEFAULT 0,
  irq_percent      DOUBLE DEFAULT 0,
  soft_irq_percent DOUBLE DEFAULT 0,
  timestamp        DATETIME NOT NULL,
  INDEX idx_core_server_ts (server_name, timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`
