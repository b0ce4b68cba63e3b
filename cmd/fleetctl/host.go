package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"fleetmon/internal/client"
	"fleetmon/internal/protocol"
)

// ===== PERF =====

func runPerf(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("perf", flag.ExitOnError)
	since := fs.Duration("since", time.Hour, "look-back window")
	page := fs.Int("page", 1, "result page")
	size := fs.Int("size", 20, "page size")
	profile := fs.String("profile", "", "scoring profile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: fleetctl perf [flags] <host>")
	}
	host := fs.Arg(0)

	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := c.Performance(ctx, &protocol.PerformanceRequest{
		ServerName: host,
		TimeRange: protocol.TimeRange{
			StartTime: now.Add(-*since).Unix(),
			EndTime:   now.Unix(),
		},
		Pagination: protocol.Pagination{Page: *page, PageSize: *size},
		Profile:    *profile,
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s (%d samples, page %d)", host, resp.TotalCount, resp.Page)))
	fmt.Println(renderPerfRecords(resp.Records))
	return nil
}

func renderPerfRecords(records []protocol.PerformanceRecord) string {
	header := fmt.Sprintf("%-20s %6s %6s %6s %6s %9s %9s %7s",
		"TIME", "CPU%", "MEM%", "DISK%", "LOAD1", "SEND KB/s", "RCV KB/s", "SCORE")
	out := headerStyle.Render(header) + "\n"
	for _, r := range records {
		out += fmt.Sprintf("%-20s %6.1f %6.1f %6.1f %6.2f %9.1f %9.1f %7.1f\n",
			r.Timestamp, r.CPUPercent, r.MemUsedPercent, r.DiskUtilPercent,
			r.LoadAvg1, r.SendRate, r.RcvRate, r.Score)
	}
	if len(records) == 0 {
		out += dimStyle.Render("no samples in window") + "\n"
	}
	return tableStyle.Render(out[:len(out)-1])
}

// ===== TREND =====

func runTrend(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("trend", flag.ExitOnError)
	since := fs.Duration("since", 24*time.Hour, "look-back window")
	interval := fs.Int("interval", 300, "bucket width in seconds (0 = raw samples)")
	profile := fs.String("profile", "", "scoring profile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: fleetctl trend [flags] <host>")
	}
	host := fs.Arg(0)

	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := c.Trend(ctx, &protocol.TrendRequest{
		ServerName: host,
		TimeRange: protocol.TimeRange{
			StartTime: now.Add(-*since).Unix(),
			EndTime:   now.Unix(),
		},
		IntervalSeconds: *interval,
		Profile:         *profile,
	})
	if err != nil {
		return err
	}

	label := "raw samples"
	if *interval > 0 {
		label = fmt.Sprintf("%ds buckets", *interval)
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s trend (%s)", host, label)))
	fmt.Println(renderPerfRecords(resp.Records))
	return nil
}

// ===== DETAIL =====

func runDetail(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	since := fs.Duration("since", time.Hour, "look-back window")
	page := fs.Int("page", 1, "result page")
	size := fs.Int("size", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: fleetctl detail [flags] <net|disk|mem|softirq|cpu> <host>")
	}
	family, host := fs.Arg(0), fs.Arg(1)

	now := time.Now()
	req := &protocol.DetailRequest{
		ServerName: host,
		TimeRange: protocol.TimeRange{
			StartTime: now.Add(-*since).Unix(),
			EndTime:   now.Unix(),
		},
		Pagination: protocol.Pagination{Page: *page, PageSize: *size},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch family {
	case "net":
		resp, err := c.NetDetail(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s net (%d rows)", host, resp.TotalCount)))
		header := fmt.Sprintf("%-20s %-10s %11s %11s %7s %7s",
			"TIME", "IFACE", "RCV B/s", "SND B/s", "ERRS", "DROPS")
		out := headerStyle.Render(header) + "\n"
		for _, r := range resp.Records {
			out += fmt.Sprintf("%-20s %-10s %11.1f %11.1f %7d %7d\n",
				r.Timestamp, r.NetName, r.RcvBytesRate, r.SndBytesRate,
				r.ErrIn+r.ErrOut, r.DropIn+r.DropOut)
		}
		printDetail(out, len(resp.Records))
	case "disk":
		resp, err := c.DiskDetail(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s disk (%d rows)", host, resp.TotalCount)))
		header := fmt.Sprintf("%-20s %-10s %11s %11s %8s %8s %6s",
			"TIME", "DEVICE", "READ B/s", "WRITE B/s", "R-IOPS", "W-IOPS", "UTIL%")
		out := headerStyle.Render(header) + "\n"
		for _, r := range resp.Records {
			out += fmt.Sprintf("%-20s %-10s %11.1f %11.1f %8.1f %8.1f %6.1f\n",
				r.Timestamp, r.DiskName, r.ReadBytesPerSec, r.WriteBytesPerSec,
				r.ReadIOPS, r.WriteIOPS, r.UtilPercent)
		}
		printDetail(out, len(resp.Records))
	case "mem":
		resp, err := c.MemDetail(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s mem (%d rows)", host, resp.TotalCount)))
		header := fmt.Sprintf("%-20s %9s %9s %9s %9s %9s %8s",
			"TIME", "TOTAL MB", "FREE MB", "AVAIL MB", "CACHED", "ACTIVE", "DIRTY")
		out := headerStyle.Render(header) + "\n"
		for _, r := range resp.Records {
			out += fmt.Sprintf("%-20s %9.0f %9.0f %9.0f %9.0f %9.0f %8.1f\n",
				r.Timestamp, r.Total, r.Free, r.Avail, r.Cached, r.Active, r.Dirty)
		}
		printDetail(out, len(resp.Records))
	case "softirq":
		resp, err := c.SoftIrqDetail(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s softirq (%d rows)", host, resp.TotalCount)))
		header := fmt.Sprintf("%-20s %-8s %10s %10s %10s %10s %10s",
			"TIME", "CPU", "TIMER", "NET_TX", "NET_RX", "BLOCK", "SCHED")
		out := headerStyle.Render(header) + "\n"
		for _, r := range resp.Records {
			out += fmt.Sprintf("%-20s %-8s %10d %10d %10d %10d %10d\n",
				r.Timestamp, r.CPUName, r.Timer, r.NetTx, r.NetRx, r.Block, r.Sched)
		}
		printDetail(out, len(resp.Records))
	case "cpu":
		resp, err := c.CPUCoreDetail(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s cpu cores (%d cores)", host, resp.TotalCount)))
		header := fmt.Sprintf("%-8s %-20s %6s %6s %6s %6s %6s",
			"CORE", "TIME", "CPU%", "USR%", "SYS%", "IOW%", "IRQ%")
		out := headerStyle.Render(header) + "\n"
		for _, r := range resp.Records {
			out += fmt.Sprintf("%-8s %-20s %6.1f %6.1f %6.1f %6.1f %6.1f\n",
				r.CPUName, r.Timestamp, r.CPUPercent, r.UsrPercent,
				r.SystemPercent, r.IOWaitPercent, r.IrqPercent)
		}
		printDetail(out, len(resp.Records))
	default:
		return fmt.Errorf("unknown detail family %q (want net, disk, mem, softirq, or cpu)", family)
	}
	return nil
}

func printDetail(out string, n int) {
	if n == 0 {
		out += dimStyle.Render("no rows in window") + "\n"
	}
	fmt.Println(tableStyle.Render(out[:len(out)-1]))
}
