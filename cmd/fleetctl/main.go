// Command fleetctl is the operator CLI for the fleet manager. It renders
// score rankings, cluster summaries, and anomaly reports, and offers a live
// watch mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"fleetmon/internal/client"
	"fleetmon/internal/protocol"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	onlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	critStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tableStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fleetctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: fleetctl [flags] <command>

Commands:
  scores      latest score and status of every host
  rank        hosts ranked by score
  perf        recent samples for one host
  trend       bucketed metric trend for one host
  anomalies   threshold breaches in a time window
  detail      per-subsystem rows (net, disk, mem, softirq, cpu)
  watch       live cluster dashboard

Flags:
  -manager URL   manager base URL (default $FLEETMON_MANAGER_URL or http://localhost:50051)
`)
}

func run(args []string) error {
	fs := flag.NewFlagSet("fleetctl", flag.ExitOnError)
	fs.Usage = usage
	managerURL := fs.String("manager", "", "manager base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		usage()
		return fmt.Errorf("missing command")
	}

	base := *managerURL
	if base == "" {
		base = os.Getenv("FLEETMON_MANAGER_URL")
	}
	if base == "" {
		base = "http://localhost:50051"
	}
	c := client.New(base)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "scores":
		return runScores(c, rest)
	case "rank":
		return runRank(c, rest)
	case "perf":
		return runPerf(c, rest)
	case "trend":
		return runTrend(c, rest)
	case "anomalies":
		return runAnomalies(c, rest)
	case "detail":
		return runDetail(c, rest)
	case "watch":
		return runWatch(c, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// ===== SCORES =====

func runScores(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("scores", flag.ExitOnError)
	profile := fs.String("profile", "", "scoring profile (balanced, high_concurrency, io_intensive, memory_sensitive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := c.LatestScores(ctx, &protocol.LatestScoreRequest{Profile: *profile})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Cluster"))
	fmt.Println(renderCluster(resp.Cluster))
	fmt.Println(titleStyle.Render("Hosts"))
	fmt.Println(renderSummaries(resp.Servers))
	return nil
}

func renderCluster(cs protocol.ClusterStats) string {
	rows := [][]string{
		{"Servers", fmt.Sprintf("%d (%s online, %s offline)",
			cs.TotalServers,
			onlineStyle.Render(strconv.Itoa(cs.OnlineServers)),
			dimStyle.Render(strconv.Itoa(cs.OfflineServers)))},
		{"Avg score", fmt.Sprintf("%.1f", cs.AvgScore)},
		{"Best", fmt.Sprintf("%s (%.1f)", cs.BestServer, cs.MaxScore)},
		{"Worst", fmt.Sprintf("%s (%.1f)", cs.WorstServer, cs.MinScore)},
	}
	var out string
	for _, r := range rows {
		out += fmt.Sprintf("%s  %s\n", headerStyle.Render(fmt.Sprintf("%-10s", r[0])), r[1])
	}
	return tableStyle.Render(out[:len(out)-1])
}

func renderSummaries(servers []protocol.ServerScoreSummary) string {
	header := fmt.Sprintf("%-20s %7s %8s %6s %6s %6s %6s  %s",
		"HOST", "SCORE", "STATUS", "CPU%", "MEM%", "DISK%", "LOAD1", "UPDATED")
	out := headerStyle.Render(header) + "\n"
	for _, s := range servers {
		status := onlineStyle.Render(fmt.Sprintf("%8s", s.Status))
		if s.Status != protocol.StatusOnline {
			status = dimStyle.Render(fmt.Sprintf("%8s", s.Status))
		}
		out += fmt.Sprintf("%-20s %7.1f %s %6.1f %6.1f %6.1f %6.2f  %s\n",
			s.ServerName, s.Score, status,
			s.CPUPercent, s.MemUsedPercent, s.DiskUtilPercent, s.LoadAvg1,
			dimStyle.Render(s.LastUpdate))
	}
	if len(servers) == 0 {
		out += dimStyle.Render("no hosts reported yet") + "\n"
	}
	return tableStyle.Render(out[:len(out)-1])
}

// ===== RANK =====

func runRank(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	asc := fs.Bool("asc", false, "worst hosts first")
	page := fs.Int("page", 1, "result page")
	size := fs.Int("size", 20, "page size")
	profile := fs.String("profile", "", "scoring profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := c.ScoreRank(ctx, &protocol.ScoreRankRequest{
		Ascending:  *asc,
		Pagination: protocol.Pagination{Page: *page, PageSize: *size},
		Profile:    *profile,
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Rank (page %d/%d hosts)", resp.Page, resp.TotalCount)))
	fmt.Println(renderSummaries(resp.Servers))
	return nil
}

// ===== ANOMALIES =====

func runAnomalies(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("anomalies", flag.ExitOnError)
	server := fs.String("server", "", "restrict to one host")
	since := fs.Duration("since", time.Hour, "look-back window")
	page := fs.Int("page", 1, "result page")
	size := fs.Int("size", 50, "page size")
	cpu := fs.Float64("cpu", 0, "cpu threshold (0 = default 80)")
	mem := fs.Float64("mem", 0, "mem threshold (0 = default 90)")
	disk := fs.Float64("disk", 0, "disk threshold (0 = default 85)")
	rate := fs.Float64("rate", 0, "change-rate threshold (0 = default 0.5)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := c.Anomalies(ctx, &protocol.AnomalyRequest{
		ServerName: *server,
		TimeRange: protocol.TimeRange{
			StartTime: now.Add(-*since).Unix(),
			EndTime:   now.Unix(),
		},
		Thresholds: protocol.AnomalyThresholds{
			CPUThreshold:        *cpu,
			MemThreshold:        *mem,
			DiskThreshold:       *disk,
			ChangeRateThreshold: *rate,
		},
		Pagination: protocol.Pagination{Page: *page, PageSize: *size},
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Anomalies (%d source samples)", resp.TotalCount)))
	header := fmt.Sprintf("%-20s %-20s %-10s %-9s %10s %10s  %s",
		"HOST", "TIME", "TYPE", "SEVERITY", "VALUE", "THRESHOLD", "METRIC")
	out := headerStyle.Render(header) + "\n"
	for _, a := range resp.Records {
		sev := warnStyle.Render(fmt.Sprintf("%-9s", a.Severity))
		if a.Severity == "CRITICAL" {
			sev = critStyle.Render(fmt.Sprintf("%-9s", a.Severity))
		}
		out += fmt.Sprintf("%-20s %-20s %-10s %s %10.2f %10.2f  %s\n",
			a.ServerName, a.Timestamp, a.AnomalyType, sev, a.Value, a.Threshold, a.MetricName)
	}
	if len(resp.Records) == 0 {
		out += dimStyle.Render("no anomalies in window") + "\n"
	}
	fmt.Println(tableStyle.Render(out[:len(out)-1]))
	return nil
}
