package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fleetmon/internal/client"
	"fleetmon/internal/protocol"
)

// watchModel is the Bubble Tea model for the live dashboard.
type watchModel struct {
	client   *client.Client
	profile  string
	interval time.Duration

	spinner    spinner.Model
	table      table.Model
	cluster    protocol.ClusterStats
	lastUpdate time.Time
	err        error
	width      int
	quitting   bool
}

type tickMsg time.Time

type scoresLoadedMsg struct {
	resp *protocol.LatestScoreResponse
	err  error
}

func runWatch(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	profile := fs.String("profile", "", "scoring profile")
	interval := fs.Duration("interval", 5*time.Second, "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m := newWatchModel(c, *profile, *interval)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newWatchModel(c *client.Client, profile string, interval time.Duration) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := []table.Column{
		{Title: "HOST", Width: 20},
		{Title: "SCORE", Width: 7},
		{Title: "STATUS", Width: 8},
		{Title: "CPU%", Width: 6},
		{Title: "MEM%", Width: 6},
		{Title: "DISK%", Width: 6},
		{Title: "LOAD1", Width: 6},
		{Title: "UPDATED", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(20),
		table.WithFocused(true),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(lipgloss.Color("99"))
	st.Selected = st.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(st)

	return watchModel{
		client:   c,
		profile:  profile,
		interval: interval,
		spinner:  s,
		table:    t,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchScoresCmd(m.client, m.profile),
		tickCmd(m.interval),
	)
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchScoresCmd(c *client.Client, profile string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		resp, err := c.LatestScores(ctx, &protocol.LatestScoreRequest{Profile: profile})
		return scoresLoadedMsg{resp: resp, err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(msg.Height - 8)
		return m, nil

	case tickMsg:
		return m, tea.Batch(
			fetchScoresCmd(m.client, m.profile),
			tickCmd(m.interval),
		)

	case scoresLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.cluster = msg.resp.Cluster
		m.lastUpdate = time.Now()
		rows := make([]table.Row, 0, len(msg.resp.Servers))
		for _, s := range msg.resp.Servers {
			rows = append(rows, table.Row{
				s.ServerName,
				fmt.Sprintf("%.1f", s.Score),
				s.Status,
				fmt.Sprintf("%.1f", s.CPUPercent),
				fmt.Sprintf("%.1f", s.MemUsedPercent),
				fmt.Sprintf("%.1f", s.DiskUtilPercent),
				fmt.Sprintf("%.2f", s.LoadAvg1),
				s.LastUpdate,
			})
		}
		m.table.SetRows(rows)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *watchModel) View() string {
	if m.quitting {
		return ""
	}

	header := titleStyle.Render("fleetmon watch") + "  " + m.spinner.View()
	summary := fmt.Sprintf("%d hosts, %s online, %s offline, avg %.1f",
		m.cluster.TotalServers,
		onlineStyle.Render(fmt.Sprintf("%d", m.cluster.OnlineServers)),
		dimStyle.Render(fmt.Sprintf("%d", m.cluster.OfflineServers)),
		m.cluster.AvgScore)
	status := dimStyle.Render("updated " + m.lastUpdate.Format("15:04:05") + " | q to quit")
	if m.err != nil {
		status = critStyle.Render("fetch failed: "+m.err.Error()) + "  " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		summary,
		"",
		m.table.View(),
		"",
		status,
	)
}
