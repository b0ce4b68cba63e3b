// Package agent runs the push loop on monitored hosts: collect a snapshot,
// ship it to the manager, repeat.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"fleetmon/internal/collector"
	"fleetmon/internal/protocol"
)

const defaultPushInterval = 10 * time.Second

// Config holds the agent settings, read from the environment.
type Config struct {
	ManagerURL   string
	PushInterval time.Duration
}

// ConfigFromEnv reads FLEETMON_MANAGER_URL and FLEETMON_PUSH_INTERVAL
// (seconds).
func ConfigFromEnv() Config {
	cfg := Config{
		ManagerURL:   os.Getenv("FLEETMON_MANAGER_URL"),
		PushInterval: defaultPushInterval,
	}
	if cfg.ManagerURL == "" {
		cfg.ManagerURL = "http://localhost:50051"
	}
	if raw := os.Getenv("FLEETMON_PUSH_INTERVAL"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.PushInterval = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

// Sender ships one snapshot to the manager. *client.Client satisfies it.
type Sender interface {
	Push(ctx context.Context, info *protocol.MonitorInfo) (*protocol.PushResponse, error)
}

// Pusher drives the collect-and-push loop.
type Pusher struct {
	collector collector.SnapshotProvider
	sender    Sender
	interval  time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewPusher creates a push worker.
func NewPusher(c collector.SnapshotProvider, s Sender, interval time.Duration, log *zap.Logger) (*Pusher, error) {
	if c == nil || s == nil {
		return nil, errors.New("collector and sender are required")
	}
	if interval <= 0 {
		interval = defaultPushInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pusher{
		collector: c,
		sender:    s,
		interval:  interval,
		log:       log,
	}, nil
}

// Start begins the periodic push loop. The first push fires immediately so
// the manager sees the host without waiting one interval.
func (p *Pusher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("pusher already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(ctx)
	return nil
}

// Stop gracefully stops the loop.
func (p *Pusher) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.running = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// PushOnce executes a single collect-and-push cycle immediately.
func (p *Pusher) PushOnce(ctx context.Context) error {
	return p.execute(ctx)
}

func (p *Pusher) loop(ctx context.Context) {
	defer p.wg.Done()

	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one push bounded by the interval so a hung manager cannot
// stack up cycles.
func (p *Pusher) cycle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()
	if err := p.execute(ctx); err != nil {
		p.log.Warn("push failed", zap.Error(err))
	}
}

func (p *Pusher) execute(ctx context.Context) error {
	info, err := p.collector.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("collect snapshot: %w", err)
	}
	if _, err := p.sender.Push(ctx, info); err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}
	p.log.Debug("snapshot pushed")
	return nil
}
