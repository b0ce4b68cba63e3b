package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fleetmon/internal/protocol"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeProvider) Snapshot(ctx context.Context) (*protocol.MonitorInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &protocol.MonitorInfo{
		Host: &protocol.HostInfo{Hostname: "web-01", IPAddress: "10.0.0.1"},
	}, nil
}

func (f *fakeProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSender struct {
	mu     sync.Mutex
	pushed []*protocol.MonitorInfo
	err    error
}

func (f *fakeSender) Push(ctx context.Context, info *protocol.MonitorInfo) (*protocol.PushResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.pushed = append(f.pushed, info)
	return &protocol.PushResponse{Status: "ok"}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func TestNewPusherValidation(t *testing.T) {
	if _, err := NewPusher(nil, &fakeSender{}, time.Second, nil); err == nil {
		t.Error("expected error for nil collector")
	}
	if _, err := NewPusher(&fakeProvider{}, nil, time.Second, nil); err == nil {
		t.Error("expected error for nil sender")
	}
	p, err := NewPusher(&fakeProvider{}, &fakeSender{}, 0, nil)
	if err != nil {
		t.Fatalf("NewPusher() error = %v", err)
	}
	if p.interval != defaultPushInterval {
		t.Errorf("interval = %v, want default %v", p.interval, defaultPushInterval)
	}
}

func TestPushOnce(t *testing.T) {
	provider := &fakeProvider{}
	sender := &fakeSender{}
	p, err := NewPusher(provider, sender, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.PushOnce(context.Background()); err != nil {
		t.Fatalf("PushOnce() error = %v", err)
	}
	if sender.count() != 1 {
		t.Errorf("pushed = %d, want 1", sender.count())
	}
	if sender.pushed[0].Host.Hostname != "web-01" {
		t.Errorf("hostname = %q", sender.pushed[0].Host.Hostname)
	}
}

func TestPushOnceErrors(t *testing.T) {
	tests := []struct {
		name       string
		collectErr error
		sendErr    error
	}{
		{name: "collect fails", collectErr: errors.New("proc unreadable")},
		{name: "send fails", sendErr: errors.New("manager down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{err: tt.collectErr}
			sender := &fakeSender{err: tt.sendErr}
			p, err := NewPusher(provider, sender, time.Second, nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := p.PushOnce(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStartPushesImmediately(t *testing.T) {
	provider := &fakeProvider{}
	sender := &fakeSender{}
	p, err := NewPusher(provider, sender, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sender.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sender.count() != 1 {
		t.Errorf("pushed = %d, want 1 immediate push", sender.count())
	}
}

func TestStartTwice(t *testing.T) {
	p, err := NewPusher(&fakeProvider{}, &fakeSender{}, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer p.Stop()

	if err := p.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
}

func TestStopHalts(t *testing.T) {
	provider := &fakeProvider{}
	p, err := NewPusher(provider, &fakeSender{}, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	settled := provider.count()
	time.Sleep(50 * time.Millisecond)
	if provider.count() != settled {
		t.Error("collector still running after Stop")
	}

	// Stop again is a no-op.
	p.Stop()
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FLEETMON_MANAGER_URL", "")
	t.Setenv("FLEETMON_PUSH_INTERVAL", "")
	cfg := ConfigFromEnv()
	if cfg.ManagerURL != "http://localhost:50051" {
		t.Errorf("default url = %q", cfg.ManagerURL)
	}
	if cfg.PushInterval != defaultPushInterval {
		t.Errorf("default interval = %v", cfg.PushInterval)
	}

	t.Setenv("FLEETMON_MANAGER_URL", "http://fleet:9000")
	t.Setenv("FLEETMON_PUSH_INTERVAL", "30")
	cfg = ConfigFromEnv()
	if cfg.ManagerURL != "http://fleet:9000" {
		t.Errorf("url = %q", cfg.ManagerURL)
	}
	if cfg.PushInterval != 30*time.Second {
		t.Errorf("interval = %v", cfg.PushInterval)
	}

	t.Setenv("FLEETMON_PUSH_INTERVAL", "bogus")
	if cfg := ConfigFromEnv(); cfg.PushInterval != defaultPushInterval {
		t.Errorf("bad interval should fall back, got %v", cfg.PushInterval)
	}
}
