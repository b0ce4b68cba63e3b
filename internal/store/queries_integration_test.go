package store_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"testing"
	"time"

	"fleetmon/internal/store"
)

// openTestStore connects to the MySQL instance named by the FLEETMON_TEST_DB_*
// environment variables, skipping the test when none is configured.
func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	host := os.Getenv("FLEETMON_TEST_DB_HOST")
	if host == "" {
		t.Skip("FLEETMON_TEST_DB_HOST not set; skipping database integration test")
	}
	port := 3306
	if raw := os.Getenv("FLEETMON_TEST_DB_PORT"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			port = v
		}
	}
	client, err := store.NewClient(store.Config{
		Host:     host,
		Port:     port,
		User:     os.Getenv("FLEETMON_TEST_DB_USER"),
		Password: os.Getenv("FLEETMON_TEST_DB_PASSWORD"),
		Database: os.Getenv("FLEETMON_TEST_DB_NAME"),
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	st := store.New(client, nil)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return st
}

// TestTrendBucketingEndToEnd writes 10 samples 10 s apart and checks the
// interval=30 path collapses them into 4 averaged buckets while interval=0
// returns the raw ascending rows.
func TestTrendBucketingEndToEnd(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	server := fmt.Sprintf("trend-it-%d", time.Now().UnixNano())

	// Align the base on a 30 s boundary so the bucket layout is fixed:
	// samples at +0..+90 fall into buckets starting at +0, +30, +60, +90.
	base := time.Unix(time.Now().Add(-time.Hour).Unix()/30*30, 0)
	for i := 0; i < 10; i++ {
		row := store.PerformanceRow{
			ServerName: server,
			CPUPercent: float64(i) * 10,
			Timestamp:  store.FormatTime(base.Add(time.Duration(i) * 10 * time.Second)),
		}
		if err := st.InsertPerformance(ctx, row); err != nil {
			t.Fatalf("insert sample %d: %v", i, err)
		}
	}

	start := store.FormatTime(base)
	end := store.FormatTime(base.Add(95 * time.Second))

	buckets, err := st.SelectTrendBuckets(ctx, server, start, end, 30)
	if err != nil {
		t.Fatalf("SelectTrendBuckets() error = %v", err)
	}
	if len(buckets) != 4 {
		t.Fatalf("buckets = %d, want 4 (got %+v)", len(buckets), buckets)
	}

	// Bucket averages of cpu 0..90 step 10: {0,10,20}, {30,40,50},
	// {60,70,80}, {90}.
	wantAvg := []float64{10, 40, 70, 90}
	for i, b := range buckets {
		if math.Abs(b.CPUPercent-wantAvg[i]) > 1e-6 {
			t.Errorf("bucket %d cpu avg = %v, want %v", i, b.CPUPercent, wantAvg[i])
		}
		wantTS := store.FormatTime(base.Add(time.Duration(i) * 30 * time.Second))
		if b.Timestamp != wantTS {
			t.Errorf("bucket %d timestamp = %q, want %q", i, b.Timestamp, wantTS)
		}
		if b.ServerName != server {
			t.Errorf("bucket %d server = %q", i, b.ServerName)
		}
	}

	raw, err := st.SelectTrendRaw(ctx, server, start, end)
	if err != nil {
		t.Fatalf("SelectTrendRaw() error = %v", err)
	}
	if len(raw) != 10 {
		t.Fatalf("raw rows = %d, want 10", len(raw))
	}
	for i, r := range raw {
		if math.Abs(r.CPUPercent-float64(i)*10) > 1e-6 {
			t.Errorf("raw row %d cpu = %v, want %v (not ascending?)", i, r.CPUPercent, float64(i)*10)
		}
	}
}
