package store

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	got := FormatTime(ts)
	want := "2025-03-14 09:26:53"
	if got != want {
		t.Errorf("FormatTime() = %q, want %q", got, want)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "valid timestamp",
			input: "2025-03-14 09:26:53",
			want:  time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local),
		},
		{
			name:  "garbage",
			input: "not-a-time",
			want:  time.Time{},
		},
		{
			name:  "empty",
			input: "",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	// Sub-second precision is dropped by the layout.
	orig := time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local)
	got := ParseTime(FormatTime(orig))
	if !got.Equal(orig) {
		t.Errorf("round trip = %v, want %v", got, orig)
	}
}

func TestSchemaStatements(t *testing.T) {
	tables := []string{
		"server_performance",
		"server_net_detail",
		"server_softirq_detail",
		"server_mem_detail",
		"server_disk_detail",
		"server_cpu_core_detail",
	}
	for _, table := range tables {
		if !strings.Contains(SchemaSQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing table %s", table)
		}
	}

	var stmts int
	for _, stmt := range strings.Split(SchemaSQL, ";") {
		if strings.TrimSpace(stmt) != "" {
			stmts++
		}
	}
	if stmts != len(tables) {
		t.Errorf("schema has %d statements, want %d", stmts, len(tables))
	}
}

func TestTrendBucketStatement(t *testing.T) {
	// The bucket expression must come back under an alias that does not
	// collide with the timestamp column: MySQL binds a bare GROUP BY name
	// to the table column first, which would make every sample its own
	// bucket.
	if !strings.Contains(selectTrendBucketsSQL, "AS time_bucket") {
		t.Fatal("bucket expression must be aliased time_bucket")
	}
	if !strings.Contains(selectTrendBucketsSQL, "GROUP BY server_name, time_bucket") {
		t.Error("grouping must bind to the bucket alias")
	}
	if !strings.Contains(selectTrendBucketsSQL, "ORDER BY time_bucket") {
		t.Error("ordering must bind to the bucket alias")
	}

	groupBy := regexp.MustCompile(`GROUP BY[^\n]*`).FindString(selectTrendBucketsSQL)
	if groupBy == "" {
		t.Fatal("statement has no GROUP BY clause")
	}
	if regexp.MustCompile(`\btimestamp\b`).MatchString(groupBy) {
		t.Errorf("GROUP BY references the raw timestamp column: %q", groupBy)
	}
}
