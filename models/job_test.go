package models

import (
	"strings"
	"testing"
)

func TestTruncateDescription(t *testing.T) {
	exact := strings.Repeat("a", DescriptionLimit)
	long := strings.Repeat("b", DescriptionLimit+1)

	if got := TruncateDescription(exact); got != exact {
		t.Errorf("exactly %d chars should be unchanged, got len %d", DescriptionLimit, len(got))
	}

	got := TruncateDescription(long)
	if len(got) != DescriptionLimit+3 {
		t.Errorf("truncated len: got %d, want %d", len(got), DescriptionLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated description should end with continuation marker: %q", got[len(got)-5:])
	}

	if got := TruncateDescription("short"); got != "short" {
		t.Errorf("short description changed: %q", got)
	}
}

func TestTruncateDescriptionCountsRunes(t *testing.T) {
	s := strings.Repeat("é", DescriptionLimit)
	if got := TruncateDescription(s); got != s {
		t.Error("multi-byte description of exactly the limit should be unchanged")
	}

	got := TruncateDescription(s + "é")
	if want := s + "..."; got != want {
		t.Errorf("multi-byte truncation mismatch: got %d bytes, want %d", len(got), len(want))
	}
}

func TestRowFollowsColumns(t *testing.T) {
	j := JobRecord{Title: "t", Company: "c", Competitors: "x"}
	row := j.Row()
	if len(row) != len(Columns) {
		t.Fatalf("row len %d != columns %d", len(row), len(Columns))
	}
	if row[0] != "t" || row[1] != "c" || row[13] != "x" {
		t.Errorf("unexpected row order: %v", row)
	}
}

func TestSalaryMid(t *testing.T) {
	tests := []struct {
		low, high, want float64
	}{
		{0, 0, 0},
		{80000, 120000, 100000},
		{50000, 0, 50000},
	}
	for _, tt := range tests {
		s := &JobSummary{SalaryLow: tt.low, SalaryHigh: tt.high}
		if got := s.SalaryMid(); got != tt.want {
			t.Errorf("SalaryMid(%v, %v) = %v; want %v", tt.low, tt.high, got, tt.want)
		}
	}
}
