package ui

import (
	"math"
	"testing"
	"time"
)

func TestSortedPhases(t *testing.T) {
	avg := map[string]time.Duration{
		"clear": 50 * time.Microsecond,
		"sweep": 900 * time.Microsecond,
		"end":   50 * time.Microsecond,
	}

	got := SortedPhases(avg)
	want := []string{"sweep", "clear", "end"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}

	if len(SortedPhases(nil)) != 0 {
		t.Error("expected no phases for nil map")
	}
}

func TestBarRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := BarRatio(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("BarRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	if StatusText(true) != "Running" || StatusText(false) != "STOPPED" {
		t.Error("unexpected status labels")
	}
}
