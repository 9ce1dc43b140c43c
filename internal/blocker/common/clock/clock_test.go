package clock

import (
	"testing"
	"time"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := NewMockClock(start)

	if !clk.Now().Equal(start) {
		t.Errorf("Now() = %v; want %v", clk.Now(), start)
	}

	clk.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !clk.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v; want %v", clk.Now(), want)
	}
}

func TestRealClock(t *testing.T) {
	before := time.Now()
	got := RealClock{}.Now()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v outside [%v, %v]", got, before, after)
	}
}
