package time

import (
	"testing"
	"time"
)

func TestShortDur(t *testing.T) {
	cases := map[time.Duration]string{
		0:                "0s",
		90 * time.Second: "1m30s",
		2 * time.Minute:  "2m",
		3 * time.Hour:    "3h",
		65 * time.Minute: "1h5m",
	}
	for in, want := range cases {
		if got := ShortDur(in); got != want {
			t.Errorf("ShortDur(%s) = %q; want %q", in, got, want)
		}
	}
}

func TestHumanDur(t *testing.T) {
	if got := HumanDur(1234 * time.Microsecond); got != "1ms" {
		t.Errorf("HumanDur = %q; want 1ms", got)
	}
	if got := HumanDur(2*time.Second + 340*time.Millisecond); got != "2.3s" {
		t.Errorf("HumanDur = %q; want 2.3s", got)
	}
}

func TestBetween(t *testing.T) {
	start := time.Now()
	end := start.Add(1500 * time.Millisecond)

	if got := Between(start, end); got != "1.5s" {
		t.Errorf("Between = %q; want 1.5s", got)
	}
	if got := Between(start, time.Time{}); got != "n/a" {
		t.Errorf("Between with zero end = %q; want n/a", got)
	}
	if got := Between(time.Time{}, end); got != "n/a" {
		t.Errorf("Between with zero start = %q; want n/a", got)
	}
	if got := Between(end, start); got != "n/a" {
		t.Errorf("Between with reversed times = %q; want n/a", got)
	}
}

func TestCountdown(t *testing.T) {
	if got := Countdown(time.Now().Add(-time.Second)); got != "expired" {
		t.Errorf("Countdown(past) = %q; want expired", got)
	}
	if got := Countdown(time.Now().Add(10 * time.Second)); got == "expired" {
		t.Error("Countdown(future) should not be expired")
	}
}
