package scheduler

import (
	"testing"
	"time"
)

func TestIntervalMinutes(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{24 * time.Hour, 24 * 60},
		{time.Hour, 60},
		{30 * time.Minute, 30},
		{90 * time.Second, 1},
		{0, 24 * 60},
		{30 * time.Second, 24 * 60},
	}
	for _, c := range cases {
		if got := intervalMinutes(c.in); got != c.want {
			t.Fatalf("intervalMinutes(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
