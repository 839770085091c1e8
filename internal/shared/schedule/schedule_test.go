package schedule

import (
	"context"
	"testing"
	"time"
)

func TestParseDailyTime(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    DailyTime
		wantErr bool
	}{
		{
			name:  "success: morning time",
			input: "09:00",
			want:  DailyTime{Hour: 9, Minute: 0},
		},
		{
			name:  "success: end of day",
			input: "23:59",
			want:  DailyTime{Hour: 23, Minute: 59},
		},
		{
			name:  "success: midnight",
			input: "00:00",
			want:  DailyTime{Hour: 0, Minute: 0},
		},
		{
			name:    "error: hour out of range",
			input:   "25:00",
			wantErr: true,
		},
		{
			name:    "error: minute out of range",
			input:   "9:99",
			wantErr: true,
		},
		{
			name:    "error: not a time",
			input:   "later",
			wantErr: true,
		},
		{
			name:    "error: empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDailyTime(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got none", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseDailyTime(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestDailyTime_UntilNext(t *testing.T) {
	t.Parallel()

	// Fixed reference point: 2024-06-15 10:00:00 local time.
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)

	testCases := []struct {
		name  string
		daily DailyTime
		want  time.Duration
	}{
		{
			name:  "target already passed today: next occurrence is tomorrow",
			daily: DailyTime{Hour: 9, Minute: 0},
			want:  23 * time.Hour,
		},
		{
			name:  "target still ahead today",
			daily: DailyTime{Hour: 11, Minute: 0},
			want:  1 * time.Hour,
		},
		{
			name:  "target equals now: scheduled for tomorrow",
			daily: DailyTime{Hour: 10, Minute: 0},
			want:  24 * time.Hour,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.daily.UntilNext(now)
			if got != tc.want {
				t.Errorf("UntilNext = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestDailyTime_UntilNext_Bounds verifies the wait is always positive and at
// most 24 hours, and that the target moment is strictly in the future.
func TestDailyTime_UntilNext_Bounds(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 13, 37, 42, 0, time.Local)

	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 15, 37, 59} {
			d := DailyTime{Hour: hour, Minute: minute}

			wait := d.UntilNext(now)
			if wait <= 0 {
				t.Errorf("UntilNext(%v) = %v, want > 0", d, wait)
			}
			if wait > 24*time.Hour {
				t.Errorf("UntilNext(%v) = %v, want <= 24h", d, wait)
			}
			if target := d.Next(now); !target.After(now) {
				t.Errorf("Next(%v) = %v, not after %v", d, target, now)
			}
		}
	}
}

func TestSleep_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep did not return promptly on cancellation: %v", elapsed)
	}
}

func TestSleep_ZeroDuration(t *testing.T) {
	t.Parallel()

	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
