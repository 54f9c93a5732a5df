package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     int
	}{
		{"上期为0本期有量", 5, 0, 100},
		{"上期为0本期也为0", 0, 0, 0},
		{"持平", 42, 42, 0},
		{"翻倍", 20, 10, 100},
		{"减半", 5, 10, -50},
		{"四舍五入", 1, 3, -67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentageChange(tt.current, tt.previous))
		})
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		days   time.Duration
	}{
		{Period7d, 7 * 24 * time.Hour},
		{Period30d, 30 * 24 * time.Hour},
		{Period90d, 90 * 24 * time.Hour},
		{Period1y, 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			r := PeriodRange(tt.period, now)
			assert.Equal(t, now, r.End)
			assert.Equal(t, tt.days, r.End.Sub(r.Start))
		})
	}

	// all 从纪元起算
	r := PeriodRange(PeriodAll, now)
	assert.Equal(t, time.Unix(0, 0).UTC(), r.Start)

	// 未知口令按 30d 处理
	r = PeriodRange("bogus", now)
	assert.Equal(t, 30*24*time.Hour, r.End.Sub(r.Start))
}

func TestPreviousPeriodRange(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	current := PeriodRange(Period7d, now)
	previous := PreviousPeriodRange(Period7d, now)

	// 对比区间紧邻当前区间之前且时长一致
	assert.Equal(t, current.Start, previous.End)
	assert.Equal(t, current.End.Sub(current.Start), previous.End.Sub(previous.Start))
}

func TestRangeDays(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	end := time.Date(2026, 8, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, Range{Start: start, End: end}.Days())

	sameDay := time.Date(2026, 8, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, Range{Start: start, End: sameDay}.Days())
}
