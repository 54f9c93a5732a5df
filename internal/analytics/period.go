package analytics

import (
	"math"
	"time"
)

// 支持的统计区间
const (
	Period7d  = "7d"
	Period30d = "30d"
	Period90d = "90d"
	Period1y  = "1y"
	PeriodAll = "all"
)

// Range 区间的具体起止时间，闭区间
type Range struct {
	Start time.Time
	End   time.Time
}

// Days 区间覆盖的自然日数量（按 UTC 日期计）
func (r Range) Days() int {
	start := r.Start.UTC().Truncate(24 * time.Hour)
	end := r.End.UTC().Truncate(24 * time.Hour)
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

// PeriodRange 把区间口令解析为以 now 为锚点的起止时间，未知口令按 30d 处理
func PeriodRange(period string, now time.Time) Range {
	var start time.Time
	switch period {
	case Period7d:
		start = now.Add(-7 * 24 * time.Hour)
	case Period30d:
		start = now.Add(-30 * 24 * time.Hour)
	case Period90d:
		start = now.Add(-90 * 24 * time.Hour)
	case Period1y:
		start = now.Add(-365 * 24 * time.Hour)
	case PeriodAll:
		start = time.Unix(0, 0).UTC()
	default:
		start = now.Add(-30 * 24 * time.Hour)
	}
	return Range{Start: start, End: now}
}

// PreviousPeriodRange 返回紧邻当前区间之前、时长相同的对比区间
func PreviousPeriodRange(period string, now time.Time) Range {
	current := PeriodRange(period, now)
	duration := current.End.Sub(current.Start)
	return Range{
		Start: current.Start.Add(-duration),
		End:   current.Start,
	}
}

// PercentageChange 计算环比变化百分比。
// 约定：上期为 0 时，本期大于 0 记 100，否则记 0。
func PercentageChange(current, previous int64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}
