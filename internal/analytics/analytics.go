package analytics

import (
	"context"
	"errors"
	"time"

	"linkfolio-platform/internal/model"

	"gorm.io/gorm"
)

// ErrLinkNotFound 链接不存在或不属于当前用户
var ErrLinkNotFound = errors.New("链接不存在")

// Insights 仪表盘总览
type Insights struct {
	TotalViews     int64   `json:"total_views"`
	TotalClicks    int64   `json:"total_clicks"`
	TotalEarnings  float64 `json:"total_earnings"`
	ViewsChange    int     `json:"views_change"`
	ClicksChange   int     `json:"clicks_change"`
	EarningsChange int     `json:"earnings_change"`
}

// TopLink 榜单条目
type TopLink struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	ShortCode string  `json:"short_code"`
	Clicks    int64   `json:"clicks"`
	Views     int64   `json:"views"`
	Earnings  float64 `json:"earnings"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// ChartPoint 按天聚合的曲线点
type ChartPoint struct {
	Date     string  `json:"date"`
	Clicks   int64   `json:"clicks"`
	Views    int64   `json:"views"`
	Earnings float64 `json:"earnings"`
}

// DeviceStat 设备维度统计
type DeviceStat struct {
	Device     string `json:"device"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// LinkDetail 单链接分析
type LinkDetail struct {
	Link         TopLink      `json:"link"`
	PeriodClicks int64        `json:"period_clicks"`
	Devices      []DeviceStat `json:"devices"`
	Daily        []ChartPoint `json:"daily"`
}

// Service 只读聚合服务，所有查询各自内部一致，无跨查询顺序保证
type Service struct {
	db *gorm.DB
}

// NewService 创建聚合服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Insights 汇总生命周期累计值，并给出本期/上期窗口内点击量的环比
func (s *Service) Insights(ctx context.Context, userID uint, period string) (*Insights, error) {
	var totals struct {
		Views    int64
		Clicks   int64
		Earnings float64
	}
	err := s.db.WithContext(ctx).Model(&model.Link{}).
		Select("COALESCE(SUM(views), 0) AS views, COALESCE(SUM(clicks), 0) AS clicks, COALESCE(SUM(earnings), 0) AS earnings").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	current, err := s.countClicks(ctx, userID, PeriodRange(period, now))
	if err != nil {
		return nil, err
	}
	previous, err := s.countClicks(ctx, userID, PreviousPeriodRange(period, now))
	if err != nil {
		return nil, err
	}

	change := PercentageChange(current, previous)
	return &Insights{
		TotalViews:    totals.Views,
		TotalClicks:   totals.Clicks,
		TotalEarnings: totals.Earnings,
		ViewsChange:   change,
		ClicksChange:  change,
		// 暂无按期收益快照，环比固定为 0
		EarningsChange: 0,
	}, nil
}

// TopLinks 按点击量降序取前 N 条
func (s *Service) TopLinks(ctx context.Context, userID uint, limit int) ([]TopLink, error) {
	if limit <= 0 {
		limit = 5
	}
	var links []TopLink
	err := s.db.WithContext(ctx).Model(&model.Link{}).
		Select("id, title, short_code, clicks, views, earnings, thumbnail").
		Where("user_id = ?", userID).
		Order("clicks DESC").
		Limit(limit).
		Scan(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Chart 窗口内按自然日聚合的点击曲线，无事件的日期补零，序列必须稠密
func (s *Service) Chart(ctx context.Context, userID uint, period string) ([]ChartPoint, error) {
	window := PeriodRange(period, time.Now().UTC())

	var timestamps []time.Time
	err := s.db.WithContext(ctx).Model(&model.Click{}).
		Joins("JOIN links ON links.id = clicks.link_id").
		Where("links.user_id = ? AND clicks.timestamp >= ? AND clicks.timestamp <= ?",
			userID, window.Start, window.End).
		Pluck("clicks.timestamp", &timestamps).Error
	if err != nil {
		return nil, err
	}

	return denseSeries(window, timestamps), nil
}

// Devices 全量点击的设备分布，计数与整数百分比
func (s *Service) Devices(ctx context.Context, userID uint) ([]DeviceStat, error) {
	var rows []struct {
		Device string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Click{}).
		Select("clicks.device AS device, COUNT(*) AS count").
		Joins("JOIN links ON links.id = clicks.link_id").
		Where("links.user_id = ?", userID).
		Group("clicks.device").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return deviceStats(rows), nil
}

// LinkAnalytics 单链接分析：生命周期计数 + 窗口内点击/设备分布/按日曲线
func (s *Service) LinkAnalytics(ctx context.Context, userID, linkID uint, period string) (*LinkDetail, error) {
	var link model.Link
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	window := PeriodRange(period, time.Now().UTC())

	var periodClicks int64
	err = s.db.WithContext(ctx).Model(&model.Click{}).
		Where("link_id = ? AND timestamp >= ? AND timestamp <= ?", link.ID, window.Start, window.End).
		Count(&periodClicks).Error
	if err != nil {
		return nil, err
	}

	var deviceRows []struct {
		Device string
		Count  int64
	}
	err = s.db.WithContext(ctx).Model(&model.Click{}).
		Select("device, COUNT(*) AS count").
		Where("link_id = ? AND timestamp >= ? AND timestamp <= ?", link.ID, window.Start, window.End).
		Group("device").
		Scan(&deviceRows).Error
	if err != nil {
		return nil, err
	}

	var timestamps []time.Time
	err = s.db.WithContext(ctx).Model(&model.Click{}).
		Where("link_id = ? AND timestamp >= ? AND timestamp <= ?", link.ID, window.Start, window.End).
		Pluck("timestamp", &timestamps).Error
	if err != nil {
		return nil, err
	}

	return &LinkDetail{
		Link: TopLink{
			ID:        link.ID,
			Title:     link.Title,
			ShortCode: link.ShortCode,
			Clicks:    link.Clicks,
			Views:     link.Views,
			Earnings:  link.Earnings,
			Thumbnail: link.Thumbnail,
		},
		PeriodClicks: periodClicks,
		Devices:      deviceStats(deviceRows),
		Daily:        denseSeries(window, timestamps),
	}, nil
}

// countClicks 窗口内用户全部链接的点击数
func (s *Service) countClicks(ctx context.Context, userID uint, window Range) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Click{}).
		Joins("JOIN links ON links.id = clicks.link_id").
		Where("links.user_id = ? AND clicks.timestamp >= ? AND clicks.timestamp <= ?",
			userID, window.Start, window.End).
		Count(&count).Error
	return count, err
}

// denseSeries 在应用层按 UTC 日期分桶并补零，不依赖具体存储的日期函数
func denseSeries(window Range, timestamps []time.Time) []ChartPoint {
	buckets := make(map[string]int64, len(timestamps))
	for _, ts := range timestamps {
		buckets[ts.UTC().Format("2006-01-02")]++
	}

	points := make([]ChartPoint, 0, window.Days())
	day := window.Start.UTC().Truncate(24 * time.Hour)
	end := window.End.UTC()
	for !day.After(end) {
		date := day.Format("2006-01-02")
		n := buckets[date]
		points = append(points, ChartPoint{Date: date, Clicks: n, Views: n})
		day = day.AddDate(0, 0, 1)
	}
	return points
}

// deviceStats 计算设备计数的整数百分比，总量为 0 时记 0
func deviceStats(rows []struct {
	Device string
	Count  int64
}) []DeviceStat {
	var total int64
	for _, r := range rows {
		total += r.Count
	}

	stats := make([]DeviceStat, 0, len(rows))
	for _, r := range rows {
		device := r.Device
		if device == "" {
			device = model.DeviceUnknown
		}
		percentage := 0
		if total > 0 {
			percentage = int(float64(r.Count)/float64(total)*100 + 0.5)
		}
		stats = append(stats, DeviceStat{Device: device, Count: r.Count, Percentage: percentage})
	}
	return stats
}
