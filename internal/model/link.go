package model

import (
	"time"
)

// 链接状态枚举
const (
	LinkStatusActive    = "active"
	LinkStatusInactive  = "inactive"
	LinkStatusScheduled = "scheduled"
)

// Link 可货币化短链接模型
type Link struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	URL         string `gorm:"type:text;not null" json:"url"`
	OriginalURL string `gorm:"type:text" json:"original_url"`
	ShortCode   string `gorm:"size:10;uniqueIndex;not null" json:"short_code"`
	Description string `gorm:"size:1000" json:"description"`
	Thumbnail   string `gorm:"type:text" json:"thumbnail,omitempty"`

	// 状态：status 为生命周期状态，is_active 为独立的软开关
	Status   string `gorm:"size:20;default:'active';index" json:"status"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// 定时上线窗口（声明字段，访问网关暂不参与判定）
	ScheduleStart *time.Time `json:"schedule_start,omitempty"`
	ScheduleEnd   *time.Time `json:"schedule_end,omitempty"`

	// 访问控制
	LimitedAccessEnabled bool   `gorm:"default:false" json:"limited_access_enabled"`
	MaxClicks            *int64 `json:"max_clicks,omitempty"`
	IsSubscriberOnly     bool   `gorm:"default:false" json:"is_subscriber_only"`

	// 货币化
	AdsEnabled bool `gorm:"default:false" json:"ads_enabled"`

	// 统计计数：只增不减，clicks/views 仅由重定向网关写入
	Clicks   int64   `gorm:"default:0" json:"clicks"`
	Views    int64   `gorm:"default:0" json:"views"`
	Earnings float64 `gorm:"default:0" json:"earnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// CapReached 判断点击上限是否已经用尽
func (l *Link) CapReached() bool {
	return l.LimitedAccessEnabled && l.MaxClicks != nil && l.Clicks >= *l.MaxClicks
}

// FullShortURL 拼接面向用户展示的完整短链接
func (l *Link) FullShortURL(frontendURL string) string {
	return frontendURL + "/l/" + l.ShortCode
}
