package model

import (
	"time"
)

// 设备分类枚举
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// Click 单次访问事件，写入后不再修改
type Click struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	LinkID    uint      `gorm:"not null;index:idx_clicks_link_ts" json:"link_id"`
	UserID    *uint     `json:"user_id,omitempty"`
	IP        string    `gorm:"size:45" json:"ip"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	Device    string    `gorm:"size:20;default:'unknown'" json:"device"`
	Referrer  string    `gorm:"type:text" json:"referrer"`
	Timestamp time.Time `gorm:"index:idx_clicks_link_ts;index" json:"timestamp"`
}

// TableName 指定表名
func (Click) TableName() string {
	return "clicks"
}
