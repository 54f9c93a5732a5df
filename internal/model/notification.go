package model

import (
	"time"
)

// 通知类型枚举
const (
	NotificationTypePayout = "payout"
	NotificationTypeSale   = "sale"
	NotificationTypeSystem = "system"
)

// Notification 站内通知，尽力投递，失败不影响主流程
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"size:500" json:"message"`
	ActionURL string    `gorm:"size:255" json:"action_url"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
