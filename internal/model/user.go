package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户模型 (标准定义)
type User struct {
	gorm.Model
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"` // GORM 默认会映射到 password_hash
	Role         string `gorm:"type:varchar(20);default:'user'"`
	IsActive     bool   `gorm:"default:true"`
	LastLogin    *time.Time

	// 冗余统计计数，由链接管理与重定向网关异步累加
	LinkCount   int64 `gorm:"default:0" json:"link_count"`
	TotalClicks int64 `gorm:"default:0" json:"total_clicks"`
	TotalViews  int64 `gorm:"default:0" json:"total_views"`

	PaymentProviders []PaymentProvider `gorm:"foreignKey:UserID" json:"payment_providers,omitempty"`
}

// PaymentProvider 用户配置的收款渠道
type PaymentProvider struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Provider     string    `gorm:"size:30;not null" json:"provider"`
	AccountEmail string    `gorm:"size:100" json:"account_email"`
	AccountID    string    `gorm:"size:100" json:"account_id"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (PaymentProvider) TableName() string {
	return "payment_providers"
}

// SetPassword 加密并设置密码
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
