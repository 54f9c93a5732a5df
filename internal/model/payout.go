package model

import (
	"time"
)

// 提现状态枚举：completed / failed 为终态
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
)

// 支持的收款渠道
const (
	ProviderStripe       = "stripe"
	ProviderPaypal       = "paypal"
	ProviderRazorpay     = "razorpay"
	ProviderBankTransfer = "bank_transfer"
)

// Payout 提现申请
type Payout struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        uint       `gorm:"not null;index:idx_payouts_user_status" json:"user_id"`
	Amount        float64    `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"size:10;default:'USD'" json:"currency"`
	Provider      string     `gorm:"size:30;not null" json:"provider"`
	Status        string     `gorm:"size:20;default:'pending';index:idx_payouts_user_status" json:"status"`
	AccountEmail  string     `gorm:"size:100" json:"account_email"`
	AccountID     string     `gorm:"size:100" json:"account_id"`
	TransactionID string     `gorm:"size:64" json:"transaction_id"`
	FailureReason string     `gorm:"size:255" json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}

// Reserved 判断该提现是否仍占用可用余额
func (p *Payout) Reserved() bool {
	switch p.Status {
	case PayoutStatusPending, PayoutStatusProcessing, PayoutStatusCompleted:
		return true
	}
	return false
}

// ValidProvider 校验收款渠道取值
func ValidProvider(provider string) bool {
	switch provider {
	case ProviderStripe, ProviderPaypal, ProviderRazorpay, ProviderBankTransfer:
		return true
	}
	return false
}
