package model

import (
	"time"
)

// 订单支付状态枚举
const (
	OrderPaymentPending   = "pending"
	OrderPaymentCompleted = "completed"
	OrderPaymentFailed    = "failed"
	OrderPaymentRefunded  = "refunded"
)

// Order 已成交订单，completed 状态的订单即创作者的收入事件
type Order struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	BuyerID       uint      `gorm:"not null;index" json:"buyer_id"`
	SellerID      uint      `gorm:"not null;index" json:"seller_id"`
	ProductName   string    `gorm:"size:200" json:"product_name"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"size:10;default:'USD'" json:"currency"`
	PaymentStatus string    `gorm:"size:20;default:'pending';index" json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
