package ledger

import (
	"context"
	"math"
	"sort"
	"time"

	"linkfolio-platform/internal/model"
)

// 交易类型判别值
const (
	TransactionEarning = "earning"
	TransactionPayout  = "payout"
)

// Transaction 流水条目：收入为正数，提现为负数
type Transaction struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty"`
	Date        time.Time `json:"date"`
}

// Pagination 分页信息
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination 构造分页信息
func NewPagination(total int64, page, limit int) *Pagination {
	return &Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// Transactions 合并收入与提现两类异构事件为统一流水。
// 两路结果独立取出后拼接，必须对合并后的整体重新排序再分页，
// 否则页边界会落错。
func (s *Service) Transactions(ctx context.Context, userID uint, page, limit int, typeFilter string) ([]Transaction, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var transactions []Transaction

	if typeFilter == "" || typeFilter == TransactionEarning {
		var orders []model.Order
		err := s.db.WithContext(ctx).
			Where("seller_id = ? AND payment_status = ?", userID, model.OrderPaymentCompleted).
			Find(&orders).Error
		if err != nil {
			return nil, nil, err
		}
		for _, o := range orders {
			name := o.ProductName
			if name == "" {
				name = "Product"
			}
			transactions = append(transactions, Transaction{
				ID:          o.ID,
				Type:        TransactionEarning,
				Amount:      o.Amount,
				Description: "Sale: " + name,
				Date:        o.CreatedAt,
			})
		}
	}

	if typeFilter == "" || typeFilter == TransactionPayout {
		var payouts []model.Payout
		err := s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Find(&payouts).Error
		if err != nil {
			return nil, nil, err
		}
		for _, p := range payouts {
			transactions = append(transactions, Transaction{
				ID:          p.ID,
				Type:        TransactionPayout,
				Amount:      -p.Amount,
				Description: "Payout via " + p.Provider,
				Status:      p.Status,
				Date:        p.CreatedAt,
			})
		}
	}

	sortTransactionsDesc(transactions)
	pageItems := paginateTransactions(transactions, page, limit)

	return pageItems, NewPagination(int64(len(transactions)), page, limit), nil
}

// sortTransactionsDesc 按发生时间降序排序，与来源顺序无关
func sortTransactionsDesc(transactions []Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
}

// paginateTransactions 对已排序的整体做切片分页
func paginateTransactions(transactions []Transaction, page, limit int) []Transaction {
	start := (page - 1) * limit
	if start >= len(transactions) {
		return []Transaction{}
	}
	end := start + limit
	if end > len(transactions) {
		end = len(transactions)
	}
	return transactions[start:end]
}
