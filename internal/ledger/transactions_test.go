package ledger

import (
	"context"
	"testing"
	"time"

	"linkfolio-platform/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 交错铺入订单与提现：日期上两类事件互相穿插，
// 分页必须基于合并后的时间线而不是单一来源
func seedTimeline(t *testing.T, db *gorm.DB) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// day 0 / 2 / 4：三笔完成订单
	for i, amount := range []float64{10, 20, 30} {
		order := model.Order{
			BuyerID: 99, SellerID: 1,
			ProductName: "电子书", Amount: amount,
			PaymentStatus: model.OrderPaymentCompleted,
		}
		order.CreatedAt = base.AddDate(0, 0, i*2)
		require.NoError(t, db.Create(&order).Error)
	}
	// day 1 / 3：两笔提现
	for i, amount := range []float64{5, 15} {
		payout := model.Payout{
			UserID: 1, Amount: amount,
			Provider: model.ProviderPaypal, Status: model.PayoutStatusPending,
		}
		payout.CreatedAt = base.AddDate(0, 0, i*2+1)
		require.NoError(t, db.Create(&payout).Error)
	}
	// 未完成订单与他人流水不可见
	skipped := model.Order{BuyerID: 99, SellerID: 1, Amount: 999, PaymentStatus: model.OrderPaymentPending}
	require.NoError(t, db.Create(&skipped).Error)
	other := model.Order{BuyerID: 99, SellerID: 2, Amount: 888, PaymentStatus: model.OrderPaymentCompleted}
	require.NoError(t, db.Create(&other).Error)
}

func TestTransactions_MergedOrder(t *testing.T) {
	svc, db := newTestLedger(t)
	seedTimeline(t, db)

	transactions, pagination, err := svc.Transactions(context.Background(), 1, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, transactions, 5)
	assert.Equal(t, int64(5), pagination.Total)

	// 时间降序：order(30) > payout(15) > order(20) > payout(5) > order(10)
	types := make([]string, 0, len(transactions))
	amounts := make([]float64, 0, len(transactions))
	for _, tx := range transactions {
		types = append(types, tx.Type)
		amounts = append(amounts, tx.Amount)
	}
	assert.Equal(t, []string{TransactionEarning, TransactionPayout, TransactionEarning, TransactionPayout, TransactionEarning}, types)
	assert.Equal(t, []float64{30, -15, 20, -5, 10}, amounts)

	for i := 1; i < len(transactions); i++ {
		assert.False(t, transactions[i].Date.After(transactions[i-1].Date), "流水必须按时间降序")
	}
}

// TestTransactions_PageBoundary 页边界跨越两类来源时依然按合并时间线切分
func TestTransactions_PageBoundary(t *testing.T) {
	svc, db := newTestLedger(t)
	seedTimeline(t, db)
	ctx := context.Background()

	page1, pagination, err := svc.Transactions(ctx, 1, 1, 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, 3, pagination.Pages)
	assert.Equal(t, []float64{30, -15}, []float64{page1[0].Amount, page1[1].Amount})

	page2, _, err := svc.Transactions(ctx, 1, 2, 2, "")
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, []float64{20, -5}, []float64{page2[0].Amount, page2[1].Amount})

	page3, _, err := svc.Transactions(ctx, 1, 3, 2, "")
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, 10.0, page3[0].Amount)

	// 越界页返回空切片而非错误
	page4, _, err := svc.Transactions(ctx, 1, 4, 2, "")
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestTransactions_TypeFilter(t *testing.T) {
	svc, db := newTestLedger(t)
	seedTimeline(t, db)
	ctx := context.Background()

	earnings, _, err := svc.Transactions(ctx, 1, 1, 20, TransactionEarning)
	require.NoError(t, err)
	require.Len(t, earnings, 3)
	for _, tx := range earnings {
		assert.Equal(t, TransactionEarning, tx.Type)
		assert.Greater(t, tx.Amount, 0.0)
		assert.Contains(t, tx.Description, "Sale: ")
	}

	payouts, _, err := svc.Transactions(ctx, 1, 1, 20, TransactionPayout)
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	for _, tx := range payouts {
		assert.Equal(t, TransactionPayout, tx.Type)
		assert.Less(t, tx.Amount, 0.0)
		assert.Equal(t, "Payout via paypal", tx.Description)
		assert.Equal(t, model.PayoutStatusPending, tx.Status)
	}
}

func TestListPayouts(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()

	statuses := []string{
		model.PayoutStatusPending, model.PayoutStatusCompleted,
		model.PayoutStatusCompleted, model.PayoutStatusCancelled,
	}
	for i, status := range statuses {
		payout := model.Payout{UserID: 1, Amount: float64(10 * (i + 1)), Provider: model.ProviderStripe, Status: status}
		payout.CreatedAt = time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Create(&payout).Error)
	}

	all, pagination, err := svc.ListPayouts(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, int64(4), pagination.Total)
	// created_at 降序
	assert.Equal(t, 40.0, all[0].Amount)

	completed, pagination, err := svc.ListPayouts(ctx, 1, 1, 10, model.PayoutStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 2)
	assert.Equal(t, int64(2), pagination.Total)

	// 分页
	paged, pagination, err := svc.ListPayouts(ctx, 1, 2, 3, "")
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	assert.Equal(t, 2, pagination.Pages)
}
