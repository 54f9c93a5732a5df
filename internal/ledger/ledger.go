package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"linkfolio-platform/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 台账错误，由 HTTP 层映射为对应状态码
var (
	ErrPayoutNotFound      = errors.New("提现记录不存在")
	ErrNoProvider          = errors.New("收款渠道未配置或已停用")
	ErrInsufficientBalance = errors.New("可用余额不足")
	ErrBelowMinimum        = errors.New("低于最低提现金额")
	ErrInvalidState        = errors.New("只能取消待处理的提现")
)

// Notifier 创作者通知协作方，尽力投递
type Notifier interface {
	Notify(userID uint, notificationType, title, message, actionURL string)
}

// Stats 余额总览
type Stats struct {
	TotalEarnings    float64 `json:"total_earnings"`
	TotalPaidOut     float64 `json:"total_paid_out"`
	PendingAmount    float64 `json:"pending_amount"`
	AvailableBalance float64 `json:"available_balance"`
}

// Service 收益台账：从完成订单与提现事件对账出可用余额，
// 并保证同一笔收入不会被并发提现重复占用。
type Service struct {
	db            *gorm.DB
	minimumPayout float64
	currency      string
	notifier      Notifier
	logger        *zap.SugaredLogger

	// 同一用户的提现创建/取消需要互相串行
	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
}

// NewService 创建台账服务，最低提现额由配置显式注入
func NewService(db *gorm.DB, minimumPayout float64, currency string, notifier Notifier, logger *zap.SugaredLogger) *Service {
	return &Service{
		db:            db,
		minimumPayout: minimumPayout,
		currency:      currency,
		notifier:      notifier,
		logger:        logger.Named("ledger"),
		userLocks:     make(map[uint]*sync.Mutex),
	}
}

// lockUser 取出（或建立）该用户的提现锁。
// 锁表随出现过的用户单调增长，不做回收：每个条目只占一个
// 互斥量，进程内规模下常驻内存可以接受。
func (s *Service) lockUser(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// AvailableBalance 可用余额 = 已完成订单收入 - 非失败/非取消提现占用
func (s *Service) AvailableBalance(ctx context.Context, userID uint) (float64, error) {
	earnings, err := s.totalEarnings(ctx, userID)
	if err != nil {
		return 0, err
	}
	reserved, err := s.sumPayouts(ctx, userID,
		model.PayoutStatusPending, model.PayoutStatusProcessing, model.PayoutStatusCompleted)
	if err != nil {
		return 0, err
	}
	return earnings - reserved, nil
}

// RequestPayout 创建提现申请。
// 余额校验已把 pending/processing 的申请计入占用，
// 叠加每用户锁后，并发申请无法共同超出累计收入。
func (s *Service) RequestPayout(ctx context.Context, userID uint, amount float64, provider string) (*model.Payout, error) {
	account, err := s.activeProvider(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	balance, err := s.AvailableBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, ErrInsufficientBalance
	}
	if amount < s.minimumPayout {
		return nil, ErrBelowMinimum
	}

	payout := model.Payout{
		UserID:        userID,
		Amount:        amount,
		Currency:      s.currency,
		Provider:      provider,
		Status:        model.PayoutStatusPending,
		AccountEmail:  account.AccountEmail,
		AccountID:     account.AccountID,
		TransactionID: uuid.NewString(),
	}
	if err := s.db.WithContext(ctx).Create(&payout).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(userID, model.NotificationTypePayout,
			"提现申请已提交",
			fmt.Sprintf("您申请提现 $%.2f，正在等待处理", amount),
			"/payments")
	}

	return &payout, nil
}

// CancelPayout 取消提现，仅允许 pending 状态。
// 取消后该笔金额不再计入占用，余额随之恢复。
func (s *Service) CancelPayout(ctx context.Context, userID, payoutID uint) (*model.Payout, error) {
	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	var payout model.Payout
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", payoutID, userID).
		First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}

	// 状态复核下沉到 UPDATE 的 WHERE 中，防止并发状态迁移后误取消
	result := s.db.WithContext(ctx).Model(&model.Payout{}).
		Where("id = ? AND status = ?", payout.ID, model.PayoutStatusPending).
		Update("status", model.PayoutStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	payout.Status = model.PayoutStatusCancelled
	return &payout, nil
}

// GetPayout 查询单条提现
func (s *Service) GetPayout(ctx context.Context, userID, payoutID uint) (*model.Payout, error) {
	var payout model.Payout
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", payoutID, userID).
		First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

// ListPayouts 分页查询提现历史，可按状态过滤
func (s *Service) ListPayouts(ctx context.Context, userID uint, page, limit int, status string) ([]model.Payout, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&model.Payout{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var payouts []model.Payout
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payouts).Error
	if err != nil {
		return nil, nil, err
	}

	return payouts, NewPagination(total, page, limit), nil
}

// Stats 余额总览：累计收入 / 已到账 / 处理中占用 / 可用余额
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	earnings, err := s.totalEarnings(ctx, userID)
	if err != nil {
		return nil, err
	}
	paidOut, err := s.sumPayouts(ctx, userID, model.PayoutStatusCompleted)
	if err != nil {
		return nil, err
	}
	pending, err := s.sumPayouts(ctx, userID, model.PayoutStatusPending, model.PayoutStatusProcessing)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalEarnings:    earnings,
		TotalPaidOut:     paidOut,
		PendingAmount:    pending,
		AvailableBalance: earnings - paidOut - pending,
	}, nil
}

// activeProvider 取用户已启用的收款渠道
func (s *Service) activeProvider(ctx context.Context, userID uint, provider string) (*model.PaymentProvider, error) {
	if !model.ValidProvider(provider) {
		return nil, ErrNoProvider
	}
	var account model.PaymentProvider
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND is_active = ?", userID, provider, true).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoProvider
		}
		return nil, err
	}
	return &account, nil
}

// totalEarnings 已完成订单的累计收入
func (s *Service) totalEarnings(ctx context.Context, userID uint) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("seller_id = ? AND payment_status = ?", userID, model.OrderPaymentCompleted).
		Scan(&total).Error
	return total, err
}

// sumPayouts 指定状态集合的提现金额之和
func (s *Service) sumPayouts(ctx context.Context, userID uint, statuses ...string) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&model.Payout{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status IN ?", userID, statuses).
		Scan(&total).Error
	return total, err
}
