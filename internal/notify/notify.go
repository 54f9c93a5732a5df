package notify

import (
	"linkfolio-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service 站内通知协作方。所有投递都是尽力而为，
// 失败只记日志，绝不向调用方传播。
type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewService 创建通知服务
func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger.Named("notify")}
}

// Notify 为用户创建一条站内通知
func (s *Service) Notify(userID uint, notificationType, title, message, actionURL string) {
	notification := model.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		s.logger.Warnf("通知创建失败 user_id=%d type=%s: %v", userID, notificationType, err)
	}
}
