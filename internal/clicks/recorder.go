package clicks

import (
	"time"

	"linkfolio-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Meta 一次重定向请求携带的上报信息
type Meta struct {
	UserID    *uint
	IP        string
	UserAgent string
	Referrer  string
}

// Recorder 点击事件记录器，只负责追加事件，不触碰链接计数
type Recorder struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewRecorder 创建记录器实例
func NewRecorder(db *gorm.DB, logger *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, logger: logger.Named("clicks")}
}

// Record 为链接追加一条点击事件
func (r *Recorder) Record(linkID uint, meta Meta) (*model.Click, error) {
	click := model.Click{
		LinkID:    linkID,
		UserID:    meta.UserID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Device:    DetectDevice(meta.UserAgent),
		Referrer:  meta.Referrer,
		Timestamp: time.Now().UTC(),
	}
	if err := r.db.Create(&click).Error; err != nil {
		return nil, err
	}
	return &click, nil
}

// PurgeOlderThan 清理滚动留存窗口之外的历史事件
func (r *Recorder) PurgeOlderThan(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result := r.db.Where("timestamp < ?", cutoff).Delete(&model.Click{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		r.logger.Infof("已清理 %d 条过期点击事件", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
