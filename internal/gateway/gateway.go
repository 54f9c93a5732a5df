package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"linkfolio-platform/internal/clicks"
	"linkfolio-platform/internal/gate"
	"linkfolio-platform/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	linkCacheKeyPrefix = "link:"
	linkCacheTTL       = 10 * time.Minute
)

// Result 重定向成功的返回载荷
type Result struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Gateway 重定向网关：访问判定 -> 原子计数 -> 事件记录 -> 异步统计
type Gateway struct {
	db       *gorm.DB
	redis    *redis.Client
	recorder *clicks.Recorder
	logger   *zap.SugaredLogger
}

// NewGateway 创建网关实例
func NewGateway(db *gorm.DB, redisClient *redis.Client, recorder *clicks.Recorder, logger *zap.SugaredLogger) *Gateway {
	return &Gateway{
		db:       db,
		redis:    redisClient,
		recorder: recorder,
		logger:   logger.Named("gateway"),
	}
}

// Resolve 处理一次短码访问。
// 计数递增是带上限复核的单条条件 UPDATE，并发竞争由存储层原子性兜底；
// 点击事件在计数步骤放行之后才落库，避免为被拒绝的访问记录事件。
func (g *Gateway) Resolve(ctx context.Context, shortCode string, meta clicks.Meta) (*Result, error) {
	link, err := g.loadLink(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if err := gate.Decide(link, time.Now()); err != nil {
		return nil, err
	}

	if err := g.tryIncrementWithCap(ctx, link); err != nil {
		return nil, err
	}

	// 事件与异步统计失败都不能拦住用户跳转，重试一次后只记日志
	if _, err := g.recorder.Record(link.ID, meta); err != nil {
		if _, err = g.recorder.Record(link.ID, meta); err != nil {
			g.logger.Errorf("点击事件写入失败 link_id=%d: %v", link.ID, err)
		}
	}

	go g.bumpUserStats(link.UserID)
	g.cacheLink(link)

	return &Result{URL: link.URL, Title: link.Title}, nil
}

// tryIncrementWithCap 原子递增 clicks/views，并在同一条语句内复核
// 软开关、状态与点击上限。影响行数为 0 说明并发下条件已不再成立。
// 存储层故障重试一次后不再拦截无上限链接的跳转，只记日志；
// 限量链接的上限只能由这次写入复核，写入失败时保持拒绝。
func (g *Gateway) tryIncrementWithCap(ctx context.Context, link *model.Link) error {
	updates := map[string]interface{}{
		"clicks": gorm.Expr("clicks + 1"),
		"views":  gorm.Expr("views + 1"),
	}

	result := g.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ? AND is_active = ? AND status = ?", link.ID, true, model.LinkStatusActive).
		Where("limited_access_enabled = ? OR max_clicks IS NULL OR clicks < max_clicks", false).
		Updates(updates)

	if result.Error != nil {
		// 存储层故障最多重试一次
		result = g.db.WithContext(ctx).Model(&model.Link{}).
			Where("id = ? AND is_active = ? AND status = ?", link.ID, true, model.LinkStatusActive).
			Where("limited_access_enabled = ? OR max_clicks IS NULL OR clicks < max_clicks", false).
			Updates(updates)
	}
	if result.Error != nil {
		if link.LimitedAccessEnabled && link.MaxClicks != nil {
			return result.Error
		}
		g.logger.Errorf("计数更新失败 link_id=%d: %v", link.ID, result.Error)
		return nil
	}

	if result.RowsAffected == 0 {
		g.invalidate(context.Background(), link.ShortCode)
		if link.LimitedAccessEnabled && link.MaxClicks != nil {
			return gate.ErrLimitReached
		}
		return gate.ErrUnavailable
	}

	link.Clicks++
	link.Views++
	return nil
}

// loadLink 按短码取链接，优先走缓存；计数以数据库为准，缓存只加速查找
func (g *Gateway) loadLink(ctx context.Context, shortCode string) (*model.Link, error) {
	if g.redis != nil {
		cctx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()
		if val, err := g.redis.Get(cctx, linkCacheKeyPrefix+shortCode).Result(); err == nil {
			var cached model.Link
			if json.Unmarshal([]byte(val), &cached) == nil && cached.ID != 0 {
				return &cached, nil
			}
		}
	}

	var link model.Link
	if err := g.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gate.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// cacheLink 访问成功后回填缓存
func (g *Gateway) cacheLink(link *model.Link) {
	if g.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if data, err := json.Marshal(link); err == nil {
		g.redis.Set(ctx, linkCacheKeyPrefix+link.ShortCode, data, linkCacheTTL)
	}
}

// invalidate 链接状态变化后剔除缓存
func (g *Gateway) invalidate(ctx context.Context, shortCode string) {
	if g.redis == nil {
		return
	}
	g.redis.Del(ctx, linkCacheKeyPrefix+shortCode)
}

// Invalidate 供链接管理侧在修改/删除后剔除缓存
func (g *Gateway) Invalidate(ctx context.Context, shortCode string) {
	g.invalidate(ctx, shortCode)
}

// bumpUserStats 外部用户统计协作方：尽力而为，失败只记日志
func (g *Gateway) bumpUserStats(userID uint) {
	err := g.db.Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"total_clicks": gorm.Expr("total_clicks + 1"),
			"total_views":  gorm.Expr("total_views + 1"),
		}).Error
	if err != nil {
		g.logger.Warnf("用户统计更新失败 user_id=%d: %v", userID, err)
	}
}
