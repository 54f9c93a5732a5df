package gate

import (
	"errors"
	"time"

	"linkfolio-platform/internal/model"
)

// 访问判定错误，由 HTTP 层映射为对应状态码
var (
	ErrNotFound     = errors.New("链接不存在")
	ErrUnavailable  = errors.New("链接不可用")
	ErrLimitReached = errors.New("链接已达到最大点击次数")
)

// Rule 单条访问规则，返回 nil 表示放行
type Rule func(link *model.Link, now time.Time) error

// 默认规则，按固定顺序求值，首个拒绝即生效。
// 定时窗口与订阅专享目前仅为声明字段，未纳入判定。
var defaultRules = []Rule{
	ruleAvailable,
	ruleClickCap,
}

// Decide 纯函数判定链接当前是否可被访问，不产生任何副作用
func Decide(link *model.Link, now time.Time) error {
	if link == nil {
		return ErrNotFound
	}
	for _, rule := range defaultRules {
		if err := rule(link, now); err != nil {
			return err
		}
	}
	return nil
}

// ruleAvailable 软开关与生命周期状态
func ruleAvailable(link *model.Link, _ time.Time) error {
	if !link.IsActive || link.Status != model.LinkStatusActive {
		return ErrUnavailable
	}
	return nil
}

// ruleClickCap 限量访问：点击数达到上限即拒绝
func ruleClickCap(link *model.Link, _ time.Time) error {
	if link.CapReached() {
		return ErrLimitReached
	}
	return nil
}
