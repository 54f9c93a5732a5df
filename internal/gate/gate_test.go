package gate

import (
	"testing"
	"time"

	"linkfolio-platform/internal/model"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int64) *int64 {
	return &v
}

// TestDecide_Order 规则按固定顺序求值，首个拒绝生效
func TestDecide_Order(t *testing.T) {
	now := time.Now()

	// 软开关关闭且点击超限：应先报不可用
	link := &model.Link{
		Status:               model.LinkStatusInactive,
		IsActive:             false,
		LimitedAccessEnabled: true,
		MaxClicks:            intPtr(1),
		Clicks:               5,
	}
	assert.ErrorIs(t, Decide(link, now), ErrUnavailable)
}

func TestDecide(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		link *model.Link
		want error
	}{
		{
			name: "nil 链接视为不存在",
			link: nil,
			want: ErrNotFound,
		},
		{
			name: "活跃链接放行",
			link: &model.Link{Status: model.LinkStatusActive, IsActive: true},
			want: nil,
		},
		{
			name: "软开关关闭",
			link: &model.Link{Status: model.LinkStatusActive, IsActive: false},
			want: ErrUnavailable,
		},
		{
			name: "状态为 inactive",
			link: &model.Link{Status: model.LinkStatusInactive, IsActive: true},
			want: ErrUnavailable,
		},
		{
			name: "状态为 scheduled",
			link: &model.Link{Status: model.LinkStatusScheduled, IsActive: true},
			want: ErrUnavailable,
		},
		{
			name: "点击达到上限",
			link: &model.Link{
				Status: model.LinkStatusActive, IsActive: true,
				LimitedAccessEnabled: true, MaxClicks: intPtr(10), Clicks: 10,
			},
			want: ErrLimitReached,
		},
		{
			name: "点击未达上限",
			link: &model.Link{
				Status: model.LinkStatusActive, IsActive: true,
				LimitedAccessEnabled: true, MaxClicks: intPtr(10), Clicks: 9,
			},
			want: nil,
		},
		{
			name: "限量开启但未设上限",
			link: &model.Link{
				Status: model.LinkStatusActive, IsActive: true,
				LimitedAccessEnabled: true, Clicks: 100,
			},
			want: nil,
		},
		{
			name: "限量未开启时上限不生效",
			link: &model.Link{
				Status: model.LinkStatusActive, IsActive: true,
				MaxClicks: intPtr(1), Clicks: 100,
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decide(tt.link, now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

// TestDecide_Pure 判定不得修改链接本身
func TestDecide_Pure(t *testing.T) {
	link := &model.Link{
		Status: model.LinkStatusActive, IsActive: true,
		LimitedAccessEnabled: true, MaxClicks: intPtr(3), Clicks: 1,
	}
	before := *link
	_ = Decide(link, time.Now())
	assert.Equal(t, before, *link)
}
