package handler

import (
	"errors"
	"net/http"
	"time"

	"linkfolio-platform/internal/clicks"
	"linkfolio-platform/internal/gate"
	"linkfolio-platform/internal/gateway"
	"linkfolio-platform/internal/model"
	"linkfolio-platform/internal/shortcode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LinkHandler 链接管理与公开访问处理器
type LinkHandler struct {
	db            *gorm.DB
	gateway       *gateway.Gateway
	codeGenerator *shortcode.Generator
	frontendURL   string
}

// NewLinkHandler 创建处理器实例
func NewLinkHandler(db *gorm.DB, gw *gateway.Gateway, codeGenerator *shortcode.Generator, frontendURL string) *LinkHandler {
	return &LinkHandler{
		db:            db,
		gateway:       gw,
		codeGenerator: codeGenerator,
		frontendURL:   frontendURL,
	}
}

// requestMeta 从请求中提取点击上报信息
func requestMeta(c *gin.Context) clicks.Meta {
	meta := clicks.Meta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}
	if userID, ok := currentUserID(c); ok {
		meta.UserID = &userID
	}
	return meta
}

// writeGateError 把网关判定错误映射为对应状态码
func writeGateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "链接不存在"})
	case errors.Is(err, gate.ErrUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "链接不可用"})
	case errors.Is(err, gate.ErrLimitReached):
		c.JSON(http.StatusGone, gin.H{"success": false, "error": "链接已达到最大点击次数"})
	default:
		zap.S().Errorf("重定向处理失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器内部错误"})
	}
}

// RedirectToOriginal godoc
// @Summary 短码跳转
// @Description 解析短码并 302 跳转到目标地址，同时记录点击
// @Tags Link
// @Param   code  path  string  true  "短码"
// @Success 302
// @Failure 404 {object} gin.H "链接不存在或不可用"
// @Failure 410 {object} gin.H "链接已达到点击上限"
// @Router /{code} [get]
func (h *LinkHandler) RedirectToOriginal(c *gin.Context) {
	result, err := h.gateway.Resolve(c.Request.Context(), c.Param("code"), requestMeta(c))
	if err != nil {
		writeGateError(c, err)
		return
	}
	c.Redirect(http.StatusFound, result.URL)
}

// AccessPublicLink godoc
// @Summary 公开访问短链接
// @Description 解析短码并返回目标地址与标题，同时记录点击
// @Tags Link
// @Produce  json
// @Param   code  path  string  true  "短码"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "链接不存在或不可用"
// @Failure 410 {object} gin.H "链接已达到点击上限"
// @Router /api/v1/links/public/{code} [get]
func (h *LinkHandler) AccessPublicLink(c *gin.Context) {
	result, err := h.gateway.Resolve(c.Request.Context(), c.Param("code"), requestMeta(c))
	if err != nil {
		writeGateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// CreateLinkRequest 创建链接的请求体
type CreateLinkRequest struct {
	Title                string     `json:"title" binding:"required,max=200" example:"我的主页"`
	URL                  string     `json:"url" binding:"required,url" example:"https://example.com/page"`
	Description          string     `json:"description" binding:"max=1000"`
	Thumbnail            string     `json:"thumbnail"`
	Status               string     `json:"status" binding:"omitempty,oneof=active inactive scheduled"`
	ScheduleStart        *time.Time `json:"schedule_start"`
	ScheduleEnd          *time.Time `json:"schedule_end"`
	LimitedAccessEnabled bool       `json:"limited_access_enabled"`
	MaxClicks            *int64     `json:"max_clicks"`
	IsSubscriberOnly     bool       `json:"is_subscriber_only"`
	AdsEnabled           bool       `json:"ads_enabled"`
}

// CreateLink godoc
// @Summary 创建短链接
// @Description 为当前用户创建一个新的可货币化短链接
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body   CreateLinkRequest  true  "链接信息"
// @Success 201 {object} gin.H "成功响应"
// @Failure 400 {object} gin.H "请求无效"
// @Failure 500 {object} gin.H "服务器内部错误"
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = model.LinkStatusActive
	}

	// 从预生成通道获取短码，这是一个高性能操作
	link := model.Link{
		UserID:               userID,
		Title:                req.Title,
		URL:                  req.URL,
		OriginalURL:          req.URL,
		ShortCode:            h.codeGenerator.GetCode(),
		Description:          req.Description,
		Thumbnail:            req.Thumbnail,
		Status:               status,
		IsActive:             true,
		ScheduleStart:        req.ScheduleStart,
		ScheduleEnd:          req.ScheduleEnd,
		LimitedAccessEnabled: req.LimitedAccessEnabled,
		MaxClicks:            req.MaxClicks,
		IsSubscriberOnly:     req.IsSubscriberOnly,
		AdsEnabled:           req.AdsEnabled,
	}

	if err := h.db.Create(&link).Error; err != nil {
		zap.S().Errorf("创建链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建链接失败，可能是数据库错误或短码冲突"})
		return
	}

	// 用户缓存计数，尽力而为
	go h.db.Model(&model.User{}).Where("id = ?", userID).
		Update("link_count", gorm.Expr("link_count + 1"))

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"data":      link,
		"short_url": link.FullShortURL(h.frontendURL),
	})
}

// GetLinks godoc
// @Summary 链接列表
// @Description 分页获取当前用户的链接，可按状态过滤
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   page    query  int     false  "页码"
// @Param   limit   query  int     false  "每页数量"
// @Param   status  query  string  false  "状态过滤"
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/links [get]
func (h *LinkHandler) GetLinks(c *gin.Context) {
	userID, _ := currentUserID(c)
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	query := h.db.Model(&model.Link{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var links []model.Link
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取链接失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    links,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetRecentLinks godoc
// @Summary 最近创建的链接
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   limit  query  int  false  "数量"
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/links/recent [get]
func (h *LinkHandler) GetRecentLinks(c *gin.Context) {
	userID, _ := currentUserID(c)
	limit := queryInt(c, "limit", 5)

	var links []model.Link
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取链接失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": links})
}

// GetLink godoc
// @Summary 链接详情
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "链接不存在"
// @Router /api/v1/links/{id} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	userID, _ := currentUserID(c)
	linkID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的链接ID"})
		return
	}

	var link model.Link
	if err := h.db.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": link})
}

// UpdateLinkRequest 更新链接的请求体，仅允许白名单字段
type UpdateLinkRequest struct {
	Title                *string    `json:"title" binding:"omitempty,max=200"`
	URL                  *string    `json:"url" binding:"omitempty,url"`
	Description          *string    `json:"description" binding:"omitempty,max=1000"`
	Thumbnail            *string    `json:"thumbnail"`
	Status               *string    `json:"status" binding:"omitempty,oneof=active inactive scheduled"`
	IsActive             *bool      `json:"is_active"`
	ScheduleStart        *time.Time `json:"schedule_start"`
	ScheduleEnd          *time.Time `json:"schedule_end"`
	LimitedAccessEnabled *bool      `json:"limited_access_enabled"`
	MaxClicks            *int64     `json:"max_clicks"`
	IsSubscriberOnly     *bool      `json:"is_subscriber_only"`
	AdsEnabled           *bool      `json:"ads_enabled"`
}

// UpdateLink godoc
// @Summary 更新链接
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path  int                true  "链接ID"
// @Param   link  body  UpdateLinkRequest  true  "更新字段"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "链接不存在"
// @Router /api/v1/links/{id} [put]
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	userID, _ := currentUserID(c)
	linkID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的链接ID"})
		return
	}

	var link model.Link
	if err := h.db.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Thumbnail != nil {
		updates["thumbnail"] = *req.Thumbnail
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ScheduleStart != nil {
		updates["schedule_start"] = *req.ScheduleStart
	}
	if req.ScheduleEnd != nil {
		updates["schedule_end"] = *req.ScheduleEnd
	}
	if req.LimitedAccessEnabled != nil {
		updates["limited_access_enabled"] = *req.LimitedAccessEnabled
	}
	if req.MaxClicks != nil {
		updates["max_clicks"] = *req.MaxClicks
	}
	if req.IsSubscriberOnly != nil {
		updates["is_subscriber_only"] = *req.IsSubscriberOnly
	}
	if req.AdsEnabled != nil {
		updates["ads_enabled"] = *req.AdsEnabled
	}

	if len(updates) > 0 {
		if err := h.db.Model(&link).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新链接失败"})
			return
		}
		h.gateway.Invalidate(c.Request.Context(), link.ShortCode)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": link})
}

// ToggleLink godoc
// @Summary 切换链接软开关
// @Description 翻转 is_active 并同步生命周期状态
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "链接不存在"
// @Router /api/v1/links/{id}/toggle [patch]
func (h *LinkHandler) ToggleLink(c *gin.Context) {
	userID, _ := currentUserID(c)
	linkID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的链接ID"})
		return
	}

	var link model.Link
	if err := h.db.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}

	link.IsActive = !link.IsActive
	if link.IsActive {
		link.Status = model.LinkStatusActive
	} else {
		link.Status = model.LinkStatusInactive
	}

	if err := h.db.Model(&link).Updates(map[string]interface{}{
		"is_active": link.IsActive,
		"status":    link.Status,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "状态更新失败"})
		return
	}

	h.gateway.Invalidate(c.Request.Context(), link.ShortCode)
	c.JSON(http.StatusOK, gin.H{"success": true, "is_active": link.IsActive, "status": link.Status})
}

// DeleteLink godoc
// @Summary 删除链接
// @Description 删除链接并级联清除其全部点击事件
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "链接不存在"
// @Router /api/v1/links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	userID, _ := currentUserID(c)
	linkID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的链接ID"})
		return
	}

	var link model.Link
	if err := h.db.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}

	// 链接与点击事件在同一事务内级联删除
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&link).Error; err != nil {
			return err
		}
		return tx.Where("link_id = ?", link.ID).Delete(&model.Click{}).Error
	})
	if err != nil {
		zap.S().Errorf("删除链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败"})
		return
	}

	h.gateway.Invalidate(c.Request.Context(), link.ShortCode)
	go h.db.Model(&model.User{}).Where("id = ?", userID).
		Update("link_count", gorm.Expr("link_count - 1"))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "删除成功"})
}
