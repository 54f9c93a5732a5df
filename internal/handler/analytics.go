package handler

import (
	"errors"
	"net/http"

	"linkfolio-platform/internal/analytics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsHandler 分析查询处理器，只读
type AnalyticsHandler struct {
	service *analytics.Service
}

// NewAnalyticsHandler 创建处理器实例
func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetInsights godoc
// @Summary 仪表盘总览
// @Description 生命周期累计与指定区间的点击环比
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Param   period  query  string  false  "统计区间"  Enums(7d, 30d, 90d, 1y, all)
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/analytics/insights [get]
func (h *AnalyticsHandler) GetInsights(c *gin.Context) {
	userID, _ := currentUserID(c)
	insights, err := h.service.Insights(c.Request.Context(), userID, c.DefaultQuery("period", "30d"))
	if err != nil {
		zap.S().Errorf("获取总览失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": insights})
}

// GetTopLinks godoc
// @Summary 点击量榜单
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Param   limit  query  int  false  "榜单长度"
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/analytics/top-links [get]
func (h *AnalyticsHandler) GetTopLinks(c *gin.Context) {
	userID, _ := currentUserID(c)
	links, err := h.service.TopLinks(c.Request.Context(), userID, queryInt(c, "limit", 5))
	if err != nil {
		zap.S().Errorf("获取榜单失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": links})
}

// GetChartData godoc
// @Summary 按天点击曲线
// @Description 区间内逐日曲线，空档日期补零
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Param   period  query  string  false  "统计区间"  Enums(7d, 30d, 90d, 1y, all)
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/analytics/chart [get]
func (h *AnalyticsHandler) GetChartData(c *gin.Context) {
	userID, _ := currentUserID(c)
	points, err := h.service.Chart(c.Request.Context(), userID, c.DefaultQuery("period", "30d"))
	if err != nil {
		zap.S().Errorf("获取曲线失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": points})
}

// GetDeviceAnalytics godoc
// @Summary 设备分布
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/analytics/devices [get]
func (h *AnalyticsHandler) GetDeviceAnalytics(c *gin.Context) {
	userID, _ := currentUserID(c)
	stats, err := h.service.Devices(c.Request.Context(), userID)
	if err != nil {
		zap.S().Errorf("获取设备分布失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GetLinkAnalytics godoc
// @Summary 单链接分析
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Param   id      path   int     true   "链接ID"
// @Param   period  query  string  false  "统计区间"  Enums(7d, 30d, 90d, 1y, all)
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "链接不存在"
// @Router /api/v1/analytics/links/{id} [get]
func (h *AnalyticsHandler) GetLinkAnalytics(c *gin.Context) {
	userID, _ := currentUserID(c)
	linkID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的链接ID"})
		return
	}

	detail, err := h.service.LinkAnalytics(c.Request.Context(), userID, linkID, c.DefaultQuery("period", "30d"))
	if err != nil {
		if errors.Is(err, analytics.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
			return
		}
		zap.S().Errorf("获取链接分析失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}
