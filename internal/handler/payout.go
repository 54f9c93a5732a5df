package handler

import (
	"errors"
	"net/http"

	"linkfolio-platform/internal/ledger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PayoutHandler 提现与流水处理器
type PayoutHandler struct {
	service *ledger.Service
}

// NewPayoutHandler 创建处理器实例
func NewPayoutHandler(service *ledger.Service) *PayoutHandler {
	return &PayoutHandler{service: service}
}

// writeLedgerError 台账错误映射：拒绝即拒绝，绝不留下需要客户端重试的模糊状态
func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrPayoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, ledger.ErrNoProvider),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrBelowMinimum),
		errors.Is(err, ledger.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		zap.S().Errorf("台账操作失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器内部错误"})
	}
}

// GetPayouts godoc
// @Summary 提现历史
// @Tags Payout
// @Security ApiKeyAuth
// @Produce  json
// @Param   page    query  int     false  "页码"
// @Param   limit   query  int     false  "每页数量"
// @Param   status  query  string  false  "状态过滤"
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/payouts [get]
func (h *PayoutHandler) GetPayouts(c *gin.Context) {
	userID, _ := currentUserID(c)
	payouts, pagination, err := h.service.ListPayouts(c.Request.Context(), userID,
		queryInt(c, "page", 1), queryInt(c, "limit", 10), c.Query("status"))
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       gin.H{"payouts": payouts, "pagination": pagination},
	})
}

// GetPayout godoc
// @Summary 提现详情
// @Tags Payout
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "提现ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 404 {object} gin.H "提现记录不存在"
// @Router /api/v1/payouts/{id} [get]
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	userID, _ := currentUserID(c)
	payoutID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的提现ID"})
		return
	}

	payout, err := h.service.GetPayout(c.Request.Context(), userID, payoutID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payout})
}

// RequestPayoutRequest 提现申请的请求体
type RequestPayoutRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"25.00"`
	Provider string  `json:"provider" binding:"required" example:"paypal"`
}

// RequestPayout godoc
// @Summary 发起提现
// @Description 校验收款渠道、可用余额与最低提现额后创建待处理提现
// @Tags Payout
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   payout  body  RequestPayoutRequest  true  "提现信息"
// @Success 201 {object} gin.H "成功响应"
// @Failure 400 {object} gin.H "余额不足、低于下限或渠道未配置"
// @Router /api/v1/payouts [post]
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	payout, err := h.service.RequestPayout(c.Request.Context(), userID, req.Amount, req.Provider)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": payout})
}

// CancelPayout godoc
// @Summary 取消提现
// @Description 仅允许取消 pending 状态的提现，取消后余额随之恢复
// @Tags Payout
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "提现ID"
// @Success 200 {object} gin.H "成功响应"
// @Failure 400 {object} gin.H "状态不允许取消"
// @Failure 404 {object} gin.H "提现记录不存在"
// @Router /api/v1/payouts/{id}/cancel [put]
func (h *PayoutHandler) CancelPayout(c *gin.Context) {
	userID, _ := currentUserID(c)
	payoutID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的提现ID"})
		return
	}

	payout, err := h.service.CancelPayout(c.Request.Context(), userID, payoutID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payout})
}

// GetPayoutStats godoc
// @Summary 余额总览
// @Tags Payout
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} ledger.Stats "成功响应"
// @Router /api/v1/payouts/stats [get]
func (h *PayoutHandler) GetPayoutStats(c *gin.Context) {
	userID, _ := currentUserID(c)
	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GetTransactions godoc
// @Summary 交易流水
// @Description 收入与提现合并后的统一流水，按时间降序分页
// @Tags Payout
// @Security ApiKeyAuth
// @Produce  json
// @Param   page   query  int     false  "页码"
// @Param   limit  query  int     false  "每页数量"
// @Param   type   query  string  false  "类型过滤"  Enums(earning, payout)
// @Success 200 {object} gin.H "成功响应"
// @Router /api/v1/payouts/transactions [get]
func (h *PayoutHandler) GetTransactions(c *gin.Context) {
	userID, _ := currentUserID(c)
	transactions, pagination, err := h.service.Transactions(c.Request.Context(), userID,
		queryInt(c, "page", 1), queryInt(c, "limit", 20), c.Query("type"))
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"transactions": transactions, "pagination": pagination},
	})
}
