package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkfolio-platform/internal/clicks"
	"linkfolio-platform/internal/gateway"
	"linkfolio-platform/internal/ledger"
	"linkfolio-platform/internal/model"
	"linkfolio-platform/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB 每个测试使用独立命名的内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=10000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "无法连接到内存数据库")
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Link{}, &model.Click{},
		&model.Order{}, &model.Payout{}, &model.PaymentProvider{}, &model.Notification{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// fakeAuth 模拟认证中间件，直接注入用户ID
func fakeAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

// newLinkRouter 挂载公开访问与跳转路由，Redis 缓存关闭
func newLinkRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	recorder := clicks.NewRecorder(db, sugar)
	gw := gateway.NewGateway(db, nil, recorder, sugar)

	h := NewLinkHandler(db, gw, nil, "http://localhost:5173")

	router := gin.New()
	router.GET("/l/:code", h.RedirectToOriginal)
	router.GET("/api/v1/links/public/:code", h.AccessPublicLink)
	return router
}

func TestAccessPublicLink(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Link{
		UserID: 1, Title: "我的主页", URL: "https://example.com/page",
		ShortCode: "abc12345", Status: model.LinkStatusActive, IsActive: true,
	}).Error)

	router := newLinkRouter(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/links/public/abc12345", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://example.com/page", resp.Data.URL)
	assert.Equal(t, "我的主页", resp.Data.Title)

	// 点击计入加一，并落一条事件
	var link model.Link
	require.NoError(t, db.Where("short_code = ?", "abc12345").First(&link).Error)
	assert.Equal(t, int64(1), link.Clicks)

	var click model.Click
	require.NoError(t, db.First(&click).Error)
	assert.Equal(t, model.DeviceMobile, click.Device)
}

func TestAccessPublicLink_NotFound(t *testing.T) {
	db := newTestDB(t)
	router := newLinkRouter(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links/public/missing1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccessPublicLink_Inactive(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Link{
		UserID: 1, Title: "停用链接", URL: "https://example.com",
		ShortCode: "off12345", Status: model.LinkStatusInactive, IsActive: false,
	}).Error)

	router := newLinkRouter(t, db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links/public/off12345", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 拒绝不产生点击事件
	var count int64
	db.Model(&model.Click{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAccessPublicLink_LimitReached(t *testing.T) {
	db := newTestDB(t)
	max := int64(3)
	require.NoError(t, db.Create(&model.Link{
		UserID: 1, Title: "限量链接", URL: "https://example.com",
		ShortCode: "cap12345", Status: model.LinkStatusActive, IsActive: true,
		LimitedAccessEnabled: true, MaxClicks: &max, Clicks: 3,
	}).Error)

	router := newLinkRouter(t, db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links/public/cap12345", nil))
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestRedirectToOriginal(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Link{
		UserID: 1, Title: "跳转", URL: "https://example.com/target",
		ShortCode: "go123456", Status: model.LinkStatusActive, IsActive: true,
	}).Error)

	router := newLinkRouter(t, db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/l/go123456", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/target", w.Header().Get("Location"))
}

// newPayoutRouter 挂载提现相关路由，认证由 fakeAuth 注入
func newPayoutRouter(t *testing.T, db *gorm.DB, userID uint) *gin.Engine {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	svc := ledger.NewService(db, 10, "USD", notify.NewService(db, sugar), sugar)
	h := NewPayoutHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1", fakeAuth(userID))
	group.GET("/payouts", h.GetPayouts)
	group.POST("/payouts", h.RequestPayout)
	group.GET("/payouts/stats", h.GetPayoutStats)
	group.GET("/payouts/transactions", h.GetTransactions)
	group.GET("/payouts/:id", h.GetPayout)
	group.PUT("/payouts/:id/cancel", h.CancelPayout)
	return router
}

func TestRequestPayoutEndpoint(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.PaymentProvider{
		UserID: 1, Provider: model.ProviderPaypal, AccountEmail: "creator@example.com", IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&model.Order{
		BuyerID: 99, SellerID: 1, ProductName: "课程", Amount: 100,
		PaymentStatus: model.OrderPaymentCompleted,
	}).Error)

	router := newPayoutRouter(t, db, 1)

	body, _ := json.Marshal(gin.H{"amount": 25.0, "provider": "paypal"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool         `json:"success"`
		Data    model.Payout `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, model.PayoutStatusPending, resp.Data.Status)
	assert.NotEmpty(t, resp.Data.TransactionID)
}

func TestRequestPayoutEndpoint_Rejected(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.PaymentProvider{
		UserID: 1, Provider: model.ProviderPaypal, IsActive: true,
	}).Error)
	// 无收入，余额为 0

	router := newPayoutRouter(t, db, 1)

	body, _ := json.Marshal(gin.H{"amount": 25.0, "provider": "paypal"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "可用余额不足")
}

func TestCancelPayoutEndpoint_InvalidState(t *testing.T) {
	db := newTestDB(t)
	completed := model.Payout{
		UserID: 1, Amount: 20, Provider: model.ProviderPaypal, Status: model.PayoutStatusCompleted,
	}
	require.NoError(t, db.Create(&completed).Error)

	router := newPayoutRouter(t, db, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/api/v1/payouts/%d/cancel", completed.ID), nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPayoutEndpoint_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	other := model.Payout{
		UserID: 2, Amount: 20, Provider: model.ProviderPaypal, Status: model.PayoutStatusPending,
	}
	require.NoError(t, db.Create(&other).Error)

	// 用户 1 访问用户 2 的提现记录
	router := newPayoutRouter(t, db, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/payouts/%d", other.ID), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPayoutStatsEndpoint(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Order{
		BuyerID: 99, SellerID: 1, Amount: 60, PaymentStatus: model.OrderPaymentCompleted,
	}).Error)

	router := newPayoutRouter(t, db, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payouts/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ledger.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 60.0, resp.Data.TotalEarnings, 0.001)
	assert.InDelta(t, 60.0, resp.Data.AvailableBalance, 0.001)
}
