package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"duo_dates/model"
	"duo_dates/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Notification{},
	))

	return db
}

func newPartnerRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	svc := service.NewPartnerService(db, service.NewNotificationService(db))
	h := NewPartnerHandler(svc, service.NewStatsService(db, nil, 0))

	r := gin.New()
	r.POST("/api/partner/send-request", h.SendRequest)
	r.POST("/api/partner/accept", h.AcceptRequest)
	r.POST("/api/partner/remove", h.RemovePartner)
	r.GET("/api/partner/requests", h.ListRequests)
	return r, db
}

func createUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		UserID:         uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		PasswordHashed: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) (int, string, map[string]interface{}) {
	t.Helper()

	var resp struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code, resp.Message, resp.Data
}

func TestPartnerFlow_HTTP(t *testing.T) {
	r, db := newPartnerRouter(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// 发送请求
	w := doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": alice.UserID,
		"to_username":  "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := parseResponse(t, w)
	notificationID := data["notification_id"].(string)
	require.NotEmpty(t, notificationID)

	// 接收方看到待处理请求
	w = doJSON(t, r, http.MethodGet, "/api/partner/requests?user_id="+bob.UserID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, _, data = parseResponse(t, w)
	requests := data["requests"].([]interface{})
	require.Len(t, requests, 1)
	first := requests[0].(map[string]interface{})
	assert.Equal(t, notificationID, first["notification_id"])
	assert.Equal(t, "alice", first["from_username"])

	// 接受
	w = doJSON(t, r, http.MethodPost, "/api/partner/accept", gin.H{
		"user_id":         bob.UserID,
		"notification_id": notificationID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var aliceRow model.User
	require.NoError(t, db.Where("user_id = ?", alice.UserID).First(&aliceRow).Error)
	require.NotNil(t, aliceRow.PartnerID)
	assert.Equal(t, bob.UserID, *aliceRow.PartnerID)

	// 重复接受 → 400
	w = doJSON(t, r, http.MethodPost, "/api/partner/accept", gin.H{
		"user_id":         bob.UserID,
		"notification_id": notificationID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 解除
	w = doJSON(t, r, http.MethodPost, "/api/partner/remove", gin.H{"user_id": alice.UserID})
	require.Equal(t, http.StatusOK, w.Code)

	// 没有伴侣时再解除 → 400
	w = doJSON(t, r, http.MethodPost, "/api/partner/remove", gin.H{"user_id": alice.UserID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendRequest_HTTPErrors(t *testing.T) {
	r, db := newPartnerRouter(t)
	alice := createUser(t, db, "alice")
	createUser(t, db, "bob")

	// 缺字段 → 400
	w := doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{"to_username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 接收者不存在 → 404
	w = doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": alice.UserID,
		"to_username":  "nobody",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, msg, _ := parseResponse(t, w)
	assert.Equal(t, "receiver not found", msg)

	// 发送者不存在 → 404
	w = doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": uuid.New(),
		"to_username":  "bob",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 自己请求自己 → 400
	w = doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": alice.UserID,
		"to_username":  "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, msg, _ = parseResponse(t, w)
	assert.Equal(t, "you cannot partner with yourself", msg)

	// 重复请求 → 400
	w = doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": alice.UserID,
		"to_username":  "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": alice.UserID,
		"to_username":  "bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptRequest_HTTPErrors(t *testing.T) {
	r, db := newPartnerRouter(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	w := doJSON(t, r, http.MethodPost, "/api/partner/send-request", gin.H{
		"from_user_id": alice.UserID,
		"to_username":  "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := parseResponse(t, w)
	notificationID := data["notification_id"].(string)

	// 请求不存在 → 404
	w = doJSON(t, r, http.MethodPost, "/api/partner/accept", gin.H{
		"user_id":         bob.UserID,
		"notification_id": uuid.New(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, msg, _ := parseResponse(t, w)
	assert.Equal(t, "partner request not found", msg)

	// 不是接收方 → 403
	w = doJSON(t, r, http.MethodPost, "/api/partner/accept", gin.H{
		"user_id":         carol.UserID,
		"notification_id": notificationID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRemovePartner_HTTPErrors(t *testing.T) {
	r, _ := newPartnerRouter(t)

	// 用户不存在 → 404
	w := doJSON(t, r, http.MethodPost, "/api/partner/remove", gin.H{"user_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRequests_HTTPValidation(t *testing.T) {
	r, _ := newPartnerRouter(t)

	// user_id 非法 → 400
	w := doJSON(t, r, http.MethodGet, "/api/partner/requests?user_id=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 没有请求时返回空列表
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/partner/requests?user_id=%s", uuid.New()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := parseResponse(t, w)
	requests := data["requests"].([]interface{})
	assert.Empty(t, requests)
}
