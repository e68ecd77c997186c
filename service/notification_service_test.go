package service

import (
	"encoding/json"
	"testing"

	"duo_dates/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_DefaultEnabled(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	// 没有资料行，默认开启
	notif, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	require.NotNil(t, notif)
	assert.NotEqual(t, uuid.Nil, notif.NotificationID)
	assert.False(t, notif.ReadStatus)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(notif.Message), &payload))
	assert.Equal(t, "hello", payload["text"])
}

func TestSend_SuppressedWhenDisabled(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	profile := createTestProfile(t, db, alice.UserID, "PRIVATE")
	disabled := false
	require.NoError(t, db.Model(profile).Update("notifications_enabled", &disabled).Error)

	// 开关关闭：静默跳过，不算错误
	notif, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	assert.Nil(t, notif)

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Where("user_id = ?", alice.UserID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSend_NullSettingMeansEnabled(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	profile := createTestProfile(t, db, alice.UserID, "PRIVATE")
	require.NoError(t, db.Model(profile).Update("notifications_enabled", nil).Error)

	notif, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	assert.NotNil(t, notif)
}

func TestGetNotifications_UnreadOnlyAndCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	first, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "one"})
	require.NoError(t, err)
	_, err = svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "two"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(alice.UserID, first.NotificationID))

	all, unread, err := svc.GetNotifications(alice.UserID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 1, unread)

	unreadOnly, unread, err := svc.GetNotifications(alice.UserID, true)
	require.NoError(t, err)
	require.Len(t, unreadOnly, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, "two", unreadOnly[0].Message["text"])
}

func TestGetNotifications_NonJSONMessage(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	// 历史纯文本数据
	_, err := svc.Create(alice.UserID, model.NotifTypeGeneral, "plain text message")
	require.NoError(t, err)

	views, _, err := svc.GetNotifications(alice.UserID, false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "plain text message", views[0].Message["text"])
}

func TestMarkAsRead_Ownership(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	notif, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hi"})
	require.NoError(t, err)

	// 别人的通知标不了
	err = svc.MarkAsRead(bob.UserID, notif.NotificationID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, svc.MarkAsRead(alice.UserID, notif.NotificationID))

	count, err := svc.GetUnreadCount(alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkAllAsRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	for i := 0; i < 3; i++ {
		_, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "n"})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllAsRead(alice.UserID))

	count, err := svc.GetUnreadCount(alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDelete_Ownership(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	notif, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hi"})
	require.NoError(t, err)

	err = svc.Delete(bob.UserID, notif.NotificationID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, svc.Delete(alice.UserID, notif.NotificationID))

	err = svc.Delete(alice.UserID, notif.NotificationID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestUpdateNotificationsEnabled_CreatesProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")

	// 首次设置时自动建资料行
	require.NoError(t, svc.UpdateNotificationsEnabled(alice.UserID, false))

	var profile model.Profile
	require.NoError(t, db.Where("user_id = ?", alice.UserID).First(&profile).Error)
	require.NotNil(t, profile.NotificationsEnabled)
	assert.False(t, *profile.NotificationsEnabled)

	enabled, err := svc.NotificationsEnabled(alice.UserID)
	require.NoError(t, err)
	assert.False(t, enabled)

	// 再开回来，复用同一行
	require.NoError(t, svc.UpdateNotificationsEnabled(alice.UserID, true))

	var count int64
	require.NoError(t, db.Model(&model.Profile{}).Where("user_id = ?", alice.UserID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	enabled, err = svc.NotificationsEnabled(alice.UserID)
	require.NoError(t, err)
	assert.True(t, enabled)
}

// fakeHub 测试用推送桩
type fakeHub struct {
	online map[uuid.UUID]bool
	sent   []uuid.UUID
}

func (f *fakeHub) IsUserOnline(userID uuid.UUID) bool { return f.online[userID] }

func (f *fakeHub) SendNotification(userID uuid.UUID, _ interface{}) bool {
	f.sent = append(f.sent, userID)
	return true
}

func TestSend_PushesOnlyToOnlineUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	hub := &fakeHub{online: map[uuid.UUID]bool{alice.UserID: true}}
	svc.SetHubNotifier(hub)

	_, err := svc.Send(alice.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hi"})
	require.NoError(t, err)
	_, err = svc.Send(bob.UserID, model.NotifTypeGeneral, map[string]interface{}{"text": "hi"})
	require.NoError(t, err)

	// 只给在线的 alice 推送；bob 的通知只落库
	assert.Equal(t, []uuid.UUID{alice.UserID}, hub.sent)

	count, err := svc.GetUnreadCount(bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
