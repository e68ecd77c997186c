package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"duo_dates/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestDate(t *testing.T, db *gorm.DB, profileID uuid.UUID, privacy string) *model.DateEntry {
	t.Helper()

	date := &model.DateEntry{
		DateID:    uuid.New(),
		ProfileID: profileID,
		Title:     "Picnic at the park",
		DateTime:  time.Now().Add(-24 * time.Hour),
		Privacy:   privacy,
	}
	require.NoError(t, db.Create(date).Error)
	return date
}

func TestAddComment_PublicDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))
	alice := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "stranger")
	profile := createTestProfile(t, db, alice.UserID, "PRIVATE")
	date := createTestDate(t, db, profile.ProfileID, "PUBLIC")

	// 约会自身 PUBLIC：任何人可评论
	view, err := svc.AddComment(date.DateID, stranger.UserID, "looks fun!")
	require.NoError(t, err)
	assert.Equal(t, "looks fun!", view.Content)
	assert.Equal(t, "stranger", view.Username)
}

func TestAddComment_InheritFollowsProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))
	alice := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "stranger")
	profile := createTestProfile(t, db, alice.UserID, "PUBLIC")
	date := createTestDate(t, db, profile.ProfileID, "INHERIT")

	// INHERIT + profile PUBLIC：公开
	_, err := svc.AddComment(date.DateID, stranger.UserID, "nice")
	require.NoError(t, err)
}

func TestAddComment_PrivateDateForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	stranger := createTestUser(t, db, "stranger")
	profile := createTestProfile(t, db, alice.UserID, "PRIVATE")
	date := createTestDate(t, db, profile.ProfileID, "INHERIT")

	// 外人评不了私密约会
	_, err := svc.AddComment(date.DateID, stranger.UserID, "hi")
	assert.ErrorIs(t, err, ErrCommentForbidden)

	// 所有者可以
	_, err = svc.AddComment(date.DateID, alice.UserID, "our day")
	require.NoError(t, err)

	// 伴侣可以
	require.NoError(t, db.Model(&model.User{}).Where("user_id = ?", alice.UserID).
		Update("partner_id", bob.UserID).Error)
	_, err = svc.AddComment(date.DateID, bob.UserID, "loved it")
	require.NoError(t, err)
}

func TestAddComment_PrivacyOverridesPublicProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))
	alice := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "stranger")
	profile := createTestProfile(t, db, alice.UserID, "PUBLIC")
	date := createTestDate(t, db, profile.ProfileID, "PRIVATE")

	// 约会自身 PRIVATE：即使 profile 公开也不行
	_, err := svc.AddComment(date.DateID, stranger.UserID, "hi")
	assert.ErrorIs(t, err, ErrCommentForbidden)
}

func TestAddComment_DateNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))
	alice := createTestUser(t, db, "alice")

	_, err := svc.AddComment(uuid.New(), alice.UserID, "hi")
	assert.ErrorIs(t, err, ErrDateNotFound)
}

func TestAddComment_NotifiesOwner(t *testing.T) {
	db := newTestDB(t)
	notifSvc := NewNotificationService(db)
	svc := NewCommentService(db, notifSvc)
	alice := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "stranger")
	profile := createTestProfile(t, db, alice.UserID, "PUBLIC")
	date := createTestDate(t, db, profile.ProfileID, "INHERIT")

	_, err := svc.AddComment(date.DateID, stranger.UserID, "great spot")
	require.NoError(t, err)

	// 所有者收到 COMMENT 通知
	var count int64
	require.NoError(t, db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", alice.UserID, model.NotifTypeComment).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 自己评论自己的约会不通知
	_, err = svc.AddComment(date.DateID, alice.UserID, "thanks!")
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", alice.UserID, model.NotifTypeComment).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddComment_PreviewTruncatesOnRuneBoundary(t *testing.T) {
	db := newTestDB(t)
	notifSvc := NewNotificationService(db)
	svc := NewCommentService(db, notifSvc)
	alice := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "stranger")
	profile := createTestProfile(t, db, alice.UserID, "PUBLIC")
	date := createTestDate(t, db, profile.ProfileID, "INHERIT")

	// 150 个多字节字符，字节数远超 100
	content := strings.Repeat("好", 150)
	_, err := svc.AddComment(date.DateID, stranger.UserID, content)
	require.NoError(t, err)

	var notif model.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", alice.UserID, model.NotifTypeComment).
		First(&notif).Error)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(notif.Message), &payload))
	preview := payload["comment_text"].(string)

	// 截到 100 个字符，且没有被切坏的字节序列
	assert.Equal(t, 100, utf8.RuneCountInString(preview))
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, strings.Repeat("好", 100), preview)
}

func TestListComments_OrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))
	alice := createTestUser(t, db, "alice")
	profile := createTestProfile(t, db, alice.UserID, "PUBLIC")
	date := createTestDate(t, db, profile.ProfileID, "INHERIT")

	_, err := svc.AddComment(date.DateID, alice.UserID, "first")
	require.NoError(t, err)
	_, err = svc.AddComment(date.DateID, alice.UserID, "second")
	require.NoError(t, err)

	comments, err := svc.ListComments(date.DateID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "alice", comments[0].Username)
}

func TestListComments_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, NewNotificationService(db))

	comments, err := svc.ListComments(uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}
