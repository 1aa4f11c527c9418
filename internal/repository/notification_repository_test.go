package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/moment-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationRepositoryTest(t *testing.T) (*GormNotificationRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewNotificationRepository(db), db
}

func uintPtr(v uint) *uint {
	return &v
}

func TestNotificationRepositoryCreateReplacingExisting(t *testing.T) {
	repo, db := setupNotificationRepositoryTest(t)

	first := models.Notification{
		UserID:     1,
		FromUserID: uintPtr(2),
		Type:       models.NotificationTypeFriendRequest,
		DataJSON:   models.JSON{"friend_request_id": 10},
		Route:      "/friends",
	}
	if err := repo.CreateReplacingExisting(&first); err != nil {
		t.Fatalf("create first failed: %v", err)
	}

	second := models.Notification{
		UserID:     1,
		FromUserID: uintPtr(2),
		Type:       models.NotificationTypeFriendRequest,
		DataJSON:   models.JSON{"friend_request_id": 11},
		Route:      "/friends",
	}
	if err := repo.CreateReplacingExisting(&second); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND from_user_id = ? AND type = ?", 1, 2, models.NotificationTypeFriendRequest).
		Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single notification after replace, got %d", count)
	}

	latest, err := repo.GetByID(second.ID)
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected replacement notification to exist")
	}

	// 不同触发者的同类通知互不影响
	other := models.Notification{
		UserID:     1,
		FromUserID: uintPtr(3),
		Type:       models.NotificationTypeFriendRequest,
	}
	if err := repo.CreateReplacingExisting(&other); err != nil {
		t.Fatalf("create other sender failed: %v", err)
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count all failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 notifications for two senders, got %d", count)
	}
}

func TestNotificationRepositoryMarkReadIdempotent(t *testing.T) {
	repo, _ := setupNotificationRepositoryTest(t)

	notification := models.Notification{
		UserID:     5,
		FromUserID: uintPtr(6),
		Type:       models.NotificationTypePostLiked,
	}
	if err := repo.Create(&notification); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	firstReadAt := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkRead(notification.ID, firstReadAt); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	// 重复标记不覆盖原始已读时间
	if err := repo.MarkRead(notification.ID, firstReadAt.Add(time.Hour)); err != nil {
		t.Fatalf("second mark read failed: %v", err)
	}

	stored, err := repo.GetByID(notification.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ReadAt == nil {
		t.Fatal("expected read_at to be set")
	}
	if !stored.ReadAt.Equal(firstReadAt) {
		t.Fatalf("expected read_at %v preserved, got %v", firstReadAt, stored.ReadAt)
	}
}

func TestNotificationRepositoryUnreadCount(t *testing.T) {
	repo, _ := setupNotificationRepositoryTest(t)

	for i := 0; i < 3; i++ {
		notification := models.Notification{
			UserID:     7,
			FromUserID: uintPtr(uint(10 + i)),
			Type:       models.NotificationTypePostCommented,
		}
		if err := repo.Create(&notification); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	count, err := repo.UnreadCount(7)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}

	if err := repo.MarkAllRead(7, time.Now()); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}

	count, err = repo.UnreadCount(7)
	if err != nil {
		t.Fatalf("unread count after mark all failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after mark all, got %d", count)
	}
}
