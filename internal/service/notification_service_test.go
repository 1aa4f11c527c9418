package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewNotificationService(repository.NewNotificationRepository(db), nil), db
}

func TestNotifyFriendRequestDeduplicates(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	if err := svc.NotifyFriendRequest(1, 2, 10); err != nil {
		t.Fatalf("first notify failed: %v", err)
	}
	// 同一发起人重复申请,旧通知被替换
	if err := svc.NotifyFriendRequest(1, 2, 11); err != nil {
		t.Fatalf("second notify failed: %v", err)
	}
	// 其他发起人不受影响
	if err := svc.NotifyFriendRequest(1, 3, 12); err != nil {
		t.Fatalf("third notify failed: %v", err)
	}

	items, total, err := svc.List(1, repository.NotificationListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 notifications, got %d", total)
	}
	for _, n := range items {
		if n.FromUserID != nil && *n.FromUserID == 2 {
			if got := n.DataJSON["friend_request_id"]; fmt.Sprint(got) != "11" {
				t.Fatalf("expected replaced notification to carry request 11, got %v", got)
			}
		}
	}

	var count int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}

func TestNotifySkipsSelf(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	if err := svc.NotifyFriendRequest(5, 5, 1); err != nil {
		t.Fatalf("self friend request notify errored: %v", err)
	}
	if err := svc.NotifyPostLiked(5, 5, 7); err != nil {
		t.Fatalf("self like notify errored: %v", err)
	}
	if err := svc.NotifyPostCommented(5, 5, 7, 8); err != nil {
		t.Fatalf("self comment notify errored: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("self actions must not create notifications, got %d", count)
	}
}

func TestMarkReadIdempotentAndOwned(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	if err := svc.NotifyPostLiked(1, 2, 30); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	var notification models.Notification
	if err := db.First(&notification).Error; err != nil {
		t.Fatalf("load notification failed: %v", err)
	}

	// 非归属用户不能标记他人通知
	if err := svc.MarkRead(99, notification.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}

	if err := svc.MarkRead(1, notification.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	var first models.Notification
	if err := db.First(&first, notification.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if first.ReadAt == nil {
		t.Fatal("expected read_at to be set")
	}

	time.Sleep(10 * time.Millisecond)
	if err := svc.MarkRead(1, notification.ID); err != nil {
		t.Fatalf("repeat mark read failed: %v", err)
	}
	var second models.Notification
	if err := db.First(&second, notification.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Fatalf("repeat mark must keep original read_at, got %v vs %v", second.ReadAt, first.ReadAt)
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	if err := svc.NotifyPostLiked(1, 2, 1); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := svc.NotifyPostCommented(1, 3, 1, 2); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := svc.NotifyPostLiked(2, 3, 1); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	count, err := svc.UnreadCount(1)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	if err := svc.MarkAllRead(1); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	count, err = svc.UnreadCount(1)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after mark all, got %d", count)
	}

	other, err := svc.UnreadCount(2)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if other != 1 {
		t.Fatalf("other user's unread must be untouched, got %d", other)
	}
}

func TestRemoveFriendRequestNotification(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)

	if err := svc.NotifyFriendRequest(1, 2, 40); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := svc.NotifyPostLiked(1, 2, 7); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if err := svc.RemoveFriendRequestNotification(1, 2); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	var remaining []models.Notification
	if err := db.Where("user_id = ?", 1).Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Type != models.NotificationTypePostLiked {
		t.Fatalf("expected only like notification to survive, got %+v", remaining)
	}
}
