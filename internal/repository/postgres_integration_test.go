//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/moment-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Like{},
		&models.Comment{},
		&models.Attachment{},
		&models.Notification{},
		&models.FriendRequest{},
		&models.Post{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Attachment{},
		&models.Comment{},
		&models.Like{},
		&models.FriendRequest{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func seedPostgresUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s failed: %v", username, err)
	}
	return user
}

func TestPostgresPostSearchAndFeedFilter(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewPostRepository(db)

	alice := seedPostgresUser(t, db, "pg-alice")
	bob := seedPostgresUser(t, db, "pg-bob")
	carol := seedPostgresUser(t, db, "pg-carol")

	posts := []models.Post{
		{UserID: alice.ID, Content: "爬山看到了很美的日出"},
		{UserID: bob.ID, Content: "weekend hiking with friends"},
		{UserID: carol.ID, Content: "today was quiet"},
	}
	for i := range posts {
		if err := repo.Create(&posts[i]); err != nil {
			t.Fatalf("create post failed: %v", err)
		}
	}

	rows, total, err := repo.List(PostListFilter{Page: 1, Search: "爬山"})
	if err != nil {
		t.Fatalf("post search zh failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("post search zh want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(PostListFilter{Page: 1, Search: "hiking"})
	if err != nil {
		t.Fatalf("post search en failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("post search en want 1 got total=%d len=%d", total, len(rows))
	}

	// 好友动态流只包含给定作者集合
	rows, total, err = repo.List(PostListFilter{Page: 1, AuthorIDs: []uint{alice.ID, bob.ID}, WithUser: true})
	if err != nil {
		t.Fatalf("feed filter failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("feed filter want 2 got total=%d len=%d", total, len(rows))
	}
	for _, row := range rows {
		if row.UserID == carol.ID {
			t.Fatalf("feed filter leaked post from excluded author")
		}
		if row.User == nil {
			t.Fatalf("feed filter should preload author")
		}
	}
}

func TestPostgresNotificationDedupAndUnread(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewNotificationRepository(db)

	alice := seedPostgresUser(t, db, "pg-notify-alice")
	bob := seedPostgresUser(t, db, "pg-notify-bob")

	first := &models.Notification{
		UserID:     alice.ID,
		FromUserID: &bob.ID,
		Type:       models.NotificationTypeFriendRequest,
		DataJSON:   models.JSON{"friend_request_id": 1},
		Route:      "/friends",
	}
	if err := repo.CreateReplacingExisting(first); err != nil {
		t.Fatalf("create notification failed: %v", err)
	}

	second := &models.Notification{
		UserID:     alice.ID,
		FromUserID: &bob.ID,
		Type:       models.NotificationTypeFriendRequest,
		DataJSON:   models.JSON{"friend_request_id": 2},
		Route:      "/friends",
	}
	if err := repo.CreateReplacingExisting(second); err != nil {
		t.Fatalf("replace notification failed: %v", err)
	}

	rows, total, err := repo.List(NotificationListFilter{Page: 1, UserID: alice.ID})
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("dedup want 1 notification got total=%d len=%d", total, len(rows))
	}

	count, err := repo.UnreadCount(alice.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("unread count want 1 got %d", count)
	}

	if err := repo.MarkRead(rows[0].ID, time.Now()); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	count, err = repo.UnreadCount(alice.ID)
	if err != nil {
		t.Fatalf("unread count after read failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("unread count after read want 0 got %d", count)
	}
}
