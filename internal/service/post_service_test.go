package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPostServiceTest(t *testing.T) (*PostService, *NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:post_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Attachment{},
		&models.Comment{}, &models.Like{}, &models.FriendRequest{}, &models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewPostService(
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		repository.NewLikeRepository(db),
		repository.NewAttachmentRepository(db),
		repository.NewFriendRequestRepository(db),
		notifier,
	)
	return svc, notifier, db
}

func seedPostTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		DisplayName:  username,
		Status:       "active",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s failed: %v", username, err)
	}
	return user
}

func acceptFriendship(t *testing.T, db *gorm.DB, senderID, recipientID uint) {
	t.Helper()
	now := time.Now()
	request := &models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.FriendRequestStatusAccepted,
		RespondedAt: &now,
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("create friendship failed: %v", err)
	}
}

func TestCreatePostValidatesContent(t *testing.T) {
	svc, _, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")

	if _, err := svc.Create(alice.ID, CreatePostInput{Content: "   "}); !errors.Is(err, ErrPostContentRequired) {
		t.Fatalf("expected ErrPostContentRequired, got %v", err)
	}
	if _, err := svc.Create(alice.ID, CreatePostInput{Content: strings.Repeat("字", models.PostContentMaxLen+1)}); !errors.Is(err, ErrPostContentTooLong) {
		t.Fatalf("expected ErrPostContentTooLong, got %v", err)
	}

	// 恰好达到上限的内容可以发布,长度按字符而非字节计
	post, err := svc.Create(alice.ID, CreatePostInput{Content: strings.Repeat("字", models.PostContentMaxLen)})
	if err != nil {
		t.Fatalf("create at limit failed: %v", err)
	}
	if post.ID == 0 {
		t.Fatal("expected persisted post id")
	}
}

func TestCreatePostWithAttachments(t *testing.T) {
	svc, _, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")

	post, err := svc.Create(alice.ID, CreatePostInput{
		Content: "周末去爬山",
		Attachments: []AttachmentInput{
			{FilePath: "/uploads/post/a.jpg", FileType: "image/jpeg", FileName: "a.jpg", FileSize: 1024},
			{FilePath: "/uploads/post/b.jpg", FileType: "image/jpeg", FileName: "b.jpg", FileSize: 2048},
		},
	})
	if err != nil {
		t.Fatalf("create with attachments failed: %v", err)
	}
	if len(post.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(post.Attachments))
	}
}

func TestFeedContainsSelfAndFriendsOnly(t *testing.T) {
	svc, _, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")
	carol := seedPostTestUser(t, db, "carol")
	acceptFriendship(t, db, alice.ID, bob.ID)

	for _, item := range []struct {
		userID  uint
		content string
	}{
		{alice.ID, "alice post"},
		{bob.ID, "bob post"},
		{carol.ID, "carol post"},
	} {
		if _, err := svc.Create(item.userID, CreatePostInput{Content: item.content}); err != nil {
			t.Fatalf("create post failed: %v", err)
		}
	}

	posts, total, err := svc.ListFeed(alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("list feed failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 feed posts, got %d", total)
	}
	for _, post := range posts {
		if post.UserID == carol.ID {
			t.Fatal("feed must not contain non-friend posts")
		}
		if post.User == nil {
			t.Fatal("feed posts should preload authors")
		}
	}
}

func TestDeletePostOwnerOnly(t *testing.T) {
	svc, _, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	post, err := svc.Create(alice.ID, CreatePostInput{Content: "to be removed"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if err := svc.Delete(post.ID, bob.ID); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner, got %v", err)
	}
	if err := svc.Delete(post.ID, alice.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := svc.Delete(post.ID, alice.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after delete, got %v", err)
	}
}

func TestAddCommentValidatesAndNotifies(t *testing.T) {
	svc, notifier, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	post, err := svc.Create(alice.ID, CreatePostInput{Content: "hello"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if _, err := svc.AddComment(post.ID, bob.ID, " "); !errors.Is(err, ErrCommentContentRequired) {
		t.Fatalf("expected ErrCommentContentRequired, got %v", err)
	}
	if _, err := svc.AddComment(post.ID, bob.ID, strings.Repeat("字", models.CommentContentMaxLen+1)); !errors.Is(err, ErrCommentContentTooLong) {
		t.Fatalf("expected ErrCommentContentTooLong, got %v", err)
	}
	if _, err := svc.AddComment(999, bob.ID, "hi"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	comment, err := svc.AddComment(post.ID, bob.ID, "nice")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if comment.ID == 0 || comment.PostID != post.ID {
		t.Fatalf("unexpected comment %+v", comment)
	}

	count, err := notifier.UnreadCount(alice.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected comment notification for author, got %d", count)
	}

	// 评论自己的动态不产生通知
	if _, err := svc.AddComment(post.ID, alice.ID, "thanks"); err != nil {
		t.Fatalf("self comment failed: %v", err)
	}
	count, _ = notifier.UnreadCount(alice.ID)
	if count != 1 {
		t.Fatalf("self comment must not notify, got %d", count)
	}
}

func TestDeleteCommentByCommentOrPostOwner(t *testing.T) {
	svc, _, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")
	carol := seedPostTestUser(t, db, "carol")

	post, err := svc.Create(alice.ID, CreatePostInput{Content: "hello"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	comment, err := svc.AddComment(post.ID, bob.ID, "first")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	if err := svc.DeleteComment(comment.ID, carol.ID); !errors.Is(err, ErrNotCommentOwner) {
		t.Fatalf("expected ErrNotCommentOwner, got %v", err)
	}
	// 动态作者可以删除他人评论
	if err := svc.DeleteComment(comment.ID, alice.ID); err != nil {
		t.Fatalf("post owner delete failed: %v", err)
	}

	second, err := svc.AddComment(post.ID, bob.ID, "second")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if err := svc.DeleteComment(second.ID, bob.ID); err != nil {
		t.Fatalf("comment owner delete failed: %v", err)
	}
	if err := svc.DeleteComment(second.ID, bob.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestToggleLikeFlipsAndCounts(t *testing.T) {
	svc, notifier, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	post, err := svc.Create(alice.ID, CreatePostInput{Content: "hello"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	result, err := svc.ToggleLike(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !result.Liked || result.LikeCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", result)
	}
	count, _ := notifier.UnreadCount(alice.ID)
	if count != 1 {
		t.Fatalf("expected like notification, got %d", count)
	}

	result, err = svc.ToggleLike(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if result.Liked || result.LikeCount != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", result)
	}

	// 自己点赞自己不通知,但计数生效
	result, err = svc.ToggleLike(post.ID, alice.ID)
	if err != nil {
		t.Fatalf("self toggle failed: %v", err)
	}
	if !result.Liked || result.LikeCount != 1 {
		t.Fatalf("expected liked count 1, got %+v", result)
	}
	count, _ = notifier.UnreadCount(alice.ID)
	if count != 1 {
		t.Fatalf("self like must not notify, got %d", count)
	}

	if _, err := svc.ToggleLike(999, bob.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

// staleLikeRepo 包装真实仓库,前 misses 次 Get 返回未点赞,
// 模拟读后写前有并发点赞落库的窗口
type staleLikeRepo struct {
	repository.LikeRepository
	misses int
}

func (r *staleLikeRepo) Get(postID, userID uint) (*models.Like, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.LikeRepository.Get(postID, userID)
}

func TestToggleLikeConcurrentDuplicateConverges(t *testing.T) {
	_, notifier, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	likeRepo := repository.NewLikeRepository(db)
	svc := NewPostService(
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		&staleLikeRepo{LikeRepository: likeRepo, misses: 1},
		repository.NewAttachmentRepository(db),
		repository.NewFriendRequestRepository(db),
		notifier,
	)

	post, err := svc.Create(alice.ID, CreatePostInput{Content: "hello"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	// 并发方先落库,本次请求读到的仍是未点赞
	if err := likeRepo.Create(&models.Like{PostID: post.ID, UserID: bob.ID}); err != nil {
		t.Fatalf("seed concurrent like failed: %v", err)
	}

	result, err := svc.ToggleLike(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("toggle with concurrent like failed: %v", err)
	}
	if !result.Liked || result.LikeCount != 1 {
		t.Fatalf("expected converged like with count 1, got %+v", result)
	}
}

func TestAdminListAndDelete(t *testing.T) {
	svc, _, db := setupPostServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	if _, err := svc.Create(alice.ID, CreatePostInput{Content: "morning hike"}); err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	post, err := svc.Create(bob.ID, CreatePostInput{Content: "evening run"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	items, total, err := svc.ListAdmin(0, "hike", 1, 10)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if total != 1 || items[0].UserID != alice.ID {
		t.Fatalf("expected alice's hike post, got total=%d", total)
	}

	items, total, err = svc.ListAdmin(bob.ID, "", 1, 10)
	if err != nil {
		t.Fatalf("admin list by author failed: %v", err)
	}
	if total != 1 || items[0].ID != post.ID {
		t.Fatalf("expected bob's post, got total=%d", total)
	}

	if err := svc.AdminDelete(post.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if err := svc.AdminDelete(post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
