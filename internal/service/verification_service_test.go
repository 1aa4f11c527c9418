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

func setupVerificationServiceTest(t *testing.T) (*VerificationService, *NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:verification_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.VerificationRequest{}, &models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewVerificationService(repository.NewVerificationRequestRepository(db), repository.NewUserRepository(db), notifier)
	return svc, notifier, db
}

func TestSubmitVerificationOncePending(t *testing.T) {
	svc, _, db := setupVerificationServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")

	request, err := svc.Submit(alice.ID, "/uploads/documents/id.jpg", "id.jpg")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if request.Status != "pending" {
		t.Fatalf("expected pending request, got %s", request.Status)
	}

	var user models.User
	if err := db.First(&user, alice.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if user.VerificationStatus != models.VerificationStatusPending {
		t.Fatalf("expected user pending, got %s", user.VerificationStatus)
	}

	if _, err := svc.Submit(alice.ID, "/uploads/documents/id2.jpg", "id2.jpg"); !errors.Is(err, ErrVerificationPending) {
		t.Fatalf("expected ErrVerificationPending, got %v", err)
	}
	if _, err := svc.Submit(999, "/uploads/documents/x.jpg", "x.jpg"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestReviewApproveUpdatesUserAndNotifies(t *testing.T) {
	svc, notifier, db := setupVerificationServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")

	request, err := svc.Submit(alice.ID, "/uploads/documents/id.jpg", "id.jpg")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.Review(request.ID, 1, "maybe", ""); !errors.Is(err, ErrVerificationDecisionInvalid) {
		t.Fatalf("expected ErrVerificationDecisionInvalid, got %v", err)
	}
	if _, err := svc.Review(999, 1, models.VerificationReviewApproved, ""); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("expected ErrVerificationNotFound, got %v", err)
	}

	reviewed, err := svc.Review(request.ID, 1, "Approved", "looks good")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != models.VerificationReviewApproved || reviewed.ReviewedAt == nil || reviewed.ReviewedBy == nil {
		t.Fatalf("unexpected reviewed request %+v", reviewed)
	}

	var user models.User
	if err := db.First(&user, alice.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if user.VerificationStatus != models.VerificationStatusVerified {
		t.Fatalf("expected verified user, got %s", user.VerificationStatus)
	}

	count, _ := notifier.UnreadCount(alice.ID)
	if count != 1 {
		t.Fatalf("expected review notification, got %d", count)
	}

	// 已审核的申请不能再次审核
	if _, err := svc.Review(request.ID, 1, models.VerificationReviewRejected, ""); !errors.Is(err, ErrVerificationReviewed) {
		t.Fatalf("expected ErrVerificationReviewed, got %v", err)
	}
	// 已认证用户不能再次提交
	if _, err := svc.Submit(alice.ID, "/uploads/documents/id3.jpg", "id3.jpg"); !errors.Is(err, ErrVerificationReviewed) {
		t.Fatalf("expected ErrVerificationReviewed, got %v", err)
	}
}

func TestReviewRejectAllowsResubmit(t *testing.T) {
	svc, _, db := setupVerificationServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")

	request, err := svc.Submit(alice.ID, "/uploads/documents/id.jpg", "id.jpg")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Review(request.ID, 2, models.VerificationReviewRejected, "blurry photo"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	var user models.User
	if err := db.First(&user, alice.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if user.VerificationStatus != models.VerificationStatusRejected {
		t.Fatalf("expected rejected user, got %s", user.VerificationStatus)
	}

	// 被拒后可以重新提交
	second, err := svc.Submit(alice.ID, "/uploads/documents/id2.jpg", "id2.jpg")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if second.ID == request.ID {
		t.Fatal("expected a fresh verification request")
	}

	status, err := svc.Status(alice.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status == nil || status.ID != second.ID {
		t.Fatalf("expected latest request in status, got %+v", status)
	}
}
