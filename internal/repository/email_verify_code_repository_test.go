package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/moment-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupEmailVerifyCodeRepositoryTest(t *testing.T) (*GormEmailVerifyCodeRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:verify_code_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.EmailVerifyCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewEmailVerifyCodeRepository(db), db
}

func TestEmailVerifyCodeRepositoryCreateInvalidatingPrior(t *testing.T) {
	repo, db := setupEmailVerifyCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	first := models.EmailVerifyCode{
		Email:     "user@example.com",
		Purpose:   "register",
		Code:      "111111",
		ExpiresAt: now.Add(5 * time.Minute),
		SentAt:    now,
	}
	if err := repo.CreateInvalidatingPrior(&first); err != nil {
		t.Fatalf("create first failed: %v", err)
	}

	second := models.EmailVerifyCode{
		Email:     "user@example.com",
		Purpose:   "register",
		Code:      "222222",
		ExpiresAt: now.Add(6 * time.Minute),
		SentAt:    now.Add(time.Minute),
	}
	if err := repo.CreateInvalidatingPrior(&second); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	var active int64
	if err := db.Model(&models.EmailVerifyCode{}).
		Where("email = ? AND purpose = ?", "user@example.com", "register").
		Count(&active).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected single active code, got %d", active)
	}

	latest, err := repo.GetLatest("user@example.com", "register")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest == nil || latest.Code != "222222" {
		t.Fatalf("expected newest code to survive, got %+v", latest)
	}

	// 不同用途的验证码互不影响
	reset := models.EmailVerifyCode{
		Email:     "user@example.com",
		Purpose:   "reset",
		Code:      "333333",
		ExpiresAt: now.Add(5 * time.Minute),
		SentAt:    now,
	}
	if err := repo.CreateInvalidatingPrior(&reset); err != nil {
		t.Fatalf("create reset failed: %v", err)
	}
	latest, err = repo.GetLatest("user@example.com", "register")
	if err != nil {
		t.Fatalf("get latest after reset failed: %v", err)
	}
	if latest == nil || latest.Code != "222222" {
		t.Fatalf("register code should be untouched, got %+v", latest)
	}
}

func TestEmailVerifyCodeRepositoryAttemptAndVerify(t *testing.T) {
	repo, _ := setupEmailVerifyCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	record := models.EmailVerifyCode{
		Email:     "attempt@example.com",
		Purpose:   "register",
		Code:      "654321",
		ExpiresAt: now.Add(5 * time.Minute),
		SentAt:    now,
	}
	if err := repo.CreateInvalidatingPrior(&record); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementAttempt(record.ID); err != nil {
			t.Fatalf("increment attempt %d failed: %v", i, err)
		}
	}

	stored, err := repo.GetLatest("attempt@example.com", "register")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if stored.AttemptCount != 3 {
		t.Fatalf("expected attempt_count 3, got %d", stored.AttemptCount)
	}

	verifiedAt := now.Add(time.Minute)
	if err := repo.MarkVerified(record.ID, verifiedAt); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}
	stored, err = repo.GetLatest("attempt@example.com", "register")
	if err != nil {
		t.Fatalf("get latest after verify failed: %v", err)
	}
	if stored.VerifiedAt == nil {
		t.Fatal("expected verified_at to be set")
	}
}
