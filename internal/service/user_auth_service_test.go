package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moment-next/internal/config"
	"github.com/moment-next/internal/constants"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubVerifyCodeSender struct {
	sent []string
	err  error
}

func (s *stubVerifyCodeSender) SendVerifyCode(toEmail, code, purpose, locale string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, code)
	return nil
}

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *stubVerifyCodeSender, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.EmailVerifyCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "test-secret"
	cfg.UserJWT.ExpireHours = 1
	sender := &stubVerifyCodeSender{}
	svc := NewUserAuthService(cfg, repository.NewUserRepository(db), repository.NewEmailVerifyCodeRepository(db), sender)
	return svc, sender, db
}

func createAuthTestUser(t *testing.T, db *gorm.DB, email string, verified bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	now := time.Now()
	user := &models.User{
		Email:        email,
		Username:     fmt.Sprintf("u%d", now.UnixNano()%1_000_000_000),
		PasswordHash: string(hash),
		DisplayName:  "Test User",
		Status:       constants.UserStatusActive,
	}
	if verified {
		user.EmailVerifiedAt = &now
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestSendEmailVerifyCodeIssuesSixDigits(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "otp@example.com", false)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("send verify code failed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	code := sender.sent[0]
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric code, got %q", code)
		}
	}

	record, err := repository.NewEmailVerifyCodeRepository(db).GetLatest(user.Email, constants.VerifyPurposeRegister)
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if record == nil || record.Code != code {
		t.Fatalf("stored code mismatch: %+v", record)
	}
	remaining := time.Until(record.ExpiresAt)
	if remaining < 4*time.Minute || remaining > 6*time.Minute {
		t.Fatalf("expected roughly 5 minute expiry, got %v", remaining)
	}
}

func TestSendEmailVerifyCodeRespectsSendInterval(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "interval@example.com", false)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); !errors.Is(err, ErrVerifyCodeTooFrequent) {
		t.Fatalf("expected ErrVerifyCodeTooFrequent, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected single email, got %d", len(sender.sent))
	}

	// 上一条发送时间已过冷却窗口则允许重发
	if err := db.Model(&models.EmailVerifyCode{}).
		Where("email = ?", user.Email).
		Update("sent_at", time.Now().Add(-2*time.Minute)).Error; err != nil {
		t.Fatalf("backdate sent_at failed: %v", err)
	}
	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("resend after interval failed: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two emails, got %d", len(sender.sent))
	}
}

func TestSendEmailVerifyCodeSkipsVerifiedUser(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "done@example.com", true)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("send for verified user failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("verified user should not receive a code, got %d emails", len(sender.sent))
	}
}

func TestVerifyEmailMarksUserVerified(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "verify@example.com", false)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("send verify code failed: %v", err)
	}
	updated, err := svc.VerifyEmail(user.ID, sender.sent[0])
	if err != nil {
		t.Fatalf("verify email failed: %v", err)
	}
	if updated.EmailVerifiedAt == nil {
		t.Fatal("expected email_verified_at to be set")
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.EmailVerifiedAt == nil {
		t.Fatal("expected persisted email_verified_at")
	}

	record, err := repository.NewEmailVerifyCodeRepository(db).GetLatest(user.Email, constants.VerifyPurposeRegister)
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if record.VerifiedAt == nil {
		t.Fatal("expected code record to be marked verified")
	}

	// 已验证后重复提交旧验证码仍然成功
	again, err := svc.VerifyEmail(user.ID, "000000")
	if err != nil {
		t.Fatalf("repeat verify should be idempotent, got %v", err)
	}
	if again.EmailVerifiedAt == nil {
		t.Fatal("expected verified user on repeat submit")
	}
}

func TestVerifyEmailWrongCodeCountsAttempts(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "attempts@example.com", false)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("send verify code failed: %v", err)
	}
	wrong := "000000"
	if wrong == sender.sent[0] {
		wrong = "999999"
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.VerifyEmail(user.ID, wrong); !errors.Is(err, ErrVerifyCodeInvalid) {
			t.Fatalf("attempt %d: expected ErrVerifyCodeInvalid, got %v", i, err)
		}
	}

	// 第六次命中次数上限，连正确验证码也被拒绝
	if _, err := svc.VerifyEmail(user.ID, wrong); !errors.Is(err, ErrVerifyCodeAttemptsExceeded) {
		t.Fatalf("expected ErrVerifyCodeAttemptsExceeded, got %v", err)
	}
	if _, err := svc.VerifyEmail(user.ID, sender.sent[0]); !errors.Is(err, ErrVerifyCodeAttemptsExceeded) {
		t.Fatalf("correct code after limit should fail, got %v", err)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.EmailVerifiedAt != nil {
		t.Fatal("user must stay unverified after exceeded attempts")
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "expired@example.com", false)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("send verify code failed: %v", err)
	}
	if err := db.Model(&models.EmailVerifyCode{}).
		Where("email = ?", user.Email).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire code failed: %v", err)
	}

	if _, err := svc.VerifyEmail(user.ID, sender.sent[0]); !errors.Is(err, ErrVerifyCodeExpired) {
		t.Fatalf("expected ErrVerifyCodeExpired, got %v", err)
	}
}

func TestResendInvalidatesPriorCode(t *testing.T) {
	svc, sender, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "resend@example.com", false)

	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if err := db.Model(&models.EmailVerifyCode{}).
		Where("email = ?", user.Email).
		Update("sent_at", time.Now().Add(-2*time.Minute)).Error; err != nil {
		t.Fatalf("backdate sent_at failed: %v", err)
	}
	if err := svc.SendEmailVerifyCode(user.ID, "en-US"); err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two codes, got %d", len(sender.sent))
	}

	if sender.sent[0] != sender.sent[1] {
		if _, err := svc.VerifyEmail(user.ID, sender.sent[0]); !errors.Is(err, ErrVerifyCodeInvalid) {
			t.Fatalf("old code should be invalid, got %v", err)
		}
	}
	if _, err := svc.VerifyEmail(user.ID, sender.sent[1]); err != nil {
		t.Fatalf("newest code should verify, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, db := setupUserAuthServiceTest(t)
	createAuthTestUser(t, db, "taken@example.com", true)

	if _, _, _, err := svc.Register("taken@example.com", "newcomer", "Passw0rd!", true); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, _, _, err := svc.Register("fresh@example.com", "newcomer", "Passw0rd!", false); !errors.Is(err, ErrAgreementRequired) {
		t.Fatalf("expected ErrAgreementRequired, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, db := setupUserAuthServiceTest(t)
	user := createAuthTestUser(t, db, "login@example.com", true)

	if _, _, _, err := svc.Login(user.Email, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	logged, token, _, err := svc.Login(user.Email, "Passw0rd!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result user=%d token=%q", logged.ID, token)
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token user mismatch: %d", claims.UserID)
	}
}
