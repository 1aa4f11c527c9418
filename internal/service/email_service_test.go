package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/moment-next/internal/config"
	"github.com/moment-next/internal/constants"
	"github.com/moment-next/internal/i18n"
)

func TestBuildVerifyCodeContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		purpose             string
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:                "register_zh",
			locale:              i18n.LocaleZH,
			purpose:             constants.VerifyPurposeRegister,
			wantSubjectContains: []string{"注册验证码"},
			wantBodyContains:    []string{"654321", "注册"},
		},
		{
			name:                "reset_en",
			locale:              i18n.LocaleEN,
			purpose:             constants.VerifyPurposeReset,
			wantSubjectContains: []string{"Password Reset Code"},
			wantBodyContains:    []string{"654321", "password reset"},
		},
		{
			name:                "change_email_tw",
			locale:              i18n.LocaleTW,
			purpose:             constants.VerifyPurposeChangeEmailNew,
			wantSubjectContains: []string{"更換郵箱驗證碼"},
			wantBodyContains:    []string{"654321", "更換郵箱"},
		},
		{
			name:                "unknown_purpose_falls_back",
			locale:              i18n.LocaleEN,
			purpose:             "something-else",
			wantSubjectContains: []string{"Email Verification Code"},
			wantBodyContains:    []string{"654321"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := buildVerifyCodeContent("654321", tt.purpose, tt.locale)
			for _, want := range tt.wantSubjectContains {
				if !strings.Contains(subject, want) {
					t.Fatalf("subject %q missing %q", subject, want)
				}
			}
			for _, want := range tt.wantBodyContains {
				if !strings.Contains(body, want) {
					t.Fatalf("body %q missing %q", body, want)
				}
			}
		})
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"zh-CN": i18n.LocaleZH,
		"zh-TW": i18n.LocaleTW,
		"zh-HK": i18n.LocaleTW,
		"en-US": i18n.LocaleEN,
		"en":    i18n.LocaleEN,
		"":      i18n.LocaleZH,
		"fr-FR": i18n.LocaleZH,
	}
	for input, want := range tests {
		if got := normalizeLocale(input); got != want {
			t.Fatalf("normalizeLocale(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSendVerifyCodeRequiresConfiguration(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := svc.SendVerifyCode("user@example.com", "123456", constants.VerifyPurposeRegister, "zh-CN"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}

	svc.SetConfig(&config.EmailConfig{Enabled: true})
	if err := svc.SendVerifyCode("user@example.com", "123456", constants.VerifyPurposeRegister, "zh-CN"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got %v", err)
	}

	svc.SetConfig(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 465, From: "noreply@example.com"})
	if err := svc.SendVerifyCode("not-an-email", "123456", constants.VerifyPurposeRegister, "zh-CN"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestBuildEmailMessageHeaders(t *testing.T) {
	msg := buildEmailMessage("Moment <noreply@example.com>", "user@example.com", "主题", "正文")
	for _, want := range []string{
		"From: Moment <noreply@example.com>",
		"To: user@example.com",
		"MIME-Version: 1.0",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing header %q:\n%s", want, msg)
		}
	}
}
