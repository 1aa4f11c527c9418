package service

import (
	"errors"
	"testing"

	"github.com/moment-next/internal/queue"
)

type verifyCodeSenderStub struct {
	calls int
	last  string
	err   error
}

func (s *verifyCodeSenderStub) SendVerifyCode(toEmail, _, _, _ string) error {
	s.calls++
	s.last = toEmail
	return s.err
}

func TestQueuedVerifyCodeSenderFallbackWhenQueueDisabled(t *testing.T) {
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	t.Cleanup(func() {
		_ = queueClient.Close()
	})

	stub := &verifyCodeSenderStub{}
	sender := NewQueuedVerifyCodeSender(queueClient, stub)
	if err := sender.SendVerifyCode("user@example.com", "123456", "register", "zh-CN"); err != nil {
		t.Fatalf("send verify code failed: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected fallback sender called once, got %d", stub.calls)
	}
	if stub.last != "user@example.com" {
		t.Fatalf("unexpected receiver: %s", stub.last)
	}
}

func TestQueuedVerifyCodeSenderRejectsEmptyReceiver(t *testing.T) {
	stub := &verifyCodeSenderStub{}
	sender := NewQueuedVerifyCodeSender(nil, stub)
	if err := sender.SendVerifyCode("   ", "123456", "register", "zh-CN"); !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("expected ErrEmailRecipientRejected, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("fallback should not be called for empty receiver")
	}
}

func TestQueuedVerifyCodeSenderNoFallbackConfigured(t *testing.T) {
	sender := NewQueuedVerifyCodeSender(nil, nil)
	if err := sender.SendVerifyCode("user@example.com", "123456", "register", "zh-CN"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got %v", err)
	}
}
