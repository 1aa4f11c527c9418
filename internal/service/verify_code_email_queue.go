package service

import (
	"strings"

	"github.com/moment-next/internal/queue"
)

// QueuedVerifyCodeSender 验证码邮件发送的队列适配
// 队列可用时入队异步发送,否则回退为同步发送
type QueuedVerifyCodeSender struct {
	queueClient *queue.Client
	fallback    VerifyCodeSender
}

// NewQueuedVerifyCodeSender 创建队列验证码发送器
func NewQueuedVerifyCodeSender(queueClient *queue.Client, fallback VerifyCodeSender) *QueuedVerifyCodeSender {
	return &QueuedVerifyCodeSender{
		queueClient: queueClient,
		fallback:    fallback,
	}
}

// SendVerifyCode 发送验证码邮件
func (s *QueuedVerifyCodeSender) SendVerifyCode(toEmail, code, purpose, locale string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return ErrEmailRecipientRejected
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		return s.queueClient.EnqueueVerifyCodeEmail(queue.VerifyCodeEmailPayload{
			Email:   toEmail,
			Code:    code,
			Purpose: purpose,
			Locale:  locale,
		})
	}
	if s.fallback == nil {
		return ErrEmailServiceNotConfigured
	}
	return s.fallback.SendVerifyCode(toEmail, code, purpose, locale)
}
