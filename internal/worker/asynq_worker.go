package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/moment-next/internal/i18n"
	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/provider"
	"github.com/moment-next/internal/queue"
	"github.com/moment-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerifyCodeEmail, c.handleVerifyCodeEmail)
	mux.HandleFunc(queue.TaskNotificationEmail, c.handleNotificationEmail)
}

func (c *Consumer) handleVerifyCodeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_verify_code_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VerifyCodeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_verify_code_email_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Code == "" {
		logger.Debugw("worker_verify_code_email_skip_invalid_payload", "email", email)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_verify_code_email_skip_email_service_nil", "email", email)
		return nil
	}
	if err := c.EmailService.SendVerifyCode(email, payload.Code, payload.Purpose, payload.Locale); err != nil {
		logger.Warnw("worker_verify_code_email_send_failed", "email", email, "purpose", payload.Purpose, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleNotificationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.NotificationID == 0 {
		logger.Debugw("worker_notification_email_skip_invalid_payload", "notification_id", payload.NotificationID)
		return nil
	}
	notification, err := c.NotificationRepo.GetByID(payload.NotificationID)
	if err != nil {
		logger.Warnw("worker_notification_email_fetch_failed", "notification_id", payload.NotificationID, "error", err)
		return err
	}
	if notification == nil {
		logger.Debugw("worker_notification_email_skip_not_found", "notification_id", payload.NotificationID)
		return nil
	}
	if notification.ReadAt != nil {
		logger.Debugw("worker_notification_email_skip_already_read", "notification_id", notification.ID)
		return nil
	}
	user, err := c.UserRepo.GetByID(notification.UserID)
	if err != nil {
		logger.Warnw("worker_notification_email_fetch_user_failed", "notification_id", notification.ID, "user_id", notification.UserID, "error", err)
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_notification_email_skip_empty_receiver", "notification_id", notification.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_notification_email_skip_email_service_nil", "notification_id", notification.ID)
		return nil
	}

	locale := strings.TrimSpace(user.Locale)
	summary := buildNotificationSummary(notification, locale)
	if summary == "" {
		logger.Debugw("worker_notification_email_skip_unknown_type", "notification_id", notification.ID, "type", notification.Type)
		return nil
	}
	siteName := ""
	if c.Config != nil {
		siteName = c.Config.Site.Name
	}
	input := service.NotificationEmailInput{Summary: summary, SiteName: siteName}
	if err := c.EmailService.SendNotificationEmail(user.Email, input, locale); err != nil {
		logger.Warnw("worker_notification_email_send_failed",
			"notification_id", notification.ID,
			"receiver_email", user.Email,
			"type", notification.Type,
			"error", err,
		)
		return err
	}
	return nil
}

// buildNotificationSummary 按通知类型生成邮件正文摘要
func buildNotificationSummary(notification *models.Notification, locale string) string {
	resolved := i18n.LocaleZH
	switch locale {
	case i18n.LocaleZH, i18n.LocaleTW, i18n.LocaleEN:
		resolved = locale
	}
	fromName := ""
	if notification.FromUser != nil {
		fromName = strings.TrimSpace(notification.FromUser.DisplayName)
		if fromName == "" {
			fromName = strings.TrimSpace(notification.FromUser.Username)
		}
	}
	switch notification.Type {
	case models.NotificationTypeFriendRequest:
		return i18n.Sprintf(resolved, "notification.friend_request", fromName)
	case models.NotificationTypeFriendAccepted:
		return i18n.Sprintf(resolved, "notification.friend_accepted", fromName)
	case models.NotificationTypePostLiked:
		return i18n.Sprintf(resolved, "notification.post_liked", fromName)
	case models.NotificationTypePostCommented:
		return i18n.Sprintf(resolved, "notification.post_commented", fromName)
	case models.NotificationTypeVerifyReviewed:
		approved := false
		if notification.DataJSON != nil {
			if v, ok := notification.DataJSON["approved"].(bool); ok {
				approved = v
			}
		}
		if approved {
			return i18n.T(resolved, "notification.verify_approved")
		}
		return i18n.T(resolved, "notification.verify_rejected")
	default:
		return ""
	}
}
