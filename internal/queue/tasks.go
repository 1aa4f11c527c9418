package queue

import (
	"encoding/json"

	"github.com/moment-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerifyCodeEmail 验证码邮件任务
	TaskVerifyCodeEmail = constants.TaskVerifyCodeEmail
	// TaskNotificationEmail 通知提醒邮件任务
	TaskNotificationEmail = constants.TaskNotificationEmail
)

// VerifyCodeEmailPayload 验证码邮件任务载荷
type VerifyCodeEmailPayload struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
	Locale  string `json:"locale"`
}

// NotificationEmailPayload 通知提醒邮件任务载荷
type NotificationEmailPayload struct {
	NotificationID uint `json:"notification_id"`
}

// NewVerifyCodeEmailTask 创建验证码邮件任务
func NewVerifyCodeEmailTask(payload VerifyCodeEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerifyCodeEmail, body), nil
}

// NewNotificationEmailTask 创建通知提醒邮件任务
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, body), nil
}
