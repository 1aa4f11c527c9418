package service

import (
	"time"

	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/queue"
	"github.com/moment-next/internal/repository"
)

// NotificationService 站内通知服务
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	queueClient      *queue.Client
}

// NewNotificationService 创建站内通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
	}
}

// NotifyFriendRequest 推送好友申请通知
// 同一发起人的旧申请通知会被替换,避免重复请求产生多条记录
func (s *NotificationService) NotifyFriendRequest(recipientID, senderID, requestID uint) error {
	if recipientID == senderID {
		return nil
	}
	notification := &models.Notification{
		UserID:     recipientID,
		FromUserID: &senderID,
		Type:       models.NotificationTypeFriendRequest,
		DataJSON:   models.JSON{"friend_request_id": requestID},
		Route:      "/friends",
	}
	if err := s.notificationRepo.CreateReplacingExisting(notification); err != nil {
		return err
	}
	s.enqueueEmail(notification.ID)
	return nil
}

// NotifyFriendAccepted 推送好友申请通过通知
func (s *NotificationService) NotifyFriendAccepted(recipientID, accepterID uint) error {
	if recipientID == accepterID {
		return nil
	}
	notification := &models.Notification{
		UserID:     recipientID,
		FromUserID: &accepterID,
		Type:       models.NotificationTypeFriendAccepted,
		Route:      "/friends",
	}
	if err := s.notificationRepo.CreateReplacingExisting(notification); err != nil {
		return err
	}
	s.enqueueEmail(notification.ID)
	return nil
}

// NotifyPostLiked 推送动态被点赞通知
func (s *NotificationService) NotifyPostLiked(postOwnerID, likerID, postID uint) error {
	if postOwnerID == likerID {
		return nil
	}
	notification := &models.Notification{
		UserID:     postOwnerID,
		FromUserID: &likerID,
		Type:       models.NotificationTypePostLiked,
		DataJSON:   models.JSON{"post_id": postID},
		Route:      "/posts",
	}
	return s.notificationRepo.Create(notification)
}

// NotifyPostCommented 推送动态被评论通知
func (s *NotificationService) NotifyPostCommented(postOwnerID, commenterID, postID, commentID uint) error {
	if postOwnerID == commenterID {
		return nil
	}
	notification := &models.Notification{
		UserID:     postOwnerID,
		FromUserID: &commenterID,
		Type:       models.NotificationTypePostCommented,
		DataJSON:   models.JSON{"post_id": postID, "comment_id": commentID},
		Route:      "/posts",
	}
	return s.notificationRepo.Create(notification)
}

// NotifyVerifyReviewed 推送实名认证审核结果通知
func (s *NotificationService) NotifyVerifyReviewed(userID uint, approved bool) error {
	notification := &models.Notification{
		UserID:   userID,
		Type:     models.NotificationTypeVerifyReviewed,
		DataJSON: models.JSON{"approved": approved},
		Route:    "/settings/verification",
	}
	if err := s.notificationRepo.CreateReplacingExisting(notification); err != nil {
		return err
	}
	s.enqueueEmail(notification.ID)
	return nil
}

// RemoveFriendRequestNotification 撤回好友申请通知
// 申请被取消或拒绝后,接收方不应再看到该申请的通知
func (s *NotificationService) RemoveFriendRequestNotification(recipientID, senderID uint) error {
	return s.notificationRepo.DeleteByTypeAndSender(recipientID, senderID, models.NotificationTypeFriendRequest)
}

// List 分页查询通知列表
func (s *NotificationService) List(userID uint, filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	filter.UserID = userID
	return s.notificationRepo.List(filter)
}

// MarkRead 标记单条通知已读,重复标记不改变首次已读时间
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	notification, err := s.notificationRepo.GetByID(notificationID)
	if err != nil {
		return err
	}
	if notification == nil || notification.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.notificationRepo.MarkRead(notificationID, time.Now())
}

// MarkAllRead 标记全部通知已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.notificationRepo.MarkAllRead(userID, time.Now())
}

// UnreadCount 查询未读通知数量
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(userID)
}

// enqueueEmail 尝试为通知入队邮件提醒,失败仅记录日志不影响主流程
func (s *NotificationService) enqueueEmail(notificationID uint) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	payload := queue.NotificationEmailPayload{NotificationID: notificationID}
	if err := s.queueClient.EnqueueNotificationEmail(payload); err != nil {
		logger.Warnw("notification_email_enqueue_failed", "notification_id", notificationID, "error", err)
	}
}
