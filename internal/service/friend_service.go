package service

import (
	"time"

	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"
)

// FriendService 好友关系服务
type FriendService struct {
	friendRepo repository.FriendRequestRepository
	userRepo   repository.UserRepository
	notifier   *NotificationService
}

// NewFriendService 创建好友关系服务
func NewFriendService(friendRepo repository.FriendRequestRepository, userRepo repository.UserRepository, notifier *NotificationService) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// SendRequest 发起好友申请
// 重复申请返回已存在错误;被拒绝过的申请允许重新发起
func (s *FriendService) SendRequest(senderID, recipientID uint) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrFriendRequestSelf
	}
	recipient, err := s.userRepo.GetByID(recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.friendRepo.GetBetween(senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendRequestStatusAccepted:
			return nil, ErrAlreadyFriends
		case models.FriendRequestStatusPending:
			return nil, ErrFriendRequestExists
		default:
			if err := s.friendRepo.Delete(existing.ID); err != nil {
				return nil, err
			}
		}
	}

	request := &models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.Create(request); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyFriendRequest(recipientID, senderID, request.ID); err != nil {
			logger.Warnw("friend_request_notify_failed", "request_id", request.ID, "error", err)
		}
	}
	return request, nil
}

// Accept 接受好友申请,仅接收方可操作
func (s *FriendService) Accept(requestID, userID uint) (*models.FriendRequest, error) {
	request, err := s.pendingRequestForRecipient(requestID, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	request.Status = models.FriendRequestStatusAccepted
	request.RespondedAt = &now
	if err := s.friendRepo.Update(request); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.RemoveFriendRequestNotification(request.RecipientID, request.SenderID); err != nil {
			logger.Warnw("friend_request_notification_remove_failed", "request_id", request.ID, "error", err)
		}
		if err := s.notifier.NotifyFriendAccepted(request.SenderID, request.RecipientID); err != nil {
			logger.Warnw("friend_accept_notify_failed", "request_id", request.ID, "error", err)
		}
	}
	return request, nil
}

// Decline 拒绝好友申请,仅接收方可操作
func (s *FriendService) Decline(requestID, userID uint) (*models.FriendRequest, error) {
	request, err := s.pendingRequestForRecipient(requestID, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	request.Status = models.FriendRequestStatusDeclined
	request.RespondedAt = &now
	if err := s.friendRepo.Update(request); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.RemoveFriendRequestNotification(request.RecipientID, request.SenderID); err != nil {
			logger.Warnw("friend_request_notification_remove_failed", "request_id", request.ID, "error", err)
		}
	}
	return request, nil
}

// Cancel 撤回好友申请,仅发起方可操作
func (s *FriendService) Cancel(requestID, userID uint) error {
	request, err := s.friendRepo.GetByID(requestID)
	if err != nil {
		return err
	}
	if request == nil || request.SenderID != userID {
		return ErrFriendRequestNotFound
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrFriendRequestNotFound
	}
	if err := s.friendRepo.Delete(requestID); err != nil {
		return err
	}
	if s.notifier != nil {
		if err := s.notifier.RemoveFriendRequestNotification(request.RecipientID, request.SenderID); err != nil {
			logger.Warnw("friend_request_notification_remove_failed", "request_id", request.ID, "error", err)
		}
	}
	return nil
}

// Unfriend 解除好友关系
func (s *FriendService) Unfriend(userID, otherID uint) error {
	request, err := s.friendRepo.GetBetween(userID, otherID)
	if err != nil {
		return err
	}
	if request == nil || request.Status != models.FriendRequestStatusAccepted {
		return ErrNotFriends
	}
	return s.friendRepo.Delete(request.ID)
}

// ListFriends 获取好友列表
func (s *FriendService) ListFriends(userID uint) ([]models.User, error) {
	ids, err := s.friendRepo.ListFriendIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.userRepo.ListByIDs(ids)
}

// ListIncoming 获取待处理的收到申请
func (s *FriendService) ListIncoming(userID uint, page, pageSize int) ([]models.FriendRequest, int64, error) {
	filter := repository.FriendRequestListFilter{
		Page:        page,
		PageSize:    pageSize,
		RecipientID: userID,
		Status:      models.FriendRequestStatusPending,
	}
	return s.friendRepo.List(filter)
}

// ListOutgoing 获取待处理的发出申请
func (s *FriendService) ListOutgoing(userID uint, page, pageSize int) ([]models.FriendRequest, int64, error) {
	filter := repository.FriendRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		SenderID: userID,
		Status:   models.FriendRequestStatusPending,
	}
	return s.friendRepo.List(filter)
}

// AreFriends 判断两个用户是否为好友
func (s *FriendService) AreFriends(userA, userB uint) (bool, error) {
	return s.friendRepo.AreFriends(userA, userB)
}

// FriendIDSet 获取某用户的好友ID集合,供列表页批量标注好友关系
func (s *FriendService) FriendIDSet(userID uint) (map[uint]bool, error) {
	ids, err := s.friendRepo.ListFriendIDs(userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *FriendService) pendingRequestForRecipient(requestID, userID uint) (*models.FriendRequest, error) {
	request, err := s.friendRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil || request.RecipientID != userID {
		return nil, ErrFriendRequestNotFound
	}
	if request.Status != models.FriendRequestStatusPending {
		return nil, ErrFriendRequestNotFound
	}
	return request, nil
}
