package service

import (
	"strings"
	"time"

	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"
)

// VerificationService 实名认证服务
type VerificationService struct {
	verificationRepo repository.VerificationRequestRepository
	userRepo         repository.UserRepository
	notifier         *NotificationService
}

// NewVerificationService 创建实名认证服务
func NewVerificationService(
	verificationRepo repository.VerificationRequestRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
) *VerificationService {
	return &VerificationService{
		verificationRepo: verificationRepo,
		userRepo:         userRepo,
		notifier:         notifier,
	}
}

// Submit 提交实名认证申请
// 同一用户存在待审核申请时拒绝重复提交;已认证用户无需再次申请
func (s *VerificationService) Submit(userID uint, documentPath, documentName string) (*models.VerificationRequest, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.VerificationStatus == models.VerificationStatusVerified {
		return nil, ErrVerificationReviewed
	}

	pending, err := s.verificationRepo.GetPendingByUser(userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrVerificationPending
	}

	request := &models.VerificationRequest{
		UserID:       userID,
		DocumentPath: documentPath,
		DocumentName: documentName,
		Status:       "pending",
	}
	if err := s.verificationRepo.Create(request); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"verification_status": models.VerificationStatusPending,
	}); err != nil {
		return nil, err
	}
	return request, nil
}

// Status 查询当前用户最近一次申请
func (s *VerificationService) Status(userID uint) (*models.VerificationRequest, error) {
	filter := repository.VerificationRequestListFilter{
		Page:     1,
		PageSize: 1,
		UserID:   userID,
	}
	items, _, err := s.verificationRepo.List(filter)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListPending 管理端查询申请列表
func (s *VerificationService) ListPending(filter repository.VerificationRequestListFilter) ([]models.VerificationRequest, int64, error) {
	return s.verificationRepo.List(filter)
}

// Review 管理端审核申请
// 审核结论写入申请记录,并同步用户认证状态与站内通知
func (s *VerificationService) Review(requestID, adminID uint, decision, note string) (*models.VerificationRequest, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != models.VerificationReviewApproved && decision != models.VerificationReviewRejected {
		return nil, ErrVerificationDecisionInvalid
	}

	request, err := s.verificationRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrVerificationNotFound
	}
	if request.Status != "pending" {
		return nil, ErrVerificationReviewed
	}

	now := time.Now()
	request.Status = decision
	request.Note = strings.TrimSpace(note)
	request.ReviewedBy = &adminID
	request.ReviewedAt = &now
	if err := s.verificationRepo.Update(request); err != nil {
		return nil, err
	}

	userStatus := models.VerificationStatusRejected
	if decision == models.VerificationReviewApproved {
		userStatus = models.VerificationStatusVerified
	}
	if err := s.userRepo.UpdateFields(request.UserID, map[string]interface{}{
		"verification_status": userStatus,
	}); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		approved := decision == models.VerificationReviewApproved
		if err := s.notifier.NotifyVerifyReviewed(request.UserID, approved); err != nil {
			logger.Warnw("verification_review_notify_failed", "request_id", request.ID, "error", err)
		}
	}
	return request, nil
}
