package repository

import (
	"errors"

	"github.com/moment-next/internal/models"

	"gorm.io/gorm"
)

// FriendRequestRepository 好友请求数据访问接口
type FriendRequestRepository interface {
	GetByID(id uint) (*models.FriendRequest, error)
	GetBetween(userA, userB uint) (*models.FriendRequest, error)
	List(filter FriendRequestListFilter) ([]models.FriendRequest, int64, error)
	Create(request *models.FriendRequest) error
	Update(request *models.FriendRequest) error
	Delete(id uint) error
	ListFriendIDs(userID uint) ([]uint, error)
	AreFriends(userA, userB uint) (bool, error)
}

// GormFriendRequestRepository GORM 实现
type GormFriendRequestRepository struct {
	db *gorm.DB
}

// NewFriendRequestRepository 创建好友请求仓库
func NewFriendRequestRepository(db *gorm.DB) *GormFriendRequestRepository {
	return &GormFriendRequestRepository{db: db}
}

// GetByID 根据 ID 获取好友请求
func (r *GormFriendRequestRepository) GetByID(id uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.Preload("Sender").Preload("Recipient").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetBetween 获取两个用户之间任意方向的请求记录
func (r *GormFriendRequestRepository) GetBetween(userA, userB uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.Where(
		"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		userA, userB, userB, userA,
	).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// List 好友请求列表
func (r *GormFriendRequestRepository) List(filter FriendRequestListFilter) ([]models.FriendRequest, int64, error) {
	query := r.db.Model(&models.FriendRequest{})

	if filter.SenderID > 0 {
		query = query.Where("sender_id = ?", filter.SenderID)
	}
	if filter.RecipientID > 0 {
		query = query.Where("recipient_id = ?", filter.RecipientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.FriendRequest
	if err := query.Preload("Sender").Preload("Recipient").
		Order("created_at DESC, id DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Create 创建好友请求
func (r *GormFriendRequestRepository) Create(request *models.FriendRequest) error {
	return r.db.Create(request).Error
}

// Update 更新好友请求
func (r *GormFriendRequestRepository) Update(request *models.FriendRequest) error {
	return r.db.Save(request).Error
}

// Delete 删除好友请求
func (r *GormFriendRequestRepository) Delete(id uint) error {
	return r.db.Delete(&models.FriendRequest{}, id).Error
}

// ListFriendIDs 获取某用户全部好友ID（accepted 状态的双向对端）
func (r *GormFriendRequestRepository) ListFriendIDs(userID uint) ([]uint, error) {
	var requests []models.FriendRequest
	if err := r.db.Where(
		"(sender_id = ? OR recipient_id = ?) AND status = ?",
		userID, userID, models.FriendRequestStatusAccepted,
	).Find(&requests).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(requests))
	for _, request := range requests {
		if request.SenderID == userID {
			ids = append(ids, request.RecipientID)
		} else {
			ids = append(ids, request.SenderID)
		}
	}
	return ids, nil
}

// AreFriends 判断两个用户是否为好友
func (r *GormFriendRequestRepository) AreFriends(userA, userB uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.FriendRequest{}).Where(
		"((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND status = ?",
		userA, userB, userB, userA, models.FriendRequestStatusAccepted,
	).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
