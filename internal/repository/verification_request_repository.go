package repository

import (
	"errors"

	"github.com/moment-next/internal/models"

	"gorm.io/gorm"
)

// VerificationRequestRepository 实名认证申请数据访问接口
type VerificationRequestRepository interface {
	GetByID(id uint) (*models.VerificationRequest, error)
	GetPendingByUser(userID uint) (*models.VerificationRequest, error)
	List(filter VerificationRequestListFilter) ([]models.VerificationRequest, int64, error)
	Create(request *models.VerificationRequest) error
	Update(request *models.VerificationRequest) error
}

// GormVerificationRequestRepository GORM 实现
type GormVerificationRequestRepository struct {
	db *gorm.DB
}

// NewVerificationRequestRepository 创建实名认证申请仓库
func NewVerificationRequestRepository(db *gorm.DB) *GormVerificationRequestRepository {
	return &GormVerificationRequestRepository{db: db}
}

// GetByID 根据 ID 获取申请
func (r *GormVerificationRequestRepository) GetByID(id uint) (*models.VerificationRequest, error) {
	var request models.VerificationRequest
	if err := r.db.Preload("User").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetPendingByUser 获取某用户待审核的申请
func (r *GormVerificationRequestRepository) GetPendingByUser(userID uint) (*models.VerificationRequest, error) {
	var request models.VerificationRequest
	if err := r.db.Where("user_id = ? AND status = ?", userID, models.VerificationStatusPending).
		Order("id DESC").First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// List 申请列表
func (r *GormVerificationRequestRepository) List(filter VerificationRequestListFilter) ([]models.VerificationRequest, int64, error) {
	query := r.db.Model(&models.VerificationRequest{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.VerificationRequest
	if err := query.Preload("User").Order("created_at DESC, id DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Create 创建申请
func (r *GormVerificationRequestRepository) Create(request *models.VerificationRequest) error {
	return r.db.Create(request).Error
}

// Update 更新申请
func (r *GormVerificationRequestRepository) Update(request *models.VerificationRequest) error {
	return r.db.Save(request).Error
}
