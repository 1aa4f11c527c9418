package repository

import (
	"errors"

	"github.com/moment-next/internal/models"

	"gorm.io/gorm"
)

// AttachmentRepository 附件数据访问接口
type AttachmentRepository interface {
	GetByID(id uint) (*models.Attachment, error)
	ListByPost(postID uint) ([]models.Attachment, error)
	Create(attachment *models.Attachment) error
	Delete(id uint) error
}

// GormAttachmentRepository GORM 实现
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建附件仓库
func NewAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// GetByID 根据 ID 获取附件
func (r *GormAttachmentRepository) GetByID(id uint) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

// ListByPost 获取某动态的全部附件
func (r *GormAttachmentRepository) ListByPost(postID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if err := r.db.Where("post_id = ?", postID).Order("id ASC").Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Create 创建附件记录
func (r *GormAttachmentRepository) Create(attachment *models.Attachment) error {
	return r.db.Create(attachment).Error
}

// Delete 删除附件记录
func (r *GormAttachmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Attachment{}, id).Error
}
