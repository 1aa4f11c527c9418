package repository

import (
	"errors"

	"github.com/moment-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository 点赞数据访问接口
type LikeRepository interface {
	Get(postID, userID uint) (*models.Like, error)
	Create(like *models.Like) error
	Delete(postID, userID uint) error
	CountByPost(postID uint) (int64, error)
	ListUserIDsByPost(postID uint) ([]uint, error)
}

// GormLikeRepository GORM 实现
type GormLikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository 创建点赞仓库
func NewLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

// Get 查询某用户对某动态的点赞记录
func (r *GormLikeRepository) Get(postID, userID uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

// Create 创建点赞记录,并发下同一用户重复点赞按已点赞处理
func (r *GormLikeRepository) Create(like *models.Like) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// Delete 删除点赞记录
func (r *GormLikeRepository) Delete(postID, userID uint) error {
	return r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{}).Error
}

// CountByPost 统计动态点赞数
func (r *GormLikeRepository) CountByPost(postID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListUserIDsByPost 获取某动态的点赞用户ID列表
func (r *GormLikeRepository) ListUserIDsByPost(postID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
