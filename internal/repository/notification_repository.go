package repository

import (
	"errors"
	"time"

	"github.com/moment-next/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notification) error
	CreateReplacingExisting(notification *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	List(filter NotificationListFilter) ([]models.Notification, int64, error)
	MarkRead(id uint, readAt time.Time) error
	MarkAllRead(userID uint, readAt time.Time) error
	UnreadCount(userID uint) (int64, error)
	DeleteByTypeAndSender(userID, fromUserID uint, notificationType string) error
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create 创建通知
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// CreateReplacingExisting 在同一事务内删除同 (接收者, 触发者, 类型) 的旧通知后写入新通知，
// 保证同一触发者的同类通知至多一条。
func (r *GormNotificationRepository) CreateReplacingExisting(notification *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		del := tx.Where("user_id = ? AND type = ?", notification.UserID, notification.Type)
		if notification.FromUserID != nil {
			del = del.Where("from_user_id = ?", *notification.FromUserID)
		} else {
			del = del.Where("from_user_id IS NULL")
		}
		if err := del.Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Create(notification).Error
	})
}

// GetByID 根据 ID 获取通知
func (r *GormNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.Preload("FromUser").First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// List 通知列表，按创建时间倒序
func (r *GormNotificationRepository) List(filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var notifications []models.Notification
	if err := query.Preload("FromUser").Order("created_at DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead 标记单条已读，已读记录不再更新（幂等）
func (r *GormNotificationRepository) MarkRead(id uint, readAt time.Time) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", readAt).Error
}

// MarkAllRead 标记某用户全部未读通知为已读
func (r *GormNotificationRepository) MarkAllRead(userID uint, readAt time.Time) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", readAt).Error
}

// UnreadCount 统计未读通知数
func (r *GormNotificationRepository) UnreadCount(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByTypeAndSender 删除同 (接收者, 触发者, 类型) 的通知（如撤回好友请求时）
func (r *GormNotificationRepository) DeleteByTypeAndSender(userID, fromUserID uint, notificationType string) error {
	return r.db.Where("user_id = ? AND from_user_id = ? AND type = ?", userID, fromUserID, notificationType).
		Delete(&models.Notification{}).Error
}
