package models

import "time"

// Like 点赞表，(post_id, user_id) 唯一
type Like struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                 // 主键
	PostID    uint      `gorm:"uniqueIndex:idx_likes_post_user;not null" json:"post_id"` // 动态ID
	UserID    uint      `gorm:"uniqueIndex:idx_likes_post_user;not null" json:"user_id"` // 用户ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`                              // 创建时间
}

// TableName 指定表名
func (Like) TableName() string {
	return "likes"
}
