package models

import (
	"time"

	"gorm.io/gorm"
)

// CommentContentMaxLen 评论正文最大长度（按字符计）
const CommentContentMaxLen = 100

// Comment 评论表
type Comment struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	PostID    uint           `gorm:"index;not null" json:"post_id"`    // 所属动态ID
	UserID    uint           `gorm:"index;not null" json:"user_id"`    // 评论者ID
	Content   string         `gorm:"type:varchar(100)" json:"content"` // 正文
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}
