package models

import (
	"time"

	"gorm.io/gorm"
)

// PostContentMaxLen 动态正文最大长度（按字符计）
const PostContentMaxLen = 500

// Post 动态表
type Post struct {
	ID          uint           `gorm:"primarykey" json:"id"`             // 主键
	UserID      uint           `gorm:"index;not null" json:"user_id"`    // 作者ID
	Content     string         `gorm:"type:varchar(500)" json:"content"` // 正文
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                       // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Attachments []Attachment   `gorm:"foreignKey:PostID" json:"attachments,omitempty"`
	Comments    []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Likes       []Like         `gorm:"foreignKey:PostID" json:"likes,omitempty"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}
