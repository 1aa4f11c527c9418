package models

import "time"

// 通知类型
const (
	NotificationTypeFriendRequest   = "friend_request"
	NotificationTypeFriendAccepted  = "friend_accepted"
	NotificationTypePostLiked       = "post_liked"
	NotificationTypePostCommented   = "post_commented"
	NotificationTypeVerifyReviewed  = "verification_reviewed"
)

// Notification 站内通知表
type Notification struct {
	ID         uint       `gorm:"primarykey" json:"id"`                 // 主键
	UserID     uint       `gorm:"index;not null" json:"user_id"`        // 接收者ID
	FromUserID *uint      `gorm:"index" json:"from_user_id"`            // 触发者ID（系统通知为空）
	Type       string     `gorm:"index;not null" json:"type"`           // 通知类型
	DataJSON   JSON       `gorm:"type:json" json:"data"`                // 附加数据（如 friend_request_id）
	Route      string     `gorm:"type:varchar(255)" json:"route"`       // 前端跳转路由
	ReadAt     *time.Time `gorm:"index" json:"read_at"`                 // 已读时间
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`              // 创建时间
	FromUser   *User      `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
