package models

import (
	"time"
)

// 好友请求状态
const (
	FriendRequestStatusPending  = "pending"
	FriendRequestStatusAccepted = "accepted"
	FriendRequestStatusDeclined = "declined"
)

// FriendRequest 好友请求表，accepted 即成为好友关系
// 拒绝/解除好友后物理删除,唯一索引 (sender_id, recipient_id) 才能重新发起
type FriendRequest struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                               // 主键
	SenderID    uint       `gorm:"uniqueIndex:idx_friend_req_pair;not null" json:"sender_id"`          // 发起者ID
	RecipientID uint       `gorm:"uniqueIndex:idx_friend_req_pair;index;not null" json:"recipient_id"` // 接收者ID
	Status      string     `gorm:"index;not null;default:'pending'" json:"status"`                     // 状态
	RespondedAt *time.Time `json:"responded_at"`                                                       // 处理时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                            // 创建时间
	Sender      *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient   *User      `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

// TableName 指定表名
func (FriendRequest) TableName() string {
	return "friend_requests"
}
