package models

import (
	"time"

	"gorm.io/gorm"
)

// 实名认证审核结论
const (
	VerificationReviewApproved = "approved"
	VerificationReviewRejected = "rejected"
)

// VerificationRequest 实名认证申请表
type VerificationRequest struct {
	ID           uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID       uint           `gorm:"index;not null" json:"user_id"`                 // 申请用户ID
	DocumentPath string         `gorm:"type:varchar(500)" json:"-"`                    // 证件文件路径（不返回给前端）
	DocumentName string         `gorm:"type:varchar(255)" json:"document_name"`        // 原始文件名
	Status       string         `gorm:"index;not null;default:'pending'" json:"status"` // pending/approved/rejected
	Note         string         `gorm:"type:varchar(500)" json:"note"`                 // 审核备注
	ReviewedBy   *uint          `gorm:"index" json:"reviewed_by"`                      // 审核管理员ID
	ReviewedAt   *time.Time     `json:"reviewed_at"`                                   // 审核时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
	User         *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (VerificationRequest) TableName() string {
	return "verification_requests"
}
