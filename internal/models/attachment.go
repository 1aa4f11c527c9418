package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment 动态附件表
type Attachment struct {
	ID        uint           `gorm:"primarykey" json:"id"`                  // 主键
	PostID    uint           `gorm:"index;not null" json:"post_id"`         // 所属动态ID
	FilePath  string         `gorm:"type:varchar(500)" json:"file_path"`    // 存储路径
	FileType  string         `gorm:"type:varchar(100)" json:"file_type"`    // MIME 类型
	FileName  string         `gorm:"type:varchar(255)" json:"file_name"`    // 原始文件名
	FileSize  int64          `json:"file_size"`                             // 字节数
	CreatedAt time.Time      `gorm:"index" json:"created_at"`               // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间
}

// TableName 指定表名
func (Attachment) TableName() string {
	return "attachments"
}
