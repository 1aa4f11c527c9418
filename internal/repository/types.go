package repository

import "time"

// PostListFilter 查询动态列表的过滤条件
type PostListFilter struct {
	Page      int
	PageSize  int
	UserID    uint   // 仅某个作者
	AuthorIDs []uint // 限定作者集合（好友动态流）
	Search    string
	WithUser  bool
}

// CommentListFilter 查询评论列表的过滤条件
type CommentListFilter struct {
	Page     int
	PageSize int
	PostID   uint
	UserID   uint
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Type       string
	UnreadOnly bool
}

// FriendRequestListFilter 查询好友请求列表的过滤条件
type FriendRequestListFilter struct {
	Page        int
	PageSize    int
	SenderID    uint
	RecipientID uint
	Status      string
}

// VerificationRequestListFilter 查询实名认证申请列表的过滤条件
type VerificationRequestListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page               int
	PageSize           int
	Keyword            string
	Status             string
	VerificationStatus string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	LastLoginFrom      *time.Time
	LastLoginTo        *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// UserLoginLogListFilter 查询登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
