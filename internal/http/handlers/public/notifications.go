package public

import (
	"strings"

	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListNotifications 获取通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	filter := repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UnreadOnly: strings.EqualFold(c.Query("unread_only"), "true"),
		Type:       strings.TrimSpace(c.Query("type")),
	}
	items, total, err := h.NotificationService.List(uid, filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	views := make([]gin.H, 0, len(items))
	for i := range items {
		views = append(views, notificationView(&items[i]))
	}
	response.SuccessWithPage(c, views, buildPagination(page, pageSize, total))
}

// GetUnreadCount 获取未读通知数量
func (h *Handler) GetUnreadCount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	count, err := h.NotificationService.UnreadCount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}

// MarkNotificationRead 标记单条通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	notificationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.NotificationService.MarkRead(uid, notificationID); err != nil {
		respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"read": true})
}

// MarkAllNotificationsRead 标记全部通知已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.NotificationService.MarkAllRead(uid); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"read": true})
}

func notificationView(notification *models.Notification) gin.H {
	view := gin.H{
		"id":         notification.ID,
		"type":       notification.Type,
		"data":       notification.DataJSON,
		"route":      notification.Route,
		"read_at":    notification.ReadAt,
		"created_at": notification.CreatedAt,
	}
	if notification.FromUser != nil {
		view["from_user"] = userSummaryView(notification.FromUser)
	}
	return view
}
