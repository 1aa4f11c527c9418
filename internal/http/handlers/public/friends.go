package public

import (
	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/models"

	"github.com/gin-gonic/gin"
)

// SendFriendRequestRequest 发起好友申请请求
type SendFriendRequestRequest struct {
	RecipientID uint `json:"recipient_id" binding:"required"`
}

// SendFriendRequest 发起好友申请
func (h *Handler) SendFriendRequest(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	request, err := h.FriendService.SendRequest(uid, req.RecipientID)
	if err != nil {
		respondWithMappedError(c, err, friendErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, friendRequestView(request))
}

// AcceptFriendRequest 接受好友申请
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	request, err := h.FriendService.Accept(requestID, uid)
	if err != nil {
		respondWithMappedError(c, err, friendErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, friendRequestView(request))
}

// DeclineFriendRequest 拒绝好友申请
func (h *Handler) DeclineFriendRequest(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	request, err := h.FriendService.Decline(requestID, uid)
	if err != nil {
		respondWithMappedError(c, err, friendErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, friendRequestView(request))
}

// CancelFriendRequest 撤回好友申请
func (h *Handler) CancelFriendRequest(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.FriendService.Cancel(requestID, uid); err != nil {
		respondWithMappedError(c, err, friendErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"cancelled": true})
}

// Unfriend 解除好友关系
func (h *Handler) Unfriend(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	otherID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.FriendService.Unfriend(uid, otherID); err != nil {
		respondWithMappedError(c, err, friendErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ListFriends 获取好友列表
func (h *Handler) ListFriends(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	friends, err := h.FriendService.ListFriends(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	views := make([]gin.H, 0, len(friends))
	for i := range friends {
		views = append(views, userSummaryView(&friends[i]))
	}
	response.Success(c, views)
}

// ListFriendRequests 获取待处理好友申请
// direction=incoming 查收到的申请,direction=outgoing 查发出的申请
func (h *Handler) ListFriendRequests(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	var (
		items []models.FriendRequest
		total int64
		err   error
	)
	if c.DefaultQuery("direction", "incoming") == "outgoing" {
		items, total, err = h.FriendService.ListOutgoing(uid, page, pageSize)
	} else {
		items, total, err = h.FriendService.ListIncoming(uid, page, pageSize)
	}
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	views := make([]gin.H, 0, len(items))
	for i := range items {
		views = append(views, friendRequestView(&items[i]))
	}
	response.SuccessWithPage(c, views, buildPagination(page, pageSize, total))
}

func friendRequestView(request *models.FriendRequest) gin.H {
	view := gin.H{
		"id":           request.ID,
		"sender_id":    request.SenderID,
		"recipient_id": request.RecipientID,
		"status":       request.Status,
		"created_at":   request.CreatedAt,
		"responded_at": request.RespondedAt,
	}
	if request.Sender != nil {
		view["sender"] = userSummaryView(request.Sender)
	}
	if request.Recipient != nil {
		view["recipient"] = userSummaryView(request.Recipient)
	}
	return view
}
