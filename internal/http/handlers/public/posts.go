package public

import (
	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PostAttachmentRequest 动态附件参数
type PostAttachmentRequest struct {
	FilePath string `json:"file_path" binding:"required"`
	FileType string `json:"file_type"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// CreatePostRequest 发布动态请求
type CreatePostRequest struct {
	Content     string                  `json:"content"`
	Attachments []PostAttachmentRequest `json:"attachments"`
}

// ListFeed 获取好友动态流
func (h *Handler) ListFeed(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	posts, total, err := h.PostService.ListFeed(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, h.postListView(posts, uid, h.viewerFriendIDs(uid)), buildPagination(page, pageSize, total))
}

// ListUserPosts 获取指定用户的动态列表
func (h *Handler) ListUserPosts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	authorID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	posts, total, err := h.PostService.ListByUser(authorID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, h.postListView(posts, uid, h.viewerFriendIDs(uid)), buildPagination(page, pageSize, total))
}

// GetPost 获取动态详情
func (h *Handler) GetPost(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	post, err := h.PostService.Get(postID)
	if err != nil {
		respondWithMappedError(c, err, postErrorRules, response.CodeInternal, "error.internal")
		return
	}

	friendIDs := map[uint]bool{}
	if post.UserID != uid {
		isFriend, friendErr := h.FriendService.AreFriends(uid, post.UserID)
		if friendErr != nil {
			logger.Warnw("friend_lookup_failed", "user_id", uid, "author_id", post.UserID, "error", friendErr)
		}
		friendIDs[post.UserID] = isFriend
	}
	response.Success(c, h.postView(post, uid, friendIDs))
}

// CreatePost 发布动态
func (h *Handler) CreatePost(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := servicePostInput(req)
	post, err := h.PostService.Create(uid, input)
	if err != nil {
		respondWithMappedError(c, err, postErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, h.postView(post, uid, nil))
}

// DeletePost 删除自己的动态
func (h *Handler) DeletePost(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.PostService.Delete(postID, uid); err != nil {
		respondWithMappedError(c, err, postErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ToggleLike 点赞/取消点赞
func (h *Handler) ToggleLike(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.PostService.ToggleLike(postID, uid)
	if err != nil {
		respondWithMappedError(c, err, postErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"liked":      result.Liked,
		"like_count": result.LikeCount,
	})
}

// ListComments 获取评论列表
func (h *Handler) ListComments(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	comments, total, err := h.PostService.ListComments(postID, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, commentErrorRules, response.CodeInternal, "error.internal")
		return
	}
	views := make([]gin.H, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}
	response.SuccessWithPage(c, views, buildPagination(page, pageSize, total))
}

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment 发表评论
func (h *Handler) CreateComment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	comment, err := h.PostService.AddComment(postID, uid, req.Content)
	if err != nil {
		respondWithMappedError(c, err, commentErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, commentView(comment))
}

// DeleteComment 删除评论
func (h *Handler) DeleteComment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseUintParam(c, "comment_id")
	if !ok {
		return
	}

	if err := h.PostService.DeleteComment(commentID, uid); err != nil {
		respondWithMappedError(c, err, commentErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// UploadAttachment 上传动态附件或头像
func (h *Handler) UploadAttachment(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	scene := c.DefaultPostForm("scene", "attachment")

	url, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		respondWithMappedError(c, err, verificationErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"url":      url,
		"filename": file.Filename,
		"size":     file.Size,
	})
}

func servicePostInput(req CreatePostRequest) service.CreatePostInput {
	input := service.CreatePostInput{Content: req.Content}
	for _, item := range req.Attachments {
		input.Attachments = append(input.Attachments, service.AttachmentInput{
			FilePath: item.FilePath,
			FileType: item.FileType,
			FileName: item.FileName,
			FileSize: item.FileSize,
		})
	}
	return input
}

// viewerFriendIDs 批量取好友ID集合,失败时降级为空集而不是阻断列表
func (h *Handler) viewerFriendIDs(viewerID uint) map[uint]bool {
	set, err := h.FriendService.FriendIDSet(viewerID)
	if err != nil {
		logger.Warnw("friend_id_set_failed", "user_id", viewerID, "error", err)
		return map[uint]bool{}
	}
	return set
}

func (h *Handler) postListView(posts []models.Post, viewerID uint, friendIDs map[uint]bool) []gin.H {
	views := make([]gin.H, 0, len(posts))
	for i := range posts {
		views = append(views, h.postView(&posts[i], viewerID, friendIDs))
	}
	return views
}

func (h *Handler) postView(post *models.Post, viewerID uint, friendIDs map[uint]bool) gin.H {
	likeCount := len(post.Likes)
	likedByMe := false
	for _, like := range post.Likes {
		if like.UserID == viewerID {
			likedByMe = true
			break
		}
	}
	attachments := make([]gin.H, 0, len(post.Attachments))
	for _, item := range post.Attachments {
		attachments = append(attachments, gin.H{
			"id":        item.ID,
			"file_path": item.FilePath,
			"file_type": item.FileType,
			"file_name": item.FileName,
			"file_size": item.FileSize,
		})
	}
	comments := make([]gin.H, 0, len(post.Comments))
	for i := range post.Comments {
		comments = append(comments, commentView(&post.Comments[i]))
	}
	view := gin.H{
		"id":          post.ID,
		"user_id":     post.UserID,
		"content":     post.Content,
		"created_at":  post.CreatedAt,
		"like_count":  likeCount,
		"liked_by_me": likedByMe,
		"is_friend":   post.UserID != viewerID && friendIDs[post.UserID],
		"attachments": attachments,
		"comments":    comments,
	}
	if post.User != nil {
		view["user"] = userSummaryView(post.User)
	}
	return view
}

func commentView(comment *models.Comment) gin.H {
	view := gin.H{
		"id":         comment.ID,
		"post_id":    comment.PostID,
		"user_id":    comment.UserID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
	}
	if comment.User != nil {
		view["user"] = userSummaryView(comment.User)
	}
	return view
}

func userSummaryView(user *models.User) gin.H {
	return gin.H{
		"id":                  user.ID,
		"username":            user.Username,
		"nickname":            user.DisplayName,
		"avatar":              user.Avatar,
		"verification_status": user.VerificationStatus,
	}
}
