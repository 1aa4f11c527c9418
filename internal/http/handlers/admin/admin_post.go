package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPosts 获取动态列表（内容审核）
func (h *Handler) GetAdminPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var authorID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		authorID = uint(parsed)
	}
	search := strings.TrimSpace(c.Query("search"))

	posts, total, err := h.PostService.ListAdmin(authorID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.post_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, posts, pagination)
}

// DeleteAdminPost 删除动态（审核移除）
func (h *Handler) DeleteAdminPost(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.PostService.AdminDelete(uint(rawID)); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, response.CodeNotFound, "error.post_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.post_delete_failed", err)
		return
	}
	response.Success(c, nil)
}

// DeleteAdminComment 删除评论（审核移除）
func (h *Handler) DeleteAdminComment(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.PostService.AdminDeleteComment(uint(rawID)); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			respondError(c, response.CodeNotFound, "error.comment_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.comment_delete_failed", err)
		return
	}
	response.Success(c, nil)
}
