package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"
	"github.com/moment-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetVerificationRequests 获取实名认证申请列表
func (h *Handler) GetVerificationRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.DefaultQuery("status", models.VerificationStatusPending))
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	requests, total, err := h.VerificationService.ListPending(repository.VerificationRequestListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      status,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.verification_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, requests, pagination)
}

// ReviewVerificationRequest 审核实名认证申请请求
type ReviewVerificationRequest struct {
	Decision string `json:"decision" binding:"required"` // approved 或 rejected
	Note     string `json:"note"`
}

// ReviewVerification 审核实名认证申请
func (h *Handler) ReviewVerification(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req ReviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	request, err := h.VerificationService.Review(uint(rawID), adminID, req.Decision, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationNotFound):
			respondError(c, response.CodeNotFound, "error.verification_not_found", nil)
		case errors.Is(err, service.ErrVerificationDecisionInvalid):
			respondError(c, response.CodeBadRequest, "error.verification_decision_invalid", nil)
		case errors.Is(err, service.ErrVerificationReviewed):
			respondError(c, response.CodeBadRequest, "error.verification_reviewed", nil)
		default:
			respondError(c, response.CodeInternal, "error.verification_review_failed", err)
		}
		return
	}
	response.Success(c, request)
}
