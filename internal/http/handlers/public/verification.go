package public

import (
	"time"

	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/models"

	"github.com/gin-gonic/gin"
)

// SubmitVerification 提交实名认证申请（multipart 上传证件文件）
func (h *Handler) SubmitVerification(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	documentPath, err := h.UploadService.SaveDocument(file)
	if err != nil {
		respondWithMappedError(c, err, verificationErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}

	request, err := h.VerificationService.Submit(uid, documentPath, file.Filename)
	if err != nil {
		respondWithMappedError(c, err, verificationErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, verificationRequestView(request))
}

// GetVerificationStatus 获取当前用户最近一次认证申请状态
func (h *Handler) GetVerificationStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	request, err := h.VerificationService.Status(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if request == nil {
		response.Success(c, gin.H{"status": nil, "request": nil})
		return
	}
	response.Success(c, gin.H{
		"status":  request.Status,
		"request": verificationRequestView(request),
	})
}

func verificationRequestView(request *models.VerificationRequest) gin.H {
	view := gin.H{
		"id":            request.ID,
		"document_name": request.DocumentName,
		"status":        request.Status,
		"note":          request.Note,
		"created_at":    request.CreatedAt.Format(time.RFC3339),
	}
	if request.ReviewedAt != nil {
		view["reviewed_at"] = request.ReviewedAt.Format(time.RFC3339)
	}
	return view
}
