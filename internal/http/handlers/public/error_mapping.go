package public

import (
	"errors"

	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var verifyCodeSendErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
	{target: service.ErrVerifyCodeTooFrequent, code: response.CodeTooManyRequests, key: "error.verify_code_too_frequent"},
	{target: service.ErrEmailRecipientRejected, code: response.CodeBadRequest, key: "error.email_recipient_rejected"},
	{target: service.ErrEmailServiceDisabled, code: response.CodeInternal, key: "error.email_send_failed"},
	{target: service.ErrEmailServiceNotConfigured, code: response.CodeInternal, key: "error.email_send_failed"},
}

var verifyCodeCheckErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrVerifyCodeInvalid, code: response.CodeBadRequest, key: "error.verify_code_invalid"},
	{target: service.ErrVerifyCodeExpired, code: response.CodeBadRequest, key: "error.verify_code_expired"},
	{target: service.ErrVerifyCodeAttemptsExceeded, code: response.CodeBadRequest, key: "error.verify_code_max_attempts"},
}

var postErrorRules = []mappedHandlerError{
	{target: service.ErrPostNotFound, code: response.CodeNotFound, key: "error.post_not_found"},
	{target: service.ErrPostContentRequired, code: response.CodeBadRequest, key: "error.post_content_required"},
	{target: service.ErrPostContentTooLong, code: response.CodeBadRequest, key: "error.post_content_too_long"},
	{target: service.ErrNotPostOwner, code: response.CodeForbidden, key: "error.not_post_owner"},
}

var commentErrorRules = []mappedHandlerError{
	{target: service.ErrPostNotFound, code: response.CodeNotFound, key: "error.post_not_found"},
	{target: service.ErrCommentNotFound, code: response.CodeNotFound, key: "error.comment_not_found"},
	{target: service.ErrCommentContentRequired, code: response.CodeBadRequest, key: "error.comment_content_required"},
	{target: service.ErrCommentContentTooLong, code: response.CodeBadRequest, key: "error.comment_content_too_long"},
	{target: service.ErrNotCommentOwner, code: response.CodeForbidden, key: "error.not_comment_owner"},
}

var friendErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrFriendRequestSelf, code: response.CodeBadRequest, key: "error.friend_request_self"},
	{target: service.ErrFriendRequestExists, code: response.CodeBadRequest, key: "error.friend_request_exists"},
	{target: service.ErrFriendRequestNotFound, code: response.CodeNotFound, key: "error.friend_request_not_found"},
	{target: service.ErrAlreadyFriends, code: response.CodeBadRequest, key: "error.already_friends"},
	{target: service.ErrNotFriends, code: response.CodeBadRequest, key: "error.not_friends"},
}

var notificationErrorRules = []mappedHandlerError{
	{target: service.ErrNotificationNotFound, code: response.CodeNotFound, key: "error.notification_not_found"},
}

var verificationErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrVerificationPending, code: response.CodeBadRequest, key: "error.verification_pending"},
	{target: service.ErrVerificationReviewed, code: response.CodeBadRequest, key: "error.verification_reviewed"},
	{target: service.ErrUploadTooLarge, code: response.CodeBadRequest, key: "error.upload_too_large"},
	{target: service.ErrUploadTypeInvalid, code: response.CodeBadRequest, key: "error.upload_type_invalid"},
}
