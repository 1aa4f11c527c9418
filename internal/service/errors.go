package service

import "errors"

// 通用错误
var (
	ErrNotFound = errors.New("resource not found")
)

// 账号与鉴权错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserDisabled       = errors.New("user disabled")
	ErrAgreementRequired  = errors.New("agreement not accepted")
	ErrProfileEmpty       = errors.New("profile update is empty")
	ErrEmailChangeExists  = errors.New("target email already registered")
	ErrEmailChangeInvalid = errors.New("email change request invalid")
)

// 邮箱验证码错误
var (
	ErrInvalidVerifyPurpose       = errors.New("invalid verify purpose")
	ErrVerifyCodeInvalid          = errors.New("verify code invalid")
	ErrVerifyCodeExpired          = errors.New("verify code expired")
	ErrVerifyCodeTooFrequent      = errors.New("verify code requested too frequently")
	ErrVerifyCodeAttemptsExceeded = errors.New("verify code attempts exceeded")
)

// 邮件服务错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// 人机校验错误
var (
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify failed")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 动态与评论错误
var (
	ErrPostNotFound           = errors.New("post not found")
	ErrPostContentRequired    = errors.New("post content required")
	ErrPostContentTooLong     = errors.New("post content too long")
	ErrCommentNotFound        = errors.New("comment not found")
	ErrCommentContentRequired = errors.New("comment content required")
	ErrCommentContentTooLong  = errors.New("comment content too long")
	ErrNotPostOwner           = errors.New("not the post owner")
	ErrNotCommentOwner        = errors.New("not the comment owner")
)

// 通知错误
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// 好友关系错误
var (
	ErrFriendRequestExists   = errors.New("friend request already exists")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendRequestSelf     = errors.New("cannot friend yourself")
	ErrAlreadyFriends        = errors.New("already friends")
	ErrNotFriends            = errors.New("not friends")
)

// 实名认证错误
var (
	ErrVerificationPending         = errors.New("verification request pending")
	ErrVerificationNotFound        = errors.New("verification request not found")
	ErrVerificationReviewed        = errors.New("verification request already reviewed")
	ErrVerificationDecisionInvalid = errors.New("verification decision invalid")
)

// 上传错误
var (
	ErrUploadTooLarge    = errors.New("upload exceeds size limit")
	ErrUploadTypeInvalid = errors.New("upload type not allowed")
)
