package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的站点语言
const (
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"
)

// ResolveLocale 解析请求语言，优先级：query > header > 默认中文
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return LocaleZH
	}
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return normalize(locale)
	}
	if locale := strings.TrimSpace(c.GetHeader("Accept-Language")); locale != "" {
		// 只取第一个语言标签
		if idx := strings.IndexAny(locale, ",;"); idx > 0 {
			locale = locale[:idx]
		}
		return normalize(locale)
	}
	return LocaleZH
}

func normalize(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "zh-tw"), strings.HasPrefix(l, "zh-hk"), strings.HasPrefix(l, "zh-mo"):
		return LocaleTW
	case strings.HasPrefix(l, "en"):
		return LocaleEN
	default:
		return LocaleZH
	}
}

// T 取指定语言的文案，缺失时依次回退：目标语言 → 简体中文 → key 本身
func T(locale, key string) string {
	normalized := normalize(locale)
	if messages, ok := catalog[normalized]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if normalized != LocaleZH {
		if msg, ok := catalog[LocaleZH][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 取指定语言的文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if format == key || len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":             "请求参数错误",
		"error.unauthorized":            "未登录或登录已过期",
		"error.forbidden":               "没有权限执行该操作",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器内部错误",
		"error.auth_header_missing":     "缺少认证信息",
		"error.auth_header_invalid":     "认证信息格式错误",
		"error.jwt_secret_missing":      "服务端 JWT 密钥未配置",
		"error.token_invalid":           "登录凭证无效",
		"error.token_revoked":           "登录凭证已失效，请重新登录",
		"error.user_disabled":           "账号已被禁用",
		"error.rate_limit_unavailable":  "限流服务不可用，请稍后再试",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后再试",
		"error.invalid_credentials":     "邮箱或密码错误",
		"error.invalid_email":           "邮箱格式不正确",
		"error.invalid_username":        "用户名只能包含小写字母、数字和下划线，长度 3-30",
		"error.email_registered":        "该邮箱已注册",
		"error.username_taken":          "该用户名已被占用",
		"error.email_not_verified":      "邮箱未验证，请先完成邮箱验证",
		"error.verify_code_invalid":     "验证码错误或已过期",
		"error.verify_code_expired":     "验证码已过期，请重新获取",
		"error.verify_code_too_frequent": "验证码发送过于频繁，请稍后再试",
		"error.verify_code_max_attempts": "验证码尝试次数过多，请重新获取",
		"error.email_send_failed":       "邮件发送失败，请稍后再试",
		"error.email_recipient_rejected": "收件地址不可用，请检查邮箱",
		"error.captcha_required":        "请完成人机校验",
		"error.captcha_invalid":         "人机校验失败",
		"error.weak_password":           "密码强度不足",
		"error.agreement_required":      "请先同意用户协议",
		"error.password_min_length":     "密码长度至少 %d 位",
		"error.password_require_upper":  "密码需包含大写字母",
		"error.password_require_lower":  "密码需包含小写字母",
		"error.password_require_number": "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.post_not_found":          "动态不存在",
		"error.post_content_required":   "动态内容不能为空",
		"error.post_content_too_long":   "动态内容不能超过 500 字",
		"error.comment_not_found":       "评论不存在",
		"error.comment_content_required": "评论内容不能为空",
		"error.comment_content_too_long": "评论内容不能超过 100 字",
		"error.not_post_owner":          "只能操作自己的动态",
		"error.not_comment_owner":       "只能删除自己的评论",
		"error.notification_not_found":  "通知不存在",
		"error.friend_request_exists":   "好友请求已存在",
		"error.friend_request_not_found": "好友请求不存在",
		"error.already_friends":         "你们已经是好友",
		"error.friend_request_self":     "不能添加自己为好友",
		"error.not_friends":             "对方还不是你的好友",
		"error.verification_pending":    "已有待审核的认证申请",
		"error.verification_not_found":  "认证申请不存在",
		"error.verification_reviewed":   "该认证申请已审核",
		"error.upload_too_large":        "文件大小超出限制",
		"error.upload_type_invalid":     "不支持的文件类型",
		"error.user_not_found":          "用户不存在",
		"error.user_id_invalid":         "用户 ID 无效",
		"error.user_id_type_invalid":    "用户 ID 类型错误",
		"error.user_fetch_failed":       "获取用户信息失败",
		"error.user_update_failed":      "更新用户失败",
		"error.user_login_log_fetch_failed": "获取登录日志失败",
		"error.email_exists":            "该邮箱已被使用",
		"error.email_invalid":           "邮箱格式不正确",
		"error.login_failed":            "登录失败",
		"error.login_too_many":          "登录尝试过于频繁，请稍后再试",
		"error.password_old_invalid":    "原密码错误",
		"error.password_weak":           "密码强度不足",
		"error.admin_login_invalid":     "用户名或密码错误",
		"error.admin_id_invalid":        "管理员 ID 无效",
		"error.admin_id_type_invalid":   "管理员 ID 类型错误",
		"error.admin_username_invalid":  "管理员用户名格式不正确",
		"error.admin_username_exists":   "该管理员用户名已存在",
		"error.admin_create_failed":     "创建管理员失败",
		"error.admin_update_failed":     "更新管理员失败",
		"error.admin_delete_failed":     "删除管理员失败",
		"error.admin_delete_self_forbidden": "不能删除当前登录的管理员",
		"error.admin_delete_last_forbidden": "不能删除最后一个管理员",
		"error.admin_delete_protected":  "该管理员受保护，不能删除",
		"error.captcha_unavailable":     "人机校验服务不可用",
		"error.captcha_config_invalid":  "人机校验配置无效",
		"error.captcha_generate_failed": "验证码生成失败",
		"error.captcha_verify_failed":   "人机校验请求失败",
		"error.post_fetch_failed":       "获取动态失败",
		"error.post_delete_failed":      "删除动态失败",
		"error.comment_delete_failed":   "删除评论失败",
		"error.verification_fetch_failed": "获取认证申请失败",
		"error.verification_decision_invalid": "审核结论无效",
		"error.verification_review_failed": "审核认证申请失败",
		"error.config_fetch_failed":     "获取站点配置失败",
		"error.file_missing":            "请选择要上传的文件",
		"error.upload_failed":           "文件上传失败",
		"error.save_failed":             "保存失败",
		"email.verify_code.subject":     "邮箱验证码",
		"email.notification.subject":    "你有一条新消息",
		"email.notification.body":       "%s\n\n请登录 %s 查看详情。",
		"notification.friend_request":   "%s 向你发送了好友申请",
		"notification.friend_accepted":  "%s 通过了你的好友申请",
		"notification.post_liked":      "%s 赞了你的动态",
		"notification.post_commented":  "%s 评论了你的动态",
		"notification.verify_approved": "你的实名认证已通过",
		"notification.verify_rejected": "你的实名认证未通过",
	},
	LocaleTW: {
		"error.bad_request":             "請求參數錯誤",
		"error.unauthorized":            "未登錄或登錄已過期",
		"error.forbidden":               "沒有權限執行該操作",
		"error.not_found":               "資源不存在",
		"error.internal":                "伺服器內部錯誤",
		"error.auth_header_missing":     "缺少認證信息",
		"error.auth_header_invalid":     "認證信息格式錯誤",
		"error.jwt_secret_missing":      "服務端 JWT 密鑰未配置",
		"error.token_invalid":           "登錄憑證無效",
		"error.token_revoked":           "登錄憑證已失效，請重新登錄",
		"error.user_disabled":           "賬號已被禁用",
		"error.rate_limit_unavailable":  "限流服務不可用，請稍後再試",
		"error.rate_limited":            "請求過於頻繁，請 %d 秒後再試",
		"error.invalid_credentials":     "郵箱或密碼錯誤",
		"error.invalid_email":           "郵箱格式不正確",
		"error.invalid_username":        "用戶名只能包含小寫字母、數字和下劃線，長度 3-30",
		"error.email_registered":        "該郵箱已註冊",
		"error.username_taken":          "該用戶名已被佔用",
		"error.email_not_verified":      "郵箱未驗證，請先完成郵箱驗證",
		"error.verify_code_invalid":     "驗證碼錯誤或已過期",
		"error.verify_code_expired":     "驗證碼已過期，請重新獲取",
		"error.verify_code_too_frequent": "驗證碼發送過於頻繁，請稍後再試",
		"error.verify_code_max_attempts": "驗證碼嘗試次數過多，請重新獲取",
		"error.email_send_failed":       "郵件發送失敗，請稍後再試",
		"error.email_recipient_rejected": "收件地址不可用，請檢查郵箱",
		"error.captcha_required":        "請完成人機校驗",
		"error.captcha_invalid":         "人機校驗失敗",
		"error.weak_password":           "密碼強度不足",
		"error.agreement_required":      "請先同意用戶協議",
		"error.password_min_length":     "密碼長度至少 %d 位",
		"error.password_require_upper":  "密碼需包含大寫字母",
		"error.password_require_lower":  "密碼需包含小寫字母",
		"error.password_require_number": "密碼需包含數字",
		"error.password_require_special": "密碼需包含特殊字符",
		"error.post_not_found":          "動態不存在",
		"error.post_content_required":   "動態內容不能為空",
		"error.post_content_too_long":   "動態內容不能超過 500 字",
		"error.comment_not_found":       "評論不存在",
		"error.comment_content_required": "評論內容不能為空",
		"error.comment_content_too_long": "評論內容不能超過 100 字",
		"error.not_post_owner":          "只能操作自己的動態",
		"error.not_comment_owner":       "只能刪除自己的評論",
		"error.notification_not_found":  "通知不存在",
		"error.friend_request_exists":   "好友請求已存在",
		"error.friend_request_not_found": "好友請求不存在",
		"error.already_friends":         "你們已經是好友",
		"error.friend_request_self":     "不能添加自己為好友",
		"error.not_friends":             "對方還不是你的好友",
		"error.verification_pending":    "已有待審核的認證申請",
		"error.verification_not_found":  "認證申請不存在",
		"error.verification_reviewed":   "該認證申請已審核",
		"error.upload_too_large":        "文件大小超出限制",
		"error.upload_type_invalid":     "不支持的文件類型",
		"error.user_not_found":          "用戶不存在",
		"error.user_id_invalid":         "用戶 ID 無效",
		"error.user_id_type_invalid":    "用戶 ID 類型錯誤",
		"error.user_fetch_failed":       "獲取用戶信息失敗",
		"error.user_update_failed":      "更新用戶失敗",
		"error.user_login_log_fetch_failed": "獲取登錄日誌失敗",
		"error.email_exists":            "該郵箱已被使用",
		"error.email_invalid":           "郵箱格式不正確",
		"error.login_failed":            "登錄失敗",
		"error.login_too_many":          "登錄嘗試過於頻繁，請稍後再試",
		"error.password_old_invalid":    "原密碼錯誤",
		"error.password_weak":           "密碼強度不足",
		"error.admin_login_invalid":     "用戶名或密碼錯誤",
		"error.admin_id_invalid":        "管理員 ID 無效",
		"error.admin_id_type_invalid":   "管理員 ID 類型錯誤",
		"error.admin_username_invalid":  "管理員用戶名格式不正確",
		"error.admin_username_exists":   "該管理員用戶名已存在",
		"error.admin_create_failed":     "創建管理員失敗",
		"error.admin_update_failed":     "更新管理員失敗",
		"error.admin_delete_failed":     "刪除管理員失敗",
		"error.admin_delete_self_forbidden": "不能刪除當前登錄的管理員",
		"error.admin_delete_last_forbidden": "不能刪除最後一個管理員",
		"error.admin_delete_protected":  "該管理員受保護，不能刪除",
		"error.captcha_unavailable":     "人機校驗服務不可用",
		"error.captcha_config_invalid":  "人機校驗配置無效",
		"error.captcha_generate_failed": "驗證碼生成失敗",
		"error.captcha_verify_failed":   "人機校驗請求失敗",
		"error.post_fetch_failed":       "獲取動態失敗",
		"error.post_delete_failed":      "刪除動態失敗",
		"error.comment_delete_failed":   "刪除評論失敗",
		"error.verification_fetch_failed": "獲取認證申請失敗",
		"error.verification_decision_invalid": "審核結論無效",
		"error.verification_review_failed": "審核認證申請失敗",
		"error.config_fetch_failed":     "獲取站點配置失敗",
		"error.file_missing":            "請選擇要上傳的文件",
		"error.upload_failed":           "文件上傳失敗",
		"error.save_failed":             "保存失敗",
		"email.verify_code.subject":     "郵箱驗證碼",
		"email.notification.subject":    "你有一條新消息",
		"email.notification.body":       "%s\n\n請登錄 %s 查看詳情。",
		"notification.friend_request":   "%s 向你發送了好友申請",
		"notification.friend_accepted":  "%s 通過了你的好友申請",
		"notification.post_liked":      "%s 讚了你的動態",
		"notification.post_commented":  "%s 評論了你的動態",
		"notification.verify_approved": "你的實名認證已通過",
		"notification.verify_rejected": "你的實名認證未通過",
	},
	LocaleEN: {
		"error.bad_request":             "Invalid request parameters",
		"error.unauthorized":            "Not signed in or session expired",
		"error.forbidden":               "You do not have permission to perform this action",
		"error.not_found":               "Resource not found",
		"error.internal":                "Internal server error",
		"error.auth_header_missing":     "Missing authorization header",
		"error.auth_header_invalid":     "Malformed authorization header",
		"error.jwt_secret_missing":      "Server JWT secret is not configured",
		"error.token_invalid":           "Invalid token",
		"error.token_revoked":           "Token revoked, please sign in again",
		"error.user_disabled":           "This account has been disabled",
		"error.rate_limit_unavailable":  "Rate limiter unavailable, please retry later",
		"error.rate_limited":            "Too many requests, retry in %d seconds",
		"error.invalid_credentials":     "Incorrect email or password",
		"error.invalid_email":           "Invalid email address",
		"error.invalid_username":        "Username must be 3-30 chars of lowercase letters, digits and underscores",
		"error.email_registered":        "This email is already registered",
		"error.username_taken":          "This username is already taken",
		"error.email_not_verified":      "Email not verified, please verify first",
		"error.verify_code_invalid":     "Verification code is incorrect or expired",
		"error.verify_code_expired":     "Verification code expired, request a new one",
		"error.verify_code_too_frequent": "Code requested too frequently, try again later",
		"error.verify_code_max_attempts": "Too many attempts, request a new code",
		"error.email_send_failed":       "Failed to send email, please retry later",
		"error.email_recipient_rejected": "Recipient address rejected, check the email",
		"error.captcha_required":        "Please complete the captcha",
		"error.captcha_invalid":         "Captcha verification failed",
		"error.weak_password":           "Password is too weak",
		"error.agreement_required":      "You must accept the user agreement",
		"error.password_min_length":     "Password must be at least %d characters",
		"error.password_require_upper":  "Password must contain an uppercase letter",
		"error.password_require_lower":  "Password must contain a lowercase letter",
		"error.password_require_number": "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.post_not_found":          "Post not found",
		"error.post_content_required":   "Post content must not be empty",
		"error.post_content_too_long":   "Post content must not exceed 500 characters",
		"error.comment_not_found":       "Comment not found",
		"error.comment_content_required": "Comment must not be empty",
		"error.comment_content_too_long": "Comment must not exceed 100 characters",
		"error.not_post_owner":          "You can only manage your own posts",
		"error.not_comment_owner":       "You can only delete your own comments",
		"error.notification_not_found":  "Notification not found",
		"error.friend_request_exists":   "Friend request already exists",
		"error.friend_request_not_found": "Friend request not found",
		"error.already_friends":         "You are already friends",
		"error.friend_request_self":     "You cannot add yourself as a friend",
		"error.not_friends":             "This user is not your friend yet",
		"error.verification_pending":    "A pending verification request already exists",
		"error.verification_not_found":  "Verification request not found",
		"error.verification_reviewed":   "This verification request has been reviewed",
		"error.upload_too_large":        "File exceeds the size limit",
		"error.upload_type_invalid":     "Unsupported file type",
		"error.user_not_found":          "User not found",
		"error.user_id_invalid":         "Invalid user ID",
		"error.user_id_type_invalid":    "Invalid user ID type",
		"error.user_fetch_failed":       "Failed to fetch user",
		"error.user_update_failed":      "Failed to update user",
		"error.user_login_log_fetch_failed": "Failed to fetch login logs",
		"error.email_exists":            "This email is already in use",
		"error.email_invalid":           "Invalid email address",
		"error.login_failed":            "Login failed",
		"error.login_too_many":          "Too many login attempts, try again later",
		"error.password_old_invalid":    "Current password is incorrect",
		"error.password_weak":           "Password is too weak",
		"error.admin_login_invalid":     "Incorrect username or password",
		"error.admin_id_invalid":        "Invalid admin ID",
		"error.admin_id_type_invalid":   "Invalid admin ID type",
		"error.admin_username_invalid":  "Invalid admin username",
		"error.admin_username_exists":   "This admin username already exists",
		"error.admin_create_failed":     "Failed to create admin",
		"error.admin_update_failed":     "Failed to update admin",
		"error.admin_delete_failed":     "Failed to delete admin",
		"error.admin_delete_self_forbidden": "You cannot delete the signed-in admin",
		"error.admin_delete_last_forbidden": "You cannot delete the last admin",
		"error.admin_delete_protected":  "This admin is protected and cannot be deleted",
		"error.captcha_unavailable":     "Captcha service unavailable",
		"error.captcha_config_invalid":  "Invalid captcha configuration",
		"error.captcha_generate_failed": "Failed to generate captcha",
		"error.captcha_verify_failed":   "Captcha verification request failed",
		"error.post_fetch_failed":       "Failed to fetch posts",
		"error.post_delete_failed":      "Failed to delete post",
		"error.comment_delete_failed":   "Failed to delete comment",
		"error.verification_fetch_failed": "Failed to fetch verification requests",
		"error.verification_decision_invalid": "Invalid review decision",
		"error.verification_review_failed": "Failed to review verification request",
		"error.config_fetch_failed":     "Failed to fetch site config",
		"error.file_missing":            "Please choose a file to upload",
		"error.upload_failed":           "File upload failed",
		"error.save_failed":             "Failed to save",
		"email.verify_code.subject":     "Email Verification Code",
		"email.notification.subject":    "You have a new notification",
		"email.notification.body":       "%s\n\nSign in to %s for details.",
		"notification.friend_request":   "%s sent you a friend request",
		"notification.friend_accepted":  "%s accepted your friend request",
		"notification.post_liked":      "%s liked your post",
		"notification.post_commented":  "%s commented on your post",
		"notification.verify_approved": "Your identity verification was approved",
		"notification.verify_rejected": "Your identity verification was rejected",
	},
}
