package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moment-next/internal/authz"
	"github.com/moment-next/internal/cache"
	"github.com/moment-next/internal/config"
	adminhandlers "github.com/moment-next/internal/http/handlers/admin"
	publichandlers "github.com/moment-next/internal/http/handlers/public"
	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mn"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	otpSendRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:otp_send", redisPrefix),
		WindowSeconds: cfg.Security.OTPSendRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OTPSendRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.OTPSendRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）- 必须放在最前面
	r.Static("/uploads", "./uploads")

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
			auth.POST("/forgot-password", RateLimitMiddleware(redisClient, otpSendRule, KeyByIPAndJSONField("email")), publicHandler.UserForgotPassword)
			auth.POST("/reset-password", publicHandler.UserResetPassword)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/login-logs", publicHandler.GetMyLoginLogs)
			user.POST("/me/verify-email/send", RateLimitMiddleware(redisClient, otpSendRule, KeyByUserID), publicHandler.SendEmailVerifyCode)
			user.POST("/me/verify-email", publicHandler.VerifyEmail)
			user.POST("/me/email/send-verify-code", RateLimitMiddleware(redisClient, otpSendRule, KeyByUserID), publicHandler.SendChangeEmailCode)
			user.POST("/me/email/change", publicHandler.ChangeUserEmail)

			// 动态与评论
			user.GET("/feed", publicHandler.ListFeed)
			user.POST("/posts", publicHandler.CreatePost)
			user.GET("/posts/:id", publicHandler.GetPost)
			user.DELETE("/posts/:id", publicHandler.DeletePost)
			user.POST("/posts/:id/like", publicHandler.ToggleLike)
			user.GET("/posts/:id/comments", publicHandler.ListComments)
			user.POST("/posts/:id/comments", publicHandler.CreateComment)
			user.DELETE("/comments/:comment_id", publicHandler.DeleteComment)
			user.GET("/users/:id/posts", publicHandler.ListUserPosts)
			user.POST("/uploads", publicHandler.UploadAttachment)

			// 好友关系
			user.GET("/friends", publicHandler.ListFriends)
			user.DELETE("/friends/:id", publicHandler.Unfriend)
			user.GET("/friends/requests", publicHandler.ListFriendRequests)
			user.POST("/friends/requests", publicHandler.SendFriendRequest)
			user.POST("/friends/requests/:id/accept", publicHandler.AcceptFriendRequest)
			user.POST("/friends/requests/:id/decline", publicHandler.DeclineFriendRequest)
			user.DELETE("/friends/requests/:id", publicHandler.CancelFriendRequest)

			// 通知
			user.GET("/notifications", publicHandler.ListNotifications)
			user.GET("/notifications/unread-count", publicHandler.GetUnreadCount)
			user.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
			user.POST("/notifications/read-all", publicHandler.MarkAllNotificationsRead)

			// 实名认证
			user.POST("/verification", publicHandler.SubmitVerification)
			user.GET("/verification", publicHandler.GetVerificationStatus)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword) // 修改密码

				// 内容审核
				authorized.GET("/posts", adminHandler.GetAdminPosts)
				authorized.DELETE("/posts/:id", adminHandler.DeleteAdminPost)
				authorized.DELETE("/comments/:id", adminHandler.DeleteAdminComment)

				// 实名认证审核
				authorized.GET("/verifications", adminHandler.GetVerificationRequests)
				authorized.POST("/verifications/:id/review", adminHandler.ReviewVerification)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)

				// 文件上传
				authorized.POST("/upload", adminHandler.UploadFile)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.GET("/user-login-logs", adminHandler.GetUserLoginLogs)
				authorized.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.PUT("/users/:id", adminHandler.UpdateAdminUser)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
