package provider

import (
	"github.com/moment-next/internal/authz"
	"github.com/moment-next/internal/cache"
	"github.com/moment-next/internal/config"
	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/queue"
	"github.com/moment-next/internal/repository"
	"github.com/moment-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo           repository.AdminRepository
	UserRepo            repository.UserRepository
	EmailVerifyCodeRepo repository.EmailVerifyCodeRepository
	PostRepo            repository.PostRepository
	CommentRepo         repository.CommentRepository
	LikeRepo            repository.LikeRepository
	AttachmentRepo      repository.AttachmentRepository
	FriendRequestRepo   repository.FriendRequestRepository
	NotificationRepo    repository.NotificationRepository
	VerificationRepo    repository.VerificationRequestRepository
	UserLoginLogRepo    repository.UserLoginLogRepository
	AuthzAuditLogRepo   repository.AuthzAuditLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	UploadService       *service.UploadService
	PostService         *service.PostService
	FriendService       *service.FriendService
	NotificationService *service.NotificationService
	VerificationService *service.VerificationService
	UserLoginLogService *service.UserLoginLogService
	AuthzAuditService   *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.EmailVerifyCodeRepo = repository.NewEmailVerifyCodeRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.CommentRepo = repository.NewCommentRepository(db)
	c.LikeRepo = repository.NewLikeRepository(db)
	c.AttachmentRepo = repository.NewAttachmentRepository(db)
	c.FriendRequestRepo = repository.NewFriendRequestRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.VerificationRepo = repository.NewVerificationRequestRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)

	// 验证码邮件优先走队列，队列未启用时同步发送
	verifyCodeSender := service.NewQueuedVerifyCodeSender(c.QueueClient, c.EmailService)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.EmailVerifyCodeRepo, verifyCodeSender)

	c.UploadService = service.NewUploadService(c.Config)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.PostService = service.NewPostService(c.PostRepo, c.CommentRepo, c.LikeRepo, c.AttachmentRepo, c.FriendRequestRepo, c.NotificationService)
	c.FriendService = service.NewFriendService(c.FriendRequestRepo, c.UserRepo, c.NotificationService)
	c.VerificationService = service.NewVerificationService(c.VerificationRepo, c.UserRepo, c.NotificationService)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}
