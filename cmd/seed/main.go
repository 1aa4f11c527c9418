package main

import (
	"time"

	"github.com/moment-next/internal/config"
	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// 演示账号统一密码
const seedPassword = "Moment@2024"

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}
	now := time.Now()

	// 添加演示用户
	users := []models.User{
		{
			Email:           "alice@example.com",
			Username:        "alice",
			DisplayName:     "Alice",
			Bio:             "喜欢记录生活的碎片",
			Locale:          "zh-CN",
			EmailVerifiedAt: &now,
		},
		{
			Email:           "bob@example.com",
			Username:        "bob",
			DisplayName:     "Bob",
			Bio:             "Coffee, code and cats.",
			Locale:          "en-US",
			EmailVerifiedAt: &now,
		},
		{
			Email:       "carol@example.com",
			Username:    "carol",
			DisplayName: "Carol",
			Locale:      "zh-TW",
		},
	}

	userIDs := map[string]uint{}
	for i := range users {
		seedUser := users[i]
		seedUser.PasswordHash = string(hashed)
		var existing models.User
		if err := models.DB.Where("username = ?", seedUser.Username).First(&existing).Error; err != nil {
			if err := models.DB.Create(&seedUser).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", seedUser.Username, err)
				continue
			}
			stdLog.Printf("Created user: %s", seedUser.Username)
			userIDs[seedUser.Username] = seedUser.ID
		} else {
			stdLog.Printf("User already exists: %s", seedUser.Username)
			userIDs[seedUser.Username] = existing.ID
		}
	}

	aliceID := userIDs["alice"]
	bobID := userIDs["bob"]
	carolID := userIDs["carol"]
	if aliceID == 0 || bobID == 0 || carolID == 0 {
		stdLog.Fatalf("Seed users missing, aborting")
	}

	// 好友关系：alice <-> bob 已互为好友，carol -> alice 待处理
	friendRequests := []models.FriendRequest{
		{SenderID: aliceID, RecipientID: bobID, Status: models.FriendRequestStatusAccepted, RespondedAt: &now},
		{SenderID: carolID, RecipientID: aliceID, Status: models.FriendRequestStatusPending},
	}
	for i := range friendRequests {
		request := friendRequests[i]
		var existing models.FriendRequest
		err := models.DB.Where("sender_id = ? AND recipient_id = ?", request.SenderID, request.RecipientID).First(&existing).Error
		if err == nil {
			stdLog.Printf("Friend request already exists: %d -> %d", request.SenderID, request.RecipientID)
			continue
		}
		if err := models.DB.Create(&request).Error; err != nil {
			stdLog.Printf("Failed to create friend request %d -> %d: %v", request.SenderID, request.RecipientID, err)
			continue
		}
		stdLog.Printf("Created friend request: %d -> %d (%s)", request.SenderID, request.RecipientID, request.Status)
	}

	// 待处理好友申请对应的通知
	var pendingRequest models.FriendRequest
	if err := models.DB.Where("sender_id = ? AND recipient_id = ? AND status = ?",
		carolID, aliceID, models.FriendRequestStatusPending).First(&pendingRequest).Error; err == nil {
		var existing models.Notification
		err := models.DB.Where("user_id = ? AND from_user_id = ? AND type = ?",
			aliceID, carolID, models.NotificationTypeFriendRequest).First(&existing).Error
		if err != nil {
			notification := models.Notification{
				UserID:     aliceID,
				FromUserID: &carolID,
				Type:       models.NotificationTypeFriendRequest,
				DataJSON:   models.JSON(map[string]interface{}{"friend_request_id": pendingRequest.ID}),
				Route:      "/friends",
			}
			if err := models.DB.Create(&notification).Error; err != nil {
				stdLog.Printf("Failed to create friend request notification: %v", err)
			} else {
				stdLog.Printf("Created friend request notification for alice")
			}
		}
	}

	// 添加演示动态
	seedPosts := []struct {
		owner   uint
		content string
	}{
		{aliceID, "第一次来这里，跟大家打个招呼 👋"},
		{aliceID, "周末去爬山，山顶的风景太值了"},
		{bobID, "Shipped a side project tonight. Small wins count too."},
	}

	postIDs := make([]uint, 0, len(seedPosts))
	for _, item := range seedPosts {
		var existing models.Post
		err := models.DB.Where("user_id = ? AND content = ?", item.owner, item.content).First(&existing).Error
		if err == nil {
			stdLog.Printf("Post already exists: %q", item.content)
			postIDs = append(postIDs, existing.ID)
			continue
		}
		post := models.Post{UserID: item.owner, Content: item.content}
		if err := models.DB.Create(&post).Error; err != nil {
			stdLog.Printf("Failed to create post: %v", err)
			continue
		}
		stdLog.Printf("Created post: %q", item.content)
		postIDs = append(postIDs, post.ID)
	}

	// 评论与点赞
	if len(postIDs) > 0 {
		firstPost := postIDs[0]

		var existingComment models.Comment
		if err := models.DB.Where("post_id = ? AND user_id = ?", firstPost, bobID).First(&existingComment).Error; err != nil {
			comment := models.Comment{PostID: firstPost, UserID: bobID, Content: "Welcome! 🎉"}
			if err := models.DB.Create(&comment).Error; err != nil {
				stdLog.Printf("Failed to create comment: %v", err)
			} else {
				stdLog.Printf("Created comment on post %d", firstPost)
			}
		}

		var existingLike models.Like
		if err := models.DB.Where("post_id = ? AND user_id = ?", firstPost, bobID).First(&existingLike).Error; err != nil {
			like := models.Like{PostID: firstPost, UserID: bobID}
			if err := models.DB.Create(&like).Error; err != nil {
				stdLog.Printf("Failed to create like: %v", err)
			} else {
				stdLog.Printf("Created like on post %d", firstPost)
			}
		}
	}

	stdLog.Printf("Seed data created successfully! Demo password: %s", seedPassword)
}
