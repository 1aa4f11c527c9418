package service

import (
	"strings"

	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"
)

// PostService 动态业务服务
type PostService struct {
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	likeRepo       repository.LikeRepository
	attachmentRepo repository.AttachmentRepository
	friendRepo     repository.FriendRequestRepository
	notifier       *NotificationService
}

// NewPostService 创建动态服务
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	attachmentRepo repository.AttachmentRepository,
	friendRepo repository.FriendRequestRepository,
	notifier *NotificationService,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		likeRepo:       likeRepo,
		attachmentRepo: attachmentRepo,
		friendRepo:     friendRepo,
		notifier:       notifier,
	}
}

// AttachmentInput 动态附件输入
type AttachmentInput struct {
	FilePath string
	FileType string
	FileName string
	FileSize int64
}

// CreatePostInput 发布动态输入
type CreatePostInput struct {
	Content     string
	Attachments []AttachmentInput
}

// ToggleLikeResult 点赞开关结果
type ToggleLikeResult struct {
	Liked     bool
	LikeCount int64
}

// ListFeed 获取好友动态流,包含本人和已互为好友用户的动态
func (s *PostService) ListFeed(userID uint, page, pageSize int) ([]models.Post, int64, error) {
	friendIDs, err := s.friendRepo.ListFriendIDs(userID)
	if err != nil {
		return nil, 0, err
	}
	authorIDs := append(friendIDs, userID)
	filter := repository.PostListFilter{
		Page:      page,
		PageSize:  pageSize,
		AuthorIDs: authorIDs,
		WithUser:  true,
	}
	return s.postRepo.List(filter)
}

// ListByUser 获取某个用户的动态列表
func (s *PostService) ListByUser(authorID uint, page, pageSize int) ([]models.Post, int64, error) {
	filter := repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   authorID,
		WithUser: true,
	}
	return s.postRepo.List(filter)
}

// Get 获取动态详情
func (s *PostService) Get(postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Create 发布动态
func (s *PostService) Create(userID uint, input CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrPostContentRequired
	}
	if len([]rune(content)) > models.PostContentMaxLen {
		return nil, ErrPostContentTooLong
	}

	post := models.Post{
		UserID:  userID,
		Content: content,
	}
	for _, item := range input.Attachments {
		post.Attachments = append(post.Attachments, models.Attachment{
			FilePath: item.FilePath,
			FileType: item.FileType,
			FileName: item.FileName,
			FileSize: item.FileSize,
		})
	}
	if err := s.postRepo.Create(&post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(post.ID)
}

// Delete 删除动态,仅作者本人可删除
func (s *PostService) Delete(postID, userID uint) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrNotPostOwner
	}
	return s.postRepo.Delete(postID)
}

// ListAdmin 管理端动态列表,支持内容关键字与作者过滤
func (s *PostService) ListAdmin(authorID uint, search string, page, pageSize int) ([]models.Post, int64, error) {
	return s.postRepo.List(repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   authorID,
		Search:   strings.TrimSpace(search),
		WithUser: true,
	})
}

// AdminDelete 管理端删除动态,不做作者校验
func (s *PostService) AdminDelete(postID uint) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	return s.postRepo.Delete(postID)
}

// ListComments 获取动态评论列表
func (s *PostService) ListComments(postID uint, page, pageSize int) ([]models.Comment, int64, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, 0, err
	}
	if post == nil {
		return nil, 0, ErrPostNotFound
	}
	filter := repository.CommentListFilter{
		Page:     page,
		PageSize: pageSize,
		PostID:   postID,
	}
	return s.commentRepo.List(filter)
}

// AddComment 发表评论并通知动态作者
func (s *PostService) AddComment(postID, userID uint, content string) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentContentRequired
	}
	if len([]rune(content)) > models.CommentContentMaxLen {
		return nil, ErrCommentContentTooLong
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(&comment); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyPostCommented(post.UserID, userID, postID, comment.ID); err != nil {
			logger.Warnw("post_comment_notify_failed", "post_id", postID, "comment_id", comment.ID, "error", err)
		}
	}
	return s.commentRepo.GetByID(comment.ID)
}

// DeleteComment 删除评论,评论作者或动态作者可删除
func (s *PostService) DeleteComment(commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(comment.PostID)
		if err != nil {
			return err
		}
		if post == nil || post.UserID != userID {
			return ErrNotCommentOwner
		}
	}
	return s.commentRepo.Delete(commentID)
}

// AdminDeleteComment 管理端删除评论,不做作者校验
func (s *PostService) AdminDeleteComment(commentID uint) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	return s.commentRepo.Delete(commentID)
}

// ToggleLike 点赞开关:未点赞则点赞,已点赞则取消
func (s *PostService) ToggleLike(postID, userID uint) (*ToggleLikeResult, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	existing, err := s.likeRepo.Get(postID, userID)
	if err != nil {
		return nil, err
	}
	liked := false
	if existing == nil {
		if err := s.likeRepo.Create(&models.Like{PostID: postID, UserID: userID}); err != nil {
			return nil, err
		}
		liked = true
		if s.notifier != nil {
			if err := s.notifier.NotifyPostLiked(post.UserID, userID, postID); err != nil {
				logger.Warnw("post_like_notify_failed", "post_id", postID, "user_id", userID, "error", err)
			}
		}
	} else {
		if err := s.likeRepo.Delete(postID, userID); err != nil {
			return nil, err
		}
	}

	count, err := s.likeRepo.CountByPost(postID)
	if err != nil {
		return nil, err
	}
	return &ToggleLikeResult{Liked: liked, LikeCount: count}, nil
}
