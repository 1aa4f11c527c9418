package feedclient

import (
	"context"
	"errors"
	"strings"

	"github.com/moment-next/internal/logger"
	"github.com/moment-next/internal/models"
)

// truncateRunes 按字符数截断,评论超长时先在客户端截断再提交
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// 客户端操作错误
var (
	ErrPostUnknown    = errors.New("feedclient: post not in local feed")
	ErrCommentUnknown = errors.New("feedclient: comment not in local feed")
	ErrEmptyContent   = errors.New("feedclient: content is empty")
	ErrDeleteCanceled = errors.New("feedclient: delete canceled")
)

// LikeResult 服务端点赞结果
type LikeResult struct {
	Liked     bool
	LikeCount int64
}

// API 服务端接口抽象
type API interface {
	FetchFeed(ctx context.Context, page, pageSize int) ([]Post, error)
	CreatePost(ctx context.Context, content string) (Post, error)
	DeletePost(ctx context.Context, postID uint) error
	ToggleLike(ctx context.Context, postID uint) (LikeResult, error)
	CreateComment(ctx context.Context, postID uint, content string) (Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// Client 动态流客户端,点赞与评论按乐观更新处理
// 发布动态不做乐观插入,等待服务端确认后才进入本地流
type Client struct {
	api    API
	store  *Store
	userID uint

	// ConfirmPostDelete 删除动态前的确认回调,返回 false 则取消删除
	ConfirmPostDelete func(Post) bool
}

// NewClient 创建动态流客户端
func NewClient(api API, userID uint) *Client {
	return &Client{
		api:    api,
		store:  NewStore(),
		userID: userID,
	}
}

// Store 返回本地状态存储
func (c *Client) Store() *Store {
	return c.store
}

// RefreshFeed 拉取并整体替换本地动态流
func (c *Client) RefreshFeed(ctx context.Context, page, pageSize int) error {
	posts, err := c.api.FetchFeed(ctx, page, pageSize)
	if err != nil {
		return err
	}
	c.store.ReplaceFeed(posts)
	return nil
}

// CreatePost 发布动态
// 不做乐观插入:服务端确认后才把动态放入本地流头部
func (c *Client) CreatePost(ctx context.Context, content string) (Post, error) {
	if content == "" {
		return Post{}, ErrEmptyContent
	}
	post, err := c.api.CreatePost(ctx, content)
	if err != nil {
		return Post{}, err
	}
	c.store.ApplyServerPost(post)
	return post, nil
}

// DeletePost 删除动态,先走确认回调,服务端确认后才移除本地副本
func (c *Client) DeletePost(ctx context.Context, postID uint) error {
	post, ok := c.store.Post(postID)
	if !ok {
		return ErrPostUnknown
	}
	if c.ConfirmPostDelete != nil && !c.ConfirmPostDelete(post) {
		return ErrDeleteCanceled
	}
	if err := c.api.DeletePost(ctx, postID); err != nil {
		return err
	}
	c.store.RemovePost(postID)
	return nil
}

// ToggleLike 点赞开关
// 先在本地翻转,失败时回滚快照,成功时以服务端计数为准
func (c *Client) ToggleLike(ctx context.Context, postID uint) error {
	snapshot, ok := c.store.optimisticToggleLike(postID)
	if !ok {
		return ErrPostUnknown
	}
	result, err := c.api.ToggleLike(ctx, postID)
	if err != nil {
		logger.Warnw("feedclient_toggle_like_failed", "post_id", postID, "error", err)
		c.store.revertLike(postID, snapshot)
		return err
	}
	c.store.confirmLike(postID, result.Liked, result.LikeCount)
	return nil
}

// AddComment 发表评论
// 先以负数临时 ID 追加待确认评论,成功后替换为服务端评论
// 失败的评论保留在本地并打上失败标记,由 RetryComment/DismissComment 处理
func (c *Client) AddComment(ctx context.Context, postID uint, content string) (int64, error) {
	content = truncateRunes(strings.TrimSpace(content), models.CommentContentMaxLen)
	if content == "" {
		return 0, ErrEmptyContent
	}
	tempID, ok := c.store.appendPendingComment(postID, c.userID, content)
	if !ok {
		return 0, ErrPostUnknown
	}
	confirmed, err := c.api.CreateComment(ctx, postID, content)
	if err != nil {
		logger.Warnw("feedclient_create_comment_failed", "post_id", postID, "error", err)
		c.store.markCommentFailed(postID, tempID, err.Error())
		return tempID, err
	}
	c.store.resolvePendingComment(postID, tempID, confirmed)
	return confirmed.ID, nil
}

// RetryComment 重新提交失败的待确认评论
func (c *Client) RetryComment(ctx context.Context, postID uint, tempID int64) (int64, error) {
	pending, ok := c.store.pendingComment(postID, tempID)
	if !ok {
		return 0, ErrCommentUnknown
	}
	c.store.clearCommentFailure(postID, tempID)
	confirmed, err := c.api.CreateComment(ctx, postID, pending.Content)
	if err != nil {
		logger.Warnw("feedclient_retry_comment_failed", "post_id", postID, "temp_id", tempID, "error", err)
		c.store.markCommentFailed(postID, tempID, err.Error())
		return tempID, err
	}
	c.store.resolvePendingComment(postID, tempID, confirmed)
	return confirmed.ID, nil
}

// DismissComment 放弃失败的待确认评论
func (c *Client) DismissComment(postID uint, tempID int64) {
	c.store.dropPendingComment(postID, tempID)
}

// DeleteComment 删除评论
// 先本地移除并保留快照,失败时恢复原位置
func (c *Client) DeleteComment(ctx context.Context, postID uint, commentID int64) error {
	snapshot, ok := c.store.optimisticRemoveComment(postID, commentID)
	if !ok {
		return ErrCommentUnknown
	}
	if err := c.api.DeleteComment(ctx, commentID); err != nil {
		logger.Warnw("feedclient_delete_comment_failed", "post_id", postID, "comment_id", commentID, "error", err)
		c.store.restoreComment(postID, snapshot)
		return err
	}
	return nil
}
