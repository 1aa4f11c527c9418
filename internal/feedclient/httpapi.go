package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPAPI 基于 HTTP 的服务端接口实现,对接 /api/v1 路由
type HTTPAPI struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPAPI 创建 HTTP 接口客户端
func NewHTTPAPI(baseURL, token string, httpClient *http.Client) *HTTPAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPAPI{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
	}
}

// envelope 服务端统一响应结构
type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// postPayload 服务端动态响应
type postPayload struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"user_id"`
	Content   string           `json:"content"`
	LikeCount int64            `json:"like_count"`
	LikedByMe bool             `json:"liked_by_me"`
	Comments  []commentPayload `json:"comments"`
	CreatedAt time.Time        `json:"created_at"`
}

// commentPayload 服务端评论响应
type commentPayload struct {
	ID        int64     `json:"id"`
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (p postPayload) toPost() Post {
	comments := make([]Comment, 0, len(p.Comments))
	for _, item := range p.Comments {
		comments = append(comments, item.toComment())
	}
	return Post{
		ID:        p.ID,
		AuthorID:  p.UserID,
		Content:   p.Content,
		LikeCount: p.LikeCount,
		LikedByMe: p.LikedByMe,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
	}
}

func (c commentPayload) toComment() Comment {
	return Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// FetchFeed 拉取好友动态流
func (a *HTTPAPI) FetchFeed(ctx context.Context, page, pageSize int) ([]Post, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("page_size", fmt.Sprintf("%d", pageSize))
	var payload []postPayload
	if err := a.do(ctx, http.MethodGet, "/api/v1/feed?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(payload))
	for _, item := range payload {
		posts = append(posts, item.toPost())
	}
	return posts, nil
}

// CreatePost 发布动态
func (a *HTTPAPI) CreatePost(ctx context.Context, content string) (Post, error) {
	var payload postPayload
	body := map[string]interface{}{"content": content}
	if err := a.do(ctx, http.MethodPost, "/api/v1/posts", body, &payload); err != nil {
		return Post{}, err
	}
	return payload.toPost(), nil
}

// DeletePost 删除动态
func (a *HTTPAPI) DeletePost(ctx context.Context, postID uint) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", postID), nil, nil)
}

// ToggleLike 点赞开关
func (a *HTTPAPI) ToggleLike(ctx context.Context, postID uint) (LikeResult, error) {
	var payload struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/like", postID), nil, &payload); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Liked: payload.Liked, LikeCount: payload.LikeCount}, nil
}

// CreateComment 发表评论
func (a *HTTPAPI) CreateComment(ctx context.Context, postID uint, content string) (Comment, error) {
	var payload commentPayload
	body := map[string]interface{}{"content": content}
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postID), body, &payload); err != nil {
		return Comment{}, err
	}
	return payload.toComment(), nil
}

// DeleteComment 删除评论
func (a *HTTPAPI) DeleteComment(ctx context.Context, commentID int64) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", commentID), nil, nil)
}

func (a *HTTPAPI) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("feedclient: decode response failed (http %d): %w", resp.StatusCode, err)
	}
	if env.StatusCode != 0 {
		return fmt.Errorf("feedclient: server error %d: %s", env.StatusCode, env.Msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
