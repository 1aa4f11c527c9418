package feedclient

import (
	"context"
	"errors"
	"testing"
	"time"
)

type apiStub struct {
	feed           []Post
	fetchErr       error
	createPostFn   func(content string) (Post, error)
	deletePostErr  error
	toggleResult   LikeResult
	toggleErr      error
	createdComment  Comment
	createErr       error
	createCommentFn func(content string) (Comment, error)
	deleteErr       error
	toggleCalls     int
	deletePostCalls int
}

func (a *apiStub) FetchFeed(_ context.Context, _, _ int) ([]Post, error) {
	return a.feed, a.fetchErr
}

func (a *apiStub) CreatePost(_ context.Context, content string) (Post, error) {
	if a.createPostFn != nil {
		return a.createPostFn(content)
	}
	return Post{}, errors.New("not implemented")
}

func (a *apiStub) DeletePost(_ context.Context, _ uint) error {
	a.deletePostCalls++
	return a.deletePostErr
}

func (a *apiStub) ToggleLike(_ context.Context, _ uint) (LikeResult, error) {
	a.toggleCalls++
	return a.toggleResult, a.toggleErr
}

func (a *apiStub) CreateComment(_ context.Context, _ uint, content string) (Comment, error) {
	if a.createCommentFn != nil {
		return a.createCommentFn(content)
	}
	return a.createdComment, a.createErr
}

func (a *apiStub) DeleteComment(_ context.Context, _ int64) error {
	return a.deleteErr
}

func seedFeed() []Post {
	return []Post{
		{ID: 10, AuthorID: 1, Content: "first", LikeCount: 2, LikedByMe: false},
		{ID: 11, AuthorID: 2, Content: "second", LikeCount: 0, LikedByMe: false,
			Comments: []Comment{{ID: 100, PostID: 11, AuthorID: 1, Content: "hi"}}},
	}
}

func newTestClient(t *testing.T, api *apiStub) *Client {
	t.Helper()
	client := NewClient(api, 1)
	api.feed = seedFeed()
	if err := client.RefreshFeed(context.Background(), 1, 20); err != nil {
		t.Fatalf("refresh feed failed: %v", err)
	}
	return client
}

func TestToggleLikeOptimisticAndConfirm(t *testing.T) {
	api := &apiStub{toggleResult: LikeResult{Liked: true, LikeCount: 5}}
	client := newTestClient(t, api)

	if err := client.ToggleLike(context.Background(), 10); err != nil {
		t.Fatalf("toggle like failed: %v", err)
	}
	post, ok := client.Store().Post(10)
	if !ok {
		t.Fatalf("post missing from store")
	}
	if !post.LikedByMe {
		t.Fatalf("expected post to be liked")
	}
	// 以服务端计数为准,而不是本地 +1 的结果
	if post.LikeCount != 5 {
		t.Fatalf("expected server like count 5, got %d", post.LikeCount)
	}
}

func TestToggleLikeRevertsOnFailure(t *testing.T) {
	api := &apiStub{toggleErr: errors.New("network down")}
	client := newTestClient(t, api)

	if err := client.ToggleLike(context.Background(), 10); err == nil {
		t.Fatalf("expected toggle like error")
	}
	post, _ := client.Store().Post(10)
	if post.LikedByMe {
		t.Fatalf("expected liked state reverted")
	}
	if post.LikeCount != 2 {
		t.Fatalf("expected like count reverted to 2, got %d", post.LikeCount)
	}
}

func TestToggleLikeUnknownPost(t *testing.T) {
	api := &apiStub{}
	client := newTestClient(t, api)

	err := client.ToggleLike(context.Background(), 999)
	if !errors.Is(err, ErrPostUnknown) {
		t.Fatalf("expected ErrPostUnknown, got %v", err)
	}
	if api.toggleCalls != 0 {
		t.Fatalf("expected no server call for unknown post")
	}
}

func TestAddCommentAssignsNegativeTempIDs(t *testing.T) {
	api := &apiStub{createErr: errors.New("slow down")}
	client := newTestClient(t, api)

	tempID1, ok := client.Store().appendPendingComment(10, 1, "one")
	if !ok {
		t.Fatalf("append pending comment failed")
	}
	tempID2, _ := client.Store().appendPendingComment(10, 1, "two")
	if tempID1 >= 0 || tempID2 >= 0 {
		t.Fatalf("temp IDs must be negative, got %d and %d", tempID1, tempID2)
	}
	if tempID2 >= tempID1 {
		t.Fatalf("temp IDs must decrease monotonically, got %d then %d", tempID1, tempID2)
	}
}

func TestAddCommentResolvedByServer(t *testing.T) {
	api := &apiStub{createdComment: Comment{ID: 301, PostID: 10, AuthorID: 1, Content: "nice", CreatedAt: time.Now()}}
	client := newTestClient(t, api)

	commentID, err := client.AddComment(context.Background(), 10, "nice")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if commentID != 301 {
		t.Fatalf("expected server comment ID 301, got %d", commentID)
	}
	post, _ := client.Store().Post(10)
	if len(post.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(post.Comments))
	}
	if post.Comments[0].ID != 301 || post.Comments[0].Pending {
		t.Fatalf("expected confirmed comment, got %+v", post.Comments[0])
	}
}

func TestAddCommentKeptOnFailureAndRetried(t *testing.T) {
	api := &apiStub{createErr: errors.New("rejected")}
	client := newTestClient(t, api)

	tempID, err := client.AddComment(context.Background(), 10, "oops")
	if err == nil {
		t.Fatalf("expected add comment error")
	}
	if tempID >= 0 {
		t.Fatalf("expected negative temp ID for failed comment, got %d", tempID)
	}
	// 失败的评论保留在列表中,带失败标记,等待重试
	post, _ := client.Store().Post(10)
	if len(post.Comments) != 1 {
		t.Fatalf("expected failed comment kept, got %d comments", len(post.Comments))
	}
	kept := post.Comments[0]
	if !kept.Pending || !kept.Failed || kept.FailureReason != "rejected" {
		t.Fatalf("expected pending failed comment, got %+v", kept)
	}

	api.createErr = nil
	api.createdComment = Comment{ID: 77, PostID: 10, AuthorID: 1, Content: "oops", CreatedAt: time.Now()}
	commentID, err := client.RetryComment(context.Background(), 10, tempID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if commentID != 77 {
		t.Fatalf("expected server comment ID 77, got %d", commentID)
	}
	post, _ = client.Store().Post(10)
	if len(post.Comments) != 1 || post.Comments[0].ID != 77 || post.Comments[0].Pending {
		t.Fatalf("expected confirmed comment after retry, got %+v", post.Comments)
	}
}

func TestDismissFailedComment(t *testing.T) {
	api := &apiStub{createErr: errors.New("rejected")}
	client := newTestClient(t, api)

	tempID, err := client.AddComment(context.Background(), 10, "oops")
	if err == nil {
		t.Fatalf("expected add comment error")
	}
	client.DismissComment(10, tempID)
	post, _ := client.Store().Post(10)
	if len(post.Comments) != 0 {
		t.Fatalf("expected dismissed comment removed, got %d comments", len(post.Comments))
	}
}

func TestAddCommentTruncatesLongContent(t *testing.T) {
	api := &apiStub{}
	client := newTestClient(t, api)

	var long []rune
	for i := 0; i < 150; i++ {
		long = append(long, '字')
	}
	var sentContent string
	api.createCommentFn = func(content string) (Comment, error) {
		sentContent = content
		return Comment{ID: 88, PostID: 10, AuthorID: 1, Content: content, CreatedAt: time.Now()}, nil
	}
	if _, err := client.AddComment(context.Background(), 10, string(long)); err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if got := len([]rune(sentContent)); got != 100 {
		t.Fatalf("expected content truncated to 100 runes before send, got %d", got)
	}
}

func TestDeleteCommentRestoresOnFailure(t *testing.T) {
	api := &apiStub{deleteErr: errors.New("forbidden")}
	client := newTestClient(t, api)

	if err := client.DeleteComment(context.Background(), 11, 100); err == nil {
		t.Fatalf("expected delete comment error")
	}
	post, _ := client.Store().Post(11)
	if len(post.Comments) != 1 {
		t.Fatalf("expected comment restored, got %d comments", len(post.Comments))
	}
	if post.Comments[0].ID != 100 {
		t.Fatalf("expected restored comment 100, got %d", post.Comments[0].ID)
	}
}

func TestDeleteCommentRemovesOnSuccess(t *testing.T) {
	api := &apiStub{}
	client := newTestClient(t, api)

	if err := client.DeleteComment(context.Background(), 11, 100); err != nil {
		t.Fatalf("delete comment failed: %v", err)
	}
	post, _ := client.Store().Post(11)
	if len(post.Comments) != 0 {
		t.Fatalf("expected comment removed, got %d comments", len(post.Comments))
	}
}

func TestDeletePostConfirmCallback(t *testing.T) {
	api := &apiStub{}
	client := newTestClient(t, api)

	client.ConfirmPostDelete = func(Post) bool { return false }
	if err := client.DeletePost(context.Background(), 10); !errors.Is(err, ErrDeleteCanceled) {
		t.Fatalf("expected ErrDeleteCanceled, got %v", err)
	}
	if api.deletePostCalls != 0 {
		t.Fatalf("canceled delete must not hit the server")
	}
	if _, ok := client.Store().Post(10); !ok {
		t.Fatalf("canceled delete must keep the post")
	}

	client.ConfirmPostDelete = func(Post) bool { return true }
	if err := client.DeletePost(context.Background(), 10); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := client.Store().Post(10); ok {
		t.Fatalf("expected post removed after confirmed delete")
	}
}

func TestResendCountdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := ResendCountdown(ctx, 2)
	first, ok := <-ch
	if !ok || first != 2 {
		t.Fatalf("expected initial value 2, got %d (ok=%v)", first, ok)
	}

	var last int
	for v := range ch {
		if v >= first {
			t.Fatalf("countdown must decrease, got %d after %d", v, first)
		}
		last = v
	}
	if last != 0 {
		t.Fatalf("expected countdown to end at 0, got %d", last)
	}

	// 提前取消时通道关闭
	ctx2, cancel2 := context.WithCancel(context.Background())
	ch2 := ResendCountdown(ctx2, 60)
	<-ch2
	cancel2()
	for range ch2 {
	}
}

func TestCreatePostWaitsForServer(t *testing.T) {
	api := &apiStub{createPostFn: func(content string) (Post, error) {
		return Post{}, errors.New("validation failed")
	}}
	client := newTestClient(t, api)

	before := len(client.Store().Posts())
	if _, err := client.CreatePost(context.Background(), "draft"); err == nil {
		t.Fatalf("expected create post error")
	}
	// 失败的发布不会在本地流留下任何痕迹
	if got := len(client.Store().Posts()); got != before {
		t.Fatalf("expected feed unchanged, got %d posts", got)
	}

	api.createPostFn = func(content string) (Post, error) {
		return Post{ID: 42, AuthorID: 1, Content: content, CreatedAt: time.Now()}, nil
	}
	post, err := client.CreatePost(context.Background(), "hello")
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if post.ID != 42 {
		t.Fatalf("expected server post ID 42, got %d", post.ID)
	}
	posts := client.Store().Posts()
	if posts[0].ID != 42 {
		t.Fatalf("expected new post at head of feed, got %d", posts[0].ID)
	}
}
