package feedclient

import (
	"sync"
	"time"
)

// Post 客户端侧的动态视图
type Post struct {
	ID        uint
	AuthorID  uint
	Content   string
	LikeCount int64
	LikedByMe bool
	Comments  []Comment
	CreatedAt time.Time
}

// Comment 客户端侧的评论视图
// Pending 为 true 表示该评论尚未被服务端确认,此时 ID 为负数临时 ID
// 提交失败的评论保留在列表中并带上失败原因,等待用户重试或放弃
type Comment struct {
	ID            int64
	PostID        uint
	AuthorID      uint
	Content       string
	Pending       bool
	Failed        bool
	FailureReason string
	CreatedAt     time.Time
}

// likeSnapshot 点赞乐观更新前的状态快照
type likeSnapshot struct {
	liked bool
	count int64
}

// commentSnapshot 删除评论前的状态快照,用于失败回滚
type commentSnapshot struct {
	comment Comment
	index   int
}

// Store 本地动态流状态,所有读写都在锁内完成
// 动态本身只来自服务端,本地不做乐观插入
type Store struct {
	mu         sync.Mutex
	posts      []Post
	index      map[uint]int
	nextTempID int64
}

// NewStore 创建空的本地动态流
func NewStore() *Store {
	return &Store{
		index:      make(map[uint]int),
		nextTempID: -1,
	}
}

// ReplaceFeed 用服务端返回的动态流整体替换本地状态
func (s *Store) ReplaceFeed(posts []Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = make([]Post, len(posts))
	copy(s.posts, posts)
	s.rebuildIndexLocked()
}

// Posts 返回当前动态流的副本
func (s *Store) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	for i := range out {
		comments := make([]Comment, len(s.posts[i].Comments))
		copy(comments, s.posts[i].Comments)
		out[i].Comments = comments
	}
	return out
}

// Post 按 ID 查找动态
func (s *Store) Post(postID uint) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return Post{}, false
	}
	post := s.posts[i]
	comments := make([]Comment, len(post.Comments))
	copy(comments, post.Comments)
	post.Comments = comments
	return post, true
}

// ApplyServerPost 合并服务端返回的单条动态(刷新或新建后)
// 已存在则原位更新,不存在则插入到流头部
func (s *Store) ApplyServerPost(post Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[post.ID]; ok {
		s.posts[i] = post
		return
	}
	s.posts = append([]Post{post}, s.posts...)
	s.rebuildIndexLocked()
}

// RemovePost 从本地流中移除动态(删除成功后调用)
func (s *Store) RemovePost(postID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	s.rebuildIndexLocked()
}

// optimisticToggleLike 本地翻转点赞状态,返回回滚用快照
func (s *Store) optimisticToggleLike(postID uint) (likeSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return likeSnapshot{}, false
	}
	post := &s.posts[i]
	snapshot := likeSnapshot{liked: post.LikedByMe, count: post.LikeCount}
	if post.LikedByMe {
		post.LikedByMe = false
		if post.LikeCount > 0 {
			post.LikeCount--
		}
	} else {
		post.LikedByMe = true
		post.LikeCount++
	}
	return snapshot, true
}

// revertLike 点赞失败时恢复快照
func (s *Store) revertLike(postID uint, snapshot likeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	s.posts[i].LikedByMe = snapshot.liked
	s.posts[i].LikeCount = snapshot.count
}

// confirmLike 以服务端结果为准修正点赞状态
func (s *Store) confirmLike(postID uint, liked bool, likeCount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	s.posts[i].LikedByMe = liked
	s.posts[i].LikeCount = likeCount
}

// appendPendingComment 追加待确认评论,返回负数临时 ID
func (s *Store) appendPendingComment(postID, authorID uint, content string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return 0, false
	}
	tempID := s.nextTempID
	s.nextTempID--
	s.posts[i].Comments = append(s.posts[i].Comments, Comment{
		ID:        tempID,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		Pending:   true,
		CreatedAt: time.Now(),
	})
	return tempID, true
}

// resolvePendingComment 用服务端评论替换临时评论
func (s *Store) resolvePendingComment(postID uint, tempID int64, confirmed Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	for j := range s.posts[i].Comments {
		if s.posts[i].Comments[j].ID == tempID {
			s.posts[i].Comments[j] = confirmed
			return
		}
	}
}

// markCommentFailed 提交失败时给临时评论打上失败标记
func (s *Store) markCommentFailed(postID uint, tempID int64, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	for j := range s.posts[i].Comments {
		if s.posts[i].Comments[j].ID == tempID {
			s.posts[i].Comments[j].Failed = true
			s.posts[i].Comments[j].FailureReason = reason
			return
		}
	}
}

// pendingComment 取出待确认评论的副本,用于重试
func (s *Store) pendingComment(postID uint, tempID int64) (Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return Comment{}, false
	}
	for _, comment := range s.posts[i].Comments {
		if comment.ID == tempID && comment.Pending {
			return comment, true
		}
	}
	return Comment{}, false
}

// clearCommentFailure 重试前清除失败标记
func (s *Store) clearCommentFailure(postID uint, tempID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	for j := range s.posts[i].Comments {
		if s.posts[i].Comments[j].ID == tempID {
			s.posts[i].Comments[j].Failed = false
			s.posts[i].Comments[j].FailureReason = ""
			return
		}
	}
}

// dropPendingComment 放弃重试时移除临时评论
func (s *Store) dropPendingComment(postID uint, tempID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	comments := s.posts[i].Comments
	for j := range comments {
		if comments[j].ID == tempID {
			s.posts[i].Comments = append(comments[:j], comments[j+1:]...)
			return
		}
	}
}

// optimisticRemoveComment 本地移除评论,返回回滚用快照
func (s *Store) optimisticRemoveComment(postID uint, commentID int64) (commentSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return commentSnapshot{}, false
	}
	comments := s.posts[i].Comments
	for j := range comments {
		if comments[j].ID == commentID {
			snapshot := commentSnapshot{comment: comments[j], index: j}
			s.posts[i].Comments = append(comments[:j], comments[j+1:]...)
			return snapshot, true
		}
	}
	return commentSnapshot{}, false
}

// restoreComment 删除失败时将评论恢复到原位置
func (s *Store) restoreComment(postID uint, snapshot commentSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[postID]
	if !ok {
		return
	}
	comments := s.posts[i].Comments
	at := snapshot.index
	if at > len(comments) {
		at = len(comments)
	}
	restored := make([]Comment, 0, len(comments)+1)
	restored = append(restored, comments[:at]...)
	restored = append(restored, snapshot.comment)
	restored = append(restored, comments[at:]...)
	s.posts[i].Comments = restored
}

func (s *Store) rebuildIndexLocked() {
	s.index = make(map[uint]int, len(s.posts))
	for i := range s.posts {
		s.index[s.posts[i].ID] = i
	}
}
