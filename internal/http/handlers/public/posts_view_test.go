package public

import (
	"testing"

	"github.com/moment-next/internal/models"
)

func TestPostViewMarksFriendAuthors(t *testing.T) {
	h := &Handler{}

	post := &models.Post{ID: 1, UserID: 2, Content: "morning hike"}
	view := h.postView(post, 9, map[uint]bool{2: true})
	if view["is_friend"] != true {
		t.Fatalf("friend author should be marked, got %v", view["is_friend"])
	}

	stranger := &models.Post{ID: 2, UserID: 3, Content: "hello"}
	view = h.postView(stranger, 9, map[uint]bool{2: true})
	if view["is_friend"] != false {
		t.Fatalf("non-friend author should not be marked, got %v", view["is_friend"])
	}

	// 自己的动态不标注好友关系
	own := &models.Post{ID: 3, UserID: 9, Content: "mine"}
	view = h.postView(own, 9, map[uint]bool{9: true})
	if view["is_friend"] != false {
		t.Fatalf("own post should not be marked as friend, got %v", view["is_friend"])
	}
}

func TestPostListViewWithoutFriends(t *testing.T) {
	h := &Handler{}
	posts := []models.Post{
		{ID: 1, UserID: 2, Content: "a"},
		{ID: 2, UserID: 3, Content: "b"},
	}
	views := h.postListView(posts, 9, nil)
	if len(views) != 2 {
		t.Fatalf("views len want 2 got %d", len(views))
	}
	for _, view := range views {
		if view["is_friend"] != false {
			t.Fatalf("expected is_friend false, got %v", view["is_friend"])
		}
	}
}
