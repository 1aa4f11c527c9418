package feedclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPAPIToggleLikeParsesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/posts/7/like" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":0,"msg":"success","data":{"liked":true,"like_count":3}}`))
	}))
	defer server.Close()

	api := NewHTTPAPI(server.URL, "token-1", server.Client())
	result, err := api.ToggleLike(context.Background(), 7)
	if err != nil {
		t.Fatalf("toggle like failed: %v", err)
	}
	if !result.Liked || result.LikeCount != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestHTTPAPISurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":404,"msg":"post not found","data":null}`))
	}))
	defer server.Close()

	api := NewHTTPAPI(server.URL, "", server.Client())
	if _, err := api.ToggleLike(context.Background(), 99); err == nil {
		t.Fatalf("expected server error")
	}
}

func TestHTTPAPIFetchFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/feed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Fatalf("unexpected page %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":0,"msg":"success","data":[{"id":1,"user_id":9,"content":"hi","like_count":1,"liked_by_me":true,"comments":[{"id":5,"post_id":1,"user_id":2,"content":"yo"}]}],"pagination":{"page":2,"page_size":20,"total":1,"total_page":1}}`))
	}))
	defer server.Close()

	api := NewHTTPAPI(server.URL, "", server.Client())
	posts, err := api.FetchFeed(context.Background(), 2, 20)
	if err != nil {
		t.Fatalf("fetch feed failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].AuthorID != 9 || !posts[0].LikedByMe {
		t.Fatalf("unexpected post %+v", posts[0])
	}
	if len(posts[0].Comments) != 1 || posts[0].Comments[0].ID != 5 {
		t.Fatalf("unexpected comments %+v", posts[0].Comments)
	}
}
