package repository

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/moment-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupFriendRequestRepositoryTest(t *testing.T) *GormFriendRequestRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:friend_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewFriendRequestRepository(db)
}

func TestFriendRequestRepositoryListFriendIDs(t *testing.T) {
	repo := setupFriendRequestRepositoryTest(t)

	// 1→2 accepted, 3→1 accepted, 1→4 pending
	accepted1 := models.FriendRequest{SenderID: 1, RecipientID: 2, Status: models.FriendRequestStatusAccepted}
	accepted2 := models.FriendRequest{SenderID: 3, RecipientID: 1, Status: models.FriendRequestStatusAccepted}
	pending := models.FriendRequest{SenderID: 1, RecipientID: 4, Status: models.FriendRequestStatusPending}
	for _, request := range []*models.FriendRequest{&accepted1, &accepted2, &pending} {
		if err := repo.Create(request); err != nil {
			t.Fatalf("create request failed: %v", err)
		}
	}

	ids, err := repo.ListFriendIDs(1)
	if err != nil {
		t.Fatalf("list friend ids failed: %v", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Fatalf("expected friends [2 3], got %v", ids)
	}

	friends, err := repo.AreFriends(1, 3)
	if err != nil {
		t.Fatalf("are friends failed: %v", err)
	}
	if !friends {
		t.Fatal("expected 1 and 3 to be friends")
	}

	friends, err = repo.AreFriends(1, 4)
	if err != nil {
		t.Fatalf("are friends pending failed: %v", err)
	}
	if friends {
		t.Fatal("pending request must not count as friendship")
	}
}

func TestFriendRequestRepositoryGetBetween(t *testing.T) {
	repo := setupFriendRequestRepositoryTest(t)

	request := models.FriendRequest{SenderID: 8, RecipientID: 9, Status: models.FriendRequestStatusPending}
	if err := repo.Create(&request); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 任意方向均可命中
	found, err := repo.GetBetween(9, 8)
	if err != nil {
		t.Fatalf("get between failed: %v", err)
	}
	if found == nil || found.ID != request.ID {
		t.Fatalf("expected to find request %d, got %+v", request.ID, found)
	}

	missing, err := repo.GetBetween(8, 10)
	if err != nil {
		t.Fatalf("get between missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unrelated pair, got %+v", missing)
	}
}
