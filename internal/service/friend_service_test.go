package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moment-next/internal/models"
	"github.com/moment-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupFriendServiceTest(t *testing.T) (*FriendService, *NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:friend_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.FriendRequest{}, &models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewFriendService(repository.NewFriendRequestRepository(db), repository.NewUserRepository(db), notifier)
	return svc, notifier, db
}

func TestSendRequestValidations(t *testing.T) {
	svc, notifier, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	if _, err := svc.SendRequest(alice.ID, alice.ID); !errors.Is(err, ErrFriendRequestSelf) {
		t.Fatalf("expected ErrFriendRequestSelf, got %v", err)
	}
	if _, err := svc.SendRequest(alice.ID, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	request, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}
	if request.Status != models.FriendRequestStatusPending {
		t.Fatalf("expected pending status, got %s", request.Status)
	}
	count, _ := notifier.UnreadCount(bob.ID)
	if count != 1 {
		t.Fatalf("expected recipient notification, got %d", count)
	}

	if _, err := svc.SendRequest(alice.ID, bob.ID); !errors.Is(err, ErrFriendRequestExists) {
		t.Fatalf("expected ErrFriendRequestExists, got %v", err)
	}
	// 反向重复申请同样视为已有待处理申请
	if _, err := svc.SendRequest(bob.ID, alice.ID); !errors.Is(err, ErrFriendRequestExists) {
		t.Fatalf("expected ErrFriendRequestExists for reverse request, got %v", err)
	}
}

func TestAcceptRequestRecipientOnly(t *testing.T) {
	svc, notifier, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	request, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}

	// 发起方不能替接收方接受
	if _, err := svc.Accept(request.ID, alice.ID); !errors.Is(err, ErrFriendRequestNotFound) {
		t.Fatalf("expected ErrFriendRequestNotFound, got %v", err)
	}

	accepted, err := svc.Accept(request.ID, bob.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != models.FriendRequestStatusAccepted || accepted.RespondedAt == nil {
		t.Fatalf("unexpected accepted request %+v", accepted)
	}

	friends, err := svc.AreFriends(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("are friends failed: %v", err)
	}
	if !friends {
		t.Fatal("expected users to be friends after accept")
	}

	// 接收方的申请通知被撤回,发起方收到通过通知
	count, _ := notifier.UnreadCount(bob.ID)
	if count != 0 {
		t.Fatalf("recipient's request notification should be removed, got %d", count)
	}
	count, _ = notifier.UnreadCount(alice.ID)
	if count != 1 {
		t.Fatalf("sender should get accepted notification, got %d", count)
	}

	// 已处理的申请不能再次接受
	if _, err := svc.Accept(request.ID, bob.ID); !errors.Is(err, ErrFriendRequestNotFound) {
		t.Fatalf("expected ErrFriendRequestNotFound on repeat accept, got %v", err)
	}
	if _, err := svc.SendRequest(alice.ID, bob.ID); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("expected ErrAlreadyFriends, got %v", err)
	}
}

func TestDeclineAllowsResend(t *testing.T) {
	svc, notifier, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	request, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}
	declined, err := svc.Decline(request.ID, bob.ID)
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.Status != models.FriendRequestStatusDeclined {
		t.Fatalf("expected declined status, got %s", declined.Status)
	}
	count, _ := notifier.UnreadCount(bob.ID)
	if count != 0 {
		t.Fatalf("declined request notification should be removed, got %d", count)
	}

	// 被拒绝后可以重新发起
	resent, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("resend after decline failed: %v", err)
	}
	if resent.ID == request.ID {
		t.Fatal("expected a fresh request record")
	}
	if resent.Status != models.FriendRequestStatusPending {
		t.Fatalf("expected pending status, got %s", resent.Status)
	}
}

func TestCancelSenderOnly(t *testing.T) {
	svc, notifier, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	request, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}

	if err := svc.Cancel(request.ID, bob.ID); !errors.Is(err, ErrFriendRequestNotFound) {
		t.Fatalf("expected ErrFriendRequestNotFound, got %v", err)
	}
	if err := svc.Cancel(request.ID, alice.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	count, _ := notifier.UnreadCount(bob.ID)
	if count != 0 {
		t.Fatalf("cancelled request notification should be removed, got %d", count)
	}

	incoming, total, err := svc.ListIncoming(bob.ID, 1, 10)
	if err != nil {
		t.Fatalf("list incoming failed: %v", err)
	}
	if total != 0 || len(incoming) != 0 {
		t.Fatalf("expected empty incoming list, got %d", total)
	}
}

func TestUnfriendRemovesRelation(t *testing.T) {
	svc, _, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")

	if err := svc.Unfriend(alice.ID, bob.ID); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}

	request, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}
	if _, err := svc.Accept(request.ID, bob.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	friends, err := svc.ListFriends(alice.ID)
	if err != nil {
		t.Fatalf("list friends failed: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != bob.ID {
		t.Fatalf("expected bob as friend, got %+v", friends)
	}

	if err := svc.Unfriend(bob.ID, alice.ID); err != nil {
		t.Fatalf("unfriend failed: %v", err)
	}
	friends, err = svc.ListFriends(alice.ID)
	if err != nil {
		t.Fatalf("list friends failed: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected no friends after unfriend, got %+v", friends)
	}

	// 解除后同一对用户可以重新发起申请
	refriend, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("resend after unfriend failed: %v", err)
	}
	if refriend.Status != models.FriendRequestStatusPending {
		t.Fatalf("expected pending status, got %s", refriend.Status)
	}
}

func TestFriendIDSet(t *testing.T) {
	svc, _, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")
	carol := seedPostTestUser(t, db, "carol")

	request, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}
	if _, err := svc.Accept(request.ID, bob.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	set, err := svc.FriendIDSet(alice.ID)
	if err != nil {
		t.Fatalf("friend id set failed: %v", err)
	}
	if !set[bob.ID] || set[carol.ID] {
		t.Fatalf("expected only bob in set, got %v", set)
	}

	set, err = svc.FriendIDSet(carol.ID)
	if err != nil {
		t.Fatalf("friend id set failed: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestListIncomingOutgoing(t *testing.T) {
	svc, _, db := setupFriendServiceTest(t)
	alice := seedPostTestUser(t, db, "alice")
	bob := seedPostTestUser(t, db, "bob")
	carol := seedPostTestUser(t, db, "carol")

	if _, err := svc.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("send request failed: %v", err)
	}
	if _, err := svc.SendRequest(carol.ID, bob.ID); err != nil {
		t.Fatalf("send request failed: %v", err)
	}

	incoming, total, err := svc.ListIncoming(bob.ID, 1, 10)
	if err != nil {
		t.Fatalf("list incoming failed: %v", err)
	}
	if total != 2 || len(incoming) != 2 {
		t.Fatalf("expected 2 incoming requests, got %d", total)
	}

	outgoing, total, err := svc.ListOutgoing(alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("list outgoing failed: %v", err)
	}
	if total != 1 || outgoing[0].RecipientID != bob.ID {
		t.Fatalf("expected alice's request to bob, got %d", total)
	}
}
