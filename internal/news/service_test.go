package news

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/dispatcher"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/goliatone/go-social/pkg/storage"
)

type fixture struct {
	svc       *Service
	providers storage.Providers
	capture   *broadcaster.Capture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	providers := storage.NewMemoryProviders()
	capture := broadcaster.NewCapture()
	notifier, err := dispatcher.New(dispatcher.Dependencies{
		Notifications: providers.Notifications,
		Broadcaster:   capture,
		Owners:        dispatcher.ContentOwners(providers),
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	svc, err := NewService(Dependencies{News: providers.News, Users: providers.Users, Notifier: notifier})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, providers: providers, capture: capture}
}

func (f *fixture) user(t *testing.T, name string) domain.User {
	t.Helper()
	u := &domain.User{Username: name}
	if err := f.providers.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return *u
}

func (f *fixture) unread(t *testing.T, u domain.User) []domain.Notification {
	t.Helper()
	res, err := f.providers.Notifications.ListByRecipient(context.Background(), u.ID, nil, store.ListOptions{})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return res.Items
}

func TestPostAnnouncesOnGlobalGroup(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	item, err := f.svc.Post(context.Background(), alice, "  hello  ")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if item.Content != "hello" || item.Reply {
		t.Fatalf("unexpected item %+v", item)
	}
	events := f.capture.ForGroup(broadcaster.GlobalGroup)
	if len(events) != 1 {
		t.Fatalf("expected one global announcement, got %d", len(events))
	}
	p := events[0].Payload.(dispatcher.Payload)
	if p.Key != dispatcher.KeyAdditionalNews || p.IDValue != item.ID.String() {
		t.Fatalf("unexpected payload %+v", p)
	}

	if _, err := f.svc.Post(context.Background(), alice, "   "); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLikeTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	item, err := f.svc.Post(ctx, alice, "post")
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	first, err := f.svc.Like(ctx, bob, item.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !first.Liked || first.Likes != 1 {
		t.Fatalf("expected liked with 1, got %+v", first)
	}
	second, err := f.svc.Like(ctx, bob, item.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if second.Liked || second.Likes != 0 {
		t.Fatalf("expected unliked with 0, got %+v", second)
	}

	if got := f.unread(t, alice); len(got) != 1 || got[0].Verb != domain.VerbLiked {
		t.Fatalf("expected a single like notification, got %+v", got)
	}
	events := f.capture.ForGroup("alice")
	if len(events) != 1 || events[0].Payload.(dispatcher.Payload).Key != dispatcher.KeySocialUpdate {
		t.Fatalf("expected one social_update for alice, got %+v", events)
	}
}

func TestLikeOwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	item, _ := f.svc.Post(ctx, alice, "mine")

	res, err := f.svc.Like(ctx, alice, item.ID)
	if err != nil || !res.Liked {
		t.Fatalf("expected like to apply, got %+v %v", res, err)
	}
	if got := f.unread(t, alice); len(got) != 0 {
		t.Fatalf("expected no notification for self like, got %d", len(got))
	}
}

func TestConcurrentLikesFromDistinctUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	item, _ := f.svc.Post(ctx, alice, "popular")

	const n = 16
	likers := make([]domain.User, n)
	for i := range likers {
		likers[i] = f.user(t, "user"+string(rune('a'+i)))
	}
	var wg sync.WaitGroup
	for _, u := range likers {
		wg.Add(1)
		go func(u domain.User) {
			defer wg.Done()
			if _, err := f.svc.Like(ctx, u, item.ID); err != nil {
				t.Errorf("like: %v", err)
			}
		}(u)
	}
	wg.Wait()

	count, err := f.svc.LikeCount(ctx, item.ID)
	if err != nil || count != n {
		t.Fatalf("expected %d likes, got %d %v", n, count, err)
	}
	users, err := f.svc.Likers(ctx, item.ID)
	if err != nil || len(users) != n {
		t.Fatalf("expected %d likers, got %d %v", n, len(users), err)
	}
}

func TestReplyAttachesToRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	root, _ := f.svc.Post(ctx, alice, "root")

	first, err := f.svc.Reply(ctx, bob, root.ID, "first")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	second, err := f.svc.Reply(ctx, carol, first.ID, "second")
	if err != nil {
		t.Fatalf("reply to reply: %v", err)
	}
	if second.ParentID != root.ID || !second.Reply {
		t.Fatalf("expected reply to attach to root, got %+v", second)
	}

	gotRoot, replies, err := f.svc.Thread(ctx, second.ID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if gotRoot.ID != root.ID || len(replies) != 2 || replies[0].ID != first.ID || replies[1].ID != second.ID {
		t.Fatalf("unexpected thread %v %+v", gotRoot.ID, replies)
	}

	stats, err := f.svc.Interactions(ctx, root.ID)
	if err != nil || stats.Comments != 2 || stats.Likes != 0 {
		t.Fatalf("unexpected interactions %+v %v", stats, err)
	}
	if got := f.unread(t, alice); len(got) != 2 || got[0].Verb != domain.VerbReplied {
		t.Fatalf("expected two reply notifications for alice, got %+v", got)
	}
	if got := f.unread(t, bob); len(got) != 0 {
		t.Fatalf("reply author of a reply is not notified, got %d", len(got))
	}
}

func TestDeleteRequiresAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	item, _ := f.svc.Post(ctx, alice, "post")

	if err := f.svc.Delete(ctx, bob, item.ID); !apperr.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, alice, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, item.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := f.svc.Like(ctx, bob, item.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected like on deleted item to fail, got %v", err)
	}
}
