package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-social/internal/storage/memory"
	"github.com/goliatone/go-social/pkg/activity"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/goliatone/go-social/pkg/storage"
	"github.com/google/uuid"
)

type failingNotifications struct {
	*memory.NotificationRepository
	err error
}

func (f failingNotifications) Create(ctx context.Context, n *domain.Notification) error {
	return f.err
}

type fixture struct {
	svc      *Service
	repo     store.NotificationRepository
	capture  *broadcaster.Capture
	articles *memory.ArticleRepository
	events   []activity.Event
}

func newFixture(t *testing.T, repo store.NotificationRepository) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repo,
		capture:  broadcaster.NewCapture(),
		articles: memory.NewArticleRepository(),
	}
	owners := NewOwners()
	owners.Register(domain.KindArticle, RepositoryOwner[domain.Article](f.articles, func(a *domain.Article) uuid.UUID { return a.UserID }))

	svc, err := New(Dependencies{
		Notifications: repo,
		Broadcaster:   f.capture,
		Owners:        owners,
		Hooks: activity.Hooks{activity.HookFunc(func(_ context.Context, evt activity.Event) {
			f.events = append(f.events, evt)
		})},
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) article(t *testing.T, owner domain.User) domain.Target {
	t.Helper()
	a := &domain.Article{UserID: owner.ID, Title: "t-" + uuid.NewString(), Status: domain.ArticlePublished, Content: "body"}
	if err := f.articles.Create(context.Background(), a); err != nil {
		t.Fatalf("create article: %v", err)
	}
	return domain.Target{Kind: domain.KindArticle, ID: a.ID}
}

func user(name string) domain.User {
	u := domain.User{Username: name}
	u.ID = uuid.New()
	return u
}

func TestNotifyPersistsThenBroadcastsToRecipientGroup(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	ctx := context.Background()
	alice, bob := user("alice"), user("bob")
	target := f.article(t, bob)

	n, err := f.svc.Notify(ctx, NotifyInput{
		Actor:     alice,
		Recipient: bob,
		Verb:      domain.VerbCommented,
		Target:    target,
		IDValue:   target.ID.String(),
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if n == nil {
		t.Fatalf("expected notification")
	}

	stored, err := f.repo.GetBySlug(ctx, n.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if stored.ActorID != alice.ID || stored.RecipientID != bob.ID || stored.Verb != domain.VerbCommented || !stored.Unread {
		t.Fatalf("unexpected stored notification %+v", stored)
	}

	events := f.capture.ForGroup("bob")
	if len(events) != 1 {
		t.Fatalf("expected 1 event for bob, got %d", len(events))
	}
	payload, ok := events[0].Payload.(Payload)
	if !ok {
		t.Fatalf("unexpected payload type %T", events[0].Payload)
	}
	if payload.Type != TypeReceive || payload.Key != KeyNotification || payload.ActorName != "alice" || payload.IDValue != target.ID.String() {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(f.capture.ForGroup(broadcaster.GlobalGroup)) != 0 {
		t.Fatalf("expected nothing on the global group")
	}
	if len(f.events) != 1 || f.events[0].Verb != "commented" {
		t.Fatalf("expected one activity event, got %+v", f.events)
	}
}

func TestNotifySuppressesSelfAction(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	ctx := context.Background()
	alice := user("alice")
	target := f.article(t, alice)

	n, err := f.svc.Notify(ctx, NotifyInput{Actor: alice, Recipient: alice, Verb: domain.VerbCommented, Target: target})
	if err != nil || n != nil {
		t.Fatalf("expected suppression, got %v %v", n, err)
	}
	assertNothingHappened(t, f)
}

func TestNotifySuppressesWhenRecipientDoesNotOwnTarget(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	ctx := context.Background()
	alice, bob, carol := user("alice"), user("bob"), user("carol")
	target := f.article(t, carol)

	n, err := f.svc.Notify(ctx, NotifyInput{Actor: alice, Recipient: bob, Verb: domain.VerbLiked, Target: target})
	if err != nil || n != nil {
		t.Fatalf("expected suppression, got %v %v", n, err)
	}
	assertNothingHappened(t, f)
}

func TestNotifySuppressesUnknownKind(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	alice, bob := user("alice"), user("bob")
	target := domain.Target{Kind: domain.KindQuestion, ID: uuid.New()}

	n, err := f.svc.Notify(context.Background(), NotifyInput{Actor: alice, Recipient: bob, Verb: domain.VerbAnswered, Target: target})
	if err != nil || n != nil {
		t.Fatalf("expected suppression, got %v %v", n, err)
	}
	assertNothingHappened(t, f)
}

func TestNotifySuppressesMissingTarget(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	alice, bob := user("alice"), user("bob")
	target := domain.Target{Kind: domain.KindArticle, ID: uuid.New()}

	n, err := f.svc.Notify(context.Background(), NotifyInput{Actor: alice, Recipient: bob, Verb: domain.VerbCommented, Target: target})
	if err != nil || n != nil {
		t.Fatalf("expected suppression, got %v %v", n, err)
	}
	assertNothingHappened(t, f)
}

func TestNotifyOwnerLookupFailureIsReturned(t *testing.T) {
	boom := errors.New("connection refused")
	repo := memory.NewNotificationRepository()
	capture := broadcaster.NewCapture()
	owners := NewOwners()
	owners.Register(domain.KindArticle, OwnerFunc(func(context.Context, uuid.UUID) (uuid.UUID, error) {
		return uuid.Nil, boom
	}))
	svc, err := New(Dependencies{Notifications: repo, Broadcaster: capture, Owners: owners})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	alice, bob := user("alice"), user("bob")

	n, err := svc.Notify(context.Background(), NotifyInput{
		Actor:     alice,
		Recipient: bob,
		Verb:      domain.VerbCommented,
		Target:    domain.Target{Kind: domain.KindArticle, ID: uuid.New()},
	})
	if n != nil || !errors.Is(err, boom) {
		t.Fatalf("expected owner lookup error, got %v %v", n, err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no broadcast after failed lookup")
	}
}

func TestNotifyPersistFailureSkipsBroadcast(t *testing.T) {
	boom := errors.New("db down")
	f := newFixture(t, failingNotifications{NotificationRepository: memory.NewNotificationRepository(), err: boom})
	alice, bob := user("alice"), user("bob")
	target := f.article(t, bob)

	_, err := f.svc.Notify(context.Background(), NotifyInput{Actor: alice, Recipient: bob, Verb: domain.VerbCommented, Target: target})
	if !errors.Is(err, boom) {
		t.Fatalf("expected persist error, got %v", err)
	}
	if len(f.capture.Events()) != 0 {
		t.Fatalf("expected no broadcast after failed persist")
	}
}

func TestNotifyBroadcastFailureIsNotReturned(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	f.capture.FailWith(errors.New("socket gone"))
	alice, bob := user("alice"), user("bob")
	target := f.article(t, bob)

	n, err := f.svc.Notify(context.Background(), NotifyInput{Actor: alice, Recipient: bob, Verb: domain.VerbCommented, Target: target})
	if err != nil || n == nil {
		t.Fatalf("expected persisted notification despite broadcast failure, got %v %v", n, err)
	}
}

func TestAnnounceTargetsGlobalGroup(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	alice := user("alice")

	f.svc.Announce(context.Background(), alice, KeyAdditionalNews, "")

	events := f.capture.ForGroup(broadcaster.GlobalGroup)
	if len(events) != 1 {
		t.Fatalf("expected 1 global event, got %d", len(events))
	}
	if p := events[0].Payload.(Payload); p.Key != KeyAdditionalNews || p.ActorName != "alice" {
		t.Fatalf("unexpected payload %+v", p)
	}
	list, _ := f.repo.List(context.Background(), store.ListOptions{})
	if list.Total != 0 {
		t.Fatalf("announce must not persist notifications")
	}
}

func TestPublishMessage(t *testing.T) {
	f := newFixture(t, memory.NewNotificationRepository())
	alice, bob := user("alice"), user("bob")

	f.svc.PublishMessage(context.Background(), alice, bob, "<p>hi</p>")

	events := f.capture.ForGroup("bob")
	if len(events) != 1 {
		t.Fatalf("expected 1 event for bob, got %d", len(events))
	}
	if p := events[0].Payload.(Payload); p.Message != "<p>hi</p>" || p.Sender != "alice" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Dependencies{Owners: NewOwners()}); !errors.Is(err, ErrMissingNotifications) {
		t.Fatalf("expected ErrMissingNotifications, got %v", err)
	}
	if _, err := New(Dependencies{Notifications: memory.NewNotificationRepository()}); !errors.Is(err, ErrMissingOwners) {
		t.Fatalf("expected ErrMissingOwners, got %v", err)
	}
}

func assertNothingHappened(t *testing.T, f *fixture) {
	t.Helper()
	list, err := f.repo.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected no notifications, got %d", list.Total)
	}
	if len(f.capture.Events()) != 0 {
		t.Fatalf("expected no broadcast, got %d", len(f.capture.Events()))
	}
}

func TestContentOwnersResolvesEveryKind(t *testing.T) {
	ctx := context.Background()
	providers := storage.NewMemoryProviders()
	owner := user("owner")

	article := &domain.Article{UserID: owner.ID, Title: "a", Status: domain.ArticlePublished}
	post := &domain.News{UserID: owner.ID, Content: "n"}
	question := &domain.Question{UserID: owner.ID, Title: "q", Content: "?"}
	if err := providers.Articles.Create(ctx, article); err != nil {
		t.Fatalf("article: %v", err)
	}
	if err := providers.News.Create(ctx, post); err != nil {
		t.Fatalf("news: %v", err)
	}
	if err := providers.Questions.Create(ctx, question); err != nil {
		t.Fatalf("question: %v", err)
	}
	answer := &domain.Answer{UserID: owner.ID, QuestionID: question.ID, Content: "!"}
	if err := providers.Answers.Create(ctx, answer); err != nil {
		t.Fatalf("answer: %v", err)
	}

	owners := ContentOwners(providers)
	for _, target := range []domain.Target{
		{Kind: domain.KindArticle, ID: article.ID},
		{Kind: domain.KindNews, ID: post.ID},
		{Kind: domain.KindQuestion, ID: question.ID},
		{Kind: domain.KindAnswer, ID: answer.ID},
	} {
		got, err := owners.Resolve(ctx, target)
		if err != nil {
			t.Fatalf("resolve %s: %v", target, err)
		}
		if got != owner.ID {
			t.Fatalf("resolve %s: expected owner %s, got %s", target, owner.ID, got)
		}
	}
	if _, err := owners.Resolve(ctx, domain.Target{Kind: domain.KindNews, ID: uuid.New()}); err == nil {
		t.Fatalf("expected missing record to fail")
	}
}
