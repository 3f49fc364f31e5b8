package qa

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
	"github.com/google/uuid"
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
	svc, err := NewService(Dependencies{
		Questions:   providers.Questions,
		Answers:     providers.Answers,
		Votes:       providers.Votes,
		Users:       providers.Users,
		Transaction: providers.Transaction,
		Notifier:    notifier,
	})
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

func (f *fixture) notifications(t *testing.T, u domain.User) []domain.Notification {
	t.Helper()
	res, err := f.providers.Notifications.ListByRecipient(context.Background(), u.ID, nil, store.ListOptions{})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return res.Items
}

func TestAnswerNotifiesQuestionOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	q, err := f.svc.Ask(ctx, alice, AskInput{Title: "How?", Content: "details", Tags: []string{"Go", " go ", "sql"}})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(q.Tags) != 2 || q.Status != domain.QuestionOpen {
		t.Fatalf("unexpected question %+v", q)
	}
	if _, err := f.svc.Answer(ctx, bob, q.ID, "like this"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	got := f.notifications(t, alice)
	if len(got) != 1 || got[0].Verb != domain.VerbAnswered || got[0].ActorID != bob.ID {
		t.Fatalf("unexpected notifications %+v", got)
	}
	if len(f.capture.ForGroup("alice")) != 1 {
		t.Fatalf("expected a live event for alice")
	}
}

func TestAcceptAnswerKeepsSingleAcceptedAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	q, _ := f.svc.Ask(ctx, alice, AskInput{Title: "Which?", Content: "pick"})
	first, _ := f.svc.Answer(ctx, bob, q.ID, "first")
	second, _ := f.svc.Answer(ctx, carol, q.ID, "second")

	if _, err := f.svc.AcceptAnswer(ctx, bob, first.ID); !apperr.IsForbidden(err) {
		t.Fatalf("expected forbidden for non owner, got %v", err)
	}
	if _, err := f.svc.AcceptAnswer(ctx, alice, first.ID); err != nil {
		t.Fatalf("accept first: %v", err)
	}
	if _, err := f.svc.AcceptAnswer(ctx, alice, second.ID); err != nil {
		t.Fatalf("accept second: %v", err)
	}

	answers, err := f.svc.Answers(ctx, q.ID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	accepted := 0
	for _, a := range answers {
		if a.IsAnswer {
			accepted++
		}
	}
	if accepted != 1 || answers[0].ID != second.ID {
		t.Fatalf("expected only the second answer accepted and listed first, got %+v", answers)
	}

	stored, _ := f.svc.Question(ctx, q.ID)
	if !stored.HasAnswer {
		t.Fatalf("expected question to be marked answered")
	}
	answered, _ := f.svc.ListAnswered(ctx, store.ListOptions{})
	if answered.Total != 1 {
		t.Fatalf("expected one answered question, got %d", answered.Total)
	}

	if got := f.notifications(t, carol); len(got) != 1 || got[0].Verb != domain.VerbAccepted {
		t.Fatalf("expected accepted notification for carol, got %+v", got)
	}
}

func TestConcurrentAcceptsSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	q, _ := f.svc.Ask(ctx, alice, AskInput{Title: "Race?", Content: "go"})

	var ids []uuid.UUID
	for i := 0; i < 8; i++ {
		author := f.user(t, "answerer"+string(rune('a'+i)))
		a, err := f.svc.Answer(ctx, author, q.ID, "answer")
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
		ids = append(ids, a.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := f.svc.AcceptAnswer(ctx, alice, id); err != nil {
				t.Errorf("accept: %v", err)
			}
		}(id)
	}
	wg.Wait()

	answers, _ := f.svc.Answers(ctx, q.ID)
	accepted := 0
	for _, a := range answers {
		if a.IsAnswer {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted answer, got %d", accepted)
	}
}

func TestVotesToggleAndSwitch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	q, _ := f.svc.Ask(ctx, alice, AskInput{Title: "Vote?", Content: "please"})
	target := domain.Target{Kind: domain.KindQuestion, ID: q.ID}

	if _, err := f.svc.Vote(ctx, bob, target, true); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := f.svc.Vote(ctx, carol, target, false); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if total, _ := f.svc.TotalVotes(ctx, target); total != 0 {
		t.Fatalf("expected 0, got %d", total)
	}

	res, _ := f.svc.Vote(ctx, carol, target, true)
	if !res.Voted || !res.Value {
		t.Fatalf("expected switched vote, got %+v", res)
	}
	if total, _ := f.svc.TotalVotes(ctx, target); total != 2 {
		t.Fatalf("expected 2, got %d", total)
	}
	up, _ := f.svc.Upvoters(ctx, target)
	down, _ := f.svc.Downvoters(ctx, target)
	if len(up) != 2 || len(down) != 0 {
		t.Fatalf("unexpected voters up=%d down=%d", len(up), len(down))
	}

	res, _ = f.svc.Vote(ctx, bob, target, true)
	if res.Voted {
		t.Fatalf("expected repeated vote to withdraw, got %+v", res)
	}
	if total, _ := f.svc.TotalVotes(ctx, target); total != 1 {
		t.Fatalf("expected 1, got %d", total)
	}

	if _, err := f.svc.Vote(ctx, bob, domain.Target{Kind: domain.KindNews, ID: q.ID}, true); !apperr.IsValidation(err) {
		t.Fatalf("expected news votes to be rejected, got %v", err)
	}
	if _, err := f.svc.Vote(ctx, bob, domain.Target{Kind: domain.KindAnswer, ID: uuid.New()}, true); !apperr.IsNotFound(err) {
		t.Fatalf("expected missing answer to be not found, got %v", err)
	}
}

func TestTagCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.svc.Ask(ctx, alice, AskInput{Title: "a", Content: "x", Tags: []string{"go", "sql"}})
	f.svc.Ask(ctx, alice, AskInput{Title: "b", Content: "x", Tags: []string{"go"}})

	counts, err := f.svc.TagCounts(ctx)
	if err != nil {
		t.Fatalf("tag counts: %v", err)
	}
	if len(counts) != 2 || counts[0] != (TagCount{Tag: "go", Count: 2}) || counts[1] != (TagCount{Tag: "sql", Count: 1}) {
		t.Fatalf("unexpected counts %+v", counts)
	}
}
