package messages

import (
	"context"
	"errors"
	"strings"
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

func newFixture(t *testing.T, renderer Renderer) *fixture {
	t.Helper()
	providers := storage.NewMemoryProviders()
	capture := broadcaster.NewCapture()
	publisher, err := dispatcher.New(dispatcher.Dependencies{
		Notifications: providers.Notifications,
		Broadcaster:   capture,
		Owners:        dispatcher.ContentOwners(providers),
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	svc, err := NewService(Dependencies{
		Messages:  providers.Messages,
		Users:     providers.Users,
		Publisher: publisher,
		Renderer:  renderer,
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

func TestSendPublishesToRecipientOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	msg, err := f.svc.Send(ctx, alice, SendInput{To: "bob", Body: " <b>hi</b> "})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !msg.Unread || msg.RecipientID != bob.ID || msg.Body != "<b>hi</b>" {
		t.Fatalf("unexpected message %+v", msg)
	}

	events := f.capture.ForGroup("bob")
	if len(events) != 1 {
		t.Fatalf("expected one event for bob, got %d", len(events))
	}
	p := events[0].Payload.(dispatcher.Payload)
	if p.Type != dispatcher.TypeReceive || p.Sender != "alice" {
		t.Fatalf("unexpected payload %+v", p)
	}
	if !strings.Contains(p.Message, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Fatalf("expected escaped body in fragment, got %s", p.Message)
	}
	if len(f.capture.ForGroup("alice")) != 0 || len(f.capture.ForGroup(broadcaster.GlobalGroup)) != 0 {
		t.Fatalf("message must only reach the recipient")
	}

	res, _ := f.providers.Notifications.List(ctx, store.ListOptions{})
	if res.Total != 0 {
		t.Fatalf("messages must not create notifications")
	}
}

func TestSendRejectsBlankAndSelf(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.user(t, "bob")

	if _, err := f.svc.Send(ctx, alice, SendInput{To: "bob", Body: "   "}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for blank body, got %v", err)
	}
	if _, err := f.svc.Send(ctx, alice, SendInput{To: "alice", Body: "me"}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for self send, got %v", err)
	}
	if _, err := f.svc.Send(ctx, alice, SendInput{To: "nobody", Body: "hey"}); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for unknown recipient, got %v", err)
	}
	if len(f.capture.Events()) != 0 {
		t.Fatalf("rejected sends must not publish")
	}
}

func TestRenderFailureStillStoresMessage(t *testing.T) {
	f := newFixture(t, RendererFunc(func(domain.Message, domain.User) (string, error) {
		return "", errors.New("template broke")
	}))
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	msg, err := f.svc.Send(ctx, alice, SendInput{To: "bob", Body: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	convo, err := f.svc.Conversation(ctx, bob, "alice", store.ListOptions{})
	if err != nil || len(convo) != 1 || convo[0].ID != msg.ID {
		t.Fatalf("expected stored message, got %+v %v", convo, err)
	}
	if len(f.capture.Events()) != 0 {
		t.Fatalf("expected no publish when rendering fails")
	}
}

func TestConversationBothDirections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")

	bodies := []struct {
		from domain.User
		to   string
		body string
	}{
		{alice, "bob", "one"},
		{bob, "alice", "two"},
		{carol, "alice", "elsewhere"},
		{alice, "bob", "three"},
	}
	for _, m := range bodies {
		if _, err := f.svc.Send(ctx, m.from, SendInput{To: m.to, Body: m.body}); err != nil {
			t.Fatalf("send %s: %v", m.body, err)
		}
	}

	convo, err := f.svc.Conversation(ctx, alice, "bob", store.ListOptions{})
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	var got []string
	for _, m := range convo {
		got = append(got, m.Body)
	}
	if strings.Join(got, ",") != "one,two,three" {
		t.Fatalf("unexpected conversation %v", got)
	}

	partner, err := f.svc.MostRecentConversation(ctx, bob)
	if err != nil || partner.ID != alice.ID {
		t.Fatalf("expected alice as latest partner, got %+v %v", partner, err)
	}
}

func TestMostRecentConversationFallsBackToSelf(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")

	partner, err := f.svc.MostRecentConversation(context.Background(), alice)
	if err != nil || partner.ID != alice.ID {
		t.Fatalf("expected self, got %+v %v", partner, err)
	}
}

func TestMarkReadRecipientOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	msg, _ := f.svc.Send(ctx, alice, SendInput{To: "bob", Body: "ping"})

	if err := f.svc.MarkRead(ctx, alice, msg.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected sender to be refused, got %v", err)
	}
	if err := f.svc.MarkRead(ctx, bob, msg.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	stored, _ := f.providers.Messages.GetByID(ctx, msg.ID)
	if stored.Unread {
		t.Fatalf("expected message to be read")
	}
}
