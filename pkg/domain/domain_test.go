package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseVerb(t *testing.T) {
	cases := map[string]Verb{
		"L":         VerbLiked,
		"commented": VerbCommented,
		"logged-in": VerbLoggedIn,
		"accepted":  VerbAccepted,
		"w":         VerbAccepted,
	}
	for raw, want := range cases {
		got, err := ParseVerb(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}
	if _, err := ParseVerb("shared"); err == nil {
		t.Fatalf("expected unknown verb to fail")
	}
}

func TestNotificationSlug(t *testing.T) {
	id := uuid.MustParse("5b0c4a8e-3d52-4b1e-9a55-0f3a2f1c9d10")
	got := NotificationSlug("Alice Smith", id, VerbCommented)
	want := "alice-smith-5b0c4a8e-3d52-4b1e-9a55-0f3a2f1c9d10-c"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNewsRootID(t *testing.T) {
	root := News{RecordMeta: RecordMeta{ID: uuid.New()}}
	reply := News{RecordMeta: RecordMeta{ID: uuid.New()}, Reply: true, ParentID: root.ID}
	if root.RootID() != root.ID {
		t.Fatalf("root should be its own root")
	}
	if reply.RootID() != root.ID {
		t.Fatalf("reply should resolve to its parent")
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (User{Username: "bob"}).DisplayName(); got != "bob" {
		t.Fatalf("expected username fallback, got %s", got)
	}
	if got := (User{Username: "bob", Nickname: "Bobby"}).DisplayName(); got != "Bobby" {
		t.Fatalf("expected nickname, got %s", got)
	}
}
