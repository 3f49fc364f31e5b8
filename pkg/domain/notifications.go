package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Verb is the action a Notification reports. Values are the stored codes.
type Verb string

const (
	VerbLiked     Verb = "L"
	VerbCommented Verb = "C"
	VerbFavored   Verb = "F"
	VerbAnswered  Verb = "A"
	VerbAccepted  Verb = "W"
	VerbReplied   Verb = "R"
	VerbLoggedIn  Verb = "I"
	VerbLoggedOut Verb = "O"
)

var verbWords = map[Verb]string{
	VerbLiked:     "liked",
	VerbCommented: "commented",
	VerbFavored:   "favored",
	VerbAnswered:  "answered",
	VerbAccepted:  "accepted the answer",
	VerbReplied:   "replied",
	VerbLoggedIn:  "logged in",
	VerbLoggedOut: "logged out",
}

// String returns the human readable form of the verb.
func (v Verb) String() string {
	if word, ok := verbWords[v]; ok {
		return word
	}
	return string(v)
}

// Valid reports whether v is one of the known verbs.
func (v Verb) Valid() bool {
	_, ok := verbWords[v]
	return ok
}

// ParseVerb accepts the stored code or the word ("liked", "logged-in", ...).
func ParseVerb(raw string) (Verb, error) {
	raw = strings.TrimSpace(raw)
	if v := Verb(strings.ToUpper(raw)); v.Valid() {
		return v, nil
	}
	norm := strings.ReplaceAll(strings.ToLower(raw), "-", " ")
	for v, word := range verbWords {
		if word == norm || (v == VerbAccepted && norm == "accepted") {
			return v, nil
		}
	}
	return "", fmt.Errorf("domain: unknown verb %q", raw)
}

// TargetKind tags the content type a Target points at.
type TargetKind string

const (
	KindArticle  TargetKind = "article"
	KindNews     TargetKind = "news"
	KindQuestion TargetKind = "question"
	KindAnswer   TargetKind = "answer"
)

// Valid reports whether k is a known kind.
func (k TargetKind) Valid() bool {
	switch k {
	case KindArticle, KindNews, KindQuestion, KindAnswer:
		return true
	}
	return false
}

// Target is a polymorphic reference to a content item.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Valid reports whether the target has a known kind and an id.
func (t Target) Valid() bool {
	return t.Kind.Valid() && t.ID != uuid.Nil
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}

// Notification records that an actor did something to a recipient's content.
type Notification struct {
	bun.BaseModel `bun:"table:notifications"`
	RecordMeta

	ActorID     uuid.UUID  `bun:"type:uuid,notnull" json:"actor_id"`
	RecipientID uuid.UUID  `bun:"type:uuid,notnull" json:"recipient_id"`
	Verb        Verb       `bun:",notnull" json:"verb"`
	TargetKind  TargetKind `bun:",nullzero" json:"target_kind,omitempty"`
	TargetID    uuid.UUID  `bun:"type:uuid,nullzero" json:"target_id,omitempty"`
	Unread      bool       `bun:",notnull" json:"unread"`
	Slug        string     `bun:",unique,notnull" json:"slug"`
}

// Target returns the polymorphic reference stored on the notification.
func (n Notification) Target() Target {
	return Target{Kind: n.TargetKind, ID: n.TargetID}
}

// NotificationSlug derives the lookup slug for a notification.
func NotificationSlug(recipient string, id uuid.UUID, verb Verb) string {
	return Slugify(fmt.Sprintf("%s %s %s", recipient, id, verb))
}

// Message is a private message between two users.
type Message struct {
	bun.BaseModel `bun:"table:messages"`
	RecordMeta

	SenderID    uuid.UUID `bun:"type:uuid,notnull" json:"sender_id"`
	RecipientID uuid.UUID `bun:"type:uuid,notnull" json:"recipient_id"`
	Body        string    `bun:",notnull" json:"message"`
	Unread      bool      `bun:",notnull" json:"unread"`
}

// Involves reports whether the user sent or received the message.
func (m Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// Partner returns the other participant of the message from userID's point of view.
func (m Message) Partner(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}
