package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// News is a short post. Replies are News rows with Reply set and ParentID
// pointing at the thread root.
type News struct {
	bun.BaseModel `bun:"table:news"`
	RecordMeta

	UserID   uuid.UUID `bun:"type:uuid,notnull" json:"user_id"`
	ParentID uuid.UUID `bun:"type:uuid,nullzero" json:"parent_id,omitempty"`
	Content  string    `bun:",notnull" json:"content"`
	Reply    bool      `bun:",notnull" json:"reply"`
}

// RootID returns the id of the thread root this item belongs to.
func (n News) RootID() uuid.UUID {
	if n.Reply && n.ParentID != uuid.Nil {
		return n.ParentID
	}
	return n.ID
}

// NewsLike is one membership row of a News liker set.
type NewsLike struct {
	bun.BaseModel `bun:"table:news_likes"`

	NewsID    uuid.UUID `bun:",pk,type:uuid" json:"news_id"`
	UserID    uuid.UUID `bun:",pk,type:uuid" json:"user_id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Article is a long form post that can receive comments.
type Article struct {
	bun.BaseModel `bun:"table:articles"`
	RecordMeta

	UserID  uuid.UUID  `bun:"type:uuid,notnull" json:"user_id"`
	Title   string     `bun:",unique,notnull" json:"title"`
	Slug    string     `bun:",nullzero" json:"slug"`
	Status  string     `bun:",notnull" json:"status"`
	Content string     `bun:",notnull" json:"content"`
	Tags    StringList `bun:"type:jsonb,nullzero" json:"tags,omitempty"`
	Edited  bool       `bun:",notnull" json:"edited"`
}

// Comment is attached to a content item, articles in practice.
type Comment struct {
	bun.BaseModel `bun:"table:comments"`
	RecordMeta

	UserID     uuid.UUID  `bun:"type:uuid,notnull" json:"user_id"`
	TargetKind TargetKind `bun:",notnull" json:"target_kind"`
	TargetID   uuid.UUID  `bun:"type:uuid,notnull" json:"target_id"`
	Body       string     `bun:",notnull" json:"body"`
}

// Question is a QA entry; HasAnswer flips once an answer is accepted.
type Question struct {
	bun.BaseModel `bun:"table:questions"`
	RecordMeta

	UserID    uuid.UUID  `bun:"type:uuid,notnull" json:"user_id"`
	Title     string     `bun:",unique,notnull" json:"title"`
	Slug      string     `bun:",nullzero" json:"slug"`
	Status    string     `bun:",notnull" json:"status"`
	Content   string     `bun:",notnull" json:"content"`
	Tags      StringList `bun:"type:jsonb,nullzero" json:"tags,omitempty"`
	HasAnswer bool       `bun:",notnull" json:"has_answer"`
}

// Answer belongs to a Question. At most one answer per question is accepted.
type Answer struct {
	bun.BaseModel `bun:"table:answers"`
	RecordMeta

	UserID     uuid.UUID `bun:"type:uuid,notnull" json:"user_id"`
	QuestionID uuid.UUID `bun:"type:uuid,notnull" json:"question_id"`
	Content    string    `bun:",notnull" json:"content"`
	IsAnswer   bool      `bun:",notnull" json:"is_answer"`
}

// Vote is an up or down vote by a user on a question or answer.
type Vote struct {
	bun.BaseModel `bun:"table:votes"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	UserID     uuid.UUID  `bun:"type:uuid,notnull,unique:user_target" json:"user_id"`
	TargetKind TargetKind `bun:",notnull,unique:user_target" json:"target_kind"`
	TargetID   uuid.UUID  `bun:"type:uuid,notnull,unique:user_target" json:"target_id"`
	Value      bool       `bun:",notnull" json:"value"`
	CreatedAt  time.Time  `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Target returns the voted item.
func (v Vote) Target() Target {
	return Target{Kind: v.TargetKind, ID: v.TargetID}
}
