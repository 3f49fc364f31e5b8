package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record cannot be located.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("store: conflict")
)

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Repository[domain.User]
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type NotificationRepository interface {
	Repository[domain.Notification]
	GetBySlug(ctx context.Context, slug string) (*domain.Notification, error)
	// ListByRecipient returns notifications newest first. A nil unread matches both states.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unread *bool, opts ListOptions) (ListResult[domain.Notification], error)
	SetUnread(ctx context.Context, id uuid.UUID, unread bool) error
	// SetAllUnread flips every notification of the recipient currently in the
	// opposite state and returns how many rows changed.
	SetAllUnread(ctx context.Context, recipientID uuid.UUID, unread bool) (int, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

type MessageRepository interface {
	Repository[domain.Message]
	// Conversation returns messages exchanged by a and b in both directions,
	// oldest first.
	Conversation(ctx context.Context, a, b uuid.UUID, opts ListOptions) ([]domain.Message, error)
	Latest(ctx context.Context, userID uuid.UUID) (*domain.Message, error)
	SetUnread(ctx context.Context, id uuid.UUID, unread bool) error
}

type NewsRepository interface {
	Repository[domain.News]
	// ListRoots returns non-reply items newest first.
	ListRoots(ctx context.Context, opts ListOptions) (ListResult[domain.News], error)
	// Thread returns the replies attached to rootID, oldest first.
	Thread(ctx context.Context, rootID uuid.UUID) ([]domain.News, error)
	CountReplies(ctx context.Context, rootID uuid.UUID) (int, error)
	// ToggleLike flips membership of userID in the liker set of newsID as one
	// atomic step and reports the resulting state and liker count.
	ToggleLike(ctx context.Context, newsID, userID uuid.UUID) (liked bool, count int, err error)
	CountLikes(ctx context.Context, newsID uuid.UUID) (int, error)
	Likers(ctx context.Context, newsID uuid.UUID) ([]uuid.UUID, error)
}

type ArticleRepository interface {
	Repository[domain.Article]
	ListByStatus(ctx context.Context, status string, opts ListOptions) (ListResult[domain.Article], error)
}

type CommentRepository interface {
	Repository[domain.Comment]
	ListByTarget(ctx context.Context, target domain.Target) ([]domain.Comment, error)
}

type QuestionRepository interface {
	Repository[domain.Question]
	ListByAnswered(ctx context.Context, answered bool, opts ListOptions) (ListResult[domain.Question], error)
	// MarkAnswered sets has_answer. Runs on the transaction carried by ctx.
	MarkAnswered(ctx context.Context, id uuid.UUID) error
}

type AnswerRepository interface {
	Repository[domain.Answer]
	// ListByQuestion returns the accepted answer first, then newest first.
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.Answer, error)
	CountByQuestion(ctx context.Context, questionID uuid.UUID) (int, error)
	// ClearAccepted and SetAccepted run on the transaction carried by ctx.
	ClearAccepted(ctx context.Context, questionID uuid.UUID) error
	SetAccepted(ctx context.Context, id uuid.UUID) error
}

// VoteResult reports the state of a user's vote after Cast.
type VoteResult struct {
	Voted bool
	Value bool
}

type VoteRepository interface {
	// Cast records an up (true) or down (false) vote. Casting the same value
	// twice withdraws the vote, casting the opposite value switches it.
	Cast(ctx context.Context, userID uuid.UUID, target domain.Target, value bool) (VoteResult, error)
	ListByTarget(ctx context.Context, target domain.Target) ([]domain.Vote, error)
}
