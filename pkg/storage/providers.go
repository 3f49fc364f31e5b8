package storage

import (
	"context"
	"database/sql"

	bunrepo "github.com/goliatone/go-social/internal/storage/bun"
	"github.com/goliatone/go-social/internal/storage/memory"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// Providers exposes all repositories needed by services.
type Providers struct {
	Users         store.UserRepository
	Notifications store.NotificationRepository
	Messages      store.MessageRepository
	News          store.NewsRepository
	Articles      store.ArticleRepository
	Comments      store.CommentRepository
	Questions     store.QuestionRepository
	Answers       store.AnswerRepository
	Votes         store.VoteRepository
	Transaction   store.TransactionManager
}

type Option func(*Providers)

// WithTransactionManager overrides the transaction manager picked by the
// constructor.
func WithTransactionManager(tx store.TransactionManager) Option {
	return func(p *Providers) {
		if tx != nil {
			p.Transaction = tx
		}
	}
}

// NewMemoryProviders returns repositories backed by in-memory maps.
func NewMemoryProviders(opts ...Option) Providers {
	providers := Providers{
		Users:         memory.NewUserRepository(),
		Notifications: memory.NewNotificationRepository(),
		Messages:      memory.NewMessageRepository(),
		News:          memory.NewNewsRepository(),
		Articles:      memory.NewArticleRepository(),
		Comments:      memory.NewCommentRepository(),
		Questions:     memory.NewQuestionRepository(),
		Answers:       memory.NewAnswerRepository(),
		Votes:         memory.NewVoteRepository(),
		Transaction:   &store.SerialTransactionManager{},
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewBunProviders wires Bun-backed repositories using go-repository-bun.
// The caller is responsible for creating the *bun.DB instance (see Open) and
// managing its lifecycle.
func NewBunProviders(db *bun.DB, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel(Models()...)

	providers := Providers{
		Users:         bunrepo.NewUserRepository(db),
		Notifications: bunrepo.NewNotificationRepository(db),
		Messages:      bunrepo.NewMessageRepository(db),
		News:          bunrepo.NewNewsRepository(db),
		Articles:      bunrepo.NewArticleRepository(db),
		Comments:      bunrepo.NewCommentRepository(db),
		Questions:     bunrepo.NewQuestionRepository(db),
		Answers:       bunrepo.NewAnswerRepository(db),
		Votes:         bunrepo.NewVoteRepository(db),
		Transaction:   &bunTxManager{db: db},
	}

	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// bunTxManager runs fn in a bun transaction carried by ctx, so repository
// calls made with that ctx join it.
type bunTxManager struct {
	db *bun.DB
}

func (m *bunTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(bunrepo.WithTx(ctx, tx))
	})
}
