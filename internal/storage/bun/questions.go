package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type QuestionRepository struct {
	base baseRepository[domain.Question]
}

func NewQuestionRepository(db *bun.DB) *QuestionRepository {
	meta := func(q *domain.Question) *domain.RecordMeta { return &q.RecordMeta }
	return &QuestionRepository{
		base: newBaseRepository[domain.Question](db, handlersFor(func() *domain.Question { return &domain.Question{} }, meta), meta),
	}
}

func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	return r.base.create(ctx, question)
}

func (r *QuestionRepository) Update(ctx context.Context, question *domain.Question) error {
	return r.base.update(ctx, question)
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *QuestionRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Question], error) {
	return r.base.list(ctx, opts)
}

func (r *QuestionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *QuestionRepository) ListByAnswered(ctx context.Context, answered bool, opts store.ListOptions) (store.ListResult[domain.Question], error) {
	return r.base.listWhere(ctx, opts, "created_at DESC, seq DESC", withWhere("has_answer = ?", answered))
}

// MarkAnswered is the first write of an accept transaction, so on postgres it
// also takes the row lock that serializes competing accepts.
func (r *QuestionRepository) MarkAnswered(ctx context.Context, id uuid.UUID) error {
	res, err := r.base.idb(ctx).
		NewUpdate().
		Model((*domain.Question)(nil)).
		Set("has_answer = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
