package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AnswerRepository struct {
	base baseRepository[domain.Answer]
}

func NewAnswerRepository(db *bun.DB) *AnswerRepository {
	meta := func(a *domain.Answer) *domain.RecordMeta { return &a.RecordMeta }
	return &AnswerRepository{
		base: newBaseRepository[domain.Answer](db, handlersFor(func() *domain.Answer { return &domain.Answer{} }, meta), meta),
	}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *domain.Answer) error {
	return r.base.create(ctx, answer)
}

func (r *AnswerRepository) Update(ctx context.Context, answer *domain.Answer) error {
	return r.base.update(ctx, answer)
}

func (r *AnswerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Answer, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *AnswerRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Answer], error) {
	return r.base.list(ctx, opts)
}

func (r *AnswerRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.Answer, error) {
	var items []domain.Answer
	err := r.base.idb(ctx).
		NewSelect().
		Model(&items).
		Where("question_id = ?", questionID).
		OrderExpr("is_answer DESC, created_at DESC, seq DESC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (r *AnswerRepository) CountByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	return r.base.count(ctx, "question_id = ?", questionID)
}

func (r *AnswerRepository) ClearAccepted(ctx context.Context, questionID uuid.UUID) error {
	_, err := r.base.idb(ctx).
		NewUpdate().
		Model((*domain.Answer)(nil)).
		Set("is_answer = ?", false).
		Set("updated_at = ?", time.Now().UTC()).
		Where("question_id = ?", questionID).
		Where("is_answer = ?", true).
		Exec(ctx)
	return mapError(err)
}

func (r *AnswerRepository) SetAccepted(ctx context.Context, id uuid.UUID) error {
	res, err := r.base.idb(ctx).
		NewUpdate().
		Model((*domain.Answer)(nil)).
		Set("is_answer = ?", true).
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
