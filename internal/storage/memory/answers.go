package memory

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type AnswerRepository struct {
	base baseMemoryRepo[domain.Answer]
}

func NewAnswerRepository() *AnswerRepository {
	return &AnswerRepository{
		base: newBaseMemoryRepo("answer", func(a *domain.Answer) *domain.RecordMeta { return &a.RecordMeta }),
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
	items := reverse(r.base.find(func(a *domain.Answer) bool { return a.QuestionID == questionID }))
	for i := range items {
		if items[i].IsAnswer && i > 0 {
			accepted := items[i]
			copy(items[1:i+1], items[:i])
			items[0] = accepted
			break
		}
	}
	return items, nil
}

func (r *AnswerRepository) CountByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	items := r.base.find(func(a *domain.Answer) bool { return a.QuestionID == questionID })
	return len(items), nil
}

func (r *AnswerRepository) ClearAccepted(ctx context.Context, questionID uuid.UUID) error {
	r.base.mu.Lock()
	defer r.base.mu.Unlock()
	now := time.Now().UTC()
	for id, a := range r.base.records {
		if a.QuestionID != questionID || !a.IsAnswer {
			continue
		}
		a.IsAnswer = false
		a.UpdatedAt = now
		r.base.records[id] = a
	}
	return nil
}

func (r *AnswerRepository) SetAccepted(ctx context.Context, id uuid.UUID) error {
	return r.base.mutate(id, func(a *domain.Answer) { a.IsAnswer = true })
}
