package memory

import (
	"context"
	"strings"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type QuestionRepository struct {
	base baseMemoryRepo[domain.Question]
}

func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{
		base: newBaseMemoryRepo("question", func(q *domain.Question) *domain.RecordMeta { return &q.RecordMeta }),
	}
}

func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	return r.base.createUnique(question, func(existing, candidate *domain.Question) bool {
		return strings.EqualFold(existing.Title, candidate.Title)
	})
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
	items := r.base.find(func(q *domain.Question) bool { return q.HasAnswer == answered })
	items = filterWindow(items, r.base.extract, opts)
	return page(reverse(items), opts), nil
}

func (r *QuestionRepository) MarkAnswered(ctx context.Context, id uuid.UUID) error {
	return r.base.mutate(id, func(q *domain.Question) { q.HasAnswer = true })
}
