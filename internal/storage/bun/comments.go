package bunrepo

import (
	"context"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CommentRepository struct {
	base baseRepository[domain.Comment]
}

func NewCommentRepository(db *bun.DB) *CommentRepository {
	meta := func(c *domain.Comment) *domain.RecordMeta { return &c.RecordMeta }
	return &CommentRepository{
		base: newBaseRepository[domain.Comment](db, handlersFor(func() *domain.Comment { return &domain.Comment{} }, meta), meta),
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.base.create(ctx, comment)
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	return r.base.update(ctx, comment)
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *CommentRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Comment], error) {
	return r.base.list(ctx, opts)
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *CommentRepository) ListByTarget(ctx context.Context, target domain.Target) ([]domain.Comment, error) {
	result, err := r.base.listWhere(ctx, store.ListOptions{}, "created_at ASC, seq ASC", withTarget(target))
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
