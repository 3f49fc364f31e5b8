package memory

import (
	"context"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type CommentRepository struct {
	base baseMemoryRepo[domain.Comment]
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		base: newBaseMemoryRepo("comment", func(c *domain.Comment) *domain.RecordMeta { return &c.RecordMeta }),
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
	return r.base.find(func(c *domain.Comment) bool {
		return c.TargetKind == target.Kind && c.TargetID == target.ID
	}), nil
}
