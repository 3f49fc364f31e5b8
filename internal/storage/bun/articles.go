package bunrepo

import (
	"context"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ArticleRepository struct {
	base baseRepository[domain.Article]
}

func NewArticleRepository(db *bun.DB) *ArticleRepository {
	meta := func(a *domain.Article) *domain.RecordMeta { return &a.RecordMeta }
	return &ArticleRepository{
		base: newBaseRepository[domain.Article](db, handlersFor(func() *domain.Article { return &domain.Article{} }, meta), meta),
	}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	return r.base.create(ctx, article)
}

func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	return r.base.update(ctx, article)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ArticleRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Article], error) {
	return r.base.list(ctx, opts)
}

func (r *ArticleRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ArticleRepository) ListByStatus(ctx context.Context, status string, opts store.ListOptions) (store.ListResult[domain.Article], error) {
	return r.base.listWhere(ctx, opts, "created_at DESC, seq DESC", withWhere("status = ?", status))
}
