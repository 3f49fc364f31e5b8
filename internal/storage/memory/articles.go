package memory

import (
	"context"
	"strings"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type ArticleRepository struct {
	base baseMemoryRepo[domain.Article]
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{
		base: newBaseMemoryRepo("article", func(a *domain.Article) *domain.RecordMeta { return &a.RecordMeta }),
	}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	return r.base.createUnique(article, func(existing, candidate *domain.Article) bool {
		return strings.EqualFold(existing.Title, candidate.Title)
	})
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
	items := r.base.find(func(a *domain.Article) bool { return a.Status == status })
	items = filterWindow(items, r.base.extract, opts)
	return page(reverse(items), opts), nil
}
