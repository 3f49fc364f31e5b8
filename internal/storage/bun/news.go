package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NewsRepository struct {
	base baseRepository[domain.News]
}

func NewNewsRepository(db *bun.DB) *NewsRepository {
	meta := func(n *domain.News) *domain.RecordMeta { return &n.RecordMeta }
	return &NewsRepository{
		base: newBaseRepository[domain.News](db, handlersFor(func() *domain.News { return &domain.News{} }, meta), meta),
	}
}

func (r *NewsRepository) Create(ctx context.Context, news *domain.News) error {
	return r.base.create(ctx, news)
}

func (r *NewsRepository) Update(ctx context.Context, news *domain.News) error {
	return r.base.update(ctx, news)
}

func (r *NewsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *NewsRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.News], error) {
	return r.base.list(ctx, opts)
}

func (r *NewsRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *NewsRepository) ListRoots(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.News], error) {
	return r.base.listWhere(ctx, opts, "created_at DESC, seq DESC", withWhere("reply = ?", false))
}

func (r *NewsRepository) Thread(ctx context.Context, rootID uuid.UUID) ([]domain.News, error) {
	var items []domain.News
	err := r.base.idb(ctx).
		NewSelect().
		Model(&items).
		Where("reply = ?", true).
		Where("parent_id = ?", rootID).
		OrderExpr("created_at ASC, seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (r *NewsRepository) CountReplies(ctx context.Context, rootID uuid.UUID) (int, error) {
	return r.base.count(ctx, "reply = ? AND parent_id = ?", true, rootID)
}

// ToggleLike inserts the like row unless it exists, in which case it removes
// it. The insert is the compare-and-set: concurrent togglers of the same pair
// serialize on the primary key.
func (r *NewsRepository) ToggleLike(ctx context.Context, newsID, userID uuid.UUID) (liked bool, count int, err error) {
	err = runInTx(ctx, r.base.db, func(ctx context.Context, tx bun.IDB) error {
		exists, err := tx.NewSelect().Model((*domain.News)(nil)).Where("id = ?", newsID).Exists(ctx)
		if err != nil {
			return mapError(err)
		}
		if !exists {
			return store.ErrNotFound
		}

		like := &domain.NewsLike{NewsID: newsID, UserID: userID, CreatedAt: time.Now().UTC()}
		res, err := tx.NewInsert().Model(like).On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return mapError(err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			liked = true
		} else {
			_, err = tx.NewDelete().
				Model((*domain.NewsLike)(nil)).
				Where("news_id = ?", newsID).
				Where("user_id = ?", userID).
				Exec(ctx)
			if err != nil {
				return mapError(err)
			}
		}

		count, err = tx.NewSelect().Model((*domain.NewsLike)(nil)).Where("news_id = ?", newsID).Count(ctx)
		return mapError(err)
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *NewsRepository) CountLikes(ctx context.Context, newsID uuid.UUID) (int, error) {
	count, err := r.base.idb(ctx).
		NewSelect().
		Model((*domain.NewsLike)(nil)).
		Where("news_id = ?", newsID).
		Count(ctx)
	return count, mapError(err)
}

func (r *NewsRepository) Likers(ctx context.Context, newsID uuid.UUID) ([]uuid.UUID, error) {
	var likes []domain.NewsLike
	err := r.base.idb(ctx).
		NewSelect().
		Model(&likes).
		Where("news_id = ?", newsID).
		OrderExpr("created_at ASC, user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]uuid.UUID, len(likes))
	for i, like := range likes {
		out[i] = like.UserID
	}
	return out, nil
}
