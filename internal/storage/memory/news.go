package memory

import (
	"context"
	"sort"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type NewsRepository struct {
	base baseMemoryRepo[domain.News]
	// likes is guarded by base.mu.
	likes map[uuid.UUID]map[uuid.UUID]time.Time
}

func NewNewsRepository() *NewsRepository {
	return &NewsRepository{
		base:  newBaseMemoryRepo("news", func(n *domain.News) *domain.RecordMeta { return &n.RecordMeta }),
		likes: make(map[uuid.UUID]map[uuid.UUID]time.Time),
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
	items := r.base.find(func(n *domain.News) bool { return !n.Reply })
	items = filterWindow(items, r.base.extract, opts)
	return page(reverse(items), opts), nil
}

func (r *NewsRepository) Thread(ctx context.Context, rootID uuid.UUID) ([]domain.News, error) {
	return r.base.find(func(n *domain.News) bool {
		return n.Reply && n.ParentID == rootID
	}), nil
}

func (r *NewsRepository) CountReplies(ctx context.Context, rootID uuid.UUID) (int, error) {
	items, err := r.Thread(ctx, rootID)
	return len(items), err
}

func (r *NewsRepository) ToggleLike(ctx context.Context, newsID, userID uuid.UUID) (bool, int, error) {
	r.base.mu.Lock()
	defer r.base.mu.Unlock()

	record, ok := r.base.records[newsID]
	if !ok || !record.DeletedAt.IsZero() {
		return false, 0, store.ErrNotFound
	}

	set := r.likes[newsID]
	if set == nil {
		set = make(map[uuid.UUID]time.Time)
		r.likes[newsID] = set
	}
	if _, liked := set[userID]; liked {
		delete(set, userID)
		return false, len(set), nil
	}
	set[userID] = time.Now().UTC()
	return true, len(set), nil
}

func (r *NewsRepository) CountLikes(ctx context.Context, newsID uuid.UUID) (int, error) {
	r.base.mu.RLock()
	defer r.base.mu.RUnlock()
	return len(r.likes[newsID]), nil
}

// Likers returns the users who liked newsID in the order they liked it.
func (r *NewsRepository) Likers(ctx context.Context, newsID uuid.UUID) ([]uuid.UUID, error) {
	r.base.mu.RLock()
	set := r.likes[newsID]
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := set[out[i]], set[out[j]]
		if a.Equal(b) {
			return out[i].String() < out[j].String()
		}
		return a.Before(b)
	})
	r.base.mu.RUnlock()
	return out, nil
}
