package memory

import (
	"context"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type NotificationRepository struct {
	base baseMemoryRepo[domain.Notification]
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		base: newBaseMemoryRepo("notification", func(n *domain.Notification) *domain.RecordMeta { return &n.RecordMeta }),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.base.createUnique(n, func(existing, candidate *domain.Notification) bool {
		return candidate.Slug != "" && existing.Slug == candidate.Slug
	})
}

func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	return r.base.update(ctx, n)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *NotificationRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	return r.base.list(ctx, opts)
}

func (r *NotificationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *NotificationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Notification, error) {
	matches := r.base.find(func(n *domain.Notification) bool { return n.Slug == slug })
	if len(matches) == 0 {
		return nil, store.ErrNotFound
	}
	return &matches[0], nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unread *bool, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	items := r.base.find(func(n *domain.Notification) bool {
		if n.RecipientID != recipientID {
			return false
		}
		return unread == nil || n.Unread == *unread
	})
	items = filterWindow(items, r.base.extract, opts)
	return page(reverse(items), opts), nil
}

func (r *NotificationRepository) SetUnread(ctx context.Context, id uuid.UUID, unread bool) error {
	return r.base.mutate(id, func(n *domain.Notification) { n.Unread = unread })
}

func (r *NotificationRepository) SetAllUnread(ctx context.Context, recipientID uuid.UUID, unread bool) (int, error) {
	r.base.mu.Lock()
	defer r.base.mu.Unlock()

	changed := 0
	for id, n := range r.base.records {
		if n.RecipientID != recipientID || n.Unread == unread || !n.DeletedAt.IsZero() {
			continue
		}
		n.Unread = unread
		r.base.records[id] = n
		changed++
	}
	return changed, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	items := r.base.find(func(n *domain.Notification) bool {
		return n.RecipientID == recipientID && n.Unread
	})
	return len(items), nil
}
