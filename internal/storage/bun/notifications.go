package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationRepository struct {
	base baseRepository[domain.Notification]
}

func NewNotificationRepository(db *bun.DB) *NotificationRepository {
	meta := func(n *domain.Notification) *domain.RecordMeta { return &n.RecordMeta }
	return &NotificationRepository{
		base: newBaseRepository[domain.Notification](db, handlersFor(func() *domain.Notification { return &domain.Notification{} }, meta), meta),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.base.create(ctx, n)
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
	record, err := r.base.repo.Get(ctx, withWhere("slug = ?", slug), withoutDeleted())
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unread *bool, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	criteria := []repository.SelectCriteria{withWhere("recipient_id = ?", recipientID)}
	if unread != nil {
		criteria = append(criteria, withWhere("unread = ?", *unread))
	}
	return r.base.listWhere(ctx, opts, "created_at DESC, seq DESC", criteria...)
}

func (r *NotificationRepository) SetUnread(ctx context.Context, id uuid.UUID, unread bool) error {
	res, err := r.base.idb(ctx).
		NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("unread = ?", unread).
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

func (r *NotificationRepository) SetAllUnread(ctx context.Context, recipientID uuid.UUID, unread bool) (int, error) {
	res, err := r.base.idb(ctx).
		NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("unread = ?", unread).
		Set("updated_at = ?", time.Now().UTC()).
		Where("recipient_id = ?", recipientID).
		Where("unread = ?", !unread).
		Exec(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return r.base.count(ctx, "recipient_id = ? AND unread = ?", recipientID, true)
}
