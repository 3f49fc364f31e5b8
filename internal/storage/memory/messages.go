package memory

import (
	"context"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type MessageRepository struct {
	base baseMemoryRepo[domain.Message]
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		base: newBaseMemoryRepo("message", func(m *domain.Message) *domain.RecordMeta { return &m.RecordMeta }),
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.base.create(ctx, msg)
}

func (r *MessageRepository) Update(ctx context.Context, msg *domain.Message) error {
	return r.base.update(ctx, msg)
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *MessageRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Message], error) {
	return r.base.list(ctx, opts)
}

func (r *MessageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *MessageRepository) Conversation(ctx context.Context, a, b uuid.UUID, opts store.ListOptions) ([]domain.Message, error) {
	items := r.base.find(func(m *domain.Message) bool {
		return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
	})
	items = filterWindow(items, r.base.extract, opts)
	return page(items, opts).Items, nil
}

func (r *MessageRepository) Latest(ctx context.Context, userID uuid.UUID) (*domain.Message, error) {
	items := r.base.find(func(m *domain.Message) bool { return m.Involves(userID) })
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	latest := items[len(items)-1]
	return &latest, nil
}

func (r *MessageRepository) SetUnread(ctx context.Context, id uuid.UUID, unread bool) error {
	return r.base.mutate(id, func(m *domain.Message) { m.Unread = unread })
}
