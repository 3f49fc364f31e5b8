package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MessageRepository struct {
	base baseRepository[domain.Message]
}

func NewMessageRepository(db *bun.DB) *MessageRepository {
	meta := func(m *domain.Message) *domain.RecordMeta { return &m.RecordMeta }
	return &MessageRepository{
		base: newBaseRepository[domain.Message](db, handlersFor(func() *domain.Message { return &domain.Message{} }, meta), meta),
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
	result, err := r.base.listWhere(ctx, opts, "created_at ASC, seq ASC",
		withWhere("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))", a, b, b, a),
	)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (r *MessageRepository) Latest(ctx context.Context, userID uuid.UUID) (*domain.Message, error) {
	msg := new(domain.Message)
	err := r.base.idb(ctx).
		NewSelect().
		Model(msg).
		Where("(sender_id = ? OR recipient_id = ?)", userID, userID).
		OrderExpr("created_at DESC, seq DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return msg, nil
}

func (r *MessageRepository) SetUnread(ctx context.Context, id uuid.UUID, unread bool) error {
	res, err := r.base.idb(ctx).
		NewUpdate().
		Model((*domain.Message)(nil)).
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
