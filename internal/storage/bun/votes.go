package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VoteRepository stores votes with a unique (user_id, target_kind, target_id)
// index. Votes are hard deleted when withdrawn.
type VoteRepository struct {
	db *bun.DB
}

func NewVoteRepository(db *bun.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Cast(ctx context.Context, userID uuid.UUID, target domain.Target, value bool) (store.VoteResult, error) {
	var result store.VoteResult
	err := runInTx(ctx, r.db, func(ctx context.Context, tx bun.IDB) error {
		now := time.Now().UTC()
		vote := &domain.Vote{
			ID:         uuid.New(),
			UserID:     userID,
			TargetKind: target.Kind,
			TargetID:   target.ID,
			Value:      value,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		res, err := tx.NewInsert().
			Model(vote).
			On("CONFLICT (user_id, target_kind, target_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return mapError(err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			result = store.VoteResult{Voted: true, Value: value}
			return nil
		}

		res, err = tx.NewDelete().
			Model((*domain.Vote)(nil)).
			Where("user_id = ?", userID).
			Where("target_kind = ?", target.Kind).
			Where("target_id = ?", target.ID).
			Where("value = ?", value).
			Exec(ctx)
		if err != nil {
			return mapError(err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			result = store.VoteResult{}
			return nil
		}

		_, err = tx.NewUpdate().
			Model((*domain.Vote)(nil)).
			Set("value = ?", value).
			Set("updated_at = ?", now).
			Where("user_id = ?", userID).
			Where("target_kind = ?", target.Kind).
			Where("target_id = ?", target.ID).
			Exec(ctx)
		if err != nil {
			return mapError(err)
		}
		result = store.VoteResult{Voted: true, Value: value}
		return nil
	})
	return result, err
}

func (r *VoteRepository) ListByTarget(ctx context.Context, target domain.Target) ([]domain.Vote, error) {
	var votes []domain.Vote
	err := idb(ctx, r.db).
		NewSelect().
		Model(&votes).
		Where("target_kind = ?", target.Kind).
		Where("target_id = ?", target.ID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return votes, nil
}
