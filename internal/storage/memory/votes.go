package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	"github.com/google/uuid"
)

type voteKey struct {
	user   uuid.UUID
	target domain.Target
}

// VoteRepository keys votes by (user, target); a user holds at most one
// vote per target.
type VoteRepository struct {
	mu    sync.RWMutex
	votes map[voteKey]domain.Vote
}

func NewVoteRepository() *VoteRepository {
	return &VoteRepository{votes: make(map[voteKey]domain.Vote)}
}

func (r *VoteRepository) Cast(ctx context.Context, userID uuid.UUID, target domain.Target, value bool) (store.VoteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := voteKey{user: userID, target: target}
	now := time.Now().UTC()
	existing, ok := r.votes[key]
	switch {
	case !ok:
		r.votes[key] = domain.Vote{
			ID:         uuid.New(),
			UserID:     userID,
			TargetKind: target.Kind,
			TargetID:   target.ID,
			Value:      value,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return store.VoteResult{Voted: true, Value: value}, nil
	case existing.Value == value:
		delete(r.votes, key)
		return store.VoteResult{}, nil
	default:
		existing.Value = value
		existing.UpdatedAt = now
		r.votes[key] = existing
		return store.VoteResult{Voted: true, Value: value}, nil
	}
}

func (r *VoteRepository) ListByTarget(ctx context.Context, target domain.Target) ([]domain.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Vote
	for key, vote := range r.votes {
		if key.target == target {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
