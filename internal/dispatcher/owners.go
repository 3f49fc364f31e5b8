package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/storage"
	"github.com/google/uuid"
)

// ErrNoResolver is returned by Resolve for a kind nobody registered.
var ErrNoResolver = errors.New("dispatcher: no owner resolver")

// OwnerResolver returns the user owning a content item of one kind.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// OwnerFunc adapts a function into an OwnerResolver.
type OwnerFunc func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

func (f OwnerFunc) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return f(ctx, id)
}

// RepositoryOwner resolves owners by loading the record from repo.
func RepositoryOwner[T any](repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
}, owner func(*T) uuid.UUID) OwnerResolver {
	return OwnerFunc(func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
		record, err := repo.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return owner(record), nil
	})
}

// Owners maps each TargetKind to its resolver.
type Owners struct {
	mu        sync.RWMutex
	resolvers map[domain.TargetKind]OwnerResolver
}

func NewOwners() *Owners {
	return &Owners{resolvers: make(map[domain.TargetKind]OwnerResolver)}
}

// Register binds resolver to kind, replacing any previous binding.
func (o *Owners) Register(kind domain.TargetKind, resolver OwnerResolver) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolvers[kind] = resolver
}

// Resolve returns the owner of target.
func (o *Owners) Resolve(ctx context.Context, target domain.Target) (uuid.UUID, error) {
	o.mu.RLock()
	resolver, ok := o.resolvers[target.Kind]
	o.mu.RUnlock()
	if !ok {
		return uuid.Nil, fmt.Errorf("%w for kind %q", ErrNoResolver, target.Kind)
	}
	return resolver.OwnerOf(ctx, target.ID)
}

// ContentOwners registers a resolver for every content kind backed by p.
func ContentOwners(p storage.Providers) *Owners {
	owners := NewOwners()
	owners.Register(domain.KindArticle, RepositoryOwner[domain.Article](p.Articles, func(a *domain.Article) uuid.UUID { return a.UserID }))
	owners.Register(domain.KindNews, RepositoryOwner[domain.News](p.News, func(n *domain.News) uuid.UUID { return n.UserID }))
	owners.Register(domain.KindQuestion, RepositoryOwner[domain.Question](p.Questions, func(q *domain.Question) uuid.UUID { return q.UserID }))
	owners.Register(domain.KindAnswer, RepositoryOwner[domain.Answer](p.Answers, func(a *domain.Answer) uuid.UUID { return a.UserID }))
	return owners
}
