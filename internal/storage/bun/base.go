package bunrepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type txKey struct{}

// WithTx attaches tx to ctx. Repository methods that accept a transactional
// context run their queries on it.
func WithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) (bun.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(bun.Tx)
	return tx, ok
}

type baseRepository[T any] struct {
	repo    repository.Repository[*T]
	db      *bun.DB
	extract func(*T) *domain.RecordMeta
}

func newBaseRepository[T any](db *bun.DB, handlers repository.ModelHandlers[*T], extract func(*T) *domain.RecordMeta) baseRepository[T] {
	return baseRepository[T]{
		repo:    repository.MustNewRepository[*T](db, handlers),
		db:      db,
		extract: extract,
	}
}

func handlersFor[T any](newRecord func() *T, meta func(*T) *domain.RecordMeta) repository.ModelHandlers[*T] {
	return repository.ModelHandlers[*T]{
		NewRecord:          newRecord,
		GetID:              func(r *T) uuid.UUID { return meta(r).ID },
		SetID:              func(r *T, id uuid.UUID) { meta(r).ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *T) string { return meta(r).ID.String() },
	}
}

// idb returns the transaction carried by ctx, or db.
func idb(ctx context.Context, db *bun.DB) bun.IDB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

// runInTx joins the transaction carried by ctx or opens a new one.
func runInTx(ctx context.Context, db *bun.DB, fn func(ctx context.Context, tx bun.IDB) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(ctx, tx)
	}
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(WithTx(ctx, tx), tx)
	})
}

func (r baseRepository[T]) idb(ctx context.Context) bun.IDB {
	return idb(ctx, r.db)
}

func (r baseRepository[T]) create(ctx context.Context, record *T) error {
	base := r.extract(record)
	base.EnsureID()
	base.EnsureSeq()
	now := time.Now().UTC()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	if tx, ok := txFromContext(ctx); ok {
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return mapError(err)
	}
	_, err := r.repo.Create(ctx, record)
	return mapError(err)
}

func (r baseRepository[T]) update(ctx context.Context, record *T) error {
	base := r.extract(record)
	base.UpdatedAt = time.Now().UTC()
	if tx, ok := txFromContext(ctx); ok {
		_, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx)
		return mapError(err)
	}
	_, err := r.repo.Update(ctx, record)
	return mapError(err)
}

func (r baseRepository[T]) getByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	criteria := []repository.SelectCriteria{withID(id)}
	if !includeDeleted {
		criteria = append(criteria, withoutDeleted())
	}
	if tx, ok := txFromContext(ctx); ok {
		record := new(T)
		q := tx.NewSelect().Model(record)
		if includeDeleted {
			q = q.WhereAllWithDeleted()
		}
		for _, c := range criteria {
			q = c(q)
		}
		if err := q.Limit(1).Scan(ctx); err != nil {
			return nil, mapError(err)
		}
		return record, nil
	}
	record, err := r.repo.Get(ctx, criteria...)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (r baseRepository[T]) list(ctx context.Context, opts store.ListOptions) (store.ListResult[T], error) {
	return r.listWhere(ctx, opts, "created_at ASC, seq ASC")
}

// listWhere lists records matching criteria in the given order.
func (r baseRepository[T]) listWhere(ctx context.Context, opts store.ListOptions, order string, criteria ...repository.SelectCriteria) (store.ListResult[T], error) {
	criteria = append(criteria, withListOptions(opts, order))
	records, total, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return store.ListResult[T]{}, mapError(err)
	}
	items := make([]T, len(records))
	for i, rec := range records {
		items[i] = *rec
	}
	return store.ListResult[T]{Items: items, Total: total}, nil
}

// softDelete relies on the soft_delete tag: bun rewrites the delete into an
// update of deleted_at.
func (r baseRepository[T]) softDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.idb(ctx).
		NewDelete().
		Model((*T)(nil)).
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

// count returns how many live rows match where.
func (r baseRepository[T]) count(ctx context.Context, where string, args ...any) (int, error) {
	count, err := r.idb(ctx).
		NewSelect().
		Model((*T)(nil)).
		Where(where, args...).
		Count(ctx)
	return count, mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

// isUniqueViolation matches the sqlite and postgres unique constraint errors.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE=23505") ||
		strings.Contains(msg, "duplicate key value")
}
