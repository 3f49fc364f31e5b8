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

type baseMemoryRepo[T any] struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]T
	extract   func(*T) *domain.RecordMeta
	entityStr string
}

func newBaseMemoryRepo[T any](entity string, extract func(*T) *domain.RecordMeta) baseMemoryRepo[T] {
	return baseMemoryRepo[T]{
		records:   make(map[uuid.UUID]T),
		extract:   extract,
		entityStr: entity,
	}
}

func (r *baseMemoryRepo[T]) create(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(record)
}

// createUnique stores the record unless clash reports an existing live
// record that violates a uniqueness rule.
func (r *baseMemoryRepo[T]) createUnique(record *T, clash func(existing, candidate *T) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if !r.extract(&existing).DeletedAt.IsZero() {
			continue
		}
		if clash(&existing, record) {
			return store.ErrConflict
		}
	}
	return r.createLocked(record)
}

// createLocked stamps and stores the record; callers hold r.mu.
func (r *baseMemoryRepo[T]) createLocked(record *T) error {
	base := r.extract(record)
	base.EnsureID()
	base.EnsureSeq()
	if _, exists := r.records[base.ID]; exists {
		return store.ErrConflict
	}
	now := time.Now().UTC()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	r.records[base.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) update(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.extract(record)
	if base.ID == uuid.Nil {
		return store.ErrNotFound
	}
	if _, ok := r.records[base.ID]; !ok {
		return store.ErrNotFound
	}
	base.UpdatedAt = time.Now().UTC()
	r.records[base.ID] = *record
	return nil
}

// mutate applies fn to a stored record under the write lock.
func (r *baseMemoryRepo[T]) mutate(id uuid.UUID, fn func(*T)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || !r.extract(&record).DeletedAt.IsZero() {
		return store.ErrNotFound
	}
	fn(&record)
	r.extract(&record).UpdatedAt = time.Now().UTC()
	r.records[id] = record
	return nil
}

func (r *baseMemoryRepo[T]) getByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	base := r.extract(&record)
	if !includeDeleted && !base.DeletedAt.IsZero() {
		return nil, store.ErrNotFound
	}
	copy := record
	return &copy, nil
}

// find returns live records matching keep, oldest first.
func (r *baseMemoryRepo[T]) find(keep func(*T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(keep)
}

func (r *baseMemoryRepo[T]) findLocked(keep func(*T) bool) []T {
	var out []T
	for _, record := range r.records {
		if !r.extract(&record).DeletedAt.IsZero() {
			continue
		}
		if keep != nil && !keep(&record) {
			continue
		}
		out = append(out, record)
	}
	r.sortAsc(out)
	return out
}

func (r *baseMemoryRepo[T]) sortAsc(items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := r.extract(&items[i]), r.extract(&items[j])
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.Seq < b.Seq
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (r *baseMemoryRepo[T]) list(ctx context.Context, opts store.ListOptions) (store.ListResult[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []T
	for _, record := range r.records {
		base := r.extract(&record)
		if !opts.IncludeSoftDeleted && !base.DeletedAt.IsZero() {
			continue
		}
		filtered = append(filtered, record)
	}
	r.sortAsc(filtered)
	return page(filterWindow(filtered, r.extract, opts), opts), nil
}

func (r *baseMemoryRepo[T]) softDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return store.ErrNotFound
	}
	base := r.extract(&record)
	if base.DeletedAt.IsZero() {
		base.DeletedAt = time.Now().UTC()
	}
	r.records[id] = record
	return nil
}

func filterWindow[T any](items []T, extract func(*T) *domain.RecordMeta, opts store.ListOptions) []T {
	if opts.Since.IsZero() && opts.Until.IsZero() {
		return items
	}
	out := items[:0:0]
	for i := range items {
		created := extract(&items[i]).CreatedAt
		if !opts.Since.IsZero() && created.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && created.After(opts.Until) {
			continue
		}
		out = append(out, items[i])
	}
	return out
}

func page[T any](items []T, opts store.ListOptions) store.ListResult[T] {
	total := len(items)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return store.ListResult[T]{Items: items[start:end], Total: total}
}

func reverse[T any](items []T) []T {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}
