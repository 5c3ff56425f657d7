package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
)

// ListQuery aliases the parsed list-request pipeline so repo interfaces can
// name it without the extra import.
type ListQuery = query.ListQuery

// Generic is the repository every entity repo builds on: plain CRUD against
// one table, with an optional transaction override, an AND-combined default
// filter and a preload (population) queue on reads.
type Generic[T any] struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneric[T any](db *gorm.DB, baseLog *logger.Logger, name string) *Generic[T] {
	return &Generic[T]{db: db, log: baseLog.With("repo", name)}
}

func (r *Generic[T]) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Generic[T]) DB() *gorm.DB { return r.db }

func (r *Generic[T]) Create(ctx context.Context, tx *gorm.DB, doc *T) (*T, error) {
	if err := r.conn(tx).WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Generic[T]) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*T, error) {
	var result T
	q := r.conn(tx).WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// Find lists documents matching the default filter, shaped by the parsed
// list query. A query with no matches returns an empty slice, not an error.
func (r *Generic[T]) Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *query.ListQuery, preloads ...string) ([]*T, error) {
	results := []*T{}
	q := r.conn(tx).WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		q = q.Where(filter)
	}
	if lq != nil {
		q = lq.Apply(q)
	}
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateByID applies a column map atomically and returns the fresh
// document. A missing id surfaces as gorm.ErrRecordNotFound.
func (r *Generic[T]) UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*T, error) {
	res := r.conn(tx).WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, tx, id)
}

// Save persists an already-loaded, mutated document so save-time hooks run.
func (r *Generic[T]) Save(ctx context.Context, tx *gorm.DB, doc *T) (*T, error) {
	if err := r.conn(tx).WithContext(ctx).Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Generic[T]) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Generic[T]) Delete(ctx context.Context, tx *gorm.DB, doc *T) error {
	return r.conn(tx).WithContext(ctx).Delete(doc).Error
}

func (r *Generic[T]) Count(ctx context.Context, tx *gorm.DB, filter map[string]any) (int64, error) {
	var count int64
	q := r.conn(tx).WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		q = q.Where(filter)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
