package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biliticket/statecache/internal/model"
)

type pgEntryRepository struct {
	db *gorm.DB
}

func NewPGEntryRepository(db *gorm.DB) EntryRepository {
	return &pgEntryRepository{db: db}
}

func (r *pgEntryRepository) Upsert(ctx context.Context, entry *model.CacheEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"size", "checksum", "expires_at", "updated_at"}),
		}).
		Create(entry).Error
}

func (r *pgEntryRepository) GetByKey(ctx context.Context, key string) (*model.CacheEntry, error) {
	var entry model.CacheEntry
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *pgEntryRepository) ListByPrefix(ctx context.Context, prefix string) ([]model.CacheEntry, error) {
	var entries []model.CacheEntry
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if prefix != "" {
		q = q.Where("key LIKE ?", escapeLike(prefix)+"%")
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pgEntryRepository) DeleteByKey(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.CacheEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *pgEntryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&model.CacheEntry{})
	return res.RowsAffected, res.Error
}

// escapeLike neutralizes LIKE metacharacters so a prefix is matched literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
