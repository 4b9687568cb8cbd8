package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"omnichat/internal/models"
)

// KVRepository is the opaque string-keyed blob store the rest of the app
// persists through. Values are whole JSON snapshots, last write wins.
type KVRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type kvRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) KVRepository {
	return &kvRepository{db: db}
}

func (r *kvRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	if err := r.db.WithContext(ctx).First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *kvRepository) Set(ctx context.Context, key string, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&entry).Error
}
