// Package state persists the pipeline's per-item processing records. The
// store is injected everywhere it is read or written so tests can swap in
// the in-memory implementation.
package state

import (
	"context"
	"errors"

	"localizer/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable keyed record of per-item processing state. Get
// returns (nil, nil) when no record exists for the id.
type Store interface {
	Get(ctx context.Context, itemID int64) (*models.ProcessingRecord, error)
	Upsert(ctx context.Context, rec *models.ProcessingRecord) error
	Delete(ctx context.Context, itemID int64) error
	Count(ctx context.Context) (int64, error)
}

// DBStore keeps processing records in the service database.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(ctx context.Context, itemID int64) (*models.ProcessingRecord, error) {
	var rec models.ProcessingRecord
	err := s.db.WithContext(ctx).First(&rec, "item_id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *DBStore) Upsert(ctx context.Context, rec *models.ProcessingRecord) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

func (s *DBStore) Delete(ctx context.Context, itemID int64) error {
	return s.db.WithContext(ctx).Delete(&models.ProcessingRecord{}, "item_id = ?", itemID).Error
}

func (s *DBStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ProcessingRecord{}).Count(&n).Error
	return n, err
}
