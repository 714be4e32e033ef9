package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sentinel-alarm/internal/model"
)

// AlarmRepository manages stored alarm configurations.
type AlarmRepository struct {
	db *gorm.DB
}

func NewAlarmRepository(db *gorm.DB) *AlarmRepository {
	return &AlarmRepository{db: db}
}

// Upsert creates the alarm config, or replaces the fields of an existing one
// with the same user and label.
func (r *AlarmRepository) Upsert(ctx context.Context, cfg *model.AlarmConfig) error {
	db := r.db.WithContext(ctx)

	var existing model.AlarmConfig
	err := db.Where("user_id = ? AND label = ?", cfg.UserID, cfg.Label).First(&existing).Error
	switch {
	case err == nil:
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
		if err := db.Save(cfg).Error; err != nil {
			return fmt.Errorf("update alarm: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(cfg).Error; err != nil {
			return fmt.Errorf("create alarm: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find alarm: %w", err)
	}
}

func (r *AlarmRepository) ListByUser(ctx context.Context, userID string) ([]model.AlarmConfig, error) {
	var alarms []model.AlarmConfig
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&alarms).Error; err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}
	return alarms, nil
}
