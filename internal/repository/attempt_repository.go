package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sentinel-alarm/internal/model"
)

// AttemptRepository appends unlock-attempt audit records.
type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Record(ctx context.Context, attempt *model.UnlockAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) ListForLock(ctx context.Context, lockID string) ([]model.UnlockAttempt, error) {
	var attempts []model.UnlockAttempt
	if err := r.db.WithContext(ctx).
		Where("lock_id = ?", lockID).
		Order("created_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
