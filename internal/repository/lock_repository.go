package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sentinel-alarm/internal/model"
)

var (
	// ErrLockNotFound is returned when no lock exists for the given id.
	ErrLockNotFound = errors.New("lock not found")
	// ErrActiveLockExists is returned when a user already holds an active lock.
	ErrActiveLockExists = errors.New("user already has an active lock")
)

// LockRepository persists locks and guards their state transitions.
type LockRepository struct {
	db *gorm.DB
}

func NewLockRepository(db *gorm.DB) *LockRepository {
	return &LockRepository{db: db}
}

// Create inserts a new lock. The check for an existing active lock and the
// insert run in one transaction so the one-active-lock-per-user invariant
// holds under concurrent creation.
func (r *LockRepository) Create(ctx context.Context, lock *model.Lock) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Lock{}).
			Where("user_id = ? AND state = ?", lock.UserID, model.LockActive).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count active locks: %w", err)
		}
		if count > 0 {
			return ErrActiveLockExists
		}
		if err := tx.Create(lock).Error; err != nil {
			return fmt.Errorf("create lock: %w", err)
		}
		return nil
	})
	return err
}

func (r *LockRepository) FindByID(ctx context.Context, id string) (*model.Lock, error) {
	var lock model.Lock
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLockNotFound
		}
		return nil, fmt.Errorf("find lock: %w", err)
	}
	return &lock, nil
}

// ActiveForUser returns the user's active lock, or nil when there is none.
func (r *LockRepository) ActiveForUser(ctx context.Context, userID string) (*model.Lock, error) {
	var lock model.Lock
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, model.LockActive).
		First(&lock).Error
	switch {
	case err == nil:
		return &lock, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find active lock: %w", err)
	}
}

// ListForUser returns all of the user's locks in creation order.
func (r *LockRepository) ListForUser(ctx context.Context, userID string) ([]model.Lock, error) {
	var locks []model.Lock
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&locks).Error; err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}
	return locks, nil
}

// MarkUnlocked transitions an active lock to unlocked. The state guard in the
// WHERE clause makes the transition a compare-and-set: of concurrent winning
// attempts, exactly one sees won == true.
func (r *LockRepository) MarkUnlocked(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Lock{}).
		Where("id = ? AND state = ?", id, model.LockActive).
		Updates(map[string]interface{}{
			"state":       model.LockUnlocked,
			"unlocked_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark unlocked: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkExpired transitions an active lock to expired. Terminal states are
// never overwritten.
func (r *LockRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Lock{}).
		Where("id = ? AND state = ?", id, model.LockActive).
		Update("state", model.LockExpired)
	if res.Error != nil {
		return false, fmt.Errorf("mark expired: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *LockRepository) IncrementAttempts(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Model(&model.Lock{}).
		Where("id = ?", id).
		Update("attempt_count", gorm.Expr("attempt_count + 1")).Error; err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	return nil
}

// SweepExpired marks every overdue active lock as expired and returns how
// many were swept. Keeps insights accurate for locks nobody attempts again.
func (r *LockRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Lock{}).
		Where("state = ? AND expires_at < ?", model.LockActive, now).
		Update("state", model.LockExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("sweep expired locks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
