package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sentinel-alarm/internal/model"
	"sentinel-alarm/internal/repository"
)

// ErrValidation marks rejected input; handlers map it to a 4xx response.
var ErrValidation = errors.New("invalid input")

const (
	MinLockMinutes = 5
	MaxLockMinutes = 1440
)

// Attempt statuses returned to the client.
const (
	StatusUnlocked        = "unlocked"
	StatusAlreadyUnlocked = "already_unlocked"
	StatusFailed          = "failed"
)

// AttemptResult is the outcome of a single unlock submission.
type AttemptResult struct {
	Status string
	Detail string
}

// LockService orchestrates the lock lifecycle: creation on a missed alarm,
// unlock attempts, and lazy expiry.
type LockService struct {
	locks    *repository.LockRepository
	attempts *repository.AttemptRepository
	now      func() time.Time
}

func NewLockService(locks *repository.LockRepository, attempts *repository.AttemptRepository) *LockService {
	return &LockService{
		locks:    locks,
		attempts: attempts,
		now:      time.Now,
	}
}

// CreateLock issues a lock for the user with a task payload matching the
// task type. If the user already holds an active, unexpired lock, that lock
// is returned instead of a new one, so re-triggering a missed alarm is
// idempotent.
func (s *LockService) CreateLock(ctx context.Context, userID string, taskType model.TaskType, lockMinutes int) (*model.Lock, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if !taskType.Valid() {
		return nil, fmt.Errorf("%w: unknown task type %q", ErrValidation, taskType)
	}
	if lockMinutes < MinLockMinutes || lockMinutes > MaxLockMinutes {
		return nil, fmt.Errorf("%w: lock duration must be between %d and %d minutes", ErrValidation, MinLockMinutes, MaxLockMinutes)
	}

	now := s.now()

	existing, err := s.locks.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.ExpiredBy(now) {
			return existing, nil
		}
		// The old lock ran out; retire it so a fresh one can be issued.
		if _, err := s.locks.MarkExpired(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	lock := &model.Lock{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskType:  taskType,
		State:     model.LockActive,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(lockMinutes) * time.Minute),
	}
	switch taskType {
	case model.TaskPuzzle:
		lock.PuzzleQuestion, lock.PuzzleAnswer = NewPuzzle()
	case model.TaskSteps:
		lock.StepsTarget = NewStepTarget()
	}

	if err := s.locks.Create(ctx, lock); err != nil {
		if errors.Is(err, repository.ErrActiveLockExists) {
			// Another request created a lock between our check and insert.
			if current, lookupErr := s.locks.ActiveForUser(ctx, userID); lookupErr == nil && current != nil {
				return current, nil
			}
		}
		return nil, err
	}
	return lock, nil
}

// AttemptUnlock verifies a submission against the lock's task. The answer is
// used for puzzle and photo tasks, steps for step-count tasks. Repeated
// submissions after a successful unlock report already_unlocked; attempts on
// an expired lock always fail.
func (s *LockService) AttemptUnlock(ctx context.Context, lockID, answer, steps string) (AttemptResult, error) {
	lock, err := s.locks.FindByID(ctx, lockID)
	if err != nil {
		return AttemptResult{}, err
	}

	switch lock.State {
	case model.LockUnlocked:
		return AttemptResult{Status: StatusAlreadyUnlocked}, nil
	case model.LockExpired:
		return AttemptResult{Status: StatusFailed, Detail: "lock expired"}, nil
	}

	now := s.now()
	if lock.ExpiredBy(now) {
		if _, err := s.locks.MarkExpired(ctx, lock.ID); err != nil {
			return AttemptResult{}, err
		}
		return AttemptResult{Status: StatusFailed, Detail: "lock expired"}, nil
	}

	submission := answer
	if lock.TaskType == model.TaskSteps {
		submission = steps
	}

	if err := s.locks.IncrementAttempts(ctx, lock.ID); err != nil {
		return AttemptResult{}, err
	}

	passed := Verify(lock, submission)
	if err := s.attempts.Record(ctx, &model.UnlockAttempt{
		LockID:     lock.ID,
		Submission: submission,
		Passed:     passed,
		CreatedAt:  now,
	}); err != nil {
		return AttemptResult{}, err
	}

	if !passed {
		return AttemptResult{Status: StatusFailed, Detail: failDetail(lock)}, nil
	}

	won, err := s.locks.MarkUnlocked(ctx, lock.ID, now)
	if err != nil {
		return AttemptResult{}, err
	}
	if !won {
		// A concurrent attempt took the winning transition.
		return AttemptResult{Status: StatusAlreadyUnlocked}, nil
	}
	return AttemptResult{Status: StatusUnlocked}, nil
}

// Get returns the lock, lazily expiring it when overdue.
func (s *LockService) Get(ctx context.Context, lockID string) (*model.Lock, error) {
	lock, err := s.locks.FindByID(ctx, lockID)
	if err != nil {
		return nil, err
	}
	if lock.State == model.LockActive && lock.ExpiredBy(s.now()) {
		if _, err := s.locks.MarkExpired(ctx, lock.ID); err != nil {
			return nil, err
		}
		lock.State = model.LockExpired
	}
	return lock, nil
}

// SweepExpired retires all overdue active locks. Meant to run periodically.
func (s *LockService) SweepExpired(ctx context.Context) (int64, error) {
	return s.locks.SweepExpired(ctx, s.now())
}

func failDetail(lock *model.Lock) string {
	switch lock.TaskType {
	case model.TaskPuzzle:
		return "wrong answer, try again"
	case model.TaskSteps:
		return fmt.Sprintf("not enough steps yet, target is %d", lock.StepsTarget)
	case model.TaskPhoto:
		return "submit a photo to unlock"
	}
	return "try again"
}
