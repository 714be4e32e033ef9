package model

import "time"

// TaskType selects the unlock-verification method for a lock.
type TaskType string

const (
	TaskPuzzle TaskType = "puzzle"
	TaskPhoto  TaskType = "photo"
	TaskSteps  TaskType = "steps"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskPuzzle, TaskPhoto, TaskSteps:
		return true
	}
	return false
}

// LockState is the lifecycle state of a lock. Active is the only
// non-terminal state.
type LockState string

const (
	LockActive   LockState = "active"
	LockUnlocked LockState = "unlocked"
	LockExpired  LockState = "expired"
)

// Lock represents a user's apps being blocked until the unlock task is
// completed or the lock expires. Locks are never deleted; the full history
// feeds the insights summary.
type Lock struct {
	ID       string    `gorm:"primaryKey"`
	UserID   string    `gorm:"index"`
	TaskType TaskType
	State    LockState `gorm:"index"`

	// Task payload. PuzzleAnswer stays server-side only.
	PuzzleQuestion string
	PuzzleAnswer   string
	StepsTarget    int

	CreatedAt    time.Time
	ExpiresAt    time.Time
	UnlockedAt   *time.Time
	AttemptCount int `gorm:"default:0"`
}

// ExpiredBy reports whether the lock's deadline has passed at the given time.
func (l *Lock) ExpiredBy(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
