package model

import "time"

// UnlockAttempt is an append-only audit record of a single unlock submission.
type UnlockAttempt struct {
	ID         uint   `gorm:"primaryKey"`
	LockID     string `gorm:"index"`
	Submission string
	Passed     bool
	CreatedAt  time.Time
}

// InsightsSummary aggregates a user's historical lock outcomes. Derived on
// demand, never stored.
type InsightsSummary struct {
	TotalLocks         int     `json:"total_locks"`
	Unlocked           int     `json:"unlocked"`
	SuccessRate        float64 `json:"success_rate"`
	AvgAttemptsPerLock float64 `json:"avg_attempts_per_lock"`
}
