package service

import (
	"context"

	"sentinel-alarm/internal/model"
	"sentinel-alarm/internal/repository"
)

// InsightsService computes per-user lock statistics on demand.
type InsightsService struct {
	locks *repository.LockRepository
}

func NewInsightsService(locks *repository.LockRepository) *InsightsService {
	return &InsightsService{locks: locks}
}

// Summarize folds the user's full lock history into a snapshot. A user with
// no locks gets an all-zero summary.
func (s *InsightsService) Summarize(ctx context.Context, userID string) (model.InsightsSummary, error) {
	locks, err := s.locks.ListForUser(ctx, userID)
	if err != nil {
		return model.InsightsSummary{}, err
	}

	summary := model.InsightsSummary{TotalLocks: len(locks)}
	if summary.TotalLocks == 0 {
		return summary, nil
	}

	totalAttempts := 0
	for _, lock := range locks {
		if lock.State == model.LockUnlocked {
			summary.Unlocked++
		}
		totalAttempts += lock.AttemptCount
	}
	summary.SuccessRate = float64(summary.Unlocked) / float64(summary.TotalLocks)
	summary.AvgAttemptsPerLock = float64(totalAttempts) / float64(summary.TotalLocks)
	return summary, nil
}
