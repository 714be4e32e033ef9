package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sentinel-alarm/internal/model"
	"sentinel-alarm/internal/repository"
)

// AlarmInput represents data required to save an alarm configuration.
type AlarmInput struct {
	UserID              string
	Label               string
	AlarmTime           string
	Apps                []string
	LockDurationMinutes int
	TaskType            model.TaskType
}

// AlarmService validates and stores alarm configurations.
type AlarmService struct {
	alarms *repository.AlarmRepository
}

func NewAlarmService(alarms *repository.AlarmRepository) *AlarmService {
	return &AlarmService{alarms: alarms}
}

// Save stores the alarm config, replacing any existing one with the same
// user and label.
func (s *AlarmService) Save(ctx context.Context, input AlarmInput) (*model.AlarmConfig, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if strings.TrimSpace(input.Label) == "" {
		input.Label = "Alarm"
	}
	if err := validateAlarmTime(input.AlarmTime); err != nil {
		return nil, err
	}
	if input.LockDurationMinutes < MinLockMinutes || input.LockDurationMinutes > MaxLockMinutes {
		return nil, fmt.Errorf("%w: lock duration must be between %d and %d minutes", ErrValidation, MinLockMinutes, MaxLockMinutes)
	}
	if !input.TaskType.Valid() {
		return nil, fmt.Errorf("%w: unknown task type %q", ErrValidation, input.TaskType)
	}

	cfg := model.AlarmConfig{
		UserID:              input.UserID,
		Label:               strings.TrimSpace(input.Label),
		AlarmTime:           input.AlarmTime,
		LockDurationMinutes: input.LockDurationMinutes,
		TaskType:            input.TaskType,
	}
	cfg.SetApps(input.Apps)

	if err := s.alarms.Upsert(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *AlarmService) List(ctx context.Context, userID string) ([]model.AlarmConfig, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	return s.alarms.ListByUser(ctx, userID)
}

func validateAlarmTime(raw string) error {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return fmt.Errorf("%w: alarm time %q, expected HH:MM", ErrValidation, raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("%w: invalid hour in %q", ErrValidation, raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: invalid minute in %q", ErrValidation, raw)
	}
	return nil
}
