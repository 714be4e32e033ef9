package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sentinel-alarm/internal/model"
	"sentinel-alarm/internal/repository"
	"sentinel-alarm/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	alarms   *service.AlarmService
	locks    *service.LockService
	insights *service.InsightsService
}

func NewHandler(alarms *service.AlarmService, locks *service.LockService, insights *service.InsightsService) *Handler {
	return &Handler{alarms: alarms, locks: locks, insights: insights}
}

type alarmResponse struct {
	ID                  uint           `json:"id"`
	UserID              string         `json:"user_id"`
	AlarmLabel          string         `json:"alarm_label"`
	AlarmTime           string         `json:"alarm_time"`
	Apps                []string       `json:"apps"`
	LockDurationMinutes int            `json:"lock_duration_minutes"`
	TaskType            model.TaskType `json:"task_type"`
}

func toAlarmResponse(cfg *model.AlarmConfig) alarmResponse {
	apps := cfg.AppList()
	if apps == nil {
		apps = []string{}
	}
	return alarmResponse{
		ID:                  cfg.ID,
		UserID:              cfg.UserID,
		AlarmLabel:          cfg.Label,
		AlarmTime:           cfg.AlarmTime,
		Apps:                apps,
		LockDurationMinutes: cfg.LockDurationMinutes,
		TaskType:            cfg.TaskType,
	}
}

type lockResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	TaskType       model.TaskType  `json:"task_type"`
	State          model.LockState `json:"state"`
	ExpiresAt      time.Time       `json:"expires_at"`
	Unlocked       bool            `json:"unlocked"`
	PuzzleQuestion string          `json:"puzzle_question,omitempty"`
	StepsTarget    int             `json:"steps_target,omitempty"`
	AttemptCount   int             `json:"attempt_count"`
}

// toLockResponse shapes a lock for the client. The puzzle answer never
// leaves the server.
func toLockResponse(lock *model.Lock) lockResponse {
	return lockResponse{
		ID:             lock.ID,
		UserID:         lock.UserID,
		TaskType:       lock.TaskType,
		State:          lock.State,
		ExpiresAt:      lock.ExpiresAt,
		Unlocked:       lock.State == model.LockUnlocked,
		PuzzleQuestion: lock.PuzzleQuestion,
		StepsTarget:    lock.StepsTarget,
		AttemptCount:   lock.AttemptCount,
	}
}

// SaveAlarm stores an alarm configuration for a user.
func (h *Handler) SaveAlarm() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			UserID              string   `json:"user_id"`
			AlarmLabel          string   `json:"alarm_label"`
			AlarmTime           string   `json:"alarm_time"`
			Apps                []string `json:"apps"`
			LockDurationMinutes int      `json:"lock_duration_minutes"`
			TaskType            string   `json:"task_type"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alarm payload"})
			return
		}

		cfg, err := h.alarms.Save(c.Request.Context(), service.AlarmInput{
			UserID:              body.UserID,
			Label:               body.AlarmLabel,
			AlarmTime:           body.AlarmTime,
			Apps:                body.Apps,
			LockDurationMinutes: body.LockDurationMinutes,
			TaskType:            model.TaskType(body.TaskType),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toAlarmResponse(cfg))
	}
}

// ListAlarms returns a user's stored alarm configurations.
func (h *Handler) ListAlarms() gin.HandlerFunc {
	return func(c *gin.Context) {
		alarms, err := h.alarms.List(c.Request.Context(), c.Query("user_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]alarmResponse, 0, len(alarms))
		for i := range alarms {
			out = append(out, toAlarmResponse(&alarms[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// SimulateMissedAlarm creates a lock as if the user just missed their alarm.
// Re-triggering while a lock is active returns that lock unchanged.
func (h *Handler) SimulateMissedAlarm() gin.HandlerFunc {
	return func(c *gin.Context) {
		lockMinutes := 30
		if raw := c.Query("lock_minutes"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "lock_minutes must be a number"})
				return
			}
			lockMinutes = n
		}

		lock, err := h.locks.CreateLock(
			c.Request.Context(),
			c.Query("user_id"),
			model.TaskType(c.Query("task_type")),
			lockMinutes,
		)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toLockResponse(lock))
	}
}

// AttemptUnlock verifies a task submission against an active lock.
func (h *Handler) AttemptUnlock() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			LockID   string      `json:"lock_id"`
			UserID   string      `json:"user_id"`
			TaskType string      `json:"task_type"`
			Answer   string      `json:"answer"`
			Steps    json.Number `json:"steps"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt payload"})
			return
		}
		if body.LockID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lock_id is required"})
			return
		}

		result, err := h.locks.AttemptUnlock(c.Request.Context(), body.LockID, body.Answer, body.Steps.String())
		if err != nil {
			respondError(c, err)
			return
		}
		resp := gin.H{"status": result.Status}
		if result.Detail != "" {
			resp["detail"] = result.Detail
		}
		c.JSON(http.StatusOK, resp)
	}
}

// MorningInsights returns aggregate lock statistics for a user.
func (h *Handler) MorningInsights() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		summary, err := h.insights.Summarize(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrLockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrActiveLockExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
