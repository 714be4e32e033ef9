package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sentinel-alarm/internal/model"
	"sentinel-alarm/internal/repository"
	"sentinel-alarm/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.AlarmConfig{}, &model.Lock{}, &model.UnlockAttempt{}))

	alarmRepo := repository.NewAlarmRepository(db)
	lockRepo := repository.NewLockRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	handler := NewHandler(
		service.NewAlarmService(alarmRepo),
		service.NewLockService(lockRepo, attemptRepo),
		service.NewInsightsService(lockRepo),
	)

	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestSaveAlarm(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/alarms", map[string]any{
		"user_id":               "demo-user",
		"alarm_label":           "Morning Focus",
		"alarm_time":            "07:00",
		"apps":                  []string{"instagram", "tiktok"},
		"lock_duration_minutes": 45,
		"task_type":             "puzzle",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "demo-user", resp["user_id"])
	assert.Equal(t, "Morning Focus", resp["alarm_label"])
	assert.Len(t, resp["apps"], 2)

	// Same user and label replaces instead of duplicating.
	rec, _ = doJSON(t, router, http.MethodPost, "/alarms", map[string]any{
		"user_id":               "demo-user",
		"alarm_label":           "Morning Focus",
		"alarm_time":            "07:30",
		"apps":                  []string{"reddit"},
		"lock_duration_minutes": 60,
		"task_type":             "steps",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/alarms?user_id=demo-user", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var alarms []map[string]any
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &alarms))
	require.Len(t, alarms, 1)
	assert.Equal(t, "07:30", alarms[0]["alarm_time"])
}

func TestSaveAlarmValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"duration below range", map[string]any{
			"user_id": "u1", "alarm_time": "07:00", "lock_duration_minutes": 4, "task_type": "puzzle",
		}},
		{"duration above range", map[string]any{
			"user_id": "u1", "alarm_time": "07:00", "lock_duration_minutes": 1441, "task_type": "puzzle",
		}},
		{"bad alarm time", map[string]any{
			"user_id": "u1", "alarm_time": "late", "lock_duration_minutes": 45, "task_type": "puzzle",
		}},
		{"bad task type", map[string]any{
			"user_id": "u1", "alarm_time": "07:00", "lock_duration_minutes": 45, "task_type": "chess",
		}},
		{"missing user", map[string]any{
			"alarm_time": "07:00", "lock_duration_minutes": 45, "task_type": "puzzle",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doJSON(t, router, http.MethodPost, "/alarms", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSimulateAndUnlockFlow(t *testing.T) {
	router := newTestRouter(t)

	rec, lock := doJSON(t, router, http.MethodPost, "/locks/simulate?user_id=demo-user&task_type=steps&lock_minutes=45", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "demo-user", lock["user_id"])
	assert.Equal(t, "steps", lock["task_type"])
	assert.Equal(t, false, lock["unlocked"])
	assert.NotEmpty(t, lock["expires_at"])

	target := int(lock["steps_target"].(float64))
	assert.Greater(t, target, 0)
	lockID := lock["id"].(string)

	// Re-simulating while locked returns the same lock.
	rec, again := doJSON(t, router, http.MethodPost, "/locks/simulate?user_id=demo-user&task_type=puzzle&lock_minutes=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lockID, again["id"])

	rec, result := doJSON(t, router, http.MethodPost, "/locks/attempt", map[string]any{
		"lock_id": lockID, "user_id": "demo-user", "task_type": "steps", "answer": "", "steps": target - 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failed", result["status"])
	assert.NotEmpty(t, result["detail"])

	rec, result = doJSON(t, router, http.MethodPost, "/locks/attempt", map[string]any{
		"lock_id": lockID, "user_id": "demo-user", "task_type": "steps", "answer": "", "steps": target,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unlocked", result["status"])

	rec, result = doJSON(t, router, http.MethodPost, "/locks/attempt", map[string]any{
		"lock_id": lockID, "user_id": "demo-user", "task_type": "steps", "answer": "", "steps": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already_unlocked", result["status"])

	// One lock in history, unlocked on the second attempt.
	req := httptest.NewRequest(http.MethodGet, "/insights/morning?user_id=demo-user", nil)
	insightsRec := httptest.NewRecorder()
	router.ServeHTTP(insightsRec, req)
	require.Equal(t, http.StatusOK, insightsRec.Code)

	var summary model.InsightsSummary
	require.NoError(t, json.Unmarshal(insightsRec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalLocks)
	assert.Equal(t, 1, summary.Unlocked)
	assert.InDelta(t, 1.0, summary.SuccessRate, 1e-9)
	assert.InDelta(t, 2.0, summary.AvgAttemptsPerLock, 1e-9)
}

func TestSimulatePuzzleHidesAnswer(t *testing.T) {
	router := newTestRouter(t)

	rec, lock := doJSON(t, router, http.MethodPost, "/locks/simulate?user_id=u1&task_type=puzzle&lock_minutes=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, lock["puzzle_question"])
	assert.NotContains(t, lock, "puzzle_answer")
	assert.NotContains(t, rec.Body.String(), "answer")
}

func TestSimulateValidation(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/locks/simulate?user_id=u1&task_type=karaoke&lock_minutes=30", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/locks/simulate?user_id=u1&task_type=puzzle&lock_minutes=2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/locks/simulate?user_id=u1&task_type=puzzle&lock_minutes=%d", 2000), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttemptUnknownLock(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/locks/attempt", map[string]any{
		"lock_id": "no-such-lock", "user_id": "u1", "task_type": "puzzle", "answer": "x", "steps": 0,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsightsEmpty(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/insights/morning?user_id=fresh-user", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary model.InsightsSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Zero(t, summary.TotalLocks)
	assert.Zero(t, summary.Unlocked)
	assert.Zero(t, summary.SuccessRate)
	assert.Zero(t, summary.AvgAttemptsPerLock)
}
