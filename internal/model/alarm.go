package model

import (
	"strings"
	"time"
)

// AlarmConfig stores a user's alarm and the lock settings applied when the
// alarm is missed. Replacing an alarm never touches locks already derived
// from it; each lock snapshots what it needs at creation time.
type AlarmConfig struct {
	ID                  uint   `gorm:"primaryKey"`
	UserID              string `gorm:"index:idx_user_alarm_label,unique"`
	Label               string `gorm:"index:idx_user_alarm_label,unique"`
	AlarmTime           string // HH:MM
	Apps                string // comma-joined app names
	LockDurationMinutes int
	TaskType            TaskType
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AppList splits the stored comma-joined apps column.
func (a *AlarmConfig) AppList() []string {
	if a.Apps == "" {
		return nil
	}
	return strings.Split(a.Apps, ",")
}

// SetApps stores the given app names, dropping empty entries.
func (a *AlarmConfig) SetApps(apps []string) {
	var kept []string
	for _, app := range apps {
		app = strings.TrimSpace(app)
		if app != "" {
			kept = append(kept, app)
		}
	}
	a.Apps = strings.Join(kept, ",")
}
