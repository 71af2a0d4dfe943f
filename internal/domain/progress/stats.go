package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DayKeyLayout is the calendar-day key used by PerDayCounts.
const DayKeyLayout = "2006-01-02"

// UserStats is the per-user activity ledger. Created lazily on first recorded activity.
type UserStats struct {
	ID                uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"-"`
	UserID            uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TotalProblems     int                                `gorm:"column:total_problems;not null;default:0" json:"totalProblems"`
	TotalCodeAnalyses int                                `gorm:"column:total_code_analyses;not null;default:0" json:"totalCodeAnalyses"`
	CurrentStreak     int                                `gorm:"column:current_streak;not null;default:0" json:"currentStreak"`
	LongestStreak     int                                `gorm:"column:longest_streak;not null;default:0" json:"longestStreak"`
	LastActiveAt      *time.Time                         `gorm:"column:last_active_at" json:"lastActiveDate"`
	PerDayCounts      datatypes.JSONType[map[string]int] `gorm:"column:per_day_counts" json:"perDayCounts"`
	CreatedAt         time.Time                          `gorm:"not null" json:"createdAt"`
	UpdatedAt         time.Time                          `gorm:"not null" json:"updatedAt"`
}

func (UserStats) TableName() string { return "user_stats" }

func (s *UserStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Days returns a copy of the per-day counts, never nil.
func (s *UserStats) Days() map[string]int {
	out := map[string]int{}
	for k, v := range s.PerDayCounts.Data() {
		out[k] = v
	}
	return out
}
