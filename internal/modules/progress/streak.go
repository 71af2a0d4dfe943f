package progress

import (
	"time"

	"gorm.io/datatypes"

	types "github.com/iapss/iapss-backend/internal/domain"
	domainprogress "github.com/iapss/iapss-backend/internal/domain/progress"
)

// DayKey is the calendar day of t in loc, as used in per-day counts.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format(domainprogress.DayKeyLayout)
}

// CalendarDaysBetween counts day boundaries crossed from a to b in loc.
// Wall-clock duration is irrelevant: 23:59 -> 00:01 is one day.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	loc = orUTC(loc)
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// NextStreak returns the streak after activity at now. last is nil when there is no
// prior activity. Same day keeps the streak, the next day extends it, anything else
// restarts at 1. A now earlier than last (clock skew) is treated as the same day.
func NextStreak(current int, last *time.Time, now time.Time, loc *time.Location) int {
	if last == nil || current < 1 {
		return 1
	}
	switch gap := CalendarDaysBetween(*last, now, loc); {
	case gap <= 0:
		return current
	case gap == 1:
		return current + 1
	default:
		return 1
	}
}

// ApplyActivity folds one recorded analysis of kind at now into s.
func ApplyActivity(s *types.UserStats, kind types.AnalysisKind, now time.Time, loc *time.Location) {
	switch kind {
	case types.KindProblem:
		s.TotalProblems++
	case types.KindCode:
		s.TotalCodeAnalyses++
	}

	s.CurrentStreak = NextStreak(s.CurrentStreak, s.LastActiveAt, now, loc)
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	if s.LastActiveAt == nil || now.After(*s.LastActiveAt) {
		ts := now.UTC()
		s.LastActiveAt = &ts
	}

	days := s.Days()
	days[DayKey(now, loc)]++
	s.PerDayCounts = datatypes.NewJSONType(days)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
