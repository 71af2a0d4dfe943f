package repos

import (
	"gorm.io/gorm"

	"github.com/iapss/iapss-backend/internal/data/repos/curated"
	"github.com/iapss/iapss-backend/internal/data/repos/history"
	"github.com/iapss/iapss-backend/internal/data/repos/stats"
	"github.com/iapss/iapss-backend/internal/data/repos/user"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type HistoryRepo = history.HistoryRepo
type UserStatsRepo = stats.UserStatsRepo
type CuratedRepo = curated.CuratedRepo

type HistoryListFilter = history.ListFilter
type HistoryCount = history.Count

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return history.NewHistoryRepo(db, baseLog)
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	return stats.NewUserStatsRepo(db, baseLog)
}

func NewCuratedRepo(db *gorm.DB, baseLog *logger.Logger) CuratedRepo {
	return curated.NewCuratedRepo(db, baseLog)
}
