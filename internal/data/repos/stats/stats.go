package stats

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

type UserStatsRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	// Mutate loads (creating if needed) and row-locks the owner's stats, applies fn and saves the result.
	Mutate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fn func(s *types.UserStats) error) (*types.UserStats, error)
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	repoLog := baseLog.With("repo", "UserStatsRepo")
	return &userStatsRepo{db: db, log: repoLog}
}

// GetByUserID returns nil, nil when the owner has no recorded activity yet.
func (r *userStatsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var s types.UserStats
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *userStatsRepo) Mutate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fn func(s *types.UserStats) error) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var out types.UserStats
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		seed := &types.UserStats{
			UserID:       userID,
			PerDayCounts: datatypes.NewJSONType(map[string]int{}),
		}
		if err := inner.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(seed).Error; err != nil {
			return err
		}

		if err := inner.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&out).Error; err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		return inner.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
