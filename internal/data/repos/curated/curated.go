package curated

import (
	"context"

	"gorm.io/gorm"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

// CuratedRepo stores operator-entered landing content. The Active* listings feed the
// landing aggregator; the unfiltered ones back the admin screens.
type CuratedRepo interface {
	ListActiveNews(ctx context.Context, tx *gorm.DB) ([]*types.CuratedNews, error)
	ListActiveContests(ctx context.Context, tx *gorm.DB) ([]*types.CuratedContest, error)
	ListActivePodcasts(ctx context.Context, tx *gorm.DB) ([]*types.CuratedPodcast, error)

	ListNews(ctx context.Context, tx *gorm.DB) ([]*types.CuratedNews, error)
	ListContests(ctx context.Context, tx *gorm.DB) ([]*types.CuratedContest, error)
	ListPodcasts(ctx context.Context, tx *gorm.DB) ([]*types.CuratedPodcast, error)

	CreateNews(ctx context.Context, tx *gorm.DB, item *types.CuratedNews) error
	CreateContest(ctx context.Context, tx *gorm.DB, item *types.CuratedContest) error
	CreatePodcast(ctx context.Context, tx *gorm.DB, item *types.CuratedPodcast) error
}

type curatedRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCuratedRepo(db *gorm.DB, baseLog *logger.Logger) CuratedRepo {
	repoLog := baseLog.With("repo", "CuratedRepo")
	return &curatedRepo{db: db, log: repoLog}
}

func (r *curatedRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func activeOnly(q *gorm.DB, active bool) *gorm.DB {
	if active {
		return q.Where("active = ?", true)
	}
	return q
}

func (r *curatedRepo) listNews(ctx context.Context, tx *gorm.DB, active bool) ([]*types.CuratedNews, error) {
	var rows []*types.CuratedNews
	err := activeOnly(r.tx(tx).WithContext(ctx), active).
		Order("sort_order ASC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *curatedRepo) listContests(ctx context.Context, tx *gorm.DB, active bool) ([]*types.CuratedContest, error) {
	var rows []*types.CuratedContest
	err := activeOnly(r.tx(tx).WithContext(ctx), active).
		Order("sort_order ASC").
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *curatedRepo) listPodcasts(ctx context.Context, tx *gorm.DB, active bool) ([]*types.CuratedPodcast, error) {
	var rows []*types.CuratedPodcast
	err := activeOnly(r.tx(tx).WithContext(ctx), active).
		Order("sort_order ASC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *curatedRepo) ListActiveNews(ctx context.Context, tx *gorm.DB) ([]*types.CuratedNews, error) {
	return r.listNews(ctx, tx, true)
}

func (r *curatedRepo) ListActiveContests(ctx context.Context, tx *gorm.DB) ([]*types.CuratedContest, error) {
	return r.listContests(ctx, tx, true)
}

func (r *curatedRepo) ListActivePodcasts(ctx context.Context, tx *gorm.DB) ([]*types.CuratedPodcast, error) {
	return r.listPodcasts(ctx, tx, true)
}

func (r *curatedRepo) ListNews(ctx context.Context, tx *gorm.DB) ([]*types.CuratedNews, error) {
	return r.listNews(ctx, tx, false)
}

func (r *curatedRepo) ListContests(ctx context.Context, tx *gorm.DB) ([]*types.CuratedContest, error) {
	return r.listContests(ctx, tx, false)
}

func (r *curatedRepo) ListPodcasts(ctx context.Context, tx *gorm.DB) ([]*types.CuratedPodcast, error) {
	return r.listPodcasts(ctx, tx, false)
}

// Select("*") writes zero values too, so Active=false is not replaced by the column default.
func (r *curatedRepo) CreateNews(ctx context.Context, tx *gorm.DB, item *types.CuratedNews) error {
	return r.tx(tx).WithContext(ctx).Select("*").Create(item).Error
}

func (r *curatedRepo) CreateContest(ctx context.Context, tx *gorm.DB, item *types.CuratedContest) error {
	return r.tx(tx).WithContext(ctx).Select("*").Create(item).Error
}

func (r *curatedRepo) CreatePodcast(ctx context.Context, tx *gorm.DB, item *types.CuratedPodcast) error {
	return r.tx(tx).WithContext(ctx).Select("*").Create(item).Error
}
