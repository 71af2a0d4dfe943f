package history

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListFilter narrows an owner's history listing. Zero values mean "no filter".
type ListFilter struct {
	Kind         types.AnalysisKind
	Query        string
	Topic        string
	Language     string
	Tag          string
	FavoriteOnly bool
	Page         int
	Limit        int
}

// Normalize clamps paging to page >= 1 and 1 <= limit <= MaxLimit.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Query = strings.TrimSpace(f.Query)
	f.Topic = strings.TrimSpace(f.Topic)
	f.Language = strings.ToLower(strings.TrimSpace(f.Language))
	f.Tag = strings.TrimSpace(f.Tag)
	return f
}

// Count is one bucket of a grouped aggregate.
type Count struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type HistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.HistoryRecord) error
	List(ctx context.Context, tx *gorm.DB, owner uuid.UUID, filter ListFilter) ([]*types.HistoryRecord, int64, error)
	GetForOwner(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) (*types.HistoryRecord, error)
	Delete(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind) (int64, error)
	SetFavorite(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, favorite bool) (bool, error)
	ReplaceTags(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, tags []string) (bool, error)
	SetFeedback(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, rating int, comment string) (bool, error)

	Recent(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, n int) ([]*types.HistoryRecord, error)
	CountByKind(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind) (int64, error)
	CountByLanguage(ctx context.Context, tx *gorm.DB, owner uuid.UUID) ([]Count, error)
	CountByDifficulty(ctx context.Context, tx *gorm.DB, owner uuid.UUID) ([]Count, error)
	TopicCounts(ctx context.Context, tx *gorm.DB, owner uuid.UUID, limit int, ascending bool) ([]Count, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (r *historyRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func ownedBy(q *gorm.DB, owner uuid.UUID, kind types.AnalysisKind) *gorm.DB {
	return q.Where("history_record.user_id = ? AND history_record.kind = ?", owner, kind)
}

func (r *historyRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.HistoryRecord) error {
	if rec == nil {
		return errors.New("nil history record")
	}
	return r.tx(tx).WithContext(ctx).Create(rec).Error
}

func (r *historyRepo) List(ctx context.Context, tx *gorm.DB, owner uuid.UUID, filter ListFilter) ([]*types.HistoryRecord, int64, error) {
	filter = filter.Normalize()
	transaction := r.tx(tx).WithContext(ctx)

	q := ownedBy(transaction.Model(&types.HistoryRecord{}), owner, filter.Kind)
	if filter.Query != "" {
		q = q.Where(`LOWER(history_record.input_text) LIKE ? ESCAPE '\'`, containsPattern(filter.Query))
	}
	if filter.Topic != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM history_topic ht WHERE ht.history_id = history_record.id AND LOWER(ht.topic) LIKE ? ESCAPE '\')`,
			containsPattern(filter.Topic))
	}
	if filter.Language != "" {
		q = q.Where("history_record.language = ?", filter.Language)
	}
	if filter.FavoriteOnly {
		q = q.Where("history_record.is_favorite = ?", true)
	}
	if filter.Tag != "" {
		q = q.Where("EXISTS (SELECT 1 FROM history_tag tg WHERE tg.history_id = history_record.id AND tg.tag = ?)", filter.Tag)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*types.HistoryRecord
	if err := q.Session(&gorm.Session{}).
		Preload("Tags").
		Order("history_record.created_at DESC").
		Order("history_record.id DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetForOwner returns nil, nil when the record does not exist or belongs to someone else.
func (r *historyRepo) GetForOwner(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) (*types.HistoryRecord, error) {
	var rec types.HistoryRecord
	err := ownedBy(r.tx(tx).WithContext(ctx).Preload("Tags"), owner, kind).
		Where("history_record.id = ?", id).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *historyRepo) Delete(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.tx(tx).WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		res := ownedBy(inner, owner, kind).Where("history_record.id = ?", id).Delete(&types.HistoryRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return deleteChildren(inner, []uuid.UUID{id})
	})
	return deleted, err
}

func (r *historyRepo) DeleteAll(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind) (int64, error) {
	var n int64
	err := r.tx(tx).WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var ids []uuid.UUID
		if err := ownedBy(inner.Model(&types.HistoryRecord{}), owner, kind).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := deleteChildren(inner, ids); err != nil {
			return err
		}
		res := inner.Where("id IN ?", ids).Delete(&types.HistoryRecord{})
		n = res.RowsAffected
		return res.Error
	})
	return n, err
}

func deleteChildren(tx *gorm.DB, ids []uuid.UUID) error {
	if err := tx.Where("history_id IN ?", ids).Delete(&types.HistoryTag{}).Error; err != nil {
		return err
	}
	return tx.Where("history_id IN ?", ids).Delete(&types.HistoryTopic{}).Error
}

func (r *historyRepo) SetFavorite(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, favorite bool) (bool, error) {
	res := ownedBy(r.tx(tx).WithContext(ctx).Model(&types.HistoryRecord{}), owner, kind).
		Where("history_record.id = ?", id).
		Update("is_favorite", favorite)
	return res.RowsAffected > 0, res.Error
}

// ReplaceTags swaps the tag set atomically. Callers pass already-normalised tags.
func (r *historyRepo) ReplaceTags(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, tags []string) (bool, error) {
	var found bool
	err := r.tx(tx).WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var count int64
		if err := ownedBy(inner.Model(&types.HistoryRecord{}), owner, kind).
			Where("history_record.id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		found = true
		if err := inner.Where("history_id = ?", id).Delete(&types.HistoryTag{}).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		rows := make([]types.HistoryTag, 0, len(tags))
		for _, t := range tags {
			rows = append(rows, types.HistoryTag{HistoryID: id, Tag: t})
		}
		return inner.Create(&rows).Error
	})
	return found, err
}

func (r *historyRepo) SetFeedback(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, rating int, comment string) (bool, error) {
	res := ownedBy(r.tx(tx).WithContext(ctx).Model(&types.HistoryRecord{}), owner, kind).
		Where("history_record.id = ?", id).
		Updates(map[string]any{
			"feedback_rating":  rating,
			"feedback_comment": comment,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *historyRepo) Recent(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind, n int) ([]*types.HistoryRecord, error) {
	if n <= 0 {
		n = DefaultLimit
	}
	var rows []*types.HistoryRecord
	err := ownedBy(r.tx(tx).WithContext(ctx).Preload("Tags"), owner, kind).
		Order("history_record.created_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *historyRepo) CountByKind(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.AnalysisKind) (int64, error) {
	var n int64
	err := ownedBy(r.tx(tx).WithContext(ctx).Model(&types.HistoryRecord{}), owner, kind).Count(&n).Error
	return n, err
}

func (r *historyRepo) CountByLanguage(ctx context.Context, tx *gorm.DB, owner uuid.UUID) ([]Count, error) {
	var out []Count
	err := ownedBy(r.tx(tx).WithContext(ctx).Model(&types.HistoryRecord{}), owner, types.KindCode).
		Select("history_record.language AS name, COUNT(*) AS count").
		Group("history_record.language").
		Order("COUNT(*) DESC").
		Scan(&out).Error
	return out, err
}

func (r *historyRepo) CountByDifficulty(ctx context.Context, tx *gorm.DB, owner uuid.UUID) ([]Count, error) {
	var out []Count
	err := ownedBy(r.tx(tx).WithContext(ctx).Model(&types.HistoryRecord{}), owner, types.KindProblem).
		Where("history_record.difficulty <> ''").
		Select("history_record.difficulty AS name, COUNT(*) AS count").
		Group("history_record.difficulty").
		Order("COUNT(*) DESC").
		Scan(&out).Error
	return out, err
}

// TopicCounts groups the owner's problem topics. ascending=true puts the least practised first.
func (r *historyRepo) TopicCounts(ctx context.Context, tx *gorm.DB, owner uuid.UUID, limit int, ascending bool) ([]Count, error) {
	order := "COUNT(*) DESC, ht.topic ASC"
	if ascending {
		order = "COUNT(*) ASC, ht.topic ASC"
	}
	q := r.tx(tx).WithContext(ctx).
		Table("history_topic AS ht").
		Select("ht.topic AS name, COUNT(*) AS count").
		Joins("JOIN history_record hr ON hr.id = ht.history_id").
		Where("hr.user_id = ? AND hr.kind = ?", owner, types.KindProblem).
		Group("ht.topic").
		Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []Count
	err := q.Scan(&out).Error
	return out, err
}
