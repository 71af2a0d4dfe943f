package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iapss/iapss-backend/internal/data/repos"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const maxTagLen = 40

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type HistoryPage struct {
	Items      []*types.HistoryRecord `json:"items"`
	Pagination Pagination             `json:"pagination"`
}

type HistoryService interface {
	List(ctx context.Context, owner uuid.UUID, filter repos.HistoryListFilter) (*HistoryPage, error)
	Get(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) (*types.HistoryRecord, error)
	Delete(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) error
	Clear(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind) (int64, error)
	SetFavorite(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, favorite bool) (*types.HistoryRecord, error)
	SetTags(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, tags []string) (*types.HistoryRecord, error)
	SetFeedback(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, rating int, comment string) (*types.HistoryRecord, error)
}

type historyService struct {
	log  *logger.Logger
	repo repos.HistoryRepo
}

func NewHistoryService(log *logger.Logger, repo repos.HistoryRepo) HistoryService {
	return &historyService{log: log.With("service", "HistoryService"), repo: repo}
}

func notFound(kind types.AnalysisKind) error {
	return apierr.NotFound(fmt.Sprintf("%s history record not found", kind))
}

func (hs *historyService) List(ctx context.Context, owner uuid.UUID, filter repos.HistoryListFilter) (*HistoryPage, error) {
	filter = filter.Normalize()
	rows, total, err := hs.repo.List(ctx, nil, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if rows == nil {
		rows = []*types.HistoryRecord{}
	}
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	if pages < 1 {
		pages = 1
	}
	return &HistoryPage{
		Items:      rows,
		Pagination: Pagination{Page: filter.Page, Limit: filter.Limit, Total: total, TotalPages: pages},
	}, nil
}

func (hs *historyService) Get(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) (*types.HistoryRecord, error) {
	rec, err := hs.repo.GetForOwner(ctx, nil, owner, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	if rec == nil {
		return nil, notFound(kind)
	}
	return rec, nil
}

func (hs *historyService) Delete(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID) error {
	ok, err := hs.repo.Delete(ctx, nil, owner, kind, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if !ok {
		return notFound(kind)
	}
	return nil
}

func (hs *historyService) Clear(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind) (int64, error) {
	n, err := hs.repo.DeleteAll(ctx, nil, owner, kind)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	hs.log.Info("History cleared", "user_id", owner.String(), "kind", string(kind), "deleted", n)
	return n, nil
}

func (hs *historyService) SetFavorite(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, favorite bool) (*types.HistoryRecord, error) {
	ok, err := hs.repo.SetFavorite(ctx, nil, owner, kind, id, favorite)
	if err != nil {
		return nil, fmt.Errorf("set favorite: %w", err)
	}
	if !ok {
		return nil, notFound(kind)
	}
	return hs.Get(ctx, owner, kind, id)
}

// NormalizeTags trims, drops empties and duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (hs *historyService) SetTags(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, tags []string) (*types.HistoryRecord, error) {
	tags = NormalizeTags(tags)
	for _, t := range tags {
		if len([]rune(t)) > maxTagLen {
			return nil, apierr.Validation(fmt.Sprintf("Tags must be at most %d characters.", maxTagLen))
		}
	}
	ok, err := hs.repo.ReplaceTags(ctx, nil, owner, kind, id, tags)
	if err != nil {
		return nil, fmt.Errorf("replace tags: %w", err)
	}
	if !ok {
		return nil, notFound(kind)
	}
	return hs.Get(ctx, owner, kind, id)
}

func (hs *historyService) SetFeedback(ctx context.Context, owner uuid.UUID, kind types.AnalysisKind, id uuid.UUID, rating int, comment string) (*types.HistoryRecord, error) {
	if rating < 1 || rating > 5 {
		return nil, apierr.Validation("Rating must be between 1 and 5.")
	}
	ok, err := hs.repo.SetFeedback(ctx, nil, owner, kind, id, rating, strings.TrimSpace(comment))
	if err != nil {
		return nil, fmt.Errorf("set feedback: %w", err)
	}
	if !ok {
		return nil, notFound(kind)
	}
	return hs.Get(ctx, owner, kind, id)
}
