package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/iapss/iapss-backend/internal/data/repos"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

type CuratedService interface {
	ListNews(ctx context.Context) ([]*types.CuratedNews, error)
	ListContests(ctx context.Context) ([]*types.CuratedContest, error)
	ListPodcasts(ctx context.Context) ([]*types.CuratedPodcast, error)
	CreateNews(ctx context.Context, item *types.CuratedNews) error
	CreateContest(ctx context.Context, item *types.CuratedContest) error
	CreatePodcast(ctx context.Context, item *types.CuratedPodcast) error
}

type curatedService struct {
	log  *logger.Logger
	repo repos.CuratedRepo
}

func NewCuratedService(log *logger.Logger, repo repos.CuratedRepo) CuratedService {
	return &curatedService{log: log.With("service", "CuratedService"), repo: repo}
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apierr.Validation(field + " is required.")
	}
	return v, nil
}

func requireURL(v string) (string, error) {
	v = strings.TrimSpace(v)
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apierr.Validation("url must be an absolute http(s) URL.")
	}
	return v, nil
}

func (cs *curatedService) ListNews(ctx context.Context) ([]*types.CuratedNews, error) {
	return cs.repo.ListNews(ctx, nil)
}

func (cs *curatedService) ListContests(ctx context.Context) ([]*types.CuratedContest, error) {
	return cs.repo.ListContests(ctx, nil)
}

func (cs *curatedService) ListPodcasts(ctx context.Context) ([]*types.CuratedPodcast, error) {
	return cs.repo.ListPodcasts(ctx, nil)
}

func (cs *curatedService) CreateNews(ctx context.Context, item *types.CuratedNews) (err error) {
	if item.Title, err = requireText("title", item.Title); err != nil {
		return err
	}
	if item.URL, err = requireURL(item.URL); err != nil {
		return err
	}
	if item.Source = strings.TrimSpace(item.Source); item.Source == "" {
		item.Source = "IAPSS"
	}
	if err := cs.repo.CreateNews(ctx, nil, item); err != nil {
		return fmt.Errorf("create curated news: %w", err)
	}
	cs.log.Info("Curated news created", "id", item.ID.String())
	return nil
}

func (cs *curatedService) CreateContest(ctx context.Context, item *types.CuratedContest) (err error) {
	if item.Name, err = requireText("name", item.Name); err != nil {
		return err
	}
	if item.URL, err = requireURL(item.URL); err != nil {
		return err
	}
	if item.Site = strings.TrimSpace(item.Site); item.Site == "" {
		item.Site = "IAPSS"
	}
	if item.StartTime.IsZero() {
		return apierr.Validation("startTime is required.")
	}
	if item.EndTime.IsZero() || item.EndTime.Before(item.StartTime) {
		return apierr.Validation("endTime must not be before startTime.")
	}
	if err := cs.repo.CreateContest(ctx, nil, item); err != nil {
		return fmt.Errorf("create curated contest: %w", err)
	}
	cs.log.Info("Curated contest created", "id", item.ID.String())
	return nil
}

func (cs *curatedService) CreatePodcast(ctx context.Context, item *types.CuratedPodcast) (err error) {
	if item.Title, err = requireText("title", item.Title); err != nil {
		return err
	}
	if item.URL, err = requireURL(item.URL); err != nil {
		return err
	}
	if item.Platform = strings.TrimSpace(item.Platform); item.Platform == "" {
		item.Platform = "Generic"
	}
	if err := cs.repo.CreatePodcast(ctx, nil, item); err != nil {
		return fmt.Errorf("create curated podcast: %w", err)
	}
	cs.log.Info("Curated podcast created", "id", item.ID.String())
	return nil
}
