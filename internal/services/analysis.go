package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/modules/analysis"
	"github.com/iapss/iapss-backend/internal/modules/progress"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

// Analyser is the orchestrator surface the service depends on.
type Analyser interface {
	Analyse(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, types.AnalysisRequest, error)
}

// Enqueuer hands recording work to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, in progress.RecordInput) bool
}

type AnalysisService interface {
	// Analyse returns a contract-valid result and the normalised request, or a 400 apierr.
	Analyse(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, types.AnalysisRequest, error)
	// Record schedules history and stats updates for owner. Anonymous callers are skipped.
	Record(ctx context.Context, owner uuid.UUID, req types.AnalysisRequest, result types.AnalysisResult)
}

type analysisService struct {
	log      *logger.Logger
	analyser Analyser
	queue    Enqueuer
}

func NewAnalysisService(log *logger.Logger, analyser Analyser, queue Enqueuer) AnalysisService {
	return &analysisService{
		log:      log.With("service", "AnalysisService"),
		analyser: analyser,
		queue:    queue,
	}
}

func (s *analysisService) Analyse(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, types.AnalysisRequest, error) {
	result, normalized, err := s.analyser.Analyse(ctx, req)
	if err != nil {
		var vErr *analysis.ValidationError
		if errors.As(err, &vErr) {
			return result, normalized, apierr.Validation(vErr.Message)
		}
		return result, normalized, err
	}
	return result, normalized, nil
}

func (s *analysisService) Record(ctx context.Context, owner uuid.UUID, req types.AnalysisRequest, result types.AnalysisResult) {
	if owner == uuid.Nil || s.queue == nil {
		return
	}
	s.queue.Enqueue(ctx, progress.RecordInput{Owner: owner, Request: req, Result: result})
}
