package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/iapss/iapss-backend/internal/data/repos"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

// RecordInput is one accepted analysis to persist for its owner.
type RecordInput struct {
	Owner   uuid.UUID
	Request types.AnalysisRequest
	Result  types.AnalysisResult
}

// Sink is anything that can persist a RecordInput. The queue drives a Sink.
type Sink interface {
	Record(ctx context.Context, in RecordInput) error
}

type RecorderDeps struct {
	Log     *logger.Logger
	History repos.HistoryRepo
	Stats   repos.UserStatsRepo
	// Location defines calendar days for streaks. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

type Recorder struct {
	deps RecorderDeps
	log  *logger.Logger
}

func NewRecorder(deps RecorderDeps) *Recorder {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Recorder{deps: deps, log: deps.Log.With("service", "ProgressRecorder")}
}

// Record inserts the history record, then updates the owner's stats. The steps are
// independent: a failed insert does not skip the stats update. Failures come back
// joined as *RecordingError values.
func (r *Recorder) Record(ctx context.Context, in RecordInput) error {
	if in.Owner == uuid.Nil {
		return &RecordingError{Step: StepHistory, Err: errors.New("missing owner")}
	}
	now := r.deps.Now()

	var errs []error
	if err := r.insertHistory(ctx, in, now); err != nil {
		errs = append(errs, &RecordingError{Step: StepHistory, Err: err})
	}
	if err := r.updateStats(ctx, in, now); err != nil {
		errs = append(errs, &RecordingError{Step: StepStats, Err: err})
	}
	return errors.Join(errs...)
}

func (r *Recorder) insertHistory(ctx context.Context, in RecordInput, now time.Time) error {
	attachments := make([]types.HistoryAttachment, 0, len(in.Request.Images))
	for _, img := range in.Request.Images {
		attachments = append(attachments, types.HistoryAttachment{URL: img})
	}

	rec := &types.HistoryRecord{
		UserID:      in.Owner,
		Kind:        in.Request.Kind,
		InputText:   in.Request.Payload,
		Language:    in.Request.Language,
		Attachments: datatypes.NewJSONType(attachments),
		Result:      datatypes.NewJSONType(in.Result),
		Fallback:    in.Result.Fallback,
		Difficulty:  in.Result.Difficulty(),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	seen := map[string]bool{}
	for _, topic := range in.Result.Topics() {
		if seen[topic] {
			continue
		}
		seen[topic] = true
		rec.Topics = append(rec.Topics, types.HistoryTopic{Topic: topic})
	}
	return r.deps.History.Create(ctx, nil, rec)
}

func (r *Recorder) updateStats(ctx context.Context, in RecordInput, now time.Time) error {
	_, err := r.deps.Stats.Mutate(ctx, nil, in.Owner, func(s *types.UserStats) error {
		ApplyActivity(s, in.Request.Kind, now, r.deps.Location)
		return nil
	})
	return err
}
