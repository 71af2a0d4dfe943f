package landing

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const warmTimeout = 30 * time.Second

// Warmer refreshes the live feeds on a cron schedule so requests mostly hit the cache.
type Warmer struct {
	agg       *Aggregator
	countries []string
	cron      *cron.Cron
	log       *logger.Logger
}

// NewWarmer schedules Warm for each country. schedule is a standard five-field cron expression.
func NewWarmer(agg *Aggregator, schedule string, countries []string, baseLog *logger.Logger) (*Warmer, error) {
	if agg == nil {
		return nil, fmt.Errorf("landing warmer: aggregator required")
	}
	if len(countries) == 0 {
		countries = []string{agg.deps.Static.DefaultCountry()}
	}
	w := &Warmer{
		agg:       agg,
		countries: countries,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		log:       baseLog.With("component", "LandingWarmer"),
	}
	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("add cron: %w", err)
	}
	return w, nil
}

func (w *Warmer) Start() {
	w.cron.Start()
	w.log.Info("Landing warmer started", "countries", w.countries)
}

// Stop halts scheduling and waits for a running warm-up, or for ctx to end.
func (w *Warmer) Stop(ctx context.Context) error {
	done := w.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()
	w.RunOnce(ctx)
}

// RunOnce warms every configured country once.
func (w *Warmer) RunOnce(ctx context.Context) {
	for _, country := range w.countries {
		sources := w.agg.Warm(ctx, country)
		w.log.Debug("Landing feeds warmed", "country", country, "news", sources[FeedNews], "contests", sources[FeedContests])
	}
}
