package landing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const (
	FeedNews     = "news"
	FeedContests = "contests"
	FeedPodcasts = "podcasts"
)

// Sources reported per feed in the summary.
const (
	SourceCurated = "curated"
	SourceCache   = "cache"
	SourceLive    = "live"
	SourceStale   = "stale"
	SourceStatic  = "static"
)

// contestCacheKey is the only key of the contest cache; contests are not per country.
const contestCacheKey = "*"

// CuratedStore lists operator-entered items. repos.CuratedRepo satisfies it.
type CuratedStore interface {
	ListActiveNews(ctx context.Context, tx *gorm.DB) ([]*types.CuratedNews, error)
	ListActiveContests(ctx context.Context, tx *gorm.DB) ([]*types.CuratedContest, error)
	ListActivePodcasts(ctx context.Context, tx *gorm.DB) ([]*types.CuratedPodcast, error)
}

type AggregatorDeps struct {
	Log     *logger.Logger
	Curated CuratedStore
	// News is nil when no credentials are configured; the news feed then serves static data.
	News     NewsSource
	Contests ContestSource
	Static   *Static
	CacheTTL time.Duration
	Now      func() time.Time
}

type Aggregator struct {
	deps     AggregatorDeps
	log      *logger.Logger
	news     *Cache[types.NewsItem]
	contests *Cache[types.ContestItem]
}

func NewAggregator(deps AggregatorDeps) (*Aggregator, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("landing aggregator: logger required")
	}
	if deps.Curated == nil {
		return nil, fmt.Errorf("landing aggregator: curated store required")
	}
	if deps.Static == nil {
		static, err := LoadStatic()
		if err != nil {
			return nil, err
		}
		deps.Static = static
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Aggregator{
		deps:     deps,
		log:      deps.Log.With("service", "LandingAggregator"),
		news:     NewCache[types.NewsItem](deps.CacheTTL, deps.Now),
		contests: NewCache[types.ContestItem](deps.CacheTTL, deps.Now),
	}, nil
}

// NormalizeCountry upper-cases a country code, defaulting blanks to def.
func NormalizeCountry(raw, def string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return strings.ToUpper(def)
	}
	return code
}

// Summary composes the landing payload. It never fails: each feed degrades on its own
// down to static data.
func (a *Aggregator) Summary(ctx context.Context, country string) types.LandingSummary {
	code := NormalizeCountry(country, a.deps.Static.DefaultCountry())

	var (
		news     []types.NewsItem
		contests []types.ContestItem
		podcasts []types.PodcastItem
		sources  = make([]string, 3)
	)

	// Plain group: one feed failing must not cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		news, sources[0] = resolve(ctx, a.log, a.newsFeed(code), false)
		return nil
	})
	g.Go(func() error {
		contests, sources[1] = resolve(ctx, a.log, a.contestFeed(), false)
		return nil
	})
	g.Go(func() error {
		podcasts, sources[2] = resolve(ctx, a.log, a.podcastFeed(), false)
		return nil
	})
	_ = g.Wait()

	return types.LandingSummary{
		Brand:    a.deps.Static.Brand(),
		Country:  a.deps.Static.Country(code),
		News:     news,
		Contests: contests,
		Podcasts: podcasts,
		Sources: map[string]string{
			FeedNews:     sources[0],
			FeedContests: sources[1],
			FeedPodcasts: sources[2],
		},
	}
}

// Warm refreshes the live-backed feeds for country, bypassing the TTL check.
// Feeds with curated items are left alone.
func (a *Aggregator) Warm(ctx context.Context, country string) map[string]string {
	code := NormalizeCountry(country, a.deps.Static.DefaultCountry())
	out := map[string]string{}
	_, out[FeedNews] = resolve(ctx, a.log, a.newsFeed(code), true)
	_, out[FeedContests] = resolve(ctx, a.log, a.contestFeed(), true)
	return out
}

// feed describes one tiered data source. Nil cache or live disables that tier.
type feed[T any] struct {
	name    string
	key     string
	curated func(ctx context.Context) ([]T, error)
	cache   *Cache[T]
	live    func(ctx context.Context) ([]T, error)
	// static receives true when a live source exists but failed.
	static func(liveFailed bool) []T
}

func (a *Aggregator) newsFeed(country string) feed[types.NewsItem] {
	f := feed[types.NewsItem]{
		name:  FeedNews,
		key:   country,
		cache: a.news,
		curated: func(ctx context.Context) ([]types.NewsItem, error) {
			rows, err := a.deps.Curated.ListActiveNews(ctx, nil)
			if err != nil {
				return nil, err
			}
			out := make([]types.NewsItem, 0, len(rows))
			for _, r := range rows {
				out = append(out, r.Item())
			}
			return out, nil
		},
		static: func(liveFailed bool) []types.NewsItem {
			return a.deps.Static.News(liveFailed, a.deps.Now())
		},
	}
	if a.deps.News != nil {
		f.live = func(ctx context.Context) ([]types.NewsItem, error) {
			return a.deps.News.TopHeadlines(ctx, country)
		}
	}
	return f
}

func (a *Aggregator) contestFeed() feed[types.ContestItem] {
	f := feed[types.ContestItem]{
		name:  FeedContests,
		key:   contestCacheKey,
		cache: a.contests,
		curated: func(ctx context.Context) ([]types.ContestItem, error) {
			rows, err := a.deps.Curated.ListActiveContests(ctx, nil)
			if err != nil {
				return nil, err
			}
			out := make([]types.ContestItem, 0, len(rows))
			for _, r := range rows {
				out = append(out, r.Item())
			}
			return out, nil
		},
		static: func(bool) []types.ContestItem {
			return a.deps.Static.Contests(a.deps.Now())
		},
	}
	if a.deps.Contests != nil {
		f.live = a.deps.Contests.Upcoming
	}
	return f
}

func (a *Aggregator) podcastFeed() feed[types.PodcastItem] {
	return feed[types.PodcastItem]{
		name: FeedPodcasts,
		curated: func(ctx context.Context) ([]types.PodcastItem, error) {
			rows, err := a.deps.Curated.ListActivePodcasts(ctx, nil)
			if err != nil {
				return nil, err
			}
			out := make([]types.PodcastItem, 0, len(rows))
			for _, r := range rows {
				out = append(out, r.Item())
			}
			return out, nil
		},
		static: func(bool) []types.PodcastItem {
			return a.deps.Static.Podcasts()
		},
	}
}

// resolve walks the tiers: curated, fresh cache, live, last known good, static.
// force skips the fresh cache check.
func resolve[T any](ctx context.Context, log *logger.Logger, f feed[T], force bool) (items []T, source string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("Landing feed panicked, serving static data", "feed", f.name, "reason", "panic", "panic", r)
			items, source = f.static(f.live != nil), SourceStatic
		}
		if metrics := observability.Current(); metrics != nil {
			metrics.ObserveLandingFeed(f.name, source)
		}
	}()

	curated, err := f.curated(ctx)
	if err != nil {
		log.Warn("Curated lookup failed", "feed", f.name, "reason", "curated_unavailable", "error", err)
	} else if len(curated) > 0 {
		return curated, SourceCurated
	}

	if f.cache != nil && !force {
		if cached, ok := f.cache.Fresh(f.key); ok {
			return cached, SourceCache
		}
	}

	if f.live == nil {
		return f.static(false), SourceStatic
	}

	live, err := f.live(ctx)
	if err == nil && len(live) > 0 {
		if f.cache != nil {
			f.cache.Store(f.key, live)
		}
		return live, SourceLive
	}
	if err != nil {
		log.Warn("Live feed fetch failed", "feed", f.name, "key", f.key, "reason", "live_unavailable", "error", err)
	} else {
		log.Warn("Live feed returned no items", "feed", f.name, "key", f.key, "reason", "live_empty")
	}

	if f.cache != nil {
		if stale, ok := f.cache.LastKnownGood(); ok {
			return stale, SourceStale
		}
	}
	return f.static(true), SourceStatic
}
