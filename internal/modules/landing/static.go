package landing

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	types "github.com/iapss/iapss-backend/internal/domain"
)

//go:embed static.yaml
var staticYAML []byte

type staticNews struct {
	Title  string `yaml:"title"`
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
}

type staticContest struct {
	Name            string `yaml:"name"`
	Site            string `yaml:"site"`
	URL             string `yaml:"url"`
	DurationSeconds int    `yaml:"durationSeconds"`
	Status          string `yaml:"status"`
}

type staticPodcast struct {
	Title    string `yaml:"title"`
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
}

type staticFile struct {
	Brand          string            `yaml:"brand"`
	DefaultCountry string            `yaml:"defaultCountry"`
	Countries      map[string]string `yaml:"countries"`
	News           struct {
		Unconfigured []staticNews `yaml:"unconfigured"`
		Unavailable  []staticNews `yaml:"unavailable"`
	} `yaml:"news"`
	Contests []staticContest `yaml:"contests"`
	Podcasts []staticPodcast `yaml:"podcasts"`
}

// Static is the last tier of every feed. It always yields non-empty lists.
type Static struct {
	file staticFile
}

// LoadStatic parses the embedded static data.
func LoadStatic() (*Static, error) {
	return ParseStatic(staticYAML)
}

func ParseStatic(data []byte) (*Static, error) {
	var f staticFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse static landing data: %w", err)
	}
	switch {
	case strings.TrimSpace(f.Brand) == "":
		return nil, errors.New("static landing data: brand is required")
	case len(f.News.Unconfigured) == 0 || len(f.News.Unavailable) == 0:
		return nil, errors.New("static landing data: news lists must not be empty")
	case len(f.Contests) == 0:
		return nil, errors.New("static landing data: contests must not be empty")
	case len(f.Podcasts) == 0:
		return nil, errors.New("static landing data: podcasts must not be empty")
	}
	if f.DefaultCountry == "" {
		f.DefaultCountry = "IN"
	}
	f.DefaultCountry = strings.ToUpper(f.DefaultCountry)
	return &Static{file: f}, nil
}

func (s *Static) Brand() types.LandingBrand { return types.LandingBrand{Name: s.file.Brand} }

func (s *Static) DefaultCountry() string { return s.file.DefaultCountry }

// Country resolves a normalized code to its display name; unknown codes name themselves.
func (s *Static) Country(code string) types.LandingCountry {
	if name, ok := s.file.Countries[code]; ok {
		return types.LandingCountry{Code: code, Name: name}
	}
	return types.LandingCountry{Code: code, Name: code}
}

// News returns the sample headlines. configured selects the live-failure list over the no-credentials one.
func (s *Static) News(configured bool, now time.Time) []types.NewsItem {
	src := s.file.News.Unconfigured
	if configured {
		src = s.file.News.Unavailable
	}
	out := make([]types.NewsItem, 0, len(src))
	for _, n := range src {
		out = append(out, types.NewsItem{Title: n.Title, URL: n.URL, Source: n.Source, PublishedAt: now.UTC()})
	}
	return out
}

// Contests returns sample contests starting at now.
func (s *Static) Contests(now time.Time) []types.ContestItem {
	out := make([]types.ContestItem, 0, len(s.file.Contests))
	for _, c := range s.file.Contests {
		d := time.Duration(c.DurationSeconds) * time.Second
		out = append(out, types.ContestItem{
			Name:      c.Name,
			Site:      c.Site,
			URL:       c.URL,
			StartTime: now.UTC(),
			EndTime:   now.UTC().Add(d),
			Duration:  strconv.Itoa(c.DurationSeconds),
			Status:    c.Status,
		})
	}
	return out
}

func (s *Static) Podcasts() []types.PodcastItem {
	out := make([]types.PodcastItem, 0, len(s.file.Podcasts))
	for _, p := range s.file.Podcasts {
		out = append(out, types.PodcastItem{Title: p.Title, Platform: p.Platform, URL: p.URL})
	}
	return out
}
