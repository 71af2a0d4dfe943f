package landing

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsItem is one headline on the landing page.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ContestItem is one upcoming or running contest.
type ContestItem struct {
	Name      string    `json:"name"`
	Site      string    `json:"site"`
	URL       string    `json:"url"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Duration  string    `json:"duration,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// PodcastItem is one recommended podcast.
type PodcastItem struct {
	Title    string `json:"title"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Brand struct {
	Name string `json:"name"`
}

// Summary is the landing response. Sources reports which tier served each feed.
type Summary struct {
	Brand    Brand             `json:"brand"`
	Country  Country           `json:"country"`
	News     []NewsItem        `json:"news"`
	Contests []ContestItem     `json:"contests"`
	Podcasts []PodcastItem     `json:"podcasts"`
	Sources  map[string]string `json:"sources"`
}

// Curated rows are operator-entered and take precedence over fetched data.

type CuratedNews struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	URL       string    `gorm:"not null" json:"url"`
	Source    string    `gorm:"not null;default:'IAPSS'" json:"source"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (CuratedNews) TableName() string { return "curated_news" }

func (n *CuratedNews) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n CuratedNews) Item() NewsItem {
	return NewsItem{Title: n.Title, URL: n.URL, Source: n.Source, PublishedAt: n.CreatedAt}
}

type CuratedContest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Site      string    `gorm:"not null;default:'IAPSS'" json:"site"`
	URL       string    `gorm:"not null" json:"url"`
	StartTime time.Time `gorm:"not null" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (CuratedContest) TableName() string { return "curated_contest" }

func (c *CuratedContest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c CuratedContest) Item() ContestItem {
	return ContestItem{
		Name:      c.Name,
		Site:      c.Site,
		URL:       c.URL,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Duration:  strconv.FormatInt(int64(c.EndTime.Sub(c.StartTime)/time.Second), 10),
	}
}

type CuratedPodcast struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Platform  string    `gorm:"not null;default:''" json:"platform"`
	URL       string    `gorm:"not null" json:"url"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (CuratedPodcast) TableName() string { return "curated_podcast" }

func (p *CuratedPodcast) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p CuratedPodcast) Item() PodcastItem {
	return PodcastItem{Title: p.Title, Platform: p.Platform, URL: p.URL}
}
