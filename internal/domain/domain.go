package domain

import (
	"github.com/iapss/iapss-backend/internal/domain/analysis"
	"github.com/iapss/iapss-backend/internal/domain/history"
	"github.com/iapss/iapss-backend/internal/domain/landing"
	"github.com/iapss/iapss-backend/internal/domain/progress"
	"github.com/iapss/iapss-backend/internal/domain/user"
)

const (
	KindProblem = analysis.KindProblem
	KindCode    = analysis.KindCode

	RoleUser  = user.RoleUser
	RoleAdmin = user.RoleAdmin
)

type User = user.User

type AnalysisKind = analysis.Kind
type AnalysisRequest = analysis.Request
type AnalysisResult = analysis.Result
type ProblemResult = analysis.ProblemResult
type CodeResult = analysis.CodeResult
type CodeIssue = analysis.CodeIssue

type HistoryRecord = history.Record
type HistoryTag = history.Tag
type HistoryTopic = history.Topic
type HistoryAttachment = history.Attachment
type HistoryFeedback = history.Feedback

type UserStats = progress.UserStats

type CuratedNews = landing.CuratedNews
type CuratedContest = landing.CuratedContest
type CuratedPodcast = landing.CuratedPodcast
type NewsItem = landing.NewsItem
type ContestItem = landing.ContestItem
type PodcastItem = landing.PodcastItem
type LandingSummary = landing.Summary
type LandingCountry = landing.Country
type LandingBrand = landing.Brand

func ParseAnalysisKind(raw string) (AnalysisKind, bool) { return analysis.ParseKind(raw) }

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&User{},
		&HistoryRecord{},
		&HistoryTag{},
		&HistoryTopic{},
		&UserStats{},
		&CuratedNews{},
		&CuratedContest{},
		&CuratedPodcast{},
	}
}
