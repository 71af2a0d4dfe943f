package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/iapss/iapss-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     "Test User",
		Email:    email,
		Password: "pw",
		Role:     types.RoleUser,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProblemRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, text string, difficulty string, topics ...string) *types.HistoryRecord {
	tb.Helper()
	result := types.AnalysisResult{
		Kind: types.KindProblem,
		Problem: &types.ProblemResult{
			Topics:          topics,
			Difficulty:      difficulty,
			DifficultyScore: 50,
			Summary:         "summary",
			Hints:           []string{"a", "b", "c"},
			Approach:        "approach",
		},
	}
	rec := &types.HistoryRecord{
		UserID:     userID,
		Kind:       types.KindProblem,
		InputText:  text,
		Result:     datatypes.NewJSONType(result),
		Difficulty: difficulty,
	}
	for _, t := range topics {
		rec.Topics = append(rec.Topics, types.HistoryTopic{Topic: t})
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed problem record: %v", err)
	}
	return rec
}

func SeedCodeRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, code string, language string) *types.HistoryRecord {
	tb.Helper()
	result := types.AnalysisResult{
		Kind: types.KindCode,
		Code: &types.CodeResult{
			Summary:    "summary",
			Complexity: "O(N)",
			Space:      "O(1)",
			Score:      70,
			Issues:     []types.CodeIssue{},
			Tests:      []string{},
		},
	}
	rec := &types.HistoryRecord{
		UserID:    userID,
		Kind:      types.KindCode,
		InputText: code,
		Language:  language,
		Result:    datatypes.NewJSONType(result),
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed code record: %v", err)
	}
	return rec
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
