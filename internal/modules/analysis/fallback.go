package analysis

import (
	types "github.com/iapss/iapss-backend/internal/domain"
)

// Synthesize returns the canned demo result for kind, flagged as fallback.
// Each call returns fresh slices, so callers may mutate the result freely.
func Synthesize(kind types.AnalysisKind) types.AnalysisResult {
	switch kind {
	case types.KindCode:
		return types.AnalysisResult{
			Kind:     types.KindCode,
			Fallback: true,
			Code: &types.CodeResult{
				Summary:    "Analysis failed. Showing demo data.",
				Complexity: "O(N)",
				Space:      "O(1)",
				Score:      50,
				Issues: []types.CodeIssue{
					{Type: "Error", Text: "Analysis service could not process the request."},
				},
				Refactor: "// No refactor available",
				Tests:    []string{},
			},
		}
	default:
		return types.AnalysisResult{
			Kind:     types.KindProblem,
			Fallback: true,
			Problem: &types.ProblemResult{
				Topics:          []string{"Graph Theory", "BFS"},
				Difficulty:      "Medium",
				DifficultyScore: 65,
				Summary:         "Grid shortest path with uniform weights.",
				Hints: []string{
					"Model grid as graph with cells as nodes.",
					"All edges have equal cost.",
					"Use BFS from source to target.",
				},
				Approach: "Perform BFS using a queue and visited matrix.",
			},
		}
	}
}
