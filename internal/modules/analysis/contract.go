package analysis

import (
	"encoding/json"
	"math"
	"strings"

	types "github.com/iapss/iapss-backend/internal/domain"
)

const (
	minScore     = 0
	maxScore     = 100
	problemHints = 3
)

// Validate checks a decoded candidate against the contract for kind and returns the
// typed result. Fields are checked in a fixed order so the reported field is always
// the first offender. It never panics on malformed input; a *SchemaError is returned instead.
func Validate(kind types.AnalysisKind, candidate any) (types.AnalysisResult, error) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return types.AnalysisResult{}, &SchemaError{Field: "$", Reason: "must be a JSON object"}
	}
	switch kind {
	case types.KindProblem:
		p, err := validateProblem(obj)
		if err != nil {
			return types.AnalysisResult{}, err
		}
		return types.AnalysisResult{Kind: kind, Problem: p}, nil
	case types.KindCode:
		c, err := validateCode(obj)
		if err != nil {
			return types.AnalysisResult{}, err
		}
		return types.AnalysisResult{Kind: kind, Code: c}, nil
	default:
		return types.AnalysisResult{}, &SchemaError{Field: "kind", Reason: "is not a known artifact kind"}
	}
}

func validateProblem(obj map[string]any) (*types.ProblemResult, *SchemaError) {
	var (
		out types.ProblemResult
		err *SchemaError
	)
	if out.Topics, err = nonEmptyStrings(obj, "topic"); err != nil {
		return nil, err
	}
	if out.Difficulty, err = nonBlankString(obj, "difficulty"); err != nil {
		return nil, err
	}
	if out.DifficultyScore, err = score(obj, "difficultyScore"); err != nil {
		return nil, err
	}
	if out.Summary, err = nonBlankString(obj, "summary"); err != nil {
		return nil, err
	}
	if out.Hints, err = nonEmptyStrings(obj, "hints"); err != nil {
		return nil, err
	}
	if len(out.Hints) != problemHints {
		return nil, &SchemaError{Field: "hints", Reason: "must contain exactly 3 hints"}
	}
	if out.Approach, err = nonBlankString(obj, "approach"); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateCode(obj map[string]any) (*types.CodeResult, *SchemaError) {
	var (
		out types.CodeResult
		err *SchemaError
	)
	if out.Summary, err = nonBlankString(obj, "summary"); err != nil {
		return nil, err
	}
	if out.Complexity, err = nonBlankString(obj, "complexity"); err != nil {
		return nil, err
	}
	if out.Space, err = nonBlankString(obj, "space"); err != nil {
		return nil, err
	}
	if out.Score, err = score(obj, "score"); err != nil {
		return nil, err
	}
	if out.Issues, err = issues(obj, "issues"); err != nil {
		return nil, err
	}
	if out.Refactor, err = anyString(obj, "refactor"); err != nil {
		return nil, err
	}
	if out.Tests, err = stringList(obj, "tests"); err != nil {
		return nil, err
	}
	return &out, nil
}

func field(obj map[string]any, name string) (any, *SchemaError) {
	v, ok := obj[name]
	if !ok || v == nil {
		return nil, &SchemaError{Field: name, Reason: "is missing"}
	}
	return v, nil
}

func anyString(obj map[string]any, name string) (string, *SchemaError) {
	v, err := field(obj, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: name, Reason: "must be a string"}
	}
	return s, nil
}

func nonBlankString(obj map[string]any, name string) (string, *SchemaError) {
	s, err := anyString(obj, name)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &SchemaError{Field: name, Reason: "must not be blank"}
	}
	return s, nil
}

// stringList accepts an empty array; every element must be a non-blank string.
func stringList(obj map[string]any, name string) ([]string, *SchemaError) {
	v, err := field(obj, name)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &SchemaError{Field: name, Reason: "must be an array"}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, &SchemaError{Field: name, Reason: "must contain only non-blank strings"}
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

func nonEmptyStrings(obj map[string]any, name string) ([]string, *SchemaError) {
	out, err := stringList(obj, name)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &SchemaError{Field: name, Reason: "must not be empty"}
	}
	return out, nil
}

// score accepts json.Number (decoder.UseNumber) or float64, and only whole values in [0,100].
func score(obj map[string]any, name string) (int, *SchemaError) {
	v, err := field(obj, name)
	if err != nil {
		return 0, err
	}
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, perr := n.Float64()
		if perr != nil {
			return 0, &SchemaError{Field: name, Reason: "must be an integer"}
		}
		f = parsed
	case float64:
		f = n
	default:
		return 0, &SchemaError{Field: name, Reason: "must be an integer"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, &SchemaError{Field: name, Reason: "must be an integer"}
	}
	if f < minScore || f > maxScore {
		return 0, &SchemaError{Field: name, Reason: "must be between 0 and 100"}
	}
	return int(f), nil
}

func issues(obj map[string]any, name string) ([]types.CodeIssue, *SchemaError) {
	v, err := field(obj, name)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &SchemaError{Field: name, Reason: "must be an array"}
	}
	out := make([]types.CodeIssue, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &SchemaError{Field: name, Reason: "must contain only objects"}
		}
		typ, terr := nonBlankString(m, "type")
		if terr != nil {
			return nil, &SchemaError{Field: name + ".type", Reason: terr.Reason}
		}
		text, xerr := nonBlankString(m, "text")
		if xerr != nil {
			return nil, &SchemaError{Field: name + ".text", Reason: xerr.Reason}
		}
		out = append(out, types.CodeIssue{Type: typ, Text: text})
	}
	return out, nil
}
