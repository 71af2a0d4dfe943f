package analysis

import "strings"

// Kind is the artifact kind being analysed.
type Kind string

const (
	KindProblem Kind = "problem"
	KindCode    Kind = "code"
)

func (k Kind) Valid() bool {
	return k == KindProblem || k == KindCode
}

func ParseKind(raw string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	return k, k.Valid()
}

// Request is a user-submitted artifact.
type Request struct {
	Kind     Kind     `json:"kind"`
	Payload  string   `json:"payload"`
	Language string   `json:"language,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// ProblemResult is the contract for problem analyses.
type ProblemResult struct {
	Topics          []string `json:"topic"`
	Difficulty      string   `json:"difficulty"`
	DifficultyScore int      `json:"difficultyScore"`
	Summary         string   `json:"summary"`
	Hints           []string `json:"hints"`
	Approach        string   `json:"approach"`
}

// CodeIssue is a single review finding. Type is the category tag.
type CodeIssue struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CodeResult is the contract for code analyses.
type CodeResult struct {
	Summary    string      `json:"summary"`
	Complexity string      `json:"complexity"`
	Space      string      `json:"space"`
	Score      int         `json:"score"`
	Issues     []CodeIssue `json:"issues"`
	Refactor   string      `json:"refactor"`
	Tests      []string    `json:"tests"`
}

// Result is a tagged union over the two result kinds. Exactly one of Problem/Code is set,
// matching Kind. Fallback marks degraded (demo) output and is not part of the contract.
type Result struct {
	Kind     Kind           `json:"kind"`
	Fallback bool           `json:"fallback"`
	Problem  *ProblemResult `json:"problem,omitempty"`
	Code     *CodeResult    `json:"code,omitempty"`
}

// Topics returns the problem topics, or nil for code results.
func (r Result) Topics() []string {
	if r.Problem == nil {
		return nil
	}
	return r.Problem.Topics
}

// Difficulty returns the problem difficulty label, or "".
func (r Result) Difficulty() string {
	if r.Problem == nil {
		return ""
	}
	return r.Problem.Difficulty
}
