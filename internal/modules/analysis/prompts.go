package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/iapss/iapss-backend/internal/domain"
)

// Prompt is the provider-neutral request handed to a Provider.
type Prompt struct {
	System string
	User   string
	// Images are URLs or data: URIs, problem requests only.
	Images []string
}

func EnumSchema(vals ...string) map[string]any {
	return map[string]any{"type": "string", "enum": vals}
}

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func ProblemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":           stringArraySchema(),
			"difficulty":      EnumSchema("Easy", "Medium", "Hard"),
			"difficultyScore": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"summary":         map[string]any{"type": "string"},
			"hints":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 3, "maxItems": 3},
			"approach":        map[string]any{"type": "string"},
		},
		"required":             []string{"topic", "difficulty", "difficultyScore", "summary", "hints", "approach"},
		"additionalProperties": false,
	}
}

func CodeSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":    map[string]any{"type": "string"},
			"complexity": map[string]any{"type": "string"},
			"space":      map[string]any{"type": "string"},
			"score":      map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"issues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": EnumSchema("Bug", "Optimization", "Style", "Error"),
						"text": map[string]any{"type": "string"},
					},
					"required":             []string{"type", "text"},
					"additionalProperties": false,
				},
			},
			"refactor": map[string]any{"type": "string"},
			"tests":    stringArraySchema(),
		},
		"required":             []string{"summary", "complexity", "space", "score", "issues", "refactor", "tests"},
		"additionalProperties": false,
	}
}

const systemPrompt = "You are a competitive programming coach. Reply with a single JSON object and nothing else."

// BuildPrompt renders the kind-specific prompt with the payload and the expected schema.
func BuildPrompt(req types.AnalysisRequest) (Prompt, error) {
	var (
		schema map[string]any
		task   string
	)
	switch req.Kind {
	case types.KindProblem:
		schema = ProblemSchema()
		task = "Analyse the following problem statement. Identify its topics, rate its difficulty " +
			"(difficultyScore 0-100), summarise it in one or two sentences, give exactly three progressive " +
			"hints that do not reveal the full solution, and outline the intended approach."
	case types.KindCode:
		schema = CodeSchema()
		lang := req.Language
		if lang == "" {
			lang = "unspecified"
		}
		task = fmt.Sprintf("Review the following %s code. Summarise what it does, state its time and space "+
			"complexity in Big-O, score its quality 0-100, list concrete issues, suggest a refactor as code, "+
			"and describe test cases worth adding.", lang)
	default:
		return Prompt{}, fmt.Errorf("unknown artifact kind %q", req.Kind)
	}

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return Prompt{}, err
	}

	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nRespond with JSON matching this schema:\n")
	b.Write(raw)
	b.WriteString("\n\nINPUT:\n")
	b.WriteString(req.Payload)

	p := Prompt{System: systemPrompt, User: b.String()}
	if req.Kind == types.KindProblem && len(req.Images) > 0 {
		p.Images = append([]string(nil), req.Images...)
	}
	return p, nil
}
