package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

// Languages accepted for code requests, keyed by every accepted spelling.
var languageAliases = map[string]string{
	"cpp": "cpp", "c++": "cpp",
	"py": "py", "python": "py",
	"go": "go", "golang": "go",
	"java": "java",
	"c":    "c",
	"js":   "js", "javascript": "js",
	"ts": "ts", "typescript": "ts",
	"txt": "txt", "text": "txt",
}

// NormalizeRequest trims and checks caller input. It returns a *ValidationError for
// anything the orchestrator must not see.
func NormalizeRequest(req types.AnalysisRequest) (types.AnalysisRequest, error) {
	kind, ok := types.ParseAnalysisKind(string(req.Kind))
	if !ok {
		return req, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown artifact kind %q", req.Kind)}
	}
	req.Kind = kind

	req.Payload = strings.TrimSpace(req.Payload)
	if req.Payload == "" {
		field := "text"
		if kind == types.KindCode {
			field = "code"
		}
		return req, &ValidationError{Field: field, Message: field + " is required"}
	}

	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang != "" {
		canonical, ok := languageAliases[lang]
		if !ok {
			return req, &ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", req.Language)}
		}
		lang = canonical
	}
	if kind == types.KindProblem {
		lang = ""
	}
	req.Language = lang

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) > 0 && kind != types.KindProblem {
		return req, &ValidationError{Field: "images", Message: "images are only accepted for problem analysis"}
	}
	req.Images = images
	return req, nil
}

type Orchestrator struct {
	gateway Inferer
	log     *logger.Logger
}

func NewOrchestrator(gateway Inferer, baseLog *logger.Logger) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		log:     baseLog.With("service", "AnalysisOrchestrator"),
	}
}

// Analyse always returns a contract-valid result for well-formed input. The only
// error it returns is a *ValidationError, together with the normalised request.
// Gateway and schema failures, and panics below this call, become a fallback result.
func (o *Orchestrator) Analyse(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, types.AnalysisRequest, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		return types.AnalysisResult{}, req, err
	}

	ctx, span := observability.Tracer("analysis").Start(ctx, "analysis.analyse")
	defer span.End()

	result, reason := o.attempt(ctx, req)
	if reason != "" {
		result = Synthesize(req.Kind)
	}

	span.SetAttributes(
		attribute.String("analysis.kind", string(req.Kind)),
		attribute.Bool("analysis.fallback", result.Fallback),
	)
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveAnalysis(string(req.Kind), result.Fallback, reason)
	}
	return result, req, nil
}

// attempt runs gateway then validator. A non-empty reason means the result must be replaced.
func (o *Orchestrator) attempt(ctx context.Context, req types.AnalysisRequest) (result types.AnalysisResult, reason string) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Warn("Analysis panicked, serving fallback",
				"kind", req.Kind,
				"reason", "panic",
				"request_id", ctxutil.RequestID(ctx),
				"panic", fmt.Sprint(r),
			)
			result, reason = types.AnalysisResult{}, "panic"
		}
	}()

	if o.gateway == nil {
		return types.AnalysisResult{}, "unavailable"
	}

	inf, err := o.gateway.Infer(ctx, req)
	if err != nil {
		reason = "unavailable"
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			reason = gwErr.ReasonCode()
		}
		o.log.Warn("Inference failed, serving fallback",
			"kind", req.Kind,
			"reason", reason,
			"request_id", ctxutil.RequestID(ctx),
			"error", err,
		)
		return types.AnalysisResult{}, reason
	}

	validated, err := Validate(req.Kind, inf.Payload)
	if err != nil {
		field := ""
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			field = schemaErr.Field
		}
		o.log.Warn("Provider output failed contract, serving fallback",
			"kind", req.Kind,
			"reason", "schema",
			"field", field,
			"request_id", ctxutil.RequestID(ctx),
			"error", err,
		)
		return types.AnalysisResult{}, "schema"
	}
	validated.Fallback = false
	return validated, ""
}
