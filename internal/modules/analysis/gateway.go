package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const DefaultInferenceTimeout = 25 * time.Second

// Provider is an external inference endpoint: prompt in, free-form text out.
type Provider interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Inference is a provider reply with its JSON object already located and decoded.
type Inference struct {
	Raw     string
	Payload map[string]any
}

// Inferer is what the orchestrator needs from a gateway.
type Inferer interface {
	Infer(ctx context.Context, req types.AnalysisRequest) (*Inference, error)
}

type Gateway struct {
	provider Provider
	timeout  time.Duration
	log      *logger.Logger
}

// NewGateway accepts a nil provider; every call then fails with ErrUnavailable.
func NewGateway(provider Provider, timeout time.Duration, baseLog *logger.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultInferenceTimeout
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		log:      baseLog.With("service", "InferenceGateway"),
	}
}

func (g *Gateway) providerName() string {
	if g.provider == nil {
		return "none"
	}
	return g.provider.Name()
}

// Infer calls the provider once, bounded by the gateway timeout. It never retries.
// Every error it returns is a *GatewayError.
func (g *Gateway) Infer(ctx context.Context, req types.AnalysisRequest) (*Inference, error) {
	ctx, span := observability.Tracer("analysis").Start(ctx, "analysis.infer")
	defer span.End()
	span.SetAttributes(
		attribute.String("analysis.kind", string(req.Kind)),
		attribute.String("inference.provider", g.providerName()),
	)

	start := time.Now()
	out, err := g.infer(ctx, req)

	outcome := "ok"
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		outcome = gwErr.ReasonCode()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveInference(g.providerName(), string(req.Kind), outcome, time.Since(start))
	}
	return out, err
}

func (g *Gateway) infer(ctx context.Context, req types.AnalysisRequest) (*Inference, error) {
	if g.provider == nil {
		return nil, gatewayErr(ErrUnavailable, errors.New("no inference provider configured"))
	}
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, gatewayErr(ErrUnavailable, err)
	}

	raw, err := g.call(ctx, prompt)
	if err != nil {
		return nil, gatewayErr(ErrUnavailable, err)
	}

	payload, err := ExtractPayload(raw)
	if err != nil {
		return nil, err
	}
	return &Inference{Raw: raw, Payload: payload}, nil
}

type callResult struct {
	text string
	err  error
}

// call runs the provider on its own goroutine so a provider that ignores ctx still
// cannot hold the caller past the timeout. Provider panics become errors.
func (g *Gateway) call(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		text, err := g.provider.Generate(ctx, prompt)
		done <- callResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExtractPayload slices raw from the first '{' to the last '}' and decodes that span
// as a single JSON object. Numbers are kept as json.Number.
func ExtractPayload(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, gatewayErr(ErrNoPayload, nil)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw[start : end+1])))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, gatewayErr(ErrMalformedJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, gatewayErr(ErrMalformedJSON, errors.New("trailing data after JSON object"))
	}
	if obj == nil {
		return nil, gatewayErr(ErrMalformedJSON, errors.New("payload is not an object"))
	}
	return obj, nil
}
