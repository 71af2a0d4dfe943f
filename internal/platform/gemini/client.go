package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const DefaultModel = "gemini-2.5-pro"

type Config struct {
	APIKey string
	Model  string
}

// Client is the subset of the Gemini API the backend uses.
type Client interface {
	Model() string
	// GenerateText sends one user turn (text plus optional images) and returns the reply text.
	GenerateText(ctx context.Context, system string, user string, images []string) (string, error)
}

type client struct {
	log    *logger.Logger
	model  string
	models *genai.Models
}

func NewClient(ctx context.Context, cfg Config, baseLog *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &client{
		log:    baseLog.With("client", "GeminiClient"),
		model:  model,
		models: gc.Models,
	}, nil
}

func (c *client) Model() string { return c.model }

func (c *client) GenerateText(ctx context.Context, system string, user string, images []string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(user)}
	for _, img := range images {
		part, err := imagePart(img)
		if err != nil {
			c.log.Warn("Skipping unusable image reference", "error", err)
			continue
		}
		parts = append(parts, part)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

// imagePart accepts data: URIs (inlined) and remote URIs (referenced by URI).
func imagePart(ref string) (*genai.Part, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "data:") {
		mime, data, err := decodeDataURI(ref)
		if err != nil {
			return nil, err
		}
		return genai.NewPartFromBytes(data, mime), nil
	}
	if ref == "" {
		return nil, errors.New("empty image reference")
	}
	return genai.NewPartFromURI(ref, guessImageMime(ref)), nil
}

func decodeDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, errors.New("malformed data URI")
	}
	mime, enc, _ := strings.Cut(header, ";")
	if enc != "base64" {
		return "", nil, fmt.Errorf("unsupported data URI encoding %q", enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	if mime == "" {
		mime = "image/png"
	}
	return mime, data, nil
}

func guessImageMime(ref string) string {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	default:
		return "image/png"
	}
}
