package analysis

import (
	"context"

	"github.com/iapss/iapss-backend/internal/platform/gemini"
	"github.com/iapss/iapss-backend/internal/platform/openai"
)

type geminiProvider struct {
	client gemini.Client
}

// NewGeminiProvider adapts a Gemini client; images are passed through as parts.
func NewGeminiProvider(c gemini.Client) Provider {
	return &geminiProvider{client: c}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return p.client.GenerateText(ctx, prompt.System, prompt.User, prompt.Images)
}

type openAIProvider struct {
	client openai.Client
}

func NewOpenAIProvider(c openai.Client) Provider {
	return &openAIProvider{client: c}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if len(prompt.Images) == 0 {
		return p.client.GenerateText(ctx, prompt.System, prompt.User)
	}
	images := make([]openai.ImageInput, 0, len(prompt.Images))
	for _, u := range prompt.Images {
		images = append(images, openai.ImageInput{ImageURL: u, Detail: "high"})
	}
	return p.client.GenerateTextWithImages(ctx, prompt.System, prompt.User, images)
}
