package verify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiVerifier struct {
	model    string
	logger   *zap.Logger
	generate func(ctx context.Context, model, prompt string) (string, error)
}

// NewGeminiVerifier connects to the Gemini API. An empty apiKey lets the
// client pick up GOOGLE_API_KEY from the environment.
func NewGeminiVerifier(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiVerifier, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiVerifier(model, logger, func(ctx context.Context, model, prompt string) (string, error) {
		result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return result.Text(), nil
	}), nil
}

func newGeminiVerifier(model string, logger *zap.Logger, generate func(ctx context.Context, model, prompt string) (string, error)) *GeminiVerifier {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiVerifier{model: model, logger: logger.Named("verify.gemini"), generate: generate}
}

func (v *GeminiVerifier) Verify(ctx context.Context, req Request) (Verdict, error) {
	raw, err := v.generate(ctx, v.model, systemPrompt+"\n\n"+userPrompt(req))
	if err != nil {
		v.logger.Warn("Gemini generate failed", zap.Error(err))
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimSuffix(clean, "```")
	if clean == "" {
		return Verdict{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return parseVerdict(clean)
}
