package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	DefaultOpenRouterModel = "meta-llama/llama-3.1-8b-instruct:free"
)

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	URL     string
	Timeout time.Duration
}

type OpenRouterVerifier struct {
	cfg    OpenRouterConfig
	client *http.Client
	logger *zap.Logger
}

func NewOpenRouterVerifier(cfg OpenRouterConfig, client *http.Client, logger *zap.Logger) *OpenRouterVerifier {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenRouterModel
	}
	if cfg.URL == "" {
		cfg.URL = DefaultOpenRouterURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenRouterVerifier{cfg: cfg, client: client, logger: logger.Named("verify.openrouter")}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (v *OpenRouterVerifier) Verify(ctx context.Context, req Request) (Verdict, error) {
	if strings.TrimSpace(v.cfg.APIKey) == "" {
		return Verdict{}, fmt.Errorf("%w: missing api key", ErrUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model: v.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(httpReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.logger.Warn("Verifier returned non-success status", zap.Int("status", resp.StatusCode))
		return Verdict{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Verdict{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return Verdict{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	verdict, err := parseVerdict(parsed.Choices[0].Message.Content)
	if err != nil {
		return Verdict{}, err
	}
	v.logger.Debug("Proof verified",
		zap.String("task", req.TaskTitle),
		zap.Bool("verified", verdict.Verified),
	)
	return verdict, nil
}
