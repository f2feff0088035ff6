package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"goalspace-backend/pkg/config"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/models"
)

// LiveGenerator renders the use-case prompt and dispatches it to the
// selected provider's HTTP API. One request, no automatic retry: the
// caller owns any retry affordance.
type LiveGenerator struct {
	log        *logger.Logger
	httpClient *http.Client

	openAIKey      string
	openAIBaseURL  string
	openAIModel    string
	anthropicKey   string
	anthropicModel string
	geminiKey      string
	geminiModel    string
}

// NewLiveGenerator builds the provider-dispatch generator.
func NewLiveGenerator(cfg *config.Config, log *logger.Logger) *LiveGenerator {
	return &LiveGenerator{
		log:            log.With("component", "generator"),
		httpClient:     &http.Client{Timeout: cfg.AITimeout},
		openAIKey:      cfg.OpenAIKey,
		openAIBaseURL:  cfg.OpenAIBaseURL,
		openAIModel:    cfg.OpenAIModel,
		anthropicKey:   cfg.AnthropicKey,
		anthropicModel: cfg.AnthropicModel,
		geminiKey:      cfg.GeminiKey,
		geminiModel:    cfg.GeminiModel,
	}
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

// Generate renders the prompt and calls the requested provider.
func (g *LiveGenerator) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if !models.ValidUseCase(req.UseCase) {
		return "", fmt.Errorf("unknown use case: %s", req.UseCase)
	}
	if !models.ValidModel(req.Model) {
		return "", fmt.Errorf("unsupported model: %s", req.Model)
	}

	prompt, err := RenderPrompt(req)
	if err != nil {
		return "", err
	}
	system := SystemPrompt(req.Space)

	start := time.Now()
	var content string
	switch req.Model {
	case models.ModelOpenAI:
		content, err = g.callOpenAI(ctx, system, prompt)
	case models.ModelAnthropic:
		content, err = g.callAnthropic(ctx, system, prompt)
	case models.ModelGemini:
		content, err = g.callGemini(ctx, system, prompt)
	}
	if err != nil {
		g.log.Error("generation failed",
			"use_case", req.UseCase, "model", req.Model, "error", err)
		return "", fmt.Errorf("failed to generate %s: %w", req.UseCase, err)
	}

	g.log.Info("generation complete",
		"use_case", req.UseCase, "model", req.Model,
		"duration", time.Since(start), "chars", len(content))
	return content, nil
}

// postJSON sends one request and returns the body, converting non-2xx
// statuses into a typed error.
func (g *LiveGenerator) postJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (g *LiveGenerator) callOpenAI(ctx context.Context, system, prompt string) (string, error) {
	if g.openAIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not configured")
	}

	payload := map[string]interface{}{
		"model": g.openAIModel,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
	}

	body, err := g.postJSON(ctx, g.openAIBaseURL+"/v1/chat/completions", map[string]string{
		"Authorization": "Bearer " + g.openAIKey,
	}, payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (g *LiveGenerator) callAnthropic(ctx context.Context, system, prompt string) (string, error) {
	if g.anthropicKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not configured")
	}

	payload := map[string]interface{}{
		"model":      g.anthropicModel,
		"max_tokens": 4096,
		"system":     system,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, err := g.postJSON(ctx, "https://api.anthropic.com/v1/messages", map[string]string{
		"x-api-key":         g.anthropicKey,
		"anthropic-version": "2023-06-01",
	}, payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse anthropic response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("anthropic returned no content")
	}
	return parsed.Content[0].Text, nil
}

func (g *LiveGenerator) callGemini(ctx context.Context, system, prompt string) (string, error) {
	if g.geminiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not configured")
	}

	payload := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]string{{"text": system}},
		},
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		g.geminiModel, g.geminiKey)
	body, err := g.postJSON(ctx, url, nil, payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
