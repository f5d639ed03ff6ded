// Package gemini implements the paid cloud fallback provider against the
// Google Generative Language API. Without a credential the provider is not
// constructed at all; the chain skips straight to the offline floor.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/internal/chat"
	"github.com/Abhi-200412/AuraMed-sub000/internal/config"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Provider implements models.ChatProvider using Gemini.
type Provider struct {
	cfg     config.GeminiConfig
	baseURL string
	client  *http.Client
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewProviderWithBaseURL is used by tests to point at a local server.
func NewProviderWithBaseURL(cfg config.GeminiConfig, baseURL string) *Provider {
	p := NewProvider(cfg)
	p.baseURL = baseURL
	return p
}

func (p *Provider) Name() string { return models.ProviderCloud }

func (p *Provider) Generate(ctx context.Context, genReq models.GenerateRequest) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: no credential configured", chat.ErrProviderUnavailable)
	}

	// Gemini has no system role; the instruction block leads as a user turn.
	contents := make([]geminiContent, 0, len(genReq.Messages)+1)
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: genReq.System}}})
	for _, m := range genReq.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	body, err := json.Marshal(geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     genReq.Temperature,
			MaxOutputTokens: genReq.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		p.baseURL, url.PathEscape(p.cfg.Model), url.QueryEscape(p.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chat.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", chat.ErrProviderUnavailable, resp.StatusCode)
	}

	var genResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", chat.ErrInvalidResponse
	}
	text := genResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", chat.ErrInvalidResponse
	}

	return text, nil
}

// --- Gemini wire types ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Compile-time check that Provider implements ChatProvider.
var _ models.ChatProvider = (*Provider)(nil)
