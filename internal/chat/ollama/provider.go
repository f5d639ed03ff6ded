// Package ollama implements the local inference provider against an Ollama
// server. A short liveness probe against /api/tags gates the full request so
// an absent server never stalls the fallback chain.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Abhi-200412/AuraMed-sub000/internal/chat"
	"github.com/Abhi-200412/AuraMed-sub000/internal/config"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

// Provider implements chat.LocalProvider using Ollama's chat API.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (p *Provider) Name() string { return models.ProviderLocal }

// Probe checks whether the Ollama server is reachable, bounded by the
// configured probe timeout (on the order of one second).
func (p *Provider) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", chat.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: probe status %d", chat.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

func (p *Provider) Generate(ctx context.Context, genReq models.GenerateRequest) (string, error) {
	messages := make([]ollamaMessage, 0, len(genReq.Messages)+1)
	messages = append(messages, ollamaMessage{Role: "system", Content: genReq.System})
	for _, m := range genReq.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, ollamaMessage{Role: role, Content: m.Content})
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    p.cfg.Model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: genReq.Temperature,
			NumPredict:  genReq.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
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

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if chatResp.Message.Content == "" {
		return "", chat.ErrInvalidResponse
	}

	return chatResp.Message.Content, nil
}

// --- Ollama wire types ---

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// Compile-time check that Provider implements chat.LocalProvider.
var _ chat.LocalProvider = (*Provider)(nil)
