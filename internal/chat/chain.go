// Package chat resolves conversational turns against an ordered chain of
// response providers: local inference first, a cloud fallback second, and a
// deterministic offline responder as the availability floor.
package chat

import (
	"context"
	"log/slog"

	"github.com/Abhi-200412/AuraMed-sub000/internal/metrics"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

// LocalProvider is a chat provider that can be cheaply probed for liveness
// before committing to a full request.
type LocalProvider interface {
	models.ChatProvider
	Probe(ctx context.Context) error
}

// OfflineResponder produces a canned but context-appropriate answer. It must
// never fail.
type OfflineResponder interface {
	Respond(cc models.ConversationContext) string
}

// Chain is the ordered fallback resolver. Ordering, not racing, is
// deliberate: the local provider is free and private, the cloud provider is
// a paid fallback, and offline is the correctness backstop.
type Chain struct {
	local         LocalProvider
	cloud         models.ChatProvider
	offline       OfflineResponder
	historyWindow int
}

// NewChain builds a resolver. local and cloud may be nil (no local endpoint,
// no cloud credential); offline must not be.
func NewChain(local LocalProvider, cloud models.ChatProvider, offline OfflineResponder, historyWindow int) *Chain {
	return &Chain{
		local:         local,
		cloud:         cloud,
		offline:       offline,
		historyWindow: historyWindow,
	}
}

// Resolve answers one conversational turn. It always returns an answer:
// provider failures degrade down the chain instead of propagating, and the
// offline floor cannot fail. The escalation flag is computed once from the
// raw utterance, independent of which provider answers.
func (c *Chain) Resolve(ctx context.Context, cc models.ConversationContext) models.Answer {
	escalation := DetectEscalation(cc.Message)
	req := c.buildRequest(cc)

	if c.local != nil {
		// Cheap liveness probe first so an absent local endpoint costs at
		// most the probe timeout, not a full request timeout.
		if err := c.local.Probe(ctx); err != nil {
			slog.Debug("local provider probe failed, falling through", "error", err)
		} else if text, err := c.local.Generate(ctx, req); err != nil {
			slog.Warn("local provider failed, falling through", "error", err)
		} else if text != "" {
			metrics.ChatResolutions.WithLabelValues(models.ProviderLocal).Inc()
			return models.Answer{Text: text, Escalation: escalation, Provider: c.local.Name()}
		}
	}

	if c.cloud != nil {
		if text, err := c.cloud.Generate(ctx, req); err != nil {
			slog.Warn("cloud provider failed, engaging offline responder", "error", err)
		} else if text != "" {
			metrics.ChatResolutions.WithLabelValues(models.ProviderCloud).Inc()
			return models.Answer{Text: text, Escalation: escalation, Provider: c.cloud.Name()}
		}
	}

	metrics.ChatResolutions.WithLabelValues(models.ProviderOffline).Inc()
	return models.Answer{
		Text:       c.offline.Respond(cc),
		Escalation: escalation,
		Provider:   models.ProviderOffline,
	}
}

func (c *Chain) buildRequest(cc models.ConversationContext) models.GenerateRequest {
	temperature, maxTokens := generationProfile(cc.Role)

	messages := windowHistory(cc.History, c.historyWindow)
	messages = append(append([]models.ChatMessage{}, messages...),
		models.ChatMessage{Role: "user", Content: cc.Message})

	return models.GenerateRequest{
		System:      BuildSystemPrompt(cc.Role, cc.Result),
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
