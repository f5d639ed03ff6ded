package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abhi-200412/AuraMed-sub000/internal/chat"
	"github.com/Abhi-200412/AuraMed-sub000/internal/chat/mock"
	"github.com/Abhi-200412/AuraMed-sub000/internal/chat/offline"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

func subjectTurn(message string) models.ConversationContext {
	return models.ConversationContext{
		Role:    models.RoleSubject,
		Message: message,
	}
}

func TestResolve_LocalPreferred(t *testing.T) {
	local := mock.NewMockProvider(models.ProviderLocal)
	local.GenerateFunc = func(_ context.Context, _ models.GenerateRequest) (string, error) {
		return "local reply", nil
	}
	cloud := mock.NewMockProvider(models.ProviderCloud)
	cloud.GenerateFunc = func(_ context.Context, _ models.GenerateRequest) (string, error) {
		t.Fatal("cloud must not be attempted when local succeeds")
		return "", nil
	}

	c := chat.NewChain(local, cloud, offline.NewResponder(), 15)
	ans := c.Resolve(context.Background(), subjectTurn("how do I read this?"))

	if ans.Provider != models.ProviderLocal {
		t.Errorf("provider = %q, want local", ans.Provider)
	}
	if ans.Text != "local reply" {
		t.Errorf("text = %q", ans.Text)
	}
}

func TestResolve_ProbeFailureFallsToCloud(t *testing.T) {
	local := mock.NewUnreachableProvider(models.ProviderLocal)
	var localAttempted bool
	local.GenerateFunc = func(_ context.Context, _ models.GenerateRequest) (string, error) {
		localAttempted = true
		return "", chat.ErrProviderUnavailable
	}
	cloud := mock.NewMockProvider(models.ProviderCloud)
	cloud.GenerateFunc = func(_ context.Context, _ models.GenerateRequest) (string, error) {
		return "cloud reply", nil
	}

	c := chat.NewChain(local, cloud, offline.NewResponder(), 15)
	ans := c.Resolve(context.Background(), subjectTurn("hello"))

	if localAttempted {
		t.Error("full local request must be skipped when the probe fails")
	}
	if ans.Provider != models.ProviderCloud {
		t.Errorf("provider = %q, want cloud", ans.Provider)
	}
}

func TestResolve_AllProvidersDownHitsOfflineFloor(t *testing.T) {
	local := mock.NewUnreachableProvider(models.ProviderLocal)
	cloud := mock.NewFailingProvider(models.ProviderCloud, errors.New("503"))

	c := chat.NewChain(local, cloud, offline.NewResponder(), 15)
	ans := c.Resolve(context.Background(), subjectTurn("hello"))

	if ans.Provider != models.ProviderOffline {
		t.Errorf("provider = %q, want offline", ans.Provider)
	}
	if ans.Text == "" {
		t.Error("offline floor must never return an empty answer")
	}
}

func TestResolve_NoProvidersConfigured(t *testing.T) {
	c := chat.NewChain(nil, nil, offline.NewResponder(), 15)
	ans := c.Resolve(context.Background(), subjectTurn("what now"))

	if ans.Provider != models.ProviderOffline {
		t.Errorf("provider = %q, want offline", ans.Provider)
	}
	if ans.Text == "" {
		t.Error("answer must be non-empty with zero upstreams")
	}
}

func TestResolve_EscalationIndependentOfProvider(t *testing.T) {
	chains := map[string]*chat.Chain{
		"local":   chat.NewChain(mock.NewMockProvider(models.ProviderLocal), nil, offline.NewResponder(), 15),
		"cloud":   chat.NewChain(mock.NewUnreachableProvider(models.ProviderLocal), mock.NewMockProvider(models.ProviderCloud), offline.NewResponder(), 15),
		"offline": chat.NewChain(nil, nil, offline.NewResponder(), 15),
	}

	for name, c := range chains {
		ans := c.Resolve(context.Background(), subjectTurn("I have chest pain"))
		if !ans.Escalation {
			t.Errorf("%s: escalation should be set regardless of provider", name)
		}
	}
}

func TestResolve_RequestAssembly(t *testing.T) {
	var captured models.GenerateRequest
	local := mock.NewMockProvider(models.ProviderLocal)
	local.GenerateFunc = func(_ context.Context, req models.GenerateRequest) (string, error) {
		captured = req
		return "ok", nil
	}

	history := []models.ChatMessage{
		{Role: "user", Content: "turn 1"},
		{Role: "assistant", Content: "turn 2"},
		{Role: "user", Content: "turn 3"},
	}
	cc := models.ConversationContext{
		Role:    models.RoleReviewer,
		Result:  &models.ScanResult{AnomalyDetected: true, Severity: models.SeverityHigh},
		History: history,
		Message: "differential?",
	}

	c := chat.NewChain(local, nil, offline.NewResponder(), 2)
	c.Resolve(context.Background(), cc)

	if captured.Temperature != 0.6 || captured.MaxTokens != 1000 {
		t.Errorf("reviewer profile = (%v, %v)", captured.Temperature, captured.MaxTokens)
	}
	if !strings.Contains(captured.System, "ANOMALY DETECTED") {
		t.Error("system prompt missing case context")
	}
	// Two windowed turns plus the new utterance.
	if len(captured.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(captured.Messages))
	}
	if captured.Messages[0].Content != "turn 2" {
		t.Errorf("history window should keep the most recent turns, got %q first", captured.Messages[0].Content)
	}
	if captured.Messages[2].Content != "differential?" {
		t.Errorf("last message should be the new utterance, got %q", captured.Messages[2].Content)
	}
}

func TestResolve_EmptyLocalReplyFallsThrough(t *testing.T) {
	local := mock.NewMockProvider(models.ProviderLocal)
	local.GenerateFunc = func(_ context.Context, _ models.GenerateRequest) (string, error) {
		return "", nil
	}

	c := chat.NewChain(local, nil, offline.NewResponder(), 15)
	ans := c.Resolve(context.Background(), subjectTurn("hello"))

	if ans.Provider != models.ProviderOffline {
		t.Errorf("empty reply should fall through, got provider %q", ans.Provider)
	}
}
