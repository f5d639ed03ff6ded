package mock

import (
	"context"

	"github.com/Abhi-200412/AuraMed-sub000/internal/chat"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

// MockProvider satisfies chat.LocalProvider for testing.
type MockProvider struct {
	Name_        string
	ProbeFunc    func(ctx context.Context) error
	GenerateFunc func(ctx context.Context, req models.GenerateRequest) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Probe(ctx context.Context) error {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx)
	}
	return nil
}

func (m *MockProvider) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "mock reply", nil
}

// NewMockProvider returns a MockProvider that always succeeds.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{Name_: name}
}

// NewFailingProvider returns a MockProvider whose probe succeeds but whose
// generation always returns the given error.
func NewFailingProvider(name string, err error) *MockProvider {
	return &MockProvider{
		Name_: name,
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (string, error) {
			return "", err
		},
	}
}

// NewUnreachableProvider returns a MockProvider whose probe always fails.
func NewUnreachableProvider(name string) *MockProvider {
	return &MockProvider{
		Name_: name,
		ProbeFunc: func(_ context.Context) error {
			return chat.ErrProviderUnavailable
		},
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (string, error) {
			return "", chat.ErrProviderUnavailable
		},
	}
}

// Compile-time check that MockProvider implements LocalProvider.
var _ chat.LocalProvider = (*MockProvider)(nil)
