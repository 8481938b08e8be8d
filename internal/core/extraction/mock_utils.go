package extraction

import (
	"context"

	"github.com/medassist/medgraph/internal/llm"
)

type MockLLMClient struct {
	Response    string
	Err         error
	LastRequest llm.Request
}

func (m *MockLLMClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.LastRequest = req
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
