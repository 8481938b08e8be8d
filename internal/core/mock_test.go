package core

import (
	"context"

	"github.com/medassist/medgraph/internal/core/model"
	"github.com/medassist/medgraph/internal/llm"
)

// MockLLM serves queued responses in order; every request is recorded so
// tests can assert on prompt assembly.
type MockLLM struct {
	Responses []string
	Errs      []error
	Requests  []llm.Request
}

func (m *MockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	i := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	return "", nil
}

// MockDriver implements driver.GraphDriver in memory. Read results and errors
// are queued per call so repair sequences can be scripted.
type MockDriver struct {
	ReadResults [][]map[string]any
	ReadErrs    []error
	ReadQueries []string

	WriteResult map[string]any
	WriteErr    error
	WriteQuery  string
	WriteParams map[string]any
	WriteCalls  int

	SchemaResult model.GraphSchema
	SchemaErr    error

	SnapshotResult model.GraphSnapshot
	SnapshotLimit  int

	IndicesBuilt bool
	Closed       bool
}

func (m *MockDriver) ExecuteWrite(ctx context.Context, query string, params map[string]any) (map[string]any, error) {
	m.WriteCalls++
	m.WriteQuery = query
	m.WriteParams = params
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	return m.WriteResult, nil
}

func (m *MockDriver) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	i := len(m.ReadQueries)
	m.ReadQueries = append(m.ReadQueries, query)
	if i < len(m.ReadErrs) && m.ReadErrs[i] != nil {
		return nil, m.ReadErrs[i]
	}
	if i < len(m.ReadResults) {
		return m.ReadResults[i], nil
	}
	return nil, nil
}

func (m *MockDriver) Schema(ctx context.Context) (model.GraphSchema, error) {
	return m.SchemaResult, m.SchemaErr
}

func (m *MockDriver) Snapshot(ctx context.Context, limit int) (model.GraphSnapshot, error) {
	m.SnapshotLimit = limit
	return m.SnapshotResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.IndicesBuilt = true
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}
