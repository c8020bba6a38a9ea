package llm

import (
	"context"

	"gymchat/internal/domain"
)

// MockRetriever permite tests sin llamar al knowledge base real.
type MockRetriever struct {
	Chunks    []domain.RetrievedChunk
	Err       error
	LastQuery string
	LastMax   int
}

func (m *MockRetriever) Retrieve(_ context.Context, query string, max int) ([]domain.RetrievedChunk, error) {
	m.LastQuery = query
	m.LastMax = max
	return m.Chunks, m.Err
}

// MockGenerator permite tests sin llamar a un LLM real.
type MockGenerator struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	return m.Response, m.Err
}

// MockEmbedder devuelve un vector fijo.
type MockEmbedder struct {
	Vector   []float32
	Err      error
	LastText string
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.LastText = text
	return m.Vector, m.Err
}
