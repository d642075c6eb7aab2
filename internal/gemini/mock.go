package gemini

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// MockGenerator records the parts it was sent and replies with a canned response.
type MockGenerator struct {
	Response *genai.GenerateContentResponse
	Error    error
	Parts    []genai.Part
}

func (m *MockGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	m.Parts = parts
	return m.Response, m.Error
}
