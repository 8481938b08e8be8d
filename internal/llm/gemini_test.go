package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("MATCH (n) RETURN n")}}},
		},
	}

	text, err := textFromResponse(resp)

	require.NoError(t, err)
	assert.Equal(t, "MATCH (n) RETURN n", text)
}

func TestTextFromResponse_NoCandidates(t *testing.T) {
	_, err := textFromResponse(&genai.GenerateContentResponse{})

	assert.Error(t, err)
}

// A safety-blocked request succeeds at the transport level but returns a
// candidate without content. That must surface as an error, not a panic.
func TestTextFromResponse_BlockedCandidate(t *testing.T) {
	nilContent := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil, FinishReason: genai.FinishReasonSafety},
		},
	}
	_, err := textFromResponse(nilContent)
	assert.Error(t, err)

	emptyParts := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{}, FinishReason: genai.FinishReasonSafety},
		},
	}
	_, err = textFromResponse(emptyParts)
	assert.Error(t, err)
}
