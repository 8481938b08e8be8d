package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one completion round trip. Temperature is set low for extraction
// and query generation and moderate for answer synthesis. JSONMode asks the
// provider to constrain output to a valid JSON object where supported;
// providers without that capability ignore it and the caller parses leniently.
type Request struct {
	Messages    []Message
	Temperature float32
	JSONMode    bool
}

type LLMClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}
