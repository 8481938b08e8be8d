package core

import (
	"sync"

	"github.com/medassist/medgraph/internal/llm"
)

// Conversation is the explicit session state for one chat: prior
// question/answer turns, included in query synthesis so follow-up questions
// resolve references. It grows without bound; callers needing bounded memory
// truncate it themselves or start a new Conversation.
type Conversation struct {
	mu      sync.Mutex
	History []llm.Message
}

func NewConversation() *Conversation {
	return &Conversation{}
}

func (c *Conversation) Append(question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.History = append(c.History,
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)
}

// Messages returns a snapshot of the history for prompt assembly.
func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Message, len(c.History))
	copy(out, c.History)
	return out
}

func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.History = nil
}
