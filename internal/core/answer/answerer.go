package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/medassist/medgraph/internal/core/common"
	"github.com/medassist/medgraph/internal/llm"
)

const DefaultPrompt = `You are an AI assistant accessing a hospital knowledge graph. Your task is to synthesize the 'Retrieved Data' to answer the 'Original User Question'.
**CRITICAL INSTRUCTIONS:**
1.  **Strict Grounding:** Base your answer **EXCLUSIVELY** on the Retrieved Data provided. Do NOT add external knowledge or information not present in the data. Do NOT make assumptions or invent details.
2.  **Completeness:** If the Retrieved Data contains specific fields relevant to the question (e.g., 'mrn', 'dosage', 'reaction', dates), **include them** in your response. Don't omit details present in the data.
3.  **Acknowledge Emptiness:** If the Retrieved Data is empty ([]), clearly state that the requested information could not be found *in the knowledge graph*. Do not speculate why.
4.  **Name Ambiguity:** Patient names are not guaranteed unique. If the data was looked up by name and multiple patients could match, note that the answer reflects the records found for that name.
5.  **Medical Context:** Provide brief, neutral medical context if directly supported by the data, but **DO NOT give medical advice, diagnoses, or prognoses.**
6.  **Tone:** Be helpful, clear, and professional, focused on the medical information requested.
7.  **Formatting:** Plain prose; bullet points for lists if appropriate. Never return raw JSON or code.`

const contextFormat = `Original User Question:
"%s"

Retrieved Data from Knowledge Graph:
%s

Now, generate a response following ALL instructions above.`

const emptyResults = "[] (No information found in the knowledge graph matching the query)"

const DefaultMaxResultChars = 4000

type Answerer struct {
	LLM    llm.LLMClient
	Prompt string

	// MaxResultChars bounds the serialized row set in the prompt. Deliberate
	// lossy degradation under large result sets; callers needing complete
	// data must page the query.
	MaxResultChars int
}

func NewAnswerer(llmClient llm.LLMClient, prompt string, maxResultChars int) *Answerer {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if maxResultChars <= 0 {
		maxResultChars = DefaultMaxResultChars
	}
	return &Answerer{
		LLM:            llmClient,
		Prompt:         prompt,
		MaxResultChars: maxResultChars,
	}
}

// Answer composes a grounded natural-language answer from the question and
// the retrieved rows. An empty row set is answered normally, with an explicit
// statement that nothing was found.
func (a *Answerer) Answer(ctx context.Context, question string, rows []map[string]any) (string, error) {
	results := a.serialize(rows)

	response, err := a.LLM.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: a.Prompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(contextFormat, question, results)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrService, err)
	}

	return response, nil
}

func (a *Answerer) serialize(rows []map[string]any) string {
	if len(rows) == 0 {
		return emptyResults
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		// Non-JSON-serializable driver values; fall back to the bullet form.
		return common.FormatRecords(rows)
	}
	results := string(data)
	if len(results) > a.MaxResultChars {
		// Back off to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := a.MaxResultChars
		for cut > 0 && !utf8.RuneStart(results[cut]) {
			cut--
		}
		results = results[:cut] + "\n... (results truncated)"
	}
	return results
}
