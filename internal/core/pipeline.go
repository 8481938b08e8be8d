package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/config"
	"github.com/medassist/medgraph/internal/core/answer"
	"github.com/medassist/medgraph/internal/core/common"
	"github.com/medassist/medgraph/internal/core/extraction"
	"github.com/medassist/medgraph/internal/core/model"
	"github.com/medassist/medgraph/internal/core/mutation"
	"github.com/medassist/medgraph/internal/core/query"
	"github.com/medassist/medgraph/internal/driver"
	"github.com/medassist/medgraph/internal/llm"
	"github.com/medassist/medgraph/internal/metrics"
)

// Pipeline wires the extraction, mutation, query and answer engines over one
// graph driver and one LLM client. One ingestion or one question runs
// start-to-finish; nothing here coordinates concurrent writers.
type Pipeline struct {
	Driver    driver.GraphDriver
	LLM       llm.LLMClient
	Extractor *extraction.Extractor
	Synth     *query.Synthesizer
	Answerer  *answer.Answerer
	Log       zerolog.Logger
}

func NewPipeline(d driver.GraphDriver, llmClient llm.LLMClient, cfg *config.Config) *Pipeline {
	return &Pipeline{
		Driver:    d,
		LLM:       llmClient,
		Extractor: extraction.NewExtractor(llmClient, cfg.Prompts.Extraction),
		Synth:     query.NewSynthesizer(llmClient, cfg.Prompts.Query, cfg.Prompts.Repair),
		Answerer:  answer.NewAnswerer(llmClient, cfg.Prompts.Answer, cfg.Answer.MaxResultChars),
		Log:       log.With().Str("component", "pipeline").Logger(),
	}
}

func (p *Pipeline) BuildIndices(ctx context.Context) error {
	return p.Driver.BuildIndices(ctx)
}

// Ingest runs the full ingestion path: text -> record -> mutation -> graph.
// The mutation is built fully in memory before any write, so a failure at any
// stage leaves the graph untouched. Returns the patient identity the data was
// stored under.
func (p *Pipeline) Ingest(ctx context.Context, text, sourceHint string) (string, error) {
	record, err := p.Extractor.Extract(ctx, text, sourceHint)
	if err != nil {
		metrics.RecordIngestion("error")
		return "", fmt.Errorf("extraction failed: %w", err)
	}

	mut, err := mutation.Build(record)
	if err != nil {
		metrics.RecordIngestion("error")
		return "", fmt.Errorf("mutation build failed: %w", err)
	}

	confirmation, err := p.Driver.ExecuteWrite(ctx, mut.Statement, mut.Params)
	if err != nil {
		metrics.RecordIngestion("error")
		return "", fmt.Errorf("%w: %v", common.ErrService, err)
	}

	patientID, _ := confirmation["patientId"].(string)
	if patientID == "" {
		p.Log.Warn().Msg("mutation ran but returned no patientId confirmation")
	}

	metrics.RecordIngestion("success")
	p.Log.Info().Str("patient_id", patientID).Str("id_property", mut.IDProperty).Msg("record ingested")
	return patientID, nil
}

// Ask answers one natural-language question: synthesize a read query, execute
// it, repair at most once on failure, then compose a grounded answer. The two
// executions are strictly sequential; a second failure is terminal.
func (p *Pipeline) Ask(ctx context.Context, conv *Conversation, question string) (string, error) {
	schema, err := p.Driver.Schema(ctx)
	if err != nil {
		p.Log.Warn().Err(err).Msg("schema introspection failed, generating against the canonical schema only")
	}

	cypher, err := p.Synth.Synthesize(ctx, question, schema, conv.Messages())
	if err != nil {
		if errors.Is(err, common.ErrUnsafeQuery) {
			metrics.UnsafeQueriesTotal.Inc()
		}
		metrics.RecordQuestion("error")
		return "", err
	}

	rows, err := p.Driver.ExecuteRead(ctx, cypher, nil)
	if err != nil {
		rows, err = p.repair(ctx, cypher, err)
		if err != nil {
			metrics.RecordQuestion("error")
			return "", err
		}
	}

	answerText, err := p.Answerer.Answer(ctx, question, rows)
	if err != nil {
		metrics.RecordQuestion("error")
		return "", err
	}

	conv.Append(question, answerText)
	metrics.RecordQuestion("success")
	return answerText, nil
}

// repair is the single allowed round trip after an execution failure:
// re-introspect the live schema, ask for one corrected query, run it once.
func (p *Pipeline) repair(ctx context.Context, failedQuery string, execErr error) ([]map[string]any, error) {
	metrics.QueryRepairsTotal.Inc()
	p.Log.Warn().Err(execErr).Str("query", failedQuery).Msg("query failed, attempting repair")

	schema, err := p.Driver.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: schema refresh failed: %v", common.ErrQueryExecution, err)
	}

	repaired, err := p.Synth.Repair(ctx, failedQuery, execErr.Error(), schema)
	if err != nil {
		if errors.Is(err, common.ErrUnsafeQuery) {
			metrics.UnsafeQueriesTotal.Inc()
			return nil, err
		}
		return nil, fmt.Errorf("%w: repair generation failed: %v", common.ErrQueryExecution, err)
	}

	rows, err := p.Driver.ExecuteRead(ctx, repaired, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed again after repair: %v", common.ErrQueryExecution, err)
	}
	return rows, nil
}

// RunCypher executes a caller-typed read statement directly, bypassing
// synthesis, and returns the rows as a bullet list. Writes are refused by the
// read transaction.
func (p *Pipeline) RunCypher(ctx context.Context, statement string) (string, error) {
	rows, err := p.Driver.ExecuteRead(ctx, statement, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrQueryExecution, err)
	}
	return common.FormatRecords(rows), nil
}

// Snapshot returns a bounded view of the graph for visualization.
func (p *Pipeline) Snapshot(ctx context.Context, limit int) (model.GraphSnapshot, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return p.Driver.Snapshot(ctx, limit)
}

// Apology maps a pipeline failure to a user-facing message, keeping raw
// driver and transport errors out of chat responses. "No data found" never
// arrives here; an empty row set is answered normally.
func Apology(err error) string {
	switch {
	case errors.Is(err, common.ErrQueryExecution):
		return "I encountered an issue while querying the knowledge graph database. Please try again later."
	case errors.Is(err, common.ErrUnsafeQuery):
		return "I wasn't able to produce a safe read-only query for that question. Could you please rephrase it?"
	case errors.Is(err, common.ErrService):
		return "I'm having trouble reaching a backend service right now. Please try again in a moment."
	default:
		return "I wasn't able to translate your question into a valid query for the knowledge graph. Could you please try rephrasing it, perhaps being more specific?"
	}
}
