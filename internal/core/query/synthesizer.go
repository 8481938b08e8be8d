package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/core/common"
	"github.com/medassist/medgraph/internal/core/model"
	"github.com/medassist/medgraph/internal/llm"
)

// DefaultPrompt expects one %s verb: the rendered schema description.
const DefaultPrompt = `You are an expert translator of natural language questions into Neo4j Cypher queries based on the provided schema.
**CRITICAL INSTRUCTIONS:**
1.  **Read-Only:** Generate *read-only* Cypher queries using MATCH, WHERE, RETURN. NEVER use CREATE, MERGE, SET, DELETE, REMOVE.
2.  **Schema Adherence:** Strictly follow the provided schema. Pay close attention to node labels, property names, relationship types, and ESPECIALLY where properties are located (on nodes vs. on relationships).
3.  **Relationship Properties:** When asked for properties like 'dosage', 'frequency', 'startDate', 'reaction', 'procedureDate', 'reportDate', 'severity', you MUST access them from the *relationship variable*. Assign a variable to the relationship in the MATCH pattern (e.g., ` + "`-[r:TAKES_MEDICATION]->`" + `) and return the property from that variable (e.g., ` + "`RETURN r.dosage`" + `). Do NOT try to access these properties from the connected nodes.
4.  **Patient Lookup:**
    *   If a patient MRN (like 'HOS...') or patientId (UUID format) is mentioned, use that for precise lookup: ` + "`MATCH (p:Patient {mrn: 'ID'}) ...` or `MATCH (p:Patient {patientId: 'ID'}) ...`" + `.
    *   If only a name is given (e.g., "Johnathan Doe"), use ` + "`MATCH (p:Patient {name: 'Name'}) ...`" + `. Remember names might not be unique.
5.  **Normalization:** Normalize key entity names found in the user prompt (Conditions, Medications, Allergens, Procedures, Symptoms) to **Title Case** before using them in the Cypher query WHERE clause or property matching. For example, if the user asks about "migraine" or "SULFA drugs", use ` + "`name: 'Migraines'` or `allergen: 'Sulfa Drugs'`" + ` in the query, since these are stored in Title Case.
6.  **Return Specificity:** Return the specific properties requested or implied by the question. If asked about a patient, return identifying info (name, mrn, patientId if available). If asked about relationships, return info from both connected nodes and relevant relationship properties.
7.  **Clarity:** Use explicit node labels (` + "`p:Patient`, `c:Condition`" + `, etc.).
8.  **Output:** Output *only* the raw Cypher query string. No explanations, no ` + "```cypher```" + ` tags.

**Schema:**
%s`

// DefaultRepairPrompt expects three %s verbs: the failed query, the failure
// message and the refreshed schema description.
const DefaultRepairPrompt = `The following Cypher query failed to execute:

%s

Database error: %s

The live schema is:
%s

Correct only the Cypher statement so it executes against this schema. It must remain strictly read-only (MATCH, WHERE, RETURN). Output only the corrected raw Cypher query string, no fences or explanation.`

// canonicalSchema documents where properties live; live introspection only
// reports labels and relationship types, not placement, and placement is the
// thing query generation most often gets wrong.
const canonicalSchema = `Nodes:
- Patient (Properties: name<String>, mrn<String>, patientId<String>, dateOfBirth<String>, sex<String>)
- Condition (Properties: name<String>)
- Medication (Properties: name<String>)
- Allergy (Properties: allergen<String>)
- Procedure (Properties: name<String>)
- Symptom (Properties: name<String>)
- VitalSign (Properties: patientId<String>, date<String>, bloodPressure<String>, heartRate<Integer>, respiratoryRate<Integer>, temperature<Float>, weight<Float>, height<Float>)
- LabResult (Properties: patientId<String>, date<String>, hba1c<Float>, fastingGlucose<Integer>, creatinine<Float>, wbcCount<String>, serumSodium<Integer>)

Relationships:
- (Patient)-[r:HAS_CONDITION {diagnosisDate: String}]->(Condition) # Property is ON the relationship 'r'
- (Patient)-[r:TAKES_MEDICATION {dosage: String, frequency: String, startDate: String}]->(Medication) # Properties are ON the relationship 'r'
- (Patient)-[r:HAS_ALLERGY {reaction: String}]->(Allergy) # Property 'reaction' is ON the relationship 'r'
- (Patient)-[r:UNDERWENT_PROCEDURE {procedureDate: String}]->(Procedure) # Property 'procedureDate' is ON the relationship 'r'
- (Patient)-[r:REPORTS_SYMPTOM {reportDate: String, severity: String}]->(Symptom) # Properties are ON the relationship 'r'
- (Patient)-[:HAS_VITAL_SIGNS]->(VitalSign) # Measured values are on the VitalSign node
- (Patient)-[:HAS_LAB_RESULT]->(LabResult) # Measured values are on the LabResult node`

// modificationScan rejects any data-modifying clause, whatever the
// surrounding text. The generation prompt already forbids them; this is
// verification, not trust.
var modificationScan = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP)\b`)

type Synthesizer struct {
	LLM          llm.LLMClient
	Prompt       string
	RepairPrompt string
}

func NewSynthesizer(llmClient llm.LLMClient, prompt, repairPrompt string) *Synthesizer {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if repairPrompt == "" {
		repairPrompt = DefaultRepairPrompt
	}
	return &Synthesizer{
		LLM:          llmClient,
		Prompt:       prompt,
		RepairPrompt: repairPrompt,
	}
}

// Synthesize produces one read-only Cypher query for the question, grounded
// in the live schema. history carries prior question/answer turns so
// follow-up questions resolve references.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, schema model.GraphSchema, history []llm.Message) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(s.Prompt, describeSchema(schema))},
	}
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Generate a Cypher query for the following question, carefully following ALL instructions above: %s", question),
	})

	return s.generate(ctx, messages)
}

// Repair asks for one corrected query after an execution failure, against a
// freshly introspected schema.
func (s *Synthesizer) Repair(ctx context.Context, failedQuery, failureMsg string, schema model.GraphSchema) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(s.RepairPrompt, failedQuery, failureMsg, describeSchema(schema))},
	}
	return s.generate(ctx, messages)
}

func (s *Synthesizer) generate(ctx context.Context, messages []llm.Message) (string, error) {
	response, err := s.LLM.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrService, err)
	}

	cypher := common.CleanCypher(response)
	if cypher == "" {
		return "", fmt.Errorf("%w: model returned an empty query", common.ErrService)
	}

	if m := modificationScan.FindString(cypher); m != "" {
		return "", fmt.Errorf("%w: found %q in %q", common.ErrUnsafeQuery, m, cypher)
	}

	upper := strings.ToUpper(cypher)
	if !strings.HasPrefix(upper, "MATCH") && !strings.HasPrefix(upper, "OPTIONAL MATCH") {
		// Legitimate read patterns can start elsewhere (WITH, CALL, UNWIND),
		// so this is a confidence signal, not a rejection.
		log.Warn().Str("query", cypher).Msg("generated query does not start with MATCH")
	}

	return cypher, nil
}

func describeSchema(schema model.GraphSchema) string {
	desc := "Knowledge Graph Schema:\n" + canonicalSchema
	if len(schema.Labels) > 0 {
		desc += "\n\nNode labels currently present in the database: " + strings.Join(schema.Labels, ", ")
	}
	if len(schema.RelationshipTypes) > 0 {
		desc += "\nRelationship types currently present in the database: " + strings.Join(schema.RelationshipTypes, ", ")
	}
	return desc
}
