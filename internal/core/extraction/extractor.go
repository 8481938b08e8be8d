package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medassist/medgraph/internal/core/common"
	"github.com/medassist/medgraph/internal/core/model"
	"github.com/medassist/medgraph/internal/llm"
)

// DefaultPrompt fixes the output contract: field names, nesting, date format
// and title-case normalization. Parsing is still validated after the call;
// the prompt is an instruction, not a guarantee.
const DefaultPrompt = `You are a medical data extraction assistant. Your task is to read the provided unstructured medical record text and extract key information about the patient, their conditions, medications, allergies, procedures, reported symptoms, and any dated vital signs or lab results.

Format your output STRICTLY as a JSON object containing the following keys:
- "patient": An object with "name", "dateOfBirth" (YYYY-MM-DD format where possible, otherwise as text), and "sex". If a Medical Record Number (MRN) or other unique patient identifier is explicitly mentioned, include it as "extractedId".
- "conditions": A list of objects, each with "name" (normalized title case) and optionally "diagnosisDate" (YYYY-MM-DD).
- "medications": A list of objects, each with "name" (normalized title case) and optionally "dosage", "frequency", and "startDate" (YYYY-MM-DD).
- "allergies": A list of objects, each with "allergen" (normalized title case) and optionally "reaction".
- "procedures": A list of objects, each with "name" (normalized title case) and optionally "procedureDate" (YYYY-MM-DD).
- "symptoms": A list of objects, each with "name" (normalized title case) and optionally "reportDate" (YYYY-MM-DD), "severity".
- "vitals": Only if the record contains a dated set of vital signs: an object with "date" (YYYY-MM-DD) and optionally "bloodPressure", "heartRate", "respiratoryRate", "temperature", "weight", "height".
- "lab_results": Only if the record contains dated laboratory results: an object with "date" (YYYY-MM-DD) and optionally "hba1c", "fastingGlucose", "creatinine", "wbcCount", "serumSodium".

If information for a category is not present, provide an empty list (e.g., "allergies": []). Omit "vitals" and "lab_results" entirely when absent.
If specific properties like dates or dosage are not mentioned for an item, omit them from that item's object.
Use standard medical terminology where appropriate (e.g., 'Hypertension' instead of 'high blood pressure').
Ensure the output is a single, valid JSON object. Do not include any explanations or text outside the JSON structure.`

const userPromptFormat = "Medical Record Text:\n---\n%s\n---\n\nJSON Output:"

type Extractor struct {
	LLM    llm.LLMClient
	Prompt string

	// UUIDGenerator is swappable in tests.
	UUIDGenerator func() string
}

func NewExtractor(llmClient llm.LLMClient, prompt string) *Extractor {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Extractor{
		LLM:           llmClient,
		Prompt:        prompt,
		UUIDGenerator: func() string { return uuid.New().String() },
	}
}

// Extract turns raw record text into a validated PatientRecord. sourceHint is
// a caller-supplied identity fallback (typically the file name stem), used
// only when the text carries no identifier of its own. On success the record
// always has a non-empty patient identity.
func (e *Extractor) Extract(ctx context.Context, text, sourceHint string) (*model.PatientRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("record text is empty")
	}

	response, err := e.LLM.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: e.Prompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(userPromptFormat, text)},
		},
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrService, err)
	}

	record, err := common.ParseJSON[model.PatientRecord](response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}
	if record.Patient.Name == "" && record.Patient.ExtractedID == "" {
		return nil, fmt.Errorf("%w: response carries no patient", common.ErrExtraction)
	}

	e.normalize(&record, sourceHint)
	return &record, nil
}

// normalize enforces the identity post-condition and defensive title casing
// of merge-key fields. Identity priority: extracted id, then the source hint,
// then a generated UUID. Never left blank.
func (e *Extractor) normalize(record *model.PatientRecord, sourceHint string) {
	record.Patient.ExtractedID = strings.TrimSpace(record.Patient.ExtractedID)
	if record.Patient.ExtractedID == "" {
		hint := strings.TrimSpace(sourceHint)
		if hint != "" {
			record.Patient.PatientID = hint
		} else {
			record.Patient.PatientID = e.UUIDGenerator()
		}
	}

	for i := range record.Conditions {
		record.Conditions[i].Name = common.TitleCase(record.Conditions[i].Name)
	}
	for i := range record.Medications {
		record.Medications[i].Name = common.TitleCase(record.Medications[i].Name)
	}
	for i := range record.Allergies {
		record.Allergies[i].Allergen = common.TitleCase(record.Allergies[i].Allergen)
	}
	for i := range record.Procedures {
		record.Procedures[i].Name = common.TitleCase(record.Procedures[i].Name)
	}
	for i := range record.Symptoms {
		record.Symptoms[i].Name = common.TitleCase(record.Symptoms[i].Name)
	}
}
