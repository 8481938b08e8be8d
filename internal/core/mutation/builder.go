package mutation

import (
	"fmt"
	"strings"

	"github.com/medassist/medgraph/internal/core/common"
	"github.com/medassist/medgraph/internal/core/model"
)

// Mutation is a ready-to-run idempotent upsert: one statement, fully bound
// parameters, and the property name the patient identity was merged under.
type Mutation struct {
	Statement  string
	Params     map[string]any
	IDProperty string
}

// Identity property names. Externally meaningful identifiers (an MRN) and
// generated/hint identifiers live under different properties so the two
// schemes can never collide on the same key.
const (
	MRNProperty       = "mrn"
	PatientIDProperty = "patientId"
)

// Build turns a PatientRecord into a single parameterized MERGE statement.
// Pure function, no I/O; building twice from the same record yields identical
// statement text and parameter structure. Entries missing their identity
// field are dropped, and relationship attributes are cleaned of null/empty
// values before binding so a re-ingestion can never blank out a previously
// stored attribute (SET r += {} is a no-op).
func Build(record *model.PatientRecord) (*Mutation, error) {
	var idProp, patientID string
	switch {
	case record.Patient.ExtractedID != "":
		idProp = MRNProperty
		patientID = record.Patient.ExtractedID
	case record.Patient.PatientID != "":
		idProp = PatientIDProperty
		patientID = record.Patient.PatientID
	default:
		return nil, fmt.Errorf("%w: record has neither an extracted nor an assigned identifier", common.ErrIdentity)
	}

	params := map[string]any{"patient_id": patientID}

	patientProps := map[string]any{}
	putNonEmpty(patientProps, "name", record.Patient.Name)
	putNonEmpty(patientProps, "dateOfBirth", record.Patient.DateOfBirth)
	putNonEmpty(patientProps, "sex", record.Patient.Sex)
	// ON CREATE uses the full-replace SET form, which drops every property
	// not in the map. The merge key has to ride along or the created node
	// would lose its identity and a later ingestion of the same patient
	// could never match it.
	patientProps[idProp] = patientID
	params["patient_props"] = patientProps

	parts := []string{
		fmt.Sprintf("MERGE (p:Patient {%s: $patient_id})", idProp),
		"ON CREATE SET p = $patient_props, p.createdAt = timestamp()",
		"ON MATCH SET p += $patient_props, p.lastUpdatedAt = timestamp()",
	}

	appendCategory(&parts, params, "conditions", "Condition", "HAS_CONDITION", "name",
		conditionEntries(record.Conditions))
	appendCategory(&parts, params, "medications", "Medication", "TAKES_MEDICATION", "name",
		medicationEntries(record.Medications))
	appendCategory(&parts, params, "allergies", "Allergy", "HAS_ALLERGY", "allergen",
		allergyEntries(record.Allergies))
	appendCategory(&parts, params, "procedures", "Procedure", "UNDERWENT_PROCEDURE", "name",
		procedureEntries(record.Procedures))
	appendCategory(&parts, params, "symptoms", "Symptom", "REPORTS_SYMPTOM", "name",
		symptomEntries(record.Symptoms))

	if record.Vitals != nil && record.Vitals.Date != "" {
		params["vitals"] = map[string]any{
			"date":  record.Vitals.Date,
			"props": vitalProps(record.Vitals),
		}
		parts = append(parts,
			"WITH p",
			"MERGE (v:VitalSign {patientId: $patient_id, date: $vitals.date})",
			"SET v += $vitals.props",
			"MERGE (p)-[:HAS_VITAL_SIGNS]->(v)",
		)
	}

	if record.LabResults != nil && record.LabResults.Date != "" {
		params["lab_results"] = map[string]any{
			"date":  record.LabResults.Date,
			"props": labProps(record.LabResults),
		}
		parts = append(parts,
			"WITH p",
			"MERGE (l:LabResult {patientId: $patient_id, date: $lab_results.date})",
			"SET l += $lab_results.props",
			"MERGE (p)-[:HAS_LAB_RESULT]->(l)",
		)
	}

	// UNWIND fans the patient row out per item; collapse before returning.
	parts = append(parts,
		"WITH DISTINCT p",
		fmt.Sprintf("RETURN p.%s AS patientId", idProp),
	)

	return &Mutation{
		Statement:  strings.Join(parts, "\n"),
		Params:     params,
		IDProperty: idProp,
	}, nil
}

// entry is one list item: the normalized merge key and the cleaned
// per-patient attributes destined for the relationship, never the shared node.
type entry struct {
	key   string
	props map[string]any
}

func appendCategory(parts *[]string, params map[string]any, paramName, label, relType, keyProp string, entries []entry) {
	if len(entries) == 0 {
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{"key": e.key, "props": e.props})
	}
	params[paramName] = items

	*parts = append(*parts,
		"WITH p",
		fmt.Sprintf("UNWIND $%s AS item", paramName),
		fmt.Sprintf("MERGE (n:%s {%s: item.key})", label, keyProp),
		fmt.Sprintf("MERGE (p)-[r:%s]->(n)", relType),
		"SET r += item.props",
	)
}

func conditionEntries(list []model.Condition) []entry {
	var out []entry
	for _, c := range list {
		key := common.TitleCase(c.Name)
		if key == "" {
			continue
		}
		props := map[string]any{}
		putNonEmpty(props, "diagnosisDate", c.DiagnosisDate)
		out = append(out, entry{key: key, props: props})
	}
	return out
}

func medicationEntries(list []model.Medication) []entry {
	var out []entry
	for _, m := range list {
		key := common.TitleCase(m.Name)
		if key == "" {
			continue
		}
		props := map[string]any{}
		putNonEmpty(props, "dosage", m.Dosage)
		putNonEmpty(props, "frequency", m.Frequency)
		putNonEmpty(props, "startDate", m.StartDate)
		out = append(out, entry{key: key, props: props})
	}
	return out
}

func allergyEntries(list []model.Allergy) []entry {
	var out []entry
	for _, a := range list {
		key := common.TitleCase(a.Allergen)
		if key == "" {
			continue
		}
		props := map[string]any{}
		putNonEmpty(props, "reaction", a.Reaction)
		out = append(out, entry{key: key, props: props})
	}
	return out
}

func procedureEntries(list []model.Procedure) []entry {
	var out []entry
	for _, p := range list {
		key := common.TitleCase(p.Name)
		if key == "" {
			continue
		}
		props := map[string]any{}
		putNonEmpty(props, "procedureDate", p.ProcedureDate)
		out = append(out, entry{key: key, props: props})
	}
	return out
}

func symptomEntries(list []model.Symptom) []entry {
	var out []entry
	for _, s := range list {
		key := common.TitleCase(s.Name)
		if key == "" {
			continue
		}
		props := map[string]any{}
		putNonEmpty(props, "reportDate", s.ReportDate)
		putNonEmpty(props, "severity", s.Severity)
		out = append(out, entry{key: key, props: props})
	}
	return out
}

func vitalProps(v *model.VitalSigns) map[string]any {
	props := map[string]any{}
	putNonEmpty(props, "bloodPressure", v.BloodPressure)
	putPtr(props, "heartRate", v.HeartRate)
	putPtr(props, "respiratoryRate", v.RespiratoryRate)
	putPtr(props, "temperature", v.Temperature)
	putPtr(props, "weight", v.Weight)
	putPtr(props, "height", v.Height)
	return props
}

func labProps(l *model.LabResult) map[string]any {
	props := map[string]any{}
	putPtr(props, "hba1c", l.HbA1c)
	putPtr(props, "fastingGlucose", l.FastingGlucose)
	putPtr(props, "creatinine", l.Creatinine)
	putNonEmpty(props, "wbcCount", l.WBCCount)
	putPtr(props, "serumSodium", l.SerumSodium)
	return props
}

func putNonEmpty(m map[string]any, key, value string) {
	if strings.TrimSpace(value) != "" {
		m[key] = value
	}
}

func putPtr[T any](m map[string]any, key string, value *T) {
	if value != nil {
		m[key] = *value
	}
}
