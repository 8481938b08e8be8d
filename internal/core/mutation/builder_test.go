package mutation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/medgraph/internal/core/common"
	"github.com/medassist/medgraph/internal/core/model"
)

func sampleRecord() *model.PatientRecord {
	return &model.PatientRecord{
		Patient: model.Patient{
			Name:        "Jane Doe",
			DateOfBirth: "1980-02-01",
			Sex:         "female",
			ExtractedID: "HOS12345678",
		},
		Conditions: []model.Condition{{Name: "Migraines"}},
		Allergies:  []model.Allergy{{Allergen: "Sulfa Drugs", Reaction: "hives"}},
	}
}

func TestBuild(t *testing.T) {
	m, err := Build(sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, MRNProperty, m.IDProperty)
	assert.Contains(t, m.Statement, "MERGE (p:Patient {mrn: $patient_id})")
	assert.Contains(t, m.Statement, "ON CREATE SET p = $patient_props, p.createdAt = timestamp()")
	assert.Contains(t, m.Statement, "ON MATCH SET p += $patient_props, p.lastUpdatedAt = timestamp()")
	assert.Contains(t, m.Statement, "MERGE (n:Condition {name: item.key})")
	assert.Contains(t, m.Statement, "MERGE (p)-[r:HAS_CONDITION]->(n)")
	assert.Contains(t, m.Statement, "MERGE (n:Allergy {allergen: item.key})")
	assert.Contains(t, m.Statement, "MERGE (p)-[r:HAS_ALLERGY]->(n)")
	assert.Contains(t, m.Statement, "WITH DISTINCT p")
	assert.Contains(t, m.Statement, "RETURN p.mrn AS patientId")

	assert.Equal(t, "HOS12345678", m.Params["patient_id"])

	props, ok := m.Params["patient_props"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", props["name"])
	assert.Equal(t, "HOS12345678", props["mrn"])
	assert.NotContains(t, props, "patientId", "the two identity schemes never mix")

	allergies, ok := m.Params["allergies"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, allergies, 1)
	assert.Equal(t, "Sulfa Drugs", allergies[0]["key"])
	assert.Equal(t, map[string]any{"reaction": "hives"}, allergies[0]["props"])
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := Build(sampleRecord())
	require.NoError(t, err)
	second, err := Build(sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, first.Statement, second.Statement)
	assert.Equal(t, first.Params, second.Params)
}

func TestBuild_AssignedIdentity(t *testing.T) {
	record := &model.PatientRecord{
		Patient: model.Patient{Name: "John Smith", PatientID: "record_0042"},
	}

	m, err := Build(record)
	require.NoError(t, err)

	assert.Equal(t, PatientIDProperty, m.IDProperty)
	assert.Contains(t, m.Statement, "MERGE (p:Patient {patientId: $patient_id})")
	assert.Contains(t, m.Statement, "RETURN p.patientId AS patientId")

	// The assigned identifier is also stored as a regular property so it
	// survives a later ON MATCH overwrite of $patient_props.
	props := m.Params["patient_props"].(map[string]any)
	assert.Equal(t, "record_0042", props["patientId"])
}

// ON CREATE SET p = $patient_props replaces every property on the node,
// including the one the MERGE pattern just set. The prop map must therefore
// carry the merge key itself, for both identity schemes; otherwise the created
// node loses its identity and a re-ingestion of the same patient can never
// match it.
func TestBuild_MergeKeySurvivesCreation(t *testing.T) {
	withMRN, err := Build(sampleRecord())
	require.NoError(t, err)
	assert.Contains(t, withMRN.Statement, "ON CREATE SET p = $patient_props")
	props := withMRN.Params["patient_props"].(map[string]any)
	assert.Equal(t, "HOS12345678", props["mrn"], "patient_props must carry the mrn")

	withAssigned, err := Build(&model.PatientRecord{
		Patient: model.Patient{Name: "John Smith", PatientID: "record_0042"},
	})
	require.NoError(t, err)
	props = withAssigned.Params["patient_props"].(map[string]any)
	assert.Equal(t, "record_0042", props["patientId"], "patient_props must carry the patientId")
}

func TestBuild_MissingIdentity(t *testing.T) {
	_, err := Build(&model.PatientRecord{Patient: model.Patient{Name: "Nameless"}})

	assert.ErrorIs(t, err, common.ErrIdentity)
}

func TestBuild_SkipsEntriesWithoutKeys(t *testing.T) {
	record := sampleRecord()
	record.Conditions = []model.Condition{{Name: "  "}, {Name: ""}}
	record.Medications = []model.Medication{{Name: "lisinopril", Dosage: "10mg"}}

	m, err := Build(record)
	require.NoError(t, err)

	assert.NotContains(t, m.Statement, "UNWIND $conditions", "empty-keyed category is omitted entirely")
	assert.NotContains(t, m.Params, "conditions")

	meds := m.Params["medications"].([]map[string]any)
	require.Len(t, meds, 1)
	assert.Equal(t, "Lisinopril", meds[0]["key"], "merge keys are title-cased")
}

func TestBuild_CleansRelationshipProps(t *testing.T) {
	record := sampleRecord()
	record.Allergies = []model.Allergy{{Allergen: "Penicillin"}}
	record.Medications = []model.Medication{{Name: "Metformin", Dosage: "500mg", Frequency: " "}}

	m, err := Build(record)
	require.NoError(t, err)

	allergies := m.Params["allergies"].([]map[string]any)
	assert.Empty(t, allergies[0]["props"], "absent attributes are dropped, not bound as empty strings")

	meds := m.Params["medications"].([]map[string]any)
	assert.Equal(t, map[string]any{"dosage": "500mg"}, meds[0]["props"])
}

func TestBuild_DatedSingletons(t *testing.T) {
	hr := 72
	hba1c := 5.6
	record := sampleRecord()
	record.Vitals = &model.VitalSigns{Date: "2024-05-01", BloodPressure: "120/80", HeartRate: &hr}
	record.LabResults = &model.LabResult{Date: "2024-05-01", HbA1c: &hba1c}

	m, err := Build(record)
	require.NoError(t, err)

	assert.Contains(t, m.Statement, "MERGE (v:VitalSign {patientId: $patient_id, date: $vitals.date})")
	assert.Contains(t, m.Statement, "MERGE (p)-[:HAS_VITAL_SIGNS]->(v)")
	assert.Contains(t, m.Statement, "MERGE (l:LabResult {patientId: $patient_id, date: $lab_results.date})")
	assert.Contains(t, m.Statement, "MERGE (p)-[:HAS_LAB_RESULT]->(l)")

	vitals := m.Params["vitals"].(map[string]any)
	assert.Equal(t, "2024-05-01", vitals["date"])
	vprops := vitals["props"].(map[string]any)
	assert.Equal(t, 72, vprops["heartRate"])
	assert.NotContains(t, vprops, "date", "the date is a merge key, not an attribute")

	labs := m.Params["lab_results"].(map[string]any)
	lprops := labs["props"].(map[string]any)
	assert.Equal(t, 5.6, lprops["hba1c"])
}

func TestBuild_VitalsWithoutDateSkipped(t *testing.T) {
	record := sampleRecord()
	record.Vitals = &model.VitalSigns{BloodPressure: "120/80"}

	m, err := Build(record)
	require.NoError(t, err)

	assert.NotContains(t, m.Statement, "VitalSign")
	assert.NotContains(t, m.Params, "vitals")
}
