package model

// PatientRecord is the fixed structure the extraction step must produce and the
// mutation builder consumes. Field names and nesting match the extraction
// prompt exactly; dates are YYYY-MM-DD strings, entity names title case.
type PatientRecord struct {
	Patient     Patient      `json:"patient"`
	Conditions  []Condition  `json:"conditions"`
	Medications []Medication `json:"medications"`
	Allergies   []Allergy    `json:"allergies"`
	Procedures  []Procedure  `json:"procedures"`
	Symptoms    []Symptom    `json:"symptoms"`
	Vitals      *VitalSigns  `json:"vitals,omitempty"`
	LabResults  *LabResult   `json:"lab_results,omitempty"`
}

// Patient identity resolution: ExtractedID (an MRN or similar externally
// meaningful identifier) wins; otherwise PatientID is assigned by the extractor
// from the source hint or a generated UUID. The two are stored under different
// graph properties and never mixed.
type Patient struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Sex         string `json:"sex,omitempty"`
	ExtractedID string `json:"extractedId,omitempty"`
	PatientID   string `json:"-"`
}

type Condition struct {
	Name          string `json:"name"`
	DiagnosisDate string `json:"diagnosisDate,omitempty"`
}

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	StartDate string `json:"startDate,omitempty"`
}

type Allergy struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction,omitempty"`
}

type Procedure struct {
	Name          string `json:"name"`
	ProcedureDate string `json:"procedureDate,omitempty"`
}

type Symptom struct {
	Name       string `json:"name"`
	ReportDate string `json:"reportDate,omitempty"`
	Severity   string `json:"severity,omitempty"`
}

// VitalSigns is a dated singleton: one node per patient per date.
type VitalSigns struct {
	Date            string   `json:"date"`
	BloodPressure   string   `json:"bloodPressure,omitempty"`
	HeartRate       *int     `json:"heartRate,omitempty"`
	RespiratoryRate *int     `json:"respiratoryRate,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	Height          *float64 `json:"height,omitempty"`
}

// LabResult is a dated singleton: one node per patient per date.
type LabResult struct {
	Date           string   `json:"date"`
	HbA1c          *float64 `json:"hba1c,omitempty"`
	FastingGlucose *int     `json:"fastingGlucose,omitempty"`
	Creatinine     *float64 `json:"creatinine,omitempty"`
	WBCCount       string   `json:"wbcCount,omitempty"`
	SerumSodium    *int     `json:"serumSodium,omitempty"`
}
