package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseJSON(t *testing.T) {
	result, err := ParseJSON[payload](`{"name": "test", "count": 3}`)

	require.NoError(t, err)
	assert.Equal(t, "test", result.Name)
	assert.Equal(t, 3, result.Count)
}

func TestParseJSON_SurroundingText(t *testing.T) {
	response := "Here is the extracted data:\n```json\n{\"name\": \"test\", \"count\": 3}\n```\nLet me know if you need anything else."

	result, err := ParseJSON[payload](response)

	require.NoError(t, err)
	assert.Equal(t, "test", result.Name)
}

func TestParseJSON_NoObject(t *testing.T) {
	_, err := ParseJSON[payload]("I'm sorry, I cannot help with that.")

	assert.Error(t, err)
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := ParseJSON[payload](`{"name": "unterminated`)

	assert.Error(t, err)
}

func TestCleanCypher(t *testing.T) {
	cases := map[string]string{
		"MATCH (n) RETURN n":                     "MATCH (n) RETURN n",
		"  MATCH (n) RETURN n\n":                 "MATCH (n) RETURN n",
		"```cypher\nMATCH (n) RETURN n\n```":     "MATCH (n) RETURN n",
		"```\nMATCH (n)\nRETURN n\n```":          "MATCH (n)\nRETURN n",
		"```cypher\nMATCH (n) RETURN n\n```  \n": "MATCH (n) RETURN n",
	}
	for input, want := range cases {
		assert.Equal(t, want, CleanCypher(input))
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Sulfa Drugs", TitleCase("SULFA drugs"))
	assert.Equal(t, "Migraines", TitleCase("migraines"))
	assert.Equal(t, "Type 2 Diabetes", TitleCase("  type 2 diabetes "))
	assert.Equal(t, "", TitleCase("   "))
}

func TestFormatRecords(t *testing.T) {
	rows := []map[string]any{
		{"name": "Jane Doe", "mrn": "HOS12345678"},
		{"name": "John Smith"},
	}

	out := FormatRecords(rows)

	assert.Equal(t, "• mrn = HOS12345678; name = Jane Doe\n• name = John Smith", out)
}

func TestFormatRecords_Empty(t *testing.T) {
	assert.Equal(t, "• No matching data found.", FormatRecords(nil))
}
