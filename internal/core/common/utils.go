package common

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ParseJSON cleans and unmarshals a JSON string into a type T.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr := response

	// Find first '{' and last '}'
	start := -1
	end := -1

	for i, c := range jsonStr {
		if c == '{' {
			start = i
			break
		}
	}
	for i := len(jsonStr) - 1; i >= 0; i-- {
		if c := jsonStr[i]; c == '}' {
			end = i + 1
			break
		}
	}

	if start != -1 && end != -1 && start < end {
		jsonStr = jsonStr[start:end]
	} else if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

// CleanCypher strips markdown fences the model sometimes wraps around a
// generated statement, despite instructions not to.
func CleanCypher(text string) string {
	txt := strings.TrimSpace(text)
	if !strings.HasPrefix(txt, "```") {
		return txt
	}
	lines := strings.Split(txt, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TitleCase normalizes an entity name to the casing used for graph merge keys,
// so "SULFA drugs" and "sulfa drugs" land on the same node.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// FormatRecords turns result rows into a bullet list of key = value pairs,
// human-readable rather than raw JSON.
func FormatRecords(rows []map[string]any) string {
	if len(rows) == 0 {
		return "• No matching data found."
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s = %v", k, row[k]))
		}
		lines = append(lines, "• "+strings.Join(parts, "; "))
	}
	return strings.Join(lines, "\n")
}
