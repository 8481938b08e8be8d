package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	content := `
[llm]
provider = "claude"
model = "claude-sonnet-4-5"
api_key = "sk-test"

[neo4j]
uri = "bolt://graph:7687"
user = "neo4j"
password = "secret"
database = "medgraph"

[prompts]
query = "Custom query prompt: %s"

[answer]
max_result_chars = 2000
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "medgraph", cfg.Neo4j.Database)
	assert.Equal(t, "Custom query prompt: %s", cfg.Prompts.Query)
	assert.Equal(t, 2000, cfg.Answer.MaxResultChars)
	assert.Empty(t, cfg.Prompts.Extraction, "unset prompts stay empty and defer to the compiled-in defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[llm\nbroken"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("NEO4J_PASSWORD", "env-secret")
	t.Setenv("NEO4J_URI", "")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "env-secret", cfg.Neo4j.Password)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI, "empty env vars do not override")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
	assert.Equal(t, 4000, cfg.Answer.MaxResultChars)
}
