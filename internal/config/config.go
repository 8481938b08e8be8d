package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Prompts override the compiled-in defaults of the individual engines.
// Each is a fmt format string; see the engine packages for the expected verbs.
type Prompts struct {
	Extraction string `toml:"extraction"`
	Query      string `toml:"query"`
	Repair     string `toml:"repair"`
	Answer     string `toml:"answer"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type AnswerConfig struct {
	// MaxResultChars caps the serialized row set handed to the model.
	MaxResultChars int `toml:"max_result_chars"`
}

type Config struct {
	LLM     LLMConfig    `toml:"llm"`
	Neo4j   Neo4jConfig  `toml:"neo4j"`
	Prompts Prompts      `toml:"prompts"`
	Answer  AnswerConfig `toml:"answer"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Neo4j.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Neo4j.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		c.Neo4j.Database = v
	}
}

// Default returns a config usable without a file, for tools and tests.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
		Answer: AnswerConfig{MaxResultChars: 4000},
	}
}
