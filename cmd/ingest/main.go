package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/config"
	"github.com/medassist/medgraph/internal/core"
	"github.com/medassist/medgraph/internal/driver"
	"github.com/medassist/medgraph/internal/llm"
)

// Ingests one unstructured record file into the graph. The file name stem
// serves as the patient identity fallback.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ingest <record-file.txt>")
		os.Exit(1)
	}
	path := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("could not read record file")
	}

	ctx := context.Background()

	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Neo4j")
	}
	defer d.Close(ctx)

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM client")
	}

	pipeline := core.NewPipeline(d, llmClient, cfg)
	if err := pipeline.BuildIndices(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to build indices")
	}

	hint := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	patientID, err := pipeline.Ingest(ctx, string(content), hint)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	fmt.Printf("Stored record for patient %s\n", patientID)
}
