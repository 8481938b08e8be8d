package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/config"
	"github.com/medassist/medgraph/internal/core"
	"github.com/medassist/medgraph/internal/driver"
	"github.com/medassist/medgraph/internal/llm"
)

// Interactive loop over the knowledge graph. Prefix a message with "cypher:"
// to run a raw read statement directly.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
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
	conv := core.NewConversation()

	fmt.Println("MedGraph ready. Ask your question (type 'exit' to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if q := strings.ToLower(question); q == "exit" || q == "quit" {
			fmt.Println("MedGraph: Goodbye!")
			break
		}

		var response string
		if strings.HasPrefix(strings.ToLower(question), "cypher:") {
			response, err = pipeline.RunCypher(ctx, strings.TrimSpace(question[len("cypher:"):]))
		} else {
			response, err = pipeline.Ask(ctx, conv, question)
		}
		if err != nil {
			response = core.Apology(err)
		}

		fmt.Printf("MedGraph: %s\n\n", response)
	}
}
