package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/config"
	"github.com/medassist/medgraph/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfgPath).Msg("could not load config file, using defaults")
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	ctx := context.Background()
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}
	defer srv.Close(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := srv.SetupRouter()
	log.Info().Str("port", port).Msg("starting server")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
