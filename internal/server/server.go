package server

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/config"
	"github.com/medassist/medgraph/internal/core"
	"github.com/medassist/medgraph/internal/driver"
	"github.com/medassist/medgraph/internal/llm"
)

// rawQueryPrefix bypasses query synthesis: the rest of the message is
// executed directly as a read statement.
const rawQueryPrefix = "cypher:"

type Server struct {
	Pipeline *core.Pipeline
	Conv     *core.Conversation
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	p := core.NewPipeline(d, llmClient, cfg)
	if err := p.BuildIndices(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to build indices")
	}

	return &Server{
		Pipeline: p,
		Conv:     core.NewConversation(),
	}, nil
}

func (s *Server) Close(ctx context.Context) error {
	return s.Pipeline.Driver.Close(ctx)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/records", s.IngestRecord)
	r.POST("/records/upload", s.UploadRecord)
	r.POST("/chat", s.Chat)
	r.GET("/graph/snapshot", s.GraphSnapshot)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type IngestRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
}

func (s *Server) IngestRecord(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	patientID, err := s.Pipeline.Ingest(c.Request.Context(), req.Text, req.Source)
	if err != nil {
		log.Error().Err(err).Msg("ingestion failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to process record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "patient_id": patientID})
}

func (s *Server) UploadRecord(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}

	// The file name stem is the identity fallback when the record text
	// carries no identifier of its own.
	hint := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))

	patientID, err := s.Pipeline.Ingest(c.Request.Context(), string(content), hint)
	if err != nil {
		log.Error().Err(err).Str("file", file.Filename).Msg("upload ingestion failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to process record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "patient_id": patientID})
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if strings.HasPrefix(strings.ToLower(message), rawQueryPrefix) {
		statement := strings.TrimSpace(message[len(rawQueryPrefix):])
		response, err := s.Pipeline.RunCypher(c.Request.Context(), statement)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"response": core.Apology(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": response})
		return
	}

	answer, err := s.Pipeline.Ask(c.Request.Context(), s.Conv, message)
	if err != nil {
		log.Error().Err(err).Str("question", message).Msg("question failed")
		c.JSON(http.StatusOK, gin.H{"response": core.Apology(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

func (s *Server) GraphSnapshot(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	snapshot, err := s.Pipeline.Snapshot(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("snapshot failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch graph snapshot"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
