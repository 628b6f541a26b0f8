package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/config"
	"github.com/local/studyai/api/db"
	"github.com/local/studyai/api/genai"
	"github.com/local/studyai/api/handlers"
	"github.com/local/studyai/api/layout"
	"github.com/local/studyai/api/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	shutdown := observability.InitOTel(context.Background(), observability.OtelConfig{
		Enabled:      cfg.OTelEnabled,
		SamplerRatio: cfg.OTelSamplerRatio,
		Endpoint:     cfg.OTelEndpoint,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("OTel shutdown failed")
		}
	}()

	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("Database initialized")

	client, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create generation client")
	}

	renderer := layout.Renderer{}
	if cfg.MindMapFont != "" {
		face, err := layout.LoadFontFace(cfg.MindMapFont, 14)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.MindMapFont).Msg("Mind map font not loaded, using built-in font")
		} else {
			renderer.Face = face
		}
	}

	// Create Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.Use(otelgin.Middleware(observability.ServiceName))

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.New(database, cfg, client, renderer).Register(router)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().
		Str("port", cfg.Port).
		Str("model", client.Model()).
		Msg("Starting study content API server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
