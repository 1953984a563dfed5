package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/record-crew/recordai/api/handlers"
	"github.com/record-crew/recordai/config"
	"github.com/record-crew/recordai/internal/metrics"
	"github.com/record-crew/recordai/pipeline"
	"github.com/record-crew/recordai/provider/chat"
	"github.com/record-crew/recordai/provider/image"
	"github.com/record-crew/recordai/provider/transcription"
	"go.uber.org/zap"
)

// buildHandler assembles the provider clients, pipeline, handlers and
// middleware chain into the root handler.
func buildHandler(ctx context.Context, cfg *config.Config, logger *zap.Logger) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector("recordai", registry, logger)

	transcriber := transcription.NewClient(transcription.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.TranscriptionModel,
		Timeout: cfg.OpenAI.TranscriptionTimeout,
		OnRetry: collector.RecordRetry("openai-stt"),
	}, logger)

	chatClient := chat.NewClient(chat.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Timeout: cfg.OpenAI.ChatTimeout,
		OnRetry: collector.RecordRetry("openai-chat"),
	}, logger)

	imageClient := image.NewClient(image.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.ImageModel,
		Timeout:        cfg.OpenAI.ImageTimeout,
		PromptMaxChars: cfg.OpenAI.ImagePromptMaxChars,
		OnRetry:        collector.RecordRetry("openai-image"),
	}, logger)

	orchestrator := pipeline.New(transcriber, chatClient, imageClient,
		pipeline.Limits{
			AudioMaxMB:     cfg.OpenAI.WhisperMaxFileMB,
			PromptMaxChars: cfg.OpenAI.ImagePromptMaxChars,
		},
		logger,
		pipeline.WithRecorder(collector),
	)

	sttHandler := handlers.NewSttHandler(orchestrator, logger)
	reviewHandler := handlers.NewReviewHandler(orchestrator, logger)
	imageHandler := handlers.NewImageHandler(orchestrator, logger)
	healthHandler := handlers.NewHealthHandler(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /stt/transcribe", sttHandler.HandleTranscribe)
	mux.HandleFunc("POST /review/organize", reviewHandler.HandleOrganize)
	mux.HandleFunc("POST /review/summarize", reviewHandler.HandleSummarize)
	mux.HandleFunc("POST /generate-image", imageHandler.HandleGenerate)
	mux.HandleFunc("GET /health", healthHandler.HandleHealthz)
	mux.HandleFunc("GET /version", healthHandler.HandleVersion(version, buildTime, gitCommit))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	middlewares := []Middleware{
		Recovery(logger),
		RequestID(),
		RequestLogger(logger),
		MetricsMiddleware(collector),
		SecurityHeaders(),
		CORS(cfg.Server.AllowedOrigins),
	}
	if cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares,
			RateLimiter(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}
	middlewares = append(middlewares, JWTAuth(cfg.Auth, logger))

	return Chain(mux, middlewares...)
}
