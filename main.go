package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subpilot/api"
	"subpilot/asr"
	"subpilot/common"
	"subpilot/config"
	"subpilot/media"
	"subpilot/pipeline"
	"subpilot/session"
	"subpilot/subtitle"
	"subpilot/translate"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	port := flag.String("port", "", "HTTP API port (overrides PORT env var)")
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		log.Fatalf("Failed to create temp dir %s: %v", cfg.TempDir, err)
	}

	ctx := context.Background()

	transcriber, err := buildTranscriber(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to configure speech backend: %v", err)
	}

	translator, err := buildTranslator(cfg)
	if err != nil {
		log.Fatalf("Failed to configure translation backend: %v", err)
	}

	var uploader api.Uploader
	if cfg.S3Bucket != "" {
		store, err := common.NewSRTStore(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("Failed to configure S3 export sink: %v", err)
		}
		uploader = store
		log.Printf("SRT exports will be published to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	} else {
		log.Println("No S3 bucket configured, skipping export sink")
	}

	extractor := media.NewExtractor()
	sessionManager := session.NewManager()
	runner := pipeline.NewRunner(sessionManager, extractor, transcriber, translator, subtitle.DefaultPolicy, cfg.TempDir)

	server := api.NewServer(sessionManager, runner, extractor, uploader, cfg)
	server.Start()

	log.Printf("Speech backend: %s, translation backend: %s", cfg.ASRBackend, cfg.TranslationBackend)
	log.Println("API endpoints available:")
	log.Println("  GET  /health")
	log.Println("  GET  /api/status")
	log.Println("  GET  /api/languages")
	log.Println("  POST /api/videos")
	log.Println("  POST /api/videos/transcribe")
	log.Println("  POST /api/videos/abandon")
	log.Println("  GET  /api/subtitles")
	log.Println("  PUT  /api/subtitles/:index")
	log.Println("  POST /api/subtitles/translate")
	log.Println("  GET  /api/subtitles/export")
	log.Println("  POST /api/subtitles/import")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
		os.Exit(1)
	}

	log.Println("Server stopped")
}

// buildTranscriber wires the configured speech-to-text backend.
func buildTranscriber(ctx context.Context, cfg config.Config) (*asr.Client, error) {
	switch cfg.ASRBackend {
	case config.ASRWhisper:
		provider := asr.NewWhisperProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.WhisperModel, config.TranscribeTimeout)
		return asr.NewClient(provider, config.MaxRetryAttempts, config.RetryBaseDelay), nil
	case config.ASRGoogle:
		provider, err := asr.NewGoogleProvider(ctx, cfg.GoogleCredentialsFile, cfg.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		return asr.NewClient(provider, config.MaxRetryAttempts, config.RetryBaseDelay), nil
	default:
		return nil, fmt.Errorf("unknown speech backend %q", cfg.ASRBackend)
	}
}

// buildTranslator wires the configured translation backend.
func buildTranslator(cfg config.Config) (*translate.Client, error) {
	switch cfg.TranslationBackend {
	case config.TranslateOpenAI:
		provider := translate.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIChatModel, config.TranslateTimeout)
		return translate.NewClient(provider, config.TranslateBatchSize, config.MaxRetryAttempts, config.RetryBaseDelay), nil
	case config.TranslateCohere:
		provider := translate.NewCohereProvider(cfg.CohereAPIKey, cfg.CohereModel, config.TranslateTimeout)
		return translate.NewClient(provider, config.TranslateBatchSize, config.MaxRetryAttempts, config.RetryBaseDelay), nil
	default:
		return nil, fmt.Errorf("unknown translation backend %q", cfg.TranslationBackend)
	}
}
