package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/wefun-ai/reddit-radar/deepseek"
	"github.com/wefun-ai/reddit-radar/gemini"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
	"github.com/wefun-ai/reddit-radar/internal/biz/usecase"
	"github.com/wefun-ai/reddit-radar/internal/conf"
	"github.com/wefun-ai/reddit-radar/internal/data"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	wl := conf.LoadWatchlist(cfg.WatchlistPath, logger)

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg, wl, logger)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		if err := repos.Archive.Close(); err != nil {
			logger.Warn("archive close failed", "err", err)
		}
	}()
	if repos.Source == nil {
		logger.Warn("Reddit credentials absent, fetch stage disabled")
	}

	// Initialize classifier providers
	var primary, secondary repo.ClassifierProvider
	if cfg.Gemini.APIKey != "" {
		primary = data.NewGeminiProvider(gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model))
	}
	if cfg.DeepSeek.APIKey != "" {
		secondary = data.NewDeepSeekProvider(deepseek.NewClient(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}

	classifier := usecase.NewBatchClassifier(primary, secondary, usecase.ClassifierConfig{
		ProductName:        cfg.Product.Name,
		ProductDescription: cfg.Product.Description,
		RetryCeiling:       cfg.Pipeline.RetryCeiling,
		BackoffBase:        cfg.Pipeline.BackoffBase,
	}, logger)

	prefilter := usecase.NewPrefilter(wl.ExcludeKeywords, cfg.Pipeline.MaxItemAge, logger)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     repos.Source,
		Queue:      repos.Queue,
		Checkpoint: repos.Checkpoint,
		Notifier:   repos.Notifier,
		Archive:    repos.Archive,
		Prefilter:  prefilter,
		Classifier: classifier,
	}, usecase.PipelineConfig{
		RunSize:    cfg.Pipeline.RunSize,
		ChunkSize:  cfg.Pipeline.ChunkSize,
		ChunkDelay: cfg.Pipeline.ChunkDelay,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Run(ctx); err != nil {
		logger.Error("run aborted", "err", err)
		os.Exit(1)
	}
}
