package conf

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Gemini is the primary classifier provider
	Gemini GeminiConfig

	// DeepSeek is the secondary classifier provider
	DeepSeek DeepSeekConfig

	// Feishu notification channel
	Feishu FeishuConfig

	// Reddit content source (optional; absent means queue-only runs)
	Reddit RedditConfig

	// Storage paths
	Storage StorageConfig

	// Pipeline tunables
	Pipeline PipelineConfig

	// Product identity injected into the classification prompt
	Product ProductConfig

	// WatchlistPath points at the YAML watchlist file
	WatchlistPath string

	// Debug mode
	Debug bool
}

// GeminiConfig contains Gemini configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// DeepSeekConfig contains DeepSeek configuration
type DeepSeekConfig struct {
	APIKey string
	Model  string
}

// FeishuConfig contains Feishu webhook configuration
type FeishuConfig struct {
	WebhookURL string
}

// RedditConfig contains Reddit API credentials
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Enabled reports whether the source adapter can be constructed.
func (c RedditConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// StorageConfig contains on-disk store locations
type StorageConfig struct {
	DataDir string
}

// QueuePath is the pending-queue JSON file.
func (c StorageConfig) QueuePath() string {
	return filepath.Join(c.DataDir, "pending_queue.json")
}

// CheckpointPath is the processed-ids JSON file.
func (c StorageConfig) CheckpointPath() string {
	return filepath.Join(c.DataDir, "processed_posts.json")
}

// ArchivePath is the notified-item archive database.
func (c StorageConfig) ArchivePath() string {
	return filepath.Join(c.DataDir, "archive.db")
}

// PipelineConfig contains run-shape tunables
type PipelineConfig struct {
	RunSize       int           // entries pulled per run
	ChunkSize     int           // items per classification request
	ChunkDelay    time.Duration // pause between chunks
	RetryCeiling  int           // primary attempts before failover
	BackoffBase   time.Duration // quota backoff unit (base * attempt)
	MaxItemAge    time.Duration // prefilter age cutoff
	CheckpointCap int           // max processed ids retained
}

// ProductConfig identifies the product the classifier scouts for
type ProductConfig struct {
	Name        string
	Description string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	watchlistPath := os.Getenv("WATCHLIST_PATH")
	if watchlistPath == "" {
		watchlistPath = "watchlist.yaml"
	}

	productName := os.Getenv("PRODUCT_NAME")
	if productName == "" {
		productName = "wefun.ai"
	}
	productDesc := os.Getenv("PRODUCT_DESCRIPTION")
	if productDesc == "" {
		productDesc = "an AI game-creation tool and UGC platform where game logic is built from prompts"
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash-lite"
	}
	deepseekModel := os.Getenv("DEEPSEEK_MODEL")
	if deepseekModel == "" {
		deepseekModel = "deepseek-chat"
	}

	return &Config{
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  geminiModel,
		},
		DeepSeek: DeepSeekConfig{
			APIKey: os.Getenv("DEEPSEEK_API_KEY"),
			Model:  deepseekModel,
		},
		Feishu: FeishuConfig{
			WebhookURL: os.Getenv("FEISHU_WEBHOOK_URL"),
		},
		Reddit: RedditConfig{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			Username:     os.Getenv("REDDIT_USERNAME"),
			Password:     os.Getenv("REDDIT_PASSWORD"),
			UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Pipeline: PipelineConfig{
			RunSize:       envInt("RUN_SIZE", 40),
			ChunkSize:     envInt("CHUNK_SIZE", 20),
			ChunkDelay:    time.Duration(envInt("CHUNK_DELAY_SECONDS", 15)) * time.Second,
			RetryCeiling:  envInt("RETRY_CEILING", 2),
			BackoffBase:   time.Duration(envInt("BACKOFF_BASE_SECONDS", 10)) * time.Second,
			MaxItemAge:    time.Duration(envInt("MAX_ITEM_AGE_DAYS", 7)) * 24 * time.Hour,
			CheckpointCap: envInt("CHECKPOINT_CAP", 5000),
		},
		Product: ProductConfig{
			Name:        productName,
			Description: productDesc,
		},
		WatchlistPath: watchlistPath,
		Debug:         os.Getenv("DEBUG") == "true",
	}
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// Validate validates the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Feishu.WebhookURL == "" {
		errs = append(errs, &ConfigError{Field: "FEISHU_WEBHOOK_URL", Message: "required"})
	}
	if c.Gemini.APIKey == "" && c.DeepSeek.APIKey == "" {
		errs = append(errs, &ConfigError{Field: "GEMINI_API_KEY/DEEPSEEK_API_KEY", Message: "at least one classifier credential is required"})
	}
	if c.Pipeline.RunSize <= 0 || c.Pipeline.ChunkSize <= 0 {
		errs = append(errs, &ConfigError{Field: "RUN_SIZE/CHUNK_SIZE", Message: "must be positive"})
	}
	return errors.Join(errs...)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
