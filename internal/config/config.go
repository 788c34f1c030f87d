package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the companion service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string
	AllowAnyOrigin           bool

	ModelAdapterMode string
	OllamaURL        string
	ModelName        string
	ModelTimeoutSecs int
	Temperature      float64
	TopP             float64
	TopK             int

	PersonaPath      string
	ContextTurns     int
	RetrievalTopK    int
	PromptCharBudget int
	EmotionWindow    int

	RetrievalEnabled     bool
	EmbeddingDim         int
	IndexFallbackReplies bool

	DatabaseURL string

	AudioDir    string
	AudioMaxAge time.Duration
	WakeWord    string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8000"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "lily"),
		AllowAnyOrigin:           false,
		ModelAdapterMode:         envOrDefault("MODEL_ADAPTER_MODE", "auto"),
		OllamaURL:                envOrDefault("OLLAMA_URL", "http://127.0.0.1:11434"),
		ModelName:                envOrDefault("MODEL_NAME", "mistral:7b"),
		ModelTimeoutSecs:         60,
		Temperature:              0.8,
		TopP:                     0.9,
		TopK:                     40,
		PersonaPath:              envOrDefault("PERSONA_PATH", "persona.txt"),
		ContextTurns:             6,
		RetrievalTopK:            2,
		PromptCharBudget:         6000,
		EmotionWindow:            10,
		RetrievalEnabled:         true,
		EmbeddingDim:             384,
		IndexFallbackReplies:     false,
		DatabaseURL:              stringFromEnv("DATABASE_URL"),
		AudioDir:                 envOrDefault("AUDIO_DIR", "static/audio"),
		AudioMaxAge:              5 * time.Minute,
		WakeWord:                 envOrDefault("WAKE_WORD", "lily"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 10 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AudioMaxAge, err = durationFromEnv("AUDIO_MAX_AGE", cfg.AudioMaxAge)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTimeoutSecs, err = intFromEnv("MODEL_TIMEOUT_SECONDS", cfg.ModelTimeoutSecs)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextTurns, err = intFromEnv("CONTEXT_TURNS", cfg.ContextTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.RetrievalTopK, err = intFromEnv("RETRIEVAL_TOP_K", cfg.RetrievalTopK)
	if err != nil {
		return Config{}, err
	}
	cfg.PromptCharBudget, err = intFromEnv("PROMPT_CHAR_BUDGET", cfg.PromptCharBudget)
	if err != nil {
		return Config{}, err
	}
	cfg.EmotionWindow, err = intFromEnv("EMOTION_WINDOW", cfg.EmotionWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.Temperature, err = floatFromEnv("MODEL_TEMPERATURE", cfg.Temperature)
	if err != nil {
		return Config{}, err
	}
	cfg.TopP, err = floatFromEnv("MODEL_TOP_P", cfg.TopP)
	if err != nil {
		return Config{}, err
	}
	cfg.TopK, err = intFromEnv("MODEL_TOP_K", cfg.TopK)
	if err != nil {
		return Config{}, err
	}
	cfg.RetrievalEnabled, err = boolFromEnv("RETRIEVAL_ENABLED", cfg.RetrievalEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.IndexFallbackReplies, err = boolFromEnv("INDEX_FALLBACK_REPLIES", cfg.IndexFallbackReplies)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.ModelTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("MODEL_TIMEOUT_SECONDS must be positive")
	}
	if cfg.ContextTurns <= 0 {
		return Config{}, fmt.Errorf("CONTEXT_TURNS must be positive")
	}
	if cfg.RetrievalTopK < 0 {
		return Config{}, fmt.Errorf("RETRIEVAL_TOP_K must be >= 0")
	}
	if cfg.PromptCharBudget < 256 {
		return Config{}, fmt.Errorf("PROMPT_CHAR_BUDGET must be at least 256")
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringFromEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringFromEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringFromEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringFromEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringFromEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
