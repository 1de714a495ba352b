package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	AI       AIConfig
	Engage   EngageConfig
	Session  SessionConfig
	Callback CallbackConfig
	NATS     NATSConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	engage, err := loadEngageConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	callback, err := loadCallbackConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Auth:     AuthConfig{APIKey: strings.TrimSpace(os.Getenv("API_KEY"))},
		AI:       ai,
		Engage:   engage,
		Session:  session,
		Callback: callback,
		NATS: NATSConfig{
			URL:   strings.TrimSpace(os.Getenv("NATS_URL")),
			Token: strings.TrimSpace(os.Getenv("NATS_TOKEN")),
		},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// AuthConfig holds the inbound API key; empty disables the check.
type AuthConfig struct {
	APIKey string
}

// NATSConfig enables report event publishing when URL is set.
type NATSConfig struct {
	URL   string
	Token string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the Ark chat-model backing reply generation.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + MODEL or AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// EngageConfig tunes the reply planner.
type EngageConfig struct {
	HistoryLimit      int
	GenerationTimeout time.Duration
}

func loadEngageConfig() (EngageConfig, error) {
	historyLimit, err := parseIntEnv("HISTORY_LIMIT", 6)
	if err != nil {
		return EngageConfig{}, err
	}
	if historyLimit < 1 {
		historyLimit = 1
	}

	timeoutSeconds, err := parseIntEnv("GENERATION_TIMEOUT_SECONDS", 20)
	if err != nil {
		return EngageConfig{}, err
	}

	return EngageConfig{
		HistoryLimit:      historyLimit,
		GenerationTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SessionConfig holds session lifecycle policy.
type SessionConfig struct {
	MinTurnsForReport  int
	MaxTurnsPerSession int
	TTL                time.Duration
	CleanupSchedule    string
}

func loadSessionConfig() (SessionConfig, error) {
	minTurns, err := parseIntEnv("MIN_TURNS_FOR_REPORT", 3)
	if err != nil {
		return SessionConfig{}, err
	}

	maxTurns, err := parseIntEnv("MAX_TURNS_PER_SESSION", 20)
	if err != nil {
		return SessionConfig{}, err
	}

	ttlSeconds, err := parseIntEnv("SESSION_TTL_SECONDS", 3600)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		MinTurnsForReport:  minTurns,
		MaxTurnsPerSession: maxTurns,
		TTL:                time.Duration(ttlSeconds) * time.Second,
		CleanupSchedule:    getEnvOrDefault("CLEANUP_SCHEDULE", "@every 5m"),
	}, nil
}

// CallbackConfig describes evaluation report delivery.
type CallbackConfig struct {
	URL         string
	Timeout     time.Duration
	MaxAttempts int
}

func loadCallbackConfig() (CallbackConfig, error) {
	timeoutSeconds, err := parseIntEnv("CALLBACK_TIMEOUT_SECONDS", 10)
	if err != nil {
		return CallbackConfig{}, err
	}

	attempts, err := parseIntEnv("CALLBACK_MAX_ATTEMPTS", 3)
	if err != nil {
		return CallbackConfig{}, err
	}
	if attempts < 1 {
		attempts = 1
	}

	return CallbackConfig{
		URL:         getEnvOrDefault("CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		MaxAttempts: attempts,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
