package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "API_KEY",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "MODEL",
		"ARK_BASE_URL", "ARK_REGION", "ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
		"HISTORY_LIMIT", "GENERATION_TIMEOUT_SECONDS",
		"MIN_TURNS_FOR_REPORT", "MAX_TURNS_PER_SESSION", "SESSION_TTL_SECONDS", "CLEANUP_SCHEDULE",
		"CALLBACK_URL", "CALLBACK_TIMEOUT_SECONDS", "CALLBACK_MAX_ATTEMPTS",
		"NATS_URL", "NATS_TOKEN",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Auth.APIKey != "" {
		t.Fatalf("unexpected api key: %s", cfg.Auth.APIKey)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI should be disabled without credentials")
	}
	if cfg.Engage.HistoryLimit != 6 {
		t.Fatalf("unexpected history limit: %d", cfg.Engage.HistoryLimit)
	}
	if cfg.Engage.GenerationTimeout != 20*time.Second {
		t.Fatalf("unexpected generation timeout: %s", cfg.Engage.GenerationTimeout)
	}
	if cfg.Session.MinTurnsForReport != 3 {
		t.Fatalf("unexpected min turns: %d", cfg.Session.MinTurnsForReport)
	}
	if cfg.Session.MaxTurnsPerSession != 20 {
		t.Fatalf("unexpected max turns: %d", cfg.Session.MaxTurnsPerSession)
	}
	if cfg.Session.TTL != time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.Session.TTL)
	}
	if cfg.Session.CleanupSchedule != "@every 5m" {
		t.Fatalf("unexpected cleanup schedule: %s", cfg.Session.CleanupSchedule)
	}
	if cfg.Callback.URL != "https://hackathon.guvi.in/api/updateHoneyPotFinalResult" {
		t.Fatalf("unexpected callback url: %s", cfg.Callback.URL)
	}
	if cfg.Callback.Timeout != 10*time.Second {
		t.Fatalf("unexpected callback timeout: %s", cfg.Callback.Timeout)
	}
	if cfg.Callback.MaxAttempts != 3 {
		t.Fatalf("unexpected callback attempts: %d", cfg.Callback.MaxAttempts)
	}
}

func TestLoadPortForms(t *testing.T) {
	cases := []struct {
		port string
		want string
	}{
		{"9090", ":9090"},
		{":7070", ":7070"},
		{"127.0.0.1:6060", "127.0.0.1:6060"},
	}
	for _, tc := range cases {
		clearEnv(t)
		t.Setenv("PORT", tc.port)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("PORT=%q: %v", tc.port, err)
		}
		if cfg.Server.Addr != tc.want {
			t.Fatalf("PORT=%q: expected %s, got %s", tc.port, tc.want, cfg.Server.Addr)
		}
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not a port")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestLoadInvalidInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_TURNS_FOR_REPORT", "many")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric MIN_TURNS_FOR_REPORT")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARK_API_KEY", "key-123")
	t.Setenv("MODEL", "doubao-pro")
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("ARK_MAX_TOKENS", "400")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AI should be enabled with api key and model")
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.7 {
		t.Fatalf("unexpected temperature: %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens == nil || *cfg.AI.MaxTokens != 400 {
		t.Fatalf("unexpected max tokens: %v", cfg.AI.MaxTokens)
	}
}

func TestAIConfigAKSKPair(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL", "doubao-pro")
	t.Setenv("ARK_ACCESS_KEY", "ak")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI.Enabled() {
		t.Fatal("access key alone must not enable AI")
	}

	t.Setenv("ARK_SECRET_KEY", "sk")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AK/SK pair with model should enable AI")
	}
}
