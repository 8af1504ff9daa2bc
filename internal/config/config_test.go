package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@uptrace.dev/123" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_WebhookRequiresSubscribersWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_SUBSCRIBER_URLS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WEBHOOK_ENABLED=true without subscribers")
	}
}

func TestLoad_WebhookConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_SUBSCRIBER_URLS", "https://a.example/hooks, https://b.example/hooks")
	t.Setenv("WEBHOOK_TIMEOUT", "7s")
	t.Setenv("WEBHOOK_MAX_RETRIES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WebhookEnabled {
		t.Fatalf("expected WebhookEnabled=true")
	}
	if len(cfg.WebhookSubscriberURLs) != 2 {
		t.Fatalf("unexpected subscriber count: %d", len(cfg.WebhookSubscriberURLs))
	}
	if cfg.WebhookSubscriberURLs[1] != "https://b.example/hooks" {
		t.Fatalf("unexpected subscriber URL: %q", cfg.WebhookSubscriberURLs[1])
	}
	if cfg.WebhookTimeout != 7*time.Second {
		t.Fatalf("unexpected WebhookTimeout: %s", cfg.WebhookTimeout)
	}
	if cfg.WebhookMaxRetries != 2 {
		t.Fatalf("unexpected WebhookMaxRetries: %d", cfg.WebhookMaxRetries)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_RerankWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SCORING_RERANK_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SCORING_RERANK_WORKERS=0")
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}
