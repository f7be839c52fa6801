package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/evencat_test")
	t.Setenv("JWT_SECRET", "config-test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 5000 {
		t.Errorf("server defaults = %s:%d, want 0.0.0.0:5000", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Auth.RegisterTTL != time.Hour {
		t.Errorf("RegisterTTL = %v, want 1h", cfg.Auth.RegisterTTL)
	}
	if cfg.Auth.LoginTTL != 24*time.Hour {
		t.Errorf("LoginTTL = %v, want 24h", cfg.Auth.LoginTTL)
	}
	if cfg.Uploads.MaxBodyBytes != 10<<20 {
		t.Errorf("MaxBodyBytes = %d, want %d", cfg.Uploads.MaxBodyBytes, 10<<20)
	}
	if !cfg.CORS.AllowAllOrigins {
		t.Error("expected allow-all CORS when no origins are configured")
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "config-test-secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/evencat_test")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is unset")
	}
}

func TestLoadTokenTTLOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL_REGISTER_HOURS", "2")
	t.Setenv("TOKEN_TTL_LOGIN_HOURS", "72")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Auth.RegisterTTL != 2*time.Hour {
		t.Errorf("RegisterTTL = %v, want 2h", cfg.Auth.RegisterTTL)
	}
	if cfg.Auth.LoginTTL != 72*time.Hour {
		t.Errorf("LoginTTL = %v, want 72h", cfg.Auth.LoginTTL)
	}
}

func TestLoadCORSOriginList(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CORS.AllowAllOrigins {
		t.Error("expected allow-all to be disabled when origins are configured")
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("origins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	for i, origin := range want {
		if cfg.CORS.AllowedOrigins[i] != origin {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.CORS.AllowedOrigins[i], origin)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}

	logger = NewLogger(LoggingConfig{Level: "nonsense", Format: "console"})
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info fallback for unparseable input", logger.GetLevel())
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNECTIONS", "not-a-number")
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.MaxConnections != 25 {
		t.Errorf("MaxConnections = %d, want fallback 25", cfg.Database.MaxConnections)
	}
}
