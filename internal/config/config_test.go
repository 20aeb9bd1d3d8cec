package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"prokat/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "prokat"
database:
  path: "test.db"
redis:
  enabled: true
  address: "${PROKAT_REDIS_ADDR}"
auth:
  enabled: true
  api_keys:
    - key: "k1"
      extra: "e1"
      name: "client"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	t.Setenv("PROKAT_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}

	// Переменные окружения разворачиваются до разбора YAML
	if cfg.Redis.Address != "localhost:6379" {
		t.Errorf("expected expanded redis address, got %s", cfg.Redis.Address)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.HTTP.Port)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "auth without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Auth:     AuthConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "redis enabled without address",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Redis:    RedisConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "worker without spreadsheet",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Worker:   WorkerConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.Auth.HeaderAPIKey)
	}
	if cfg.RateLimit.RPS != models.RateLimitRPS {
		t.Errorf("expected default rps %d, got %f", models.RateLimitRPS, cfg.RateLimit.RPS)
	}
	if cfg.Cache.AvailabilityTTLSec != models.AvailabilityCacheTTL {
		t.Errorf("expected default availability ttl %d, got %d", models.AvailabilityCacheTTL, cfg.Cache.AvailabilityTTLSec)
	}
	if cfg.AvailabilityTTL() != time.Duration(models.AvailabilityCacheTTL)*time.Second {
		t.Errorf("unexpected availability ttl duration %v", cfg.AvailabilityTTL())
	}
	if cfg.Worker.MaxRetries != 5 {
		t.Errorf("expected default max retries 5, got %d", cfg.Worker.MaxRetries)
	}
}
