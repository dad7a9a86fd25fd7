package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	maintenanceapp "maintenance-kpi/internal/maintenance/application"
	maintenance "maintenance-kpi/internal/maintenance/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kpi.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
storage: memory
engine:
  due_soon_days: 3
  default_periods: 12
  max_periods: 24
  query_timeout: 750ms
  classification:
    replacement: preventive
  equipment_fallback: first
  export_title: Plant KPIs
  notify:
    webhook_url: http://hooks.local/overdue
    cooldown: 2h
`)
	t.Setenv("KPI_CONFIG", path)
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("DUE_SOON_DAYS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.Engine.DefaultPeriods != 12 || cfg.Engine.MaxPeriods != 24 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Engine.DueSoonDays != 5 {
		t.Fatalf("expected env to override due soon days, got %d", cfg.Engine.DueSoonDays)
	}
	if cfg.Engine.QueryTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected query timeout %s", cfg.Engine.QueryTimeout)
	}
	if cfg.Engine.Notify.WebhookURL != "http://hooks.local/overdue" || cfg.Engine.Notify.Cooldown != 2*time.Hour {
		t.Fatalf("unexpected notify config %+v", cfg.Engine.Notify)
	}
	if cfg.Engine.Notify.Timeout != 5*time.Second {
		t.Fatalf("expected default notify timeout, got %s", cfg.Engine.Notify.Timeout)
	}
	if cfg.Engine.SweepInterval != 15*time.Minute {
		t.Fatalf("expected default sweep interval, got %s", cfg.Engine.SweepInterval)
	}

	classify, err := cfg.Engine.Classifier()
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	if classify(maintenance.EventReplacement) != maintenance.ClassPreventive {
		t.Fatalf("expected replacement override")
	}
	fallback, _ := cfg.Engine.Fallback()
	if fallback != maintenanceapp.FallbackFirst {
		t.Fatalf("unexpected fallback %s", fallback)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("KPI_CONFIG", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without jwt secret")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"storage":          func(c *Config) { c.Storage = "mongo" },
		"due soon":         func(c *Config) { c.Engine.DueSoonDays = -1 },
		"default > max":    func(c *Config) { c.Engine.DefaultPeriods = 40 },
		"negative timeout": func(c *Config) { c.Engine.QueryTimeout = -time.Second },
		"bad class":        func(c *Config) { c.Engine.Classification = map[string]string{"REPAIR": "sometimes"} },
		"bad type":         func(c *Config) { c.Engine.Classification = map[string]string{"FOO": "reactive"} },
		"bad fallback":     func(c *Config) { c.Engine.EquipmentFallback = "random" },
	}
	for name, mutate := range cases {
		cfg := Default()
		cfg.JWTSecret = "secret"
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	cfg := Default()
	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}
