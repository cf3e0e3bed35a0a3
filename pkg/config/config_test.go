package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: test
server:
  port: 8080
provider:
  base_url: http://provider.local
strategy:
  benchmark_symbol: BTC
  max_short_positions: 10
  price_change_weight: 0.4
  volume_weight: 0.2
  volatility_weight: 0.25
  funding_rate_weight: 0.15
cache:
  type: memory
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Strategy.BenchmarkSymbol != "BTC" || c.Server.Port != 8080 {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestLoadRejectsBadWeightSum(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.Strategy.VolumeWeight = 0.5
	if err := c.Validate(); err == nil {
		t.Fatalf("expected weight sum validation error")
	}
}

func TestLoadRejectsUnknownCacheType(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.Cache.Type = "memcached"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected cache type validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PROVIDER_BASE_URL", "http://override.local")
	t.Setenv("REDIS_DB", "3")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090", c.Server.Port)
	}
	if c.Provider.BaseURL != "http://override.local" {
		t.Fatalf("base url = %q", c.Provider.BaseURL)
	}
	if c.Cache.Redis.DB != 3 {
		t.Fatalf("redis db = %d, want 3", c.Cache.Redis.DB)
	}
}

func TestLoadWithEnvKeepsDefaultOnBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("port = %d, want file value 8080", c.Server.Port)
	}
}
