package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NIMO_OIL_CONFIG", path)
}

func TestLoadFile(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
database:
  driver: sqlite
  path: /tmp/oil.db
lineage:
  seed_marker: S
  oil_marker: O
costing:
  fallback_rates:
    CAKE: 22.5
    sludge: 4
cache:
  ttl: 1m
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/oil.db" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second || cfg.Cache.TTL != time.Minute {
		t.Errorf("durations: shutdown %v, ttl %v", cfg.Server.ShutdownTimeout, cfg.Cache.TTL)
	}
	rates := cfg.Costing.Rates()
	if rates["CAKE"] != 22.5 || rates["SLUDGE"] != 4 {
		t.Errorf("fallback rates = %v", rates)
	}
	if m := cfg.Lineage.Markers(); m.Seed != 'S' || m.Oil != 'O' {
		t.Errorf("markers = %+v", m)
	}
}

func TestEnvOverrides(t *testing.T) {
	writeConfig(t, "database:\n  driver: sqlite\n")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.JWT.Secret != "from-env" || cfg.Server.Port != 7000 {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"driver":  "database:\n  driver: mysql\n",
		"markers": "lineage:\n  seed_marker: SS\n",
		"rates":   "costing:\n  fallback_rates:\n    cake: -1\n",
	}
	for name, body := range cases {
		writeConfig(t, body)
		if _, err := Load(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
