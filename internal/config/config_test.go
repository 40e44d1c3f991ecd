package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 20262 {
		t.Fatalf("port=%d, want 20262", cfg.Server.Port)
	}
	if !cfg.Pipeline.Strict {
		t.Fatalf("strict should default to true")
	}
	if cfg.Data.DataDir != "data" {
		t.Fatalf("dataDir=%q, want data", cfg.Data.DataDir)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MATDP_DATA_DIR", "/tmp/matdp-test-data")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.DataDir != "/tmp/matdp-test-data" {
		t.Fatalf("dataDir=%q, want env override", cfg.Data.DataDir)
	}
}

func TestConfig_TomlRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Pipeline.Workers = 4

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back AppConfig
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Server.Port != 9000 || back.Pipeline.Workers != 4 {
		t.Fatalf("round trip got=%+v", back)
	}
}
