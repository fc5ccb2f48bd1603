package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("NIVESH_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_ReferenceCurrencyDefault(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.ReferenceCurrency != "INR" {
		t.Errorf("ReferenceCurrency default = %q, want %q", cfg.ReferenceCurrency, "INR")
	}
}

func TestConfig_ReferenceCurrencyInvalidFallsBack(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ReferenceCurrency = "GBP"
	validateReferenceCurrency(cfg)
	if cfg.ReferenceCurrency != "INR" {
		t.Errorf("ReferenceCurrency = %q after validation, want %q", cfg.ReferenceCurrency, "INR")
	}
}

func TestConfig_ReferenceCurrencyEnvOverride(t *testing.T) {
	t.Setenv("NIVESH_REFERENCE_CURRENCY", "usd")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)
	validateReferenceCurrency(cfg)

	if cfg.ReferenceCurrency != "USD" {
		t.Errorf("ReferenceCurrency = %q, want %q", cfg.ReferenceCurrency, "USD")
	}
}

func TestConfig_AlphaVantageKeyEnvOverride(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.AlphaVantage.APIKey != "from-env" {
		t.Errorf("AlphaVantage.APIKey = %q, want %q", cfg.Clients.AlphaVantage.APIKey, "from-env")
	}
}

func TestConfig_DataPathEnvOverride(t *testing.T) {
	t.Setenv("NIVESH_DATA_PATH", "/var/lib/nivesh")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Storage.Ledger.Path != filepath.Join("/var/lib/nivesh", "ledger") {
		t.Errorf("Storage.Ledger.Path = %q", cfg.Storage.Ledger.Path)
	}
	if cfg.Storage.Rates.Path != filepath.Join("/var/lib/nivesh", "rates") {
		t.Errorf("Storage.Rates.Path = %q", cfg.Storage.Rates.Path)
	}
}

func TestRatesConfig_FreshnessDefault(t *testing.T) {
	cfg := &RatesConfig{}
	if cfg.Freshness() != DefaultRateFreshness {
		t.Errorf("Freshness() = %v, want %v", cfg.Freshness(), DefaultRateFreshness)
	}
}

func TestRatesConfig_FreshnessConfigured(t *testing.T) {
	cfg := &RatesConfig{FreshnessHours: 1}
	if cfg.Freshness() != time.Hour {
		t.Errorf("Freshness() = %v, want 1h", cfg.Freshness())
	}
}

func TestConfig_DefaultRoutingOrder(t *testing.T) {
	cfg := NewDefaultConfig()
	if len(cfg.Rates.Routing) != 3 {
		t.Fatalf("expected 3 default routing rules, got %d", len(cfg.Rates.Routing))
	}
	if cfg.Rates.Routing[0].Source != "mutualfund" {
		t.Errorf("first route source = %q, want %q", cfg.Rates.Routing[0].Source, "mutualfund")
	}
	if cfg.Rates.Routing[2].Pattern != ".*" {
		t.Errorf("last route pattern = %q, want catch-all", cfg.Rates.Routing[2].Pattern)
	}
}

func TestLoadConfig_FileMergeAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nivesh.toml")
	content := "reference_currency = \"USD\"\n\n[server]\nport = 7070\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("NIVESH_PORT", "7171")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.ReferenceCurrency != "USD" {
		t.Errorf("ReferenceCurrency = %q, want USD from file", cfg.ReferenceCurrency)
	}
	if cfg.Server.Port != 7171 {
		t.Errorf("Server.Port = %d, want env override 7171 over file 7070", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default preserved", cfg.Server.Host)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed on missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestTimelineConfig_FloorDate(t *testing.T) {
	cfg := &TimelineConfig{Floor: "2023-04-01"}
	want := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.FloorDate().Equal(want) {
		t.Errorf("FloorDate() = %v, want %v", cfg.FloorDate(), want)
	}
}

func TestTimelineConfig_FloorDateInvalidFallsBack(t *testing.T) {
	cfg := &TimelineConfig{Floor: "not-a-date"}
	want := time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.FloorDate().Equal(want) {
		t.Errorf("FloorDate() = %v, want fallback %v", cfg.FloorDate(), want)
	}
}
