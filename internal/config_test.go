package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/receitas/internal/collection"
	pkgconfig "github.com/starford/receitas/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.API.Strategy() != collection.StrategyAppend {
		t.Errorf("strategy = %q, want append", cfg.API.Strategy())
	}
}

func TestAPIConfig_EmptyStrategyDefaultsAppend(t *testing.T) {
	cfg := APIConfig{BaseURL: DefaultAPIBaseURL}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty strategy should default to append: %v", err)
	}
	if cfg.CreateStrategy != string(collection.StrategyAppend) {
		t.Errorf("strategy = %q", cfg.CreateStrategy)
	}
}

func TestAPIConfig_InvalidStrategy(t *testing.T) {
	cfg := APIConfig{BaseURL: DefaultAPIBaseURL, CreateStrategy: "optimistic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown strategy should fail validation")
	}
}

func TestAPIConfig_MissingBaseURL(t *testing.T) {
	cfg := APIConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty base_url should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestFullConfig_APIValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.CreateStrategy = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch api error")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("RECEITAS_API_URL", "http://localhost:3000")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`app:
  log_level: debug
  http:
    port: 9090
api:
  base_url: ${RECEITAS_API_URL}
  timeout: 3s
  create_strategy: refetch
console:
  allowed_origins: ["http://localhost:5173"]
  event_throttle: 500ms
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second || cfg.API.Strategy() != collection.StrategyRefetch {
		t.Errorf("api = %+v", cfg.API)
	}
	if len(cfg.Console.AllowedOrigins) != 1 || cfg.Console.EventThrottle != 500*time.Millisecond {
		t.Errorf("console = %+v", cfg.Console)
	}
}
