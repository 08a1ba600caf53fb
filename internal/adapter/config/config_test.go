package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `
source:
  default_url: "https://west2-univ.jp/sp/menu.php?t=650113"
  cafeterias_file: "/tmp/cafeterias.json"

renderer:
  enabled: true
  mcp_url: "http://localhost:12306"

fetch:
  fragment_interval_ms: 200

optimizer:
  max_budget: 5000

server:
  port: 9090
  host: "127.0.0.1"

refresh:
  schedule: "0 3 * * *"

log:
  level: "debug"
  format: "json"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source.DefaultURL != "https://west2-univ.jp/sp/menu.php?t=650113" {
		t.Errorf("Expected default_url from file, got '%s'", cfg.Source.DefaultURL)
	}
	if cfg.Source.URLTemplate != DefaultURLTemplate {
		t.Errorf("Expected default url_template, got '%s'", cfg.Source.URLTemplate)
	}
	if !cfg.Renderer.Enabled || cfg.Renderer.MCPURL != "http://localhost:12306" {
		t.Errorf("Unexpected renderer config: %+v", cfg.Renderer)
	}
	if cfg.Renderer.ToggleSelector != DefaultToggleSelector {
		t.Errorf("Expected default toggle selector, got '%s'", cfg.Renderer.ToggleSelector)
	}
	if cfg.FragmentInterval() != 200*time.Millisecond {
		t.Errorf("Expected 200ms fragment interval, got %v", cfg.FragmentInterval())
	}
	if cfg.Optimizer.MaxBudget != 5000 {
		t.Errorf("Expected max_budget 5000, got %d", cfg.Optimizer.MaxBudget)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Expected addr 127.0.0.1:9090, got '%s'", cfg.Addr())
	}
	if cfg.Refresh.Schedule != "0 3 * * *" {
		t.Errorf("Expected refresh schedule, got '%s'", cfg.Refresh.Schedule)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source.DefaultURL != DefaultMenuURL {
		t.Errorf("Expected default menu URL, got '%s'", cfg.Source.DefaultURL)
	}
	if cfg.Optimizer.MaxBudget != DefaultMaxBudget {
		t.Errorf("Expected max_budget %d, got %d", DefaultMaxBudget, cfg.Optimizer.MaxBudget)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Renderer.Enabled {
		t.Error("Renderer should be disabled by default")
	}
	if cfg.SourceTimeout() != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.SourceTimeout())
	}
}

func TestLoadConfig_WithEnvVars(t *testing.T) {
	t.Setenv("MEALCALC_SOURCE_DEFAULT_URL", "https://example.com/menu.php?t=1")
	t.Setenv("MEALCALC_RENDERER_ENABLED", "true")
	t.Setenv("MEALCALC_RENDERER_MCP_URL", "http://mcp.local:12306")
	t.Setenv("MEALCALC_OPTIMIZER_MAX_BUDGET", "3000")
	t.Setenv("MEALCALC_SERVER_PORT", "8181")

	configPath := writeConfig(t, `
server:
  port: 9090
optimizer:
  max_budget: 5000
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source.DefaultURL != "https://example.com/menu.php?t=1" {
		t.Errorf("Expected default_url from env, got '%s'", cfg.Source.DefaultURL)
	}
	if !cfg.Renderer.Enabled || cfg.Renderer.MCPURL != "http://mcp.local:12306" {
		t.Errorf("Expected renderer from env, got %+v", cfg.Renderer)
	}
	if cfg.Optimizer.MaxBudget != 3000 {
		t.Errorf("Expected env to override max_budget, got %d", cfg.Optimizer.MaxBudget)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Expected env to override port, got %d", cfg.Server.Port)
	}
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	configPath := writeConfig(t, `
source:
  cafeterias_file: "~/mealcalc/cafeterias.json"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source.CafeteriasFile != home+"/mealcalc/cafeterias.json" {
		t.Errorf("Expected expanded path, got '%s'", cfg.Source.CafeteriasFile)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server: [port")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "既定値", mutate: func(c *Config) {}},
		{name: "不正なURL", mutate: func(c *Config) { c.Source.DefaultURL = "not a url" }, wantErr: "default_url"},
		{name: "テンプレートに{id}なし", mutate: func(c *Config) { c.Source.URLTemplate = "https://example.com/menu" }, wantErr: "url_template"},
		{name: "描画有効でMCP URLなし", mutate: func(c *Config) { c.Renderer.Enabled = true }, wantErr: "mcp_url"},
		{name: "負の間隔", mutate: func(c *Config) { c.Fetch.FragmentIntervalMS = -1 }, wantErr: "fragment_interval_ms"},
		{name: "予算上限0", mutate: func(c *Config) { c.Optimizer.MaxBudget = 0 }, wantErr: "max_budget"},
		{name: "ポート範囲外", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "port"},
		{name: "不正なcron式", mutate: func(c *Config) { c.Refresh.Schedule = "every night" }, wantErr: "schedule"},
		{name: "不正なログ形式", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Dump(t *testing.T) {
	data, err := DefaultConfig().Dump()
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	out := string(data)
	for _, want := range []string{"default_url:", "max_budget: 100000", "port: 8080"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() missing %q:\n%s", want, out)
		}
	}
}
