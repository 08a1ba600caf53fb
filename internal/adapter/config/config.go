package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 既定値
const (
	DefaultMenuURL        = "https://west2-univ.jp/sp/menu.php?t=650111"
	DefaultURLTemplate    = "https://west2-univ.jp/sp/menu.php?t={id}"
	DefaultDirectoryURL   = "https://west2-univ.jp/sp/kyoto-univ.php"
	DefaultCafeteriasFile = "./data/cafeterias.json"
	DefaultToggleSelector = ".toggle-title"
	DefaultMaxBudget      = 100000
)

// Config はアプリケーション全体の設定
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Server    ServerConfig    `yaml:"server"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Log       LogConfig       `yaml:"log"`
}

// SourceConfig はメニュー取得元の設定
type SourceConfig struct {
	DefaultURL     string `yaml:"default_url" env:"MEALCALC_SOURCE_DEFAULT_URL"`
	URLTemplate    string `yaml:"url_template" env:"MEALCALC_SOURCE_URL_TEMPLATE"` // {id} を食堂IDで置換
	DirectoryURL   string `yaml:"directory_url" env:"MEALCALC_SOURCE_DIRECTORY_URL"`
	CafeteriasFile string `yaml:"cafeterias_file" env:"MEALCALC_SOURCE_CAFETERIAS_FILE"`
	UserAgent      string `yaml:"user_agent" env:"MEALCALC_SOURCE_USER_AGENT"`
	TimeoutSec     int    `yaml:"timeout_sec" env:"MEALCALC_SOURCE_TIMEOUT_SEC"`
}

// RendererConfig はブラウザ描画（MCP）の設定
type RendererConfig struct {
	Enabled        bool   `yaml:"enabled" env:"MEALCALC_RENDERER_ENABLED"`
	MCPURL         string `yaml:"mcp_url" env:"MEALCALC_RENDERER_MCP_URL"`
	ToggleSelector string `yaml:"toggle_selector" env:"MEALCALC_RENDERER_TOGGLE_SELECTOR"`
	IdleTimeoutMS  int    `yaml:"idle_timeout_ms" env:"MEALCALC_RENDERER_IDLE_TIMEOUT_MS"`
}

// FetchConfig はフラグメント取得の設定
type FetchConfig struct {
	FragmentIntervalMS int `yaml:"fragment_interval_ms" env:"MEALCALC_FETCH_FRAGMENT_INTERVAL_MS"` // 0 で間隔なし
}

// OptimizerConfig は探索の設定
type OptimizerConfig struct {
	MaxBudget int `yaml:"max_budget" env:"MEALCALC_OPTIMIZER_MAX_BUDGET"`
}

// ServerConfig はHTTPサーバー設定
type ServerConfig struct {
	Host string `yaml:"host" env:"MEALCALC_SERVER_HOST"`
	Port int    `yaml:"port" env:"MEALCALC_SERVER_PORT"`
}

// RefreshConfig は食堂一覧の定期更新設定
type RefreshConfig struct {
	Schedule string `yaml:"schedule" env:"MEALCALC_REFRESH_SCHEDULE"` // cron式。空なら無効
}

// LogConfig はログ設定
type LogConfig struct {
	Level  string `yaml:"level" env:"MEALCALC_LOG_LEVEL"`
	Format string `yaml:"format" env:"MEALCALC_LOG_FORMAT"`
}

// DefaultConfig は既定の設定を返す
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			DefaultURL:     DefaultMenuURL,
			URLTemplate:    DefaultURLTemplate,
			DirectoryURL:   DefaultDirectoryURL,
			CafeteriasFile: DefaultCafeteriasFile,
			TimeoutSec:     30,
		},
		Renderer: RendererConfig{
			Enabled:        false,
			ToggleSelector: DefaultToggleSelector,
			IdleTimeoutMS:  10000,
		},
		Optimizer: OptimizerConfig{
			MaxBudget: DefaultMaxBudget,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig は設定ファイルを読み込む
// ファイルがなければ既定値を使う。その後、環境変数で上書きして検証する
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config YAML: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// 既定値のまま
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 環境変数で上書き
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.setDefaults()
	cfg.Source.CafeteriasFile = expandHome(cfg.Source.CafeteriasFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults はYAMLで空にされた項目を既定値に戻す
func (c *Config) setDefaults() {
	defaults := DefaultConfig()

	if c.Source.DefaultURL == "" {
		c.Source.DefaultURL = defaults.Source.DefaultURL
	}
	if c.Source.URLTemplate == "" {
		c.Source.URLTemplate = defaults.Source.URLTemplate
	}
	if c.Source.DirectoryURL == "" {
		c.Source.DirectoryURL = defaults.Source.DirectoryURL
	}
	if c.Source.CafeteriasFile == "" {
		c.Source.CafeteriasFile = defaults.Source.CafeteriasFile
	}
	if c.Renderer.ToggleSelector == "" {
		c.Renderer.ToggleSelector = defaults.Renderer.ToggleSelector
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Validate は設定の妥当性を検証
func (c *Config) Validate() error {
	if err := validateHTTPURL("source default_url", c.Source.DefaultURL); err != nil {
		return err
	}
	if !strings.Contains(c.Source.URLTemplate, "{id}") {
		return fmt.Errorf("source url_template must contain {id}: %q", c.Source.URLTemplate)
	}
	if err := validateHTTPURL("source directory_url", c.Source.DirectoryURL); err != nil {
		return err
	}
	if c.Source.TimeoutSec < 0 {
		return fmt.Errorf("source timeout_sec must not be negative: %d", c.Source.TimeoutSec)
	}

	if c.Renderer.Enabled {
		if err := validateHTTPURL("renderer mcp_url", c.Renderer.MCPURL); err != nil {
			return err
		}
	}
	if c.Renderer.IdleTimeoutMS < 0 {
		return fmt.Errorf("renderer idle_timeout_ms must not be negative: %d", c.Renderer.IdleTimeoutMS)
	}

	if c.Fetch.FragmentIntervalMS < 0 {
		return fmt.Errorf("fetch fragment_interval_ms must not be negative: %d", c.Fetch.FragmentIntervalMS)
	}

	if c.Optimizer.MaxBudget < 1 {
		return fmt.Errorf("optimizer max_budget must be positive: %d", c.Optimizer.MaxBudget)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}

	if c.Refresh.Schedule != "" && !gronx.New().IsValid(c.Refresh.Schedule) {
		return fmt.Errorf("invalid refresh schedule: %q", c.Refresh.Schedule)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q (must be json or console)", c.Log.Format)
	}

	return nil
}

// FragmentInterval はフラグメント取得間隔を返す
func (c *Config) FragmentInterval() time.Duration {
	return time.Duration(c.Fetch.FragmentIntervalMS) * time.Millisecond
}

// SourceTimeout は取得タイムアウトを返す
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSec) * time.Second
}

// Addr はサーバーの待ち受けアドレスを返す
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Dump は設定をYAMLで返す
func (c *Config) Dump() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL: %q", field, raw)
	}
	return nil
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
