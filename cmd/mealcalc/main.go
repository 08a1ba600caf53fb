// mealcalc は学食メニューから予算に最も近い組み合わせを求めるCLI
//
// Usage:
//
//	mealcalc [--url URL | --cafeteria ID] [--json] [--limit-primary] [--no-playwright] BUDGET
//	mealcalc interactive --cafeteria 650111
//	mealcalc cafeterias list
//	mealcalc cafeterias update
//	mealcalc serve
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yayuyokano/meal-calculate/internal/adapter/config"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "mealcalc",
		Usage:     "学食メニューから予算に最も近い組み合わせを計算する",
		Version:   fmt.Sprintf("%s (commit: %s)", version, commit),
		ArgsUsage: "BUDGET",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config.yaml",
				Usage:   "Path to config YAML",
				EnvVars: []string{"MEALCALC_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides config",
			},
		}, calculateFlags()...),
		Before: loadConfig,
		Action: runCalculate,
		Commands: []*cli.Command{
			interactiveCommand(),
			cafeteriasCommand(),
			serveCommand(),
			configCommand(),
		},
		ErrWriter: os.Stderr,
	}
}

// loadConfig は設定を読み込み、ロガーを初期化してMetadataに格納する
func loadConfig(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// configFrom はBeforeで読み込んだ設定を返す
func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
