package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/yayuyokano/meal-calculate/internal/adapter/config"
	"github.com/yayuyokano/meal-calculate/internal/application/calculator"
	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

// calculateFlags はルートコマンドと対話モードで共通のフラグ
func calculateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "Menu page URL (overrides --cafeteria)",
		},
		&cli.StringFlag{
			Name:  "cafeteria",
			Usage: "Cafeteria ID from the directory (see `mealcalc cafeterias list`)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the result as JSON",
		},
		&cli.BoolFlag{
			Name:  "limit-primary",
			Usage: "Allow at most one main dish (rice may accompany a non-bowl main)",
		},
		&cli.BoolFlag{
			Name:  "no-playwright",
			Usage: "Fetch with plain HTTP instead of the browser renderer",
		},
	}
}

// output はJSONモードの出力
type output struct {
	Total         int         `json:"total"`
	Items         []menu.Item `json:"items"`
	Budget        int         `json:"budget"`
	URL           string      `json:"url"`
	LimitPrimary  bool        `json:"limit_primary"`
	UsePlaywright bool        `json:"use_playwright"`
}

// runCalculate はルートコマンドのAction
func runCalculate(c *cli.Context) error {
	if c.NArg() != 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("BUDGET is required", 1)
	}

	budget, err := parseBudget(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	cfg := configFrom(c)
	deps := buildDependencies(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url, err := resolveURL(cfg, deps.directory(ctx), c.String("url"), c.String("cafeteria"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	resp, err := deps.calculator.Calculate(ctx, calculator.Request{
		Budget:       budget,
		URL:          url,
		LimitPrimary: c.Bool("limit-primary"),
		UseRenderer:  useRenderer(cfg, c.Bool("no-playwright")),
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := writeResult(c.App.Writer, resp, c.Bool("json")); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// parseBudget は予算引数を整数として読む
func parseBudget(arg string) (int, error) {
	budget, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, apperr.InvalidArgument(fmt.Sprintf("budget must be an integer: %q", arg))
	}
	if budget < 0 {
		return 0, apperr.InvalidArgument(fmt.Sprintf("budget must be a non-negative integer: %d", budget))
	}
	return budget, nil
}

// resolveURL は --url, --cafeteria, 設定の既定URL の順で取得先を決める
func resolveURL(cfg *config.Config, dir *cafeteria.Directory, rawURL, cafeteriaID string) (string, error) {
	if rawURL != "" {
		return rawURL, nil
	}
	if cafeteriaID != "" {
		if !dir.Contains(cafeteriaID) {
			return "", apperr.InvalidArgument(fmt.Sprintf("unknown cafeteria: %s", cafeteriaID))
		}
		return dir.URL(cafeteriaID), nil
	}
	return cfg.Source.DefaultURL, nil
}

// useRenderer はブラウザ描画を使うかを決める
// 設定で無効ならフラグに関係なく使わない
func useRenderer(cfg *config.Config, noPlaywright bool) bool {
	return cfg.Renderer.Enabled && !noPlaywright
}

// writeResult は計算結果をテキストまたはJSONで書き出す
func writeResult(w io.Writer, resp calculator.Response, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, calculator.FormatResult(resp.Total, resp.Items))
		return err
	}

	items := resp.Items
	if items == nil {
		items = []menu.Item{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(output{
		Total:         resp.Total,
		Items:         items,
		Budget:        resp.Budget,
		URL:           resp.URL,
		LimitPrimary:  resp.LimitPrimary,
		UsePlaywright: resp.UseRenderer,
	})
}
