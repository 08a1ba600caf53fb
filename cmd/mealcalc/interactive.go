package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/yayuyokano/meal-calculate/internal/application/calculator"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
	"github.com/yayuyokano/meal-calculate/internal/domain/optimizer"
)

const interactiveHelp = `予算を入力してください（例: 800）
  limit on|off  主菜を1品に制限する／しない
  menu          取得したメニューを表示
  help          このヘルプ
  exit          終了`

func interactiveCommand() *cli.Command {
	return &cli.Command{
		Name:   "interactive",
		Usage:  "Fetch the menu once and answer budgets from a prompt",
		Flags:  calculateFlags(),
		Action: runInteractive,
	}
}

// optimizerFunc は取得済みメニューへの探索
type optimizerFunc func(items []menu.Item, budget int, limitPrimary bool) (optimizer.Result, error)

// session は対話モードの状態
type session struct {
	items    []menu.Item
	limit    bool
	asJSON   bool
	url      string
	renderer bool
	optimize optimizerFunc
	out      io.Writer
}

func runInteractive(c *cli.Context) error {
	cfg := configFrom(c)
	deps := buildDependencies(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url, err := resolveURL(cfg, deps.directory(ctx), c.String("url"), c.String("cafeteria"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	renderer := useRenderer(cfg, c.Bool("no-playwright"))
	items, err := deps.fetcher.FetchMenu(ctx, url, renderer)
	stop()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	s := &session{
		items:    items,
		limit:    c.Bool("limit-primary"),
		asJSON:   c.Bool("json"),
		url:      url,
		renderer: renderer,
		optimize: deps.calculator.Optimize,
		out:      c.App.Writer,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "budget> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to start prompt: %v", err), 1)
	}
	defer rl.Close()

	fmt.Fprintf(s.out, "%d items loaded from %s\n%s\n", len(items), url, interactiveHelp)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		if s.handle(line) {
			return nil
		}
	}
}

// handle は1行の入力を処理する。終了ならtrue
func (s *session) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(s.out, interactiveHelp)
	case "menu":
		for _, item := range s.items {
			if item.Category != "" {
				fmt.Fprintf(s.out, "- %s: %d円 [%s]\n", item.Name, item.Price, item.Category)
			} else {
				fmt.Fprintf(s.out, "- %s: %d円\n", item.Name, item.Price)
			}
		}
	case "limit":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			fmt.Fprintln(s.out, "usage: limit on|off")
			return false
		}
		s.limit = fields[1] == "on"
		fmt.Fprintf(s.out, "limit-primary: %s\n", fields[1])
	default:
		s.calculate(fields[0])
	}
	return false
}

func (s *session) calculate(arg string) {
	budget, err := parseBudget(arg)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	result, err := s.optimize(s.items, budget, s.limit)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	resp := calculator.Response{
		Total:        result.Total,
		Items:        result.Items,
		Budget:       budget,
		URL:          s.url,
		LimitPrimary: s.limit,
		UseRenderer:  s.renderer,
	}
	if err := writeResult(s.out, resp, s.asJSON); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

// historyFile はプロンプト履歴の保存先。ホームが分からなければ履歴なし
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mealcalc_history")
}
