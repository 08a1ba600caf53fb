package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yayuyokano/meal-calculate/internal/adapter/web"
	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/pkg/cron"
	"github.com/yayuyokano/meal-calculate/pkg/health"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
	"github.com/yayuyokano/meal-calculate/pkg/mcp"
)

const (
	healthCheckTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.host/server.port)",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg := configFrom(c)
	deps := buildDependencies(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := web.NewHandler(
		deps.calculator,
		deps.directory(ctx),
		deps.healthChecker(),
		cfg.Source.DefaultURL,
		cfg.Renderer.Enabled,
	)

	addr := cfg.Addr()
	if a := c.String("addr"); a != "" {
		addr = a
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Refresh.Schedule != "" {
		scheduler := cron.NewScheduler(cfg.Refresh.Schedule, deps.refreshJob(handler))
		go func() {
			if err := scheduler.Run(ctx); err != nil {
				logger.ErrorCF("main", "Refresh scheduler stopped", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoCF("main", "Starting mealcalc server", map[string]interface{}{
			"addr":     addr,
			"renderer": cfg.Renderer.Enabled,
			"refresh":  cfg.Refresh.Schedule,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	case <-ctx.Done():
	}

	logger.InfoC("main", "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// healthChecker は /health で実行するチェックを組み立てる
func (d *Dependencies) healthChecker() *health.Checker {
	checker := health.NewChecker()
	checker.Register("menu_source", health.HTTPCheck(d.cfg.Source.DefaultURL, healthCheckTimeout))
	if d.mcpClient != nil {
		checker.Register("renderer", health.MCPToolsCheck(d.mcpClient, healthCheckTimeout, mcp.ChromeTools()))
	}
	return checker
}

// directorySetter は食堂一覧の差し替え先
type directorySetter interface {
	SetDirectory(dir *cafeteria.Directory)
}

// refreshJob は定期更新のジョブ。抽出結果でサーバーの一覧を差し替える
func (d *Dependencies) refreshJob(target directorySetter) cron.Job {
	return func(ctx context.Context) error {
		list, err := d.refreshCafeterias(ctx, false)
		if err != nil {
			return err
		}
		target.SetDirectory(cafeteria.NewDirectory(list, d.cfg.Source.URLTemplate))
		return nil
	}
}
