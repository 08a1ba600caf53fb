package main

import (
	"context"
	"time"

	"github.com/yayuyokano/meal-calculate/internal/adapter/config"
	"github.com/yayuyokano/meal-calculate/internal/application/calculator"
	"github.com/yayuyokano/meal-calculate/internal/application/menufetch"
	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/fetch"
	cafeteriarepo "github.com/yayuyokano/meal-calculate/internal/infrastructure/persistence/cafeteria"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
	"github.com/yayuyokano/meal-calculate/pkg/mcp"
)

// Dependencies はアプリケーション依存関係
type Dependencies struct {
	cfg        *config.Config
	getter     menufetch.PageGetter
	mcpClient  *mcp.Client
	renderer   menufetch.PageRenderer
	fetcher    *menufetch.Fetcher
	calculator *calculator.Service
	repo       *cafeteriarepo.JSONRepository
}

// buildDependencies は依存関係を構築
func buildDependencies(cfg *config.Config) *Dependencies {
	// 1. HTTP取得
	getter := fetch.NewHTTPGetter(
		fetch.WithUserAgent(cfg.Source.UserAgent),
		fetch.WithTimeout(cfg.SourceTimeout()),
	)

	// 2. ブラウザ描画（有効時のみ）
	var mcpClient *mcp.Client
	var renderer menufetch.PageRenderer
	if cfg.Renderer.Enabled {
		mcpClient = mcp.NewClient(cfg.Renderer.MCPURL, mcp.WithTimeout(cfg.SourceTimeout()))
		renderer = fetch.NewMCPRenderer(mcpClient, cfg.Renderer.ToggleSelector, cfg.Renderer.IdleTimeoutMS)
		logger.DebugCF("main", "Renderer enabled", map[string]interface{}{
			"mcp_url": cfg.Renderer.MCPURL,
		})
	}

	// 3. メニュー取得とユースケース
	fetcher := menufetch.NewFetcher(getter, renderer,
		menufetch.WithFragmentInterval(cfg.FragmentInterval()),
		menufetch.WithToggleMarker(cfg.Renderer.ToggleSelector),
	)

	return &Dependencies{
		cfg:        cfg,
		getter:     getter,
		mcpClient:  mcpClient,
		renderer:   renderer,
		fetcher:    fetcher,
		calculator: calculator.NewService(fetcher, cfg.Optimizer.MaxBudget),
		repo:       cafeteriarepo.NewJSONRepository(cfg.Source.CafeteriasFile),
	}
}

// directory はデータファイルから食堂一覧を読み込む
func (d *Dependencies) directory(ctx context.Context) *cafeteria.Directory {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dir, err := cafeteriarepo.LoadDirectory(ctx, d.repo, d.cfg.Source.URLTemplate)
	if err != nil {
		logger.WarnCF("main", "Falling back to built-in cafeteria list", map[string]interface{}{
			"path":  d.repo.Path(),
			"error": err.Error(),
		})
		return cafeteria.NewDirectory(nil, d.cfg.Source.URLTemplate)
	}
	return dir
}
