// Package calculator はメニュー取得から組み合わせ探索までのユースケース
// CLI・対話モード・HTTP APIから共通に使う
package calculator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
	"github.com/yayuyokano/meal-calculate/internal/domain/optimizer"
	"github.com/yayuyokano/meal-calculate/internal/domain/runid"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/metrics"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

// DefaultMaxBudget は受け付ける予算の上限
const DefaultMaxBudget = 100000

// MenuFetcher はメニュー取得のインターフェース
type MenuFetcher interface {
	FetchMenu(ctx context.Context, url string, useRenderer bool) ([]menu.Item, error)
}

// Request は計算リクエスト
type Request struct {
	Budget       int
	URL          string
	LimitPrimary bool
	UseRenderer  bool
}

// Response は計算結果
type Response struct {
	RunID        string
	Total        int
	Items        []menu.Item // 選ばれた組み合わせ（同じ品は繰り返し現れる）
	MenuItems    []menu.Item // 取得したメニュー全体
	Budget       int
	URL          string
	LimitPrimary bool
	UseRenderer  bool
}

// Service は計算サービス
type Service struct {
	fetcher   MenuFetcher
	maxBudget int
}

// NewService は新しいServiceを作成
func NewService(fetcher MenuFetcher, maxBudget int) *Service {
	if maxBudget <= 0 {
		maxBudget = DefaultMaxBudget
	}
	return &Service{
		fetcher:   fetcher,
		maxBudget: maxBudget,
	}
}

// MaxBudget は予算の上限を返す
func (s *Service) MaxBudget() int {
	return s.maxBudget
}

// ValidateBudget は予算が 0 以上かつ上限以下かを検証
func (s *Service) ValidateBudget(budget int) error {
	if budget < 0 {
		return apperr.InvalidArgument(fmt.Sprintf("budget must be a non-negative integer: %d", budget))
	}
	if budget > s.maxBudget {
		return apperr.InvalidArgument(fmt.Sprintf("budget must be at most %d: %d", s.maxBudget, budget))
	}
	return nil
}

// Calculate はメニューを取得し、予算内で最も予算に近い組み合わせを返す
// 予算の検証は取得より先に行う
func (s *Service) Calculate(ctx context.Context, req Request) (Response, error) {
	if err := s.ValidateBudget(req.Budget); err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.URL) == "" {
		return Response{}, apperr.InvalidArgument("menu url is required")
	}

	id := runid.New()
	logger.InfoCF("calculator", "Calculation started", map[string]interface{}{
		"run_id":        id.String(),
		"url":           req.URL,
		"budget":        req.Budget,
		"limit_primary": req.LimitPrimary,
		"use_renderer":  req.UseRenderer,
	})

	items, err := s.fetcher.FetchMenu(ctx, req.URL, req.UseRenderer)
	if err != nil {
		logger.ErrorCF("calculator", "Menu fetch failed", map[string]interface{}{
			"run_id": id.String(),
			"error":  err.Error(),
		})
		return Response{}, err
	}

	result, err := s.Optimize(items, req.Budget, req.LimitPrimary)
	if err != nil {
		return Response{}, err
	}

	logger.InfoCF("calculator", "Calculation completed", map[string]interface{}{
		"run_id":     id.String(),
		"menu_items": len(items),
		"total":      result.Total,
		"items":      len(result.Items),
	})

	return Response{
		RunID:        id.String(),
		Total:        result.Total,
		Items:        result.Items,
		MenuItems:    items,
		Budget:       req.Budget,
		URL:          req.URL,
		LimitPrimary: req.LimitPrimary,
		UseRenderer:  req.UseRenderer,
	}, nil
}

// Optimize は取得済みのメニューに対して探索だけを行う
func (s *Service) Optimize(items []menu.Item, budget int, limitPrimary bool) (optimizer.Result, error) {
	if err := s.ValidateBudget(budget); err != nil {
		return optimizer.Result{}, err
	}

	start := time.Now()
	result, err := optimizer.BestCombination(items, budget, limitPrimary)
	metrics.RecordOptimization(limitPrimary, time.Since(start), err)
	if err != nil {
		return optimizer.Result{}, err
	}

	logger.DebugCF("calculator", "Optimization finished", map[string]interface{}{
		"budget":        budget,
		"limit_primary": limitPrimary,
		"total":         result.Total,
		"duration_us":   time.Since(start).Microseconds(),
	})
	return result, nil
}

// FormatResult は結果を人が読むテキストにする
//
//	Best total: 900円 (2 items)
//	- 唐揚げ定食: 500円
//	- カレー: 400円
func FormatResult(total int, items []menu.Item) string {
	suffix := "s"
	if len(items) == 1 {
		suffix = ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Best total: %d円 (%d item%s)", total, len(items), suffix)
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s: %d円", item.Name, item.Price)
	}
	return b.String()
}
