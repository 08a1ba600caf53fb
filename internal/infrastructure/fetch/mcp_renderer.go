package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

// DefaultToggleSelector はカテゴリを開くトグル要素のセレクタ
const DefaultToggleSelector = ".toggle-title"

// DefaultIdleTimeoutMS はネットワーク待機のタイムアウト
const DefaultIdleTimeoutMS = 10000

// closeTimeout はタブを閉じる処理の猶予
const closeTimeout = 5 * time.Second

// Browser はブラウザ操作ツールの集合（pkg/mcp.Client が実装する）
type Browser interface {
	ChromeNavigate(ctx context.Context, url string) (string, error)
	ChromeWaitForNetworkIdle(ctx context.Context, timeoutMS int) error
	ChromeQuerySelectorAll(ctx context.Context, selector string) ([]string, error)
	ChromeClick(ctx context.Context, selector string) (string, error)
	ChromeGetHTML(ctx context.Context) (string, error)
	ChromeCurrentURL(ctx context.Context) (string, error)
	ChromeClose(ctx context.Context) error
}

// MCPRenderer はMCP経由のブラウザでページを描画して取得する
type MCPRenderer struct {
	browser        Browser
	toggleSelector string
	idleTimeoutMS  int
}

// NewMCPRenderer は新しいMCPRendererを作成
func NewMCPRenderer(browser Browser, toggleSelector string, idleTimeoutMS int) *MCPRenderer {
	if toggleSelector == "" {
		toggleSelector = DefaultToggleSelector
	}
	if idleTimeoutMS <= 0 {
		idleTimeoutMS = DefaultIdleTimeoutMS
	}
	return &MCPRenderer{
		browser:        browser,
		toggleSelector: toggleSelector,
		idleTimeoutMS:  idleTimeoutMS,
	}
}

// Render はページを開き、通信が落ち着くのを待ってから全トグルを開き、描画後のHTMLを返す
// 個々のクリック失敗は無視する。タブは必ず閉じる
func (r *MCPRenderer) Render(ctx context.Context, url string) (Document, error) {
	defer r.close(ctx)

	if _, err := r.browser.ChromeNavigate(ctx, url); err != nil {
		return Document{}, fmt.Errorf("navigate: %w", err)
	}

	if err := r.browser.ChromeWaitForNetworkIdle(ctx, r.idleTimeoutMS); err != nil {
		return Document{}, fmt.Errorf("wait for network idle: %w", err)
	}

	r.expandToggles(ctx)

	html, err := r.browser.ChromeGetHTML(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("get html: %w", err)
	}

	finalURL, err := r.browser.ChromeCurrentURL(ctx)
	if err != nil || finalURL == "" {
		finalURL = url
	}

	return Document{Body: html, URL: finalURL}, nil
}

// expandToggles は全トグルをクリックする
func (r *MCPRenderer) expandToggles(ctx context.Context) {
	selectors, err := r.browser.ChromeQuerySelectorAll(ctx, r.toggleSelector)
	if err != nil {
		logger.WarnCF("renderer", "Toggle lookup failed", map[string]interface{}{
			"selector": r.toggleSelector,
			"error":    err.Error(),
		})
		return
	}

	clicked := 0
	for _, selector := range selectors {
		if _, err := r.browser.ChromeClick(ctx, selector); err != nil {
			logger.WarnCF("renderer", "Toggle click failed", map[string]interface{}{
				"selector": selector,
				"error":    err.Error(),
			})
			continue
		}
		clicked++
	}

	if clicked > 0 {
		if err := r.browser.ChromeWaitForNetworkIdle(ctx, r.idleTimeoutMS); err != nil {
			logger.WarnCF("renderer", "Network did not settle after toggles", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.DebugCF("renderer", "Toggles expanded", map[string]interface{}{
		"found":   len(selectors),
		"clicked": clicked,
	})
}

func (r *MCPRenderer) close(ctx context.Context) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := r.browser.ChromeClose(closeCtx); err != nil {
		logger.WarnCF("renderer", "Failed to close tab", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
