// Package menufetch はメニューページとカテゴリ別フラグメントを取得し、品の一覧にまとめる
package menufetch

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/fetch"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/htmlmenu"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/metrics"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

const component = "menufetch"

// PageGetter は素のHTTP取得
type PageGetter interface {
	Get(ctx context.Context, url string) (fetch.Document, error)
}

// PageRenderer はJavaScriptを実行するブラウザでの取得
type PageRenderer interface {
	Render(ctx context.Context, url string) (fetch.Document, error)
}

// Fetcher はメニュー取得サービス
type Fetcher struct {
	getter   PageGetter
	renderer PageRenderer
	limiter  *rate.Limiter
	marker   string
}

// Option はFetcherの設定
type Option func(*Fetcher)

// WithFragmentInterval はフラグメント取得の最小間隔を設定する（0以下で無制限）
func WithFragmentInterval(interval time.Duration) Option {
	return func(f *Fetcher) {
		if interval > 0 {
			f.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithToggleMarker はカテゴリ見出しのclassを設定する（先頭の "." は無視）
func WithToggleMarker(marker string) Option {
	return func(f *Fetcher) {
		if m := strings.TrimPrefix(strings.TrimSpace(marker), "."); m != "" {
			f.marker = m
		}
	}
}

// NewFetcher は新しいFetcherを作成
// renderer は nil でもよい（その場合ブラウザ描画の要求は失敗する）
func NewFetcher(getter PageGetter, renderer PageRenderer, opts ...Option) *Fetcher {
	f := &Fetcher{
		getter:   getter,
		renderer: renderer,
		marker:   htmlmenu.DefaultToggleMarker,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RendererAvailable はブラウザ描画が使えるかを返す
func (f *Fetcher) RendererAvailable() bool {
	return f.renderer != nil
}

// FetchMenu はメニューを取得して重複のない品の一覧を返す
//
// メインページの取得失敗とブラウザ描画の不在は Retrieval、品が1件も取れなければ ExtractionEmpty。
// 個々のフラグメントの失敗はログに残して読み飛ばす。
func (f *Fetcher) FetchMenu(ctx context.Context, url string, useRenderer bool) ([]menu.Item, error) {
	start := time.Now()
	mode := metrics.ModeHTTP
	if useRenderer {
		mode = metrics.ModeRenderer
	}

	items, err := f.fetchMenu(ctx, url, useRenderer)
	metrics.RecordMenuFetch(mode, len(items), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logger.InfoCF(component, "Menu fetched", map[string]interface{}{
		"url":         url,
		"mode":        mode,
		"items":       len(items),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return items, nil
}

func (f *Fetcher) fetchMenu(ctx context.Context, url string, useRenderer bool) ([]menu.Item, error) {
	// 1. メインページ
	doc, err := f.retrieve(ctx, url, useRenderer)
	if err != nil {
		return nil, err
	}

	// 2. カテゴリ表とメインページの品
	labels := htmlmenu.ResolveCategoryLabels(doc.Body, f.marker)
	mainParser := htmlmenu.NewParser(htmlmenu.WithHeadingTracking(f.marker, labels))
	mainParser.FeedString(doc.Body)
	groups := [][]menu.Item{mainParser.Items()}

	logger.DebugCF(component, "Main document parsed", map[string]interface{}{
		"url":    doc.URL,
		"items":  len(groups[0]),
		"labels": len(labels),
	})

	// 3. フラグメント
	endpoints := htmlmenu.DiscoverFragmentEndpoints(doc.Body, doc.URL)
	for _, endpoint := range endpoints {
		fragmentItems, err := f.fetchFragment(ctx, endpoint, labels)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperr.Retrieval("menu fetch cancelled", ctx.Err())
			}
			metrics.RecordFragmentFailure()
			logger.WarnCF(component, "Fragment skipped", map[string]interface{}{
				"endpoint": endpoint,
				"error":    err.Error(),
			})
			continue
		}
		groups = append(groups, fragmentItems)
	}

	// 4. 統合
	items := menu.Merge(groups...)
	if len(items) == 0 {
		return nil, apperr.ExtractionEmpty("no menu items found; the site structure may have changed")
	}
	return items, nil
}

func (f *Fetcher) retrieve(ctx context.Context, url string, useRenderer bool) (fetch.Document, error) {
	if useRenderer {
		if f.renderer == nil {
			return fetch.Document{}, apperr.Retrieval("browser rendering is not available", nil)
		}
		doc, err := f.renderer.Render(ctx, url)
		if err != nil {
			return fetch.Document{}, apperr.Retrieval("failed to render menu page", err)
		}
		logger.InfoCF(component, "Main page rendered", map[string]interface{}{
			"url":       url,
			"final_url": doc.URL,
			"bytes":     len(doc.Body),
		})
		return doc, nil
	}

	doc, err := f.getter.Get(ctx, url)
	if err != nil {
		return fetch.Document{}, apperr.Retrieval("failed to fetch menu page", err)
	}
	if doc.URL == "" {
		doc.URL = url
	}
	logger.InfoCF(component, "Main page fetched", map[string]interface{}{
		"url":   url,
		"bytes": len(doc.Body),
	})
	return doc, nil
}

func (f *Fetcher) fetchFragment(ctx context.Context, endpoint string, labels map[string]string) ([]menu.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	doc, err := f.getter.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	category := htmlmenu.LookupFragmentCategory(endpoint, labels)
	parser := htmlmenu.NewParser(htmlmenu.WithCategory(category))
	parser.FeedString(doc.Body)
	items := parser.Items()

	logger.InfoCF(component, "Fragment fetched", map[string]interface{}{
		"endpoint": endpoint,
		"category": category,
		"items":    len(items),
	})
	return items, nil
}
