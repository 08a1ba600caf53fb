// Package fetch はメニューページの取得手段（素のHTTPとブラウザ描画）を提供する
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultUserAgent は取得時のUser-Agent
const DefaultUserAgent = "Mozilla/5.0 (compatible; mealcalc/1.0; +https://west2-univ.jp/)"

// DefaultTimeout は1リクエストあたりのタイムアウト
const DefaultTimeout = 30 * time.Second

// maxBodyBytes は読み込む本文の上限
const maxBodyBytes = 10 << 20

// Document は取得した文書
type Document struct {
	Body string // デコード済みHTML
	URL  string // リダイレクト後のURL
}

// HTTPGetter は素のHTTP GETでページを取得する
type HTTPGetter struct {
	client    *http.Client
	userAgent string
}

// HTTPGetterOption はHTTPGetterの設定
type HTTPGetterOption func(*HTTPGetter)

// WithUserAgent はUser-Agentを設定
func WithUserAgent(ua string) HTTPGetterOption {
	return func(g *HTTPGetter) {
		if ua != "" {
			g.userAgent = ua
		}
	}
}

// WithTimeout はリクエストタイムアウトを設定
func WithTimeout(timeout time.Duration) HTTPGetterOption {
	return func(g *HTTPGetter) {
		if timeout > 0 {
			g.client.Timeout = timeout
		}
	}
}

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(client *http.Client) HTTPGetterOption {
	return func(g *HTTPGetter) {
		if client != nil {
			g.client = client
		}
	}
}

// NewHTTPGetter は新しいHTTPGetterを作成
func NewHTTPGetter(opts ...HTTPGetterOption) *HTTPGetter {
	g := &HTTPGetter{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get はURLを取得し、Content-Typeの文字コードで本文をデコードする
// 文字コードの指定がなければUTF-8として扱う
func (g *HTTPGetter) Get(ctx context.Context, url string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := g.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("http status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Document{}, fmt.Errorf("read body: %w", err)
	}

	body, err := decodeBody(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return Document{}, err
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Document{Body: body, URL: finalURL}, nil
}

// decodeBody は本文をUTF-8文字列にする
func decodeBody(raw []byte, contentType string) (string, error) {
	name := charsetOf(contentType)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return strings.ToValidUTF8(string(raw), "�"), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", name, err)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", name, err)
	}
	return string(decoded), nil
}

// charsetOf はContent-Typeのcharsetパラメータを返す
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}
