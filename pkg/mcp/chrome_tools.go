package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// ブラウザ操作ツール名
const (
	ToolChromeNavigate           = "chrome_navigate"
	ToolChromeClick              = "chrome_click"
	ToolChromeGetHTML            = "chrome_get_html"
	ToolChromeCurrentURL         = "chrome_current_url"
	ToolChromeWaitForNetworkIdle = "chrome_wait_for_network_idle"
	ToolChromeQuerySelectorAll   = "chrome_query_selector_all"
	ToolChromeClose              = "chrome_close"
)

// ChromeTools はレンダリングに必要なツール名の一覧
func ChromeTools() []string {
	return []string{
		ToolChromeNavigate,
		ToolChromeClick,
		ToolChromeGetHTML,
		ToolChromeCurrentURL,
		ToolChromeWaitForNetworkIdle,
		ToolChromeQuerySelectorAll,
		ToolChromeClose,
	}
}

// ChromeNavigate はブラウザで指定 URL に移動
func (c *Client) ChromeNavigate(ctx context.Context, url string) (string, error) {
	return c.callText(ctx, ToolChromeNavigate, map[string]interface{}{
		"url": url,
	})
}

// ChromeClick は指定セレクタの要素をクリック
func (c *Client) ChromeClick(ctx context.Context, selector string) (string, error) {
	return c.callText(ctx, ToolChromeClick, map[string]interface{}{
		"selector": selector,
	})
}

// ChromeGetHTML は現在のページのHTMLを取得
func (c *Client) ChromeGetHTML(ctx context.Context) (string, error) {
	return c.callText(ctx, ToolChromeGetHTML, map[string]interface{}{})
}

// ChromeCurrentURL はリダイレクト後を含む現在のURLを取得
func (c *Client) ChromeCurrentURL(ctx context.Context) (string, error) {
	return c.callText(ctx, ToolChromeCurrentURL, map[string]interface{}{})
}

// ChromeWaitForNetworkIdle は通信が落ち着くまで待つ
func (c *Client) ChromeWaitForNetworkIdle(ctx context.Context, timeoutMS int) error {
	_, err := c.CallTool(ctx, ToolChromeWaitForNetworkIdle, map[string]interface{}{
		"timeout": timeoutMS,
	})
	return err
}

// ChromeQuerySelectorAll はセレクタに一致する要素を、要素ごとに一意なセレクタの列で返す
func (c *Client) ChromeQuerySelectorAll(ctx context.Context, selector string) ([]string, error) {
	text, err := c.callText(ctx, ToolChromeQuerySelectorAll, map[string]interface{}{
		"selector": selector,
	})
	if err != nil {
		return nil, err
	}

	var selectors []string
	if err := json.Unmarshal([]byte(text), &selectors); err != nil {
		return nil, fmt.Errorf("invalid selector list: %w", err)
	}
	return selectors, nil
}

// ChromeClose は現在のタブを閉じる
func (c *Client) ChromeClose(ctx context.Context) error {
	_, err := c.CallTool(ctx, ToolChromeClose, map[string]interface{}{})
	return err
}

// callText はツールを呼び出し、最初のテキスト要素を返す
func (c *Client) callText(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	resp, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%s: empty response", name)
	}

	if resp.Content[0].Type != "" && resp.Content[0].Type != "text" {
		return "", fmt.Errorf("%s: invalid response format", name)
	}

	return resp.Content[0].Text, nil
}
