package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultTimeout は1リクエストあたりのタイムアウト
const DefaultTimeout = 30 * time.Second

// Client は MCP クライアント
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption はClientの設定
type ClientOption func(*Client)

// WithTimeout はリクエストタイムアウトを設定
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient は新しい MCP クライアントを作成
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL は接続先を返す
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTools は利用可能なツール一覧を取得
func (c *Client) ListTools(ctx context.Context) (*ToolListResponse, error) {
	req := MCPRequest{
		Method: "tools/list",
		Params: make(map[string]interface{}),
	}

	var result ToolListResponse
	if err := c.invoke(ctx, req, &result); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return &result, nil
}

// CallTool は指定されたツールを呼び出す
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolCallResponse, error) {
	req := MCPRequest{
		Method: "tools/call",
		Params: map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}

	var result ToolCallResponse
	if err := c.invoke(ctx, req, &result); err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	if result.IsError {
		return nil, fmt.Errorf("call %s: tool error: %s", name, result.firstText())
	}
	return &result, nil
}

// invoke はリクエストを送り、result をデコードする
func (c *Client) invoke(ctx context.Context, req MCPRequest, out interface{}) error {
	resp, err := c.call(ctx, req)
	if err != nil {
		return err
	}

	if resp.Error != nil {
		return fmt.Errorf("MCP error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	if len(resp.Result) == 0 {
		return fmt.Errorf("empty result")
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

// call は MCP サーバーに HTTP リクエストを送信
func (c *Client) call(ctx context.Context, req MCPRequest) (*MCPResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status: %d", httpResp.StatusCode)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var mcpResp MCPResponse
	if err := json.Unmarshal(respBody, &mcpResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &mcpResp, nil
}

// Ping は MCP サーバーのヘルスチェック
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", httpResp.StatusCode)
	}

	return nil
}
