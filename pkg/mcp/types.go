package mcp

import "github.com/goccy/go-json"

// MCPRequest は MCP サーバーへのリクエスト
type MCPRequest struct {
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

// MCPResponse は MCP サーバーからのレスポンス
// result はメソッドごとに形が違うため、呼び出し側でデコードする
type MCPResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *MCPError       `json:"error,omitempty"`
}

// MCPError は MCP エラー
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Tool は MCP ツール定義
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// ToolListResponse は tools/list のレスポンス
type ToolListResponse struct {
	Tools []Tool `json:"tools"`
}

// HasTool は指定名のツールがあるかを判定
func (r *ToolListResponse) HasTool(name string) bool {
	for _, tool := range r.Tools {
		if tool.Name == name {
			return true
		}
	}
	return false
}

// ContentBlock は tools/call の結果要素
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolCallResponse は tools/call のレスポンス
type ToolCallResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

func (r *ToolCallResponse) firstText() string {
	for _, block := range r.Content {
		if block.Text != "" {
			return block.Text
		}
	}
	return ""
}
