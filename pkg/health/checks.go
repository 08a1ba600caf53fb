package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yayuyokano/meal-calculate/pkg/mcp"
)

// HTTPCheck は URL に GET して 200 が返るかを確認する
func HTTPCheck(url string, timeout time.Duration) CheckFunc {
	client := &http.Client{Timeout: timeout}
	return func() (bool, string) {
		resp, err := client.Get(url)
		if err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Sprintf("status %d", resp.StatusCode)
		}
		return true, "ok"
	}
}

// ToolLister は利用可能なツールを列挙できるMCPクライアント
type ToolLister interface {
	Ping(ctx context.Context) error
	ListTools(ctx context.Context) (*mcp.ToolListResponse, error)
}

// MCPToolsCheck はレンダリング用MCPサーバーが到達可能で、必要なツールを備えているかを確認する
func MCPToolsCheck(client ToolLister, timeout time.Duration, required []string) CheckFunc {
	return func() (bool, string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := client.Ping(ctx); err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}

		tools, err := client.ListTools(ctx)
		if err != nil {
			return false, fmt.Sprintf("list tools: %v", err)
		}

		var missing []string
		for _, name := range required {
			if !tools.HasTool(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return false, fmt.Sprintf("missing tools: %s", strings.Join(missing, ", "))
		}

		return true, fmt.Sprintf("%d/%d tools ok", len(required), len(required))
	}
}
