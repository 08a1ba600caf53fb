package runid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunID は1回の計算（取得〜最適化）を識別する値オブジェクト
// ログの相関とAPIレスポンスに使う
type RunID struct {
	value string
}

// New は新しいRunIDを生成
func New() RunID {
	return NewAt(time.Now())
}

// NewAt は指定時刻でRunIDを生成
func NewAt(now time.Time) RunID {
	// フォーマット: YYYYMMDD-HHMMSS-{UUID先頭8文字}
	datePrefix := now.Format("20060102-150405")
	uuidStr := uuid.New().String()[:8]

	return RunID{
		value: fmt.Sprintf("%s-%s", datePrefix, uuidStr),
	}
}

// FromString は文字列からRunIDを復元
func FromString(s string) RunID {
	return RunID{value: s}
}

// String はRunIDの文字列表現を返す
func (r RunID) String() string {
	return r.value
}

// IsZero はRunIDがゼロ値かを判定
func (r RunID) IsZero() bool {
	return r.value == ""
}
