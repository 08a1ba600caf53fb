package health

import (
	"sort"
	"sync"
)

// CheckFunc は単一のヘルスチェック。ok と人が読むメッセージを返す
type CheckFunc func() (bool, string)

// Result は1チェックの結果
type Result struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Report はすべてのチェック結果
type Report struct {
	OK     bool     `json:"ok"`
	Checks []Result `json:"checks"`
}

// Checker は名前付きチェックの集合
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker は新しいCheckerを作成
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// Register はチェックを登録する。同名は上書き
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run は全チェックを名前順に実行する。チェックが1つもなければ OK
func (c *Checker) Run() Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	sort.Strings(names)

	report := Report{OK: true, Checks: make([]Result, 0, len(names))}
	for _, name := range names {
		ok, msg := checks[name]()
		report.Checks = append(report.Checks, Result{Name: name, OK: ok, Message: msg})
		if !ok {
			report.OK = false
		}
	}
	return report
}
