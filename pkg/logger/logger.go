// Package logger はコンポーネント単位の構造化ログを提供する
//
//	logger.InfoCF("menufetch", "main page fetched", map[string]interface{}{
//	    "url":   url,
//	    "bytes": len(body),
//	})
//
// 出力はzerologで行う。Format が "json" ならJSON行、"console" なら人間向けの整形出力。
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config はログ設定
type Config struct {
	Level  string    // debug, info, warn, error（既定: info）
	Format string    // json, console（既定: json）
	Output io.Writer // 既定: os.Stderr
}

var (
	mu  sync.RWMutex
	log zerolog.Logger
)

func init() {
	Init(Config{})
}

// Init はグローバルロガーを設定する。複数回呼んでもよい
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Logger は現在のzerologロガーを返す
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func emit(level zerolog.Level, component, message string, fields map[string]interface{}) {
	l := Logger()
	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	ev = ev.Str("component", component)
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(message)
}

// DebugCF はフィールド付きのDEBUGログを出力
func DebugCF(component, message string, fields map[string]interface{}) {
	emit(zerolog.DebugLevel, component, message, fields)
}

// InfoCF はフィールド付きのINFOログを出力
func InfoCF(component, message string, fields map[string]interface{}) {
	emit(zerolog.InfoLevel, component, message, fields)
}

// WarnCF はフィールド付きのWARNログを出力
func WarnCF(component, message string, fields map[string]interface{}) {
	emit(zerolog.WarnLevel, component, message, fields)
}

// ErrorCF はフィールド付きのERRORログを出力
func ErrorCF(component, message string, fields map[string]interface{}) {
	emit(zerolog.ErrorLevel, component, message, fields)
}

// InfoC はINFOログを出力
func InfoC(component, message string) {
	emit(zerolog.InfoLevel, component, message, nil)
}

// WarnC はWARNログを出力
func WarnC(component, message string) {
	emit(zerolog.WarnLevel, component, message, nil)
}
