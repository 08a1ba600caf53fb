// Package cron はcron式に従ってジョブを定期実行する
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

// Job は定期実行される処理
type Job func(ctx context.Context) error

// Scheduler は単一ジョブのスケジューラ
// ジョブは逐次実行で、前回の実行が終わるまで次のtickを待たない
type Scheduler struct {
	expr  string
	job   Job
	now   func() time.Time
	after func(d time.Duration) <-chan time.Time
}

// NewScheduler は新しいSchedulerを作成
func NewScheduler(expr string, job Job) *Scheduler {
	return &Scheduler{
		expr:  expr,
		job:   job,
		now:   time.Now,
		after: time.After,
	}
}

// Expr はcron式を返す
func (s *Scheduler) Expr() string {
	return s.expr
}

// Validate はcron式を検証する
func (s *Scheduler) Validate() error {
	if s.expr == "" {
		return fmt.Errorf("cron expression is empty")
	}
	g := gronx.New()
	if !g.IsValid(s.expr) {
		return fmt.Errorf("invalid cron expression: %q", s.expr)
	}
	if s.job == nil {
		return fmt.Errorf("job is nil")
	}
	return nil
}

// Next は after より後の次回実行時刻を返す
func (s *Scheduler) Next(after time.Time) (time.Time, error) {
	next, err := gronx.NextTickAfter(s.expr, after, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("next tick of %q: %w", s.expr, err)
	}
	return next, nil
}

// Run は ctx がキャンセルされるまでジョブを実行し続ける
// ジョブのエラーはログに出して次回に進む
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		now := s.now()
		next, err := s.Next(now)
		if err != nil {
			return err
		}

		logger.DebugCF("cron", "Next run scheduled", map[string]interface{}{
			"expr": s.expr,
			"next": next.Format(time.RFC3339),
		})

		select {
		case <-ctx.Done():
			return nil
		case <-s.after(next.Sub(now)):
		}

		start := s.now()
		if err := s.job(ctx); err != nil {
			logger.WarnCF("cron", "Scheduled job failed", map[string]interface{}{
				"expr":  s.expr,
				"error": err.Error(),
			})
			continue
		}
		logger.InfoCF("cron", "Scheduled job completed", map[string]interface{}{
			"expr":        s.expr,
			"duration_ms": s.now().Sub(start).Milliseconds(),
		})
	}
}
