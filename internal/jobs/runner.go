package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
	"github.com/Spok95/disclosure-portal-bot/internal/logging"
	"github.com/Spok95/disclosure-portal-bot/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func New(ctx context.Context, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{ctx: ctx, log: log}
}

func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				_ = r.RunOnce(name, fn)
			}
		}
	}()
}

// RunOnce — один прогон с метриками; паника не роняет цикл.
func (r *Runner) RunOnce(name string, fn Job) (err error) {
	ctx := ctxutil.WithOp(r.ctx, "job:"+name)
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in job %s: %v", name, p)
		}
		if err != nil {
			jobErrors.WithLabelValues(name).Inc()
			observability.CaptureErr(ctx, err)
			logging.For(ctx, r.log).Error("job failed", zap.Error(err))
		}
		jobRuns.WithLabelValues(name).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()
	return fn(ctx)
}
