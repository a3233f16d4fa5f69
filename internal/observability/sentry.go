package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
)

// InitSentry без DSN ничего не делает. Возвращает flush для defer.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		ServerName:       "disclosure-bot",
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr шлёт ошибку с тегами чата и операции, если они есть в контексте.
func CaptureErr(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	if ctx != nil {
		hub.ConfigureScope(func(scope *sentry.Scope) {
			if id, ok := ctxutil.ChatID(ctx); ok {
				scope.SetTag("chat_id", strconv.FormatInt(id, 10))
			}
			if op, ok := ctxutil.Op(ctx); ok {
				scope.SetTag("op", op)
			}
		})
	}
	hub.CaptureException(err)
}

// CapturePanic — то же для значения из recover.
func CapturePanic(ctx context.Context, r any) error {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	err = fmt.Errorf("panic: %w", err)
	CaptureErr(ctx, err)
	return err
}
