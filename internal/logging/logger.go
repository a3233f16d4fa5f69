package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
)

// Log — корневой логгер бота. Level меняется на лету через /loglevel.
type Log struct {
	Base  *zap.Logger
	Level zap.AtomicLevel
}

func Init(level, env string) (*Log, error) {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}

	cfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(env, "prod") {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel), zap.Fields(zap.String("service", "disclosure-bot")))
	if err != nil {
		return nil, err
	}
	return &Log{Base: base, Level: lvl}, nil
}

func (l *Log) Sync() { _ = l.Base.Sync() }

// For — логгер с chat_id и op из контекста апдейта.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if ctx == nil {
		return base
	}
	fields := make([]zap.Field, 0, 2)
	if id, ok := ctxutil.ChatID(ctx); ok {
		fields = append(fields, zap.Int64("chat_id", id))
	}
	if op, ok := ctxutil.Op(ctx); ok {
		fields = append(fields, zap.String("op", op))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
