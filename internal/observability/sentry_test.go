package observability

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
)

// captured ставит клиента, который складывает события в память и ничего не отправляет.
func captured(t *testing.T) func() []*sentry.Event {
	t.Helper()
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	err := sentry.Init(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })
	return func() []*sentry.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]*sentry.Event(nil), events...)
	}
}

func TestCaptureErr_TagsFromContext(t *testing.T) {
	events := captured(t)
	ctx := ctxutil.WithOp(ctxutil.WithChatID(context.Background(), 77), "message")

	CaptureErr(ctx, errors.New("portal down"))

	got := events()
	require.Len(t, got, 1)
	assert.Equal(t, "77", got[0].Tags["chat_id"])
	assert.Equal(t, "message", got[0].Tags["op"])
}

func TestCaptureErr_NilIsIgnored(t *testing.T) {
	events := captured(t)
	CaptureErr(context.Background(), nil)
	assert.Empty(t, events())
}

func TestCapturePanic_WrapsValue(t *testing.T) {
	events := captured(t)
	err := CapturePanic(context.Background(), "boom")
	assert.EqualError(t, err, "panic: boom")
	assert.Len(t, events(), 1)

	base := errors.New("nil map")
	assert.ErrorIs(t, CapturePanic(context.Background(), base), base)
}

func TestInitSentry_EmptyDSN(t *testing.T) {
	flush, err := InitSentry("", "dev", "test")
	require.NoError(t, err)
	flush()
}
