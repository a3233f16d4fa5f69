//go:build testutil
// +build testutil

// Package testdb — одноразовый Postgres в контейнере с накатанными миграциями сессий.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Spok95/disclosure-portal-bot/internal/db"
)

const image = "postgres:17-alpine"

type DBHandle struct {
	DB        *sql.DB
	container *postgres.PostgresContainer
}

// Close закрывает пул и гасит контейнер; повторный вызов безопасен.
func (h *DBHandle) Close() {
	if h.DB != nil {
		_ = h.DB.Close()
		h.DB = nil
	}
	if h.container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.container.Terminate(ctx)
		h.container = nil
	}
}

// Reset чистит таблицу сессий между тестами одного контейнера.
func (h *DBHandle) Reset(ctx context.Context) error {
	_, err := h.DB.ExecContext(ctx, `TRUNCATE chat_sessions`)
	return err
}

func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage(image),
		postgres.WithDatabase("portal"),
		postgres.WithUsername("portal"),
		postgres.WithPassword("portal"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres container: %w", err)
	}
	h := &DBHandle{container: pg}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		h.Close()
		return nil, err
	}
	if h.DB, err = sql.Open("postgres", uri); err != nil {
		h.Close()
		return nil, err
	}
	if err := h.DB.PingContext(ctx); err != nil {
		h.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	// те же миграции, что и в проде
	if err := db.Migrate(ctx, h.DB); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}
