package app

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
)

// maxPending — сколько апдейтов одного чата держим в очереди, лишние отбрасываем.
const maxPending = 100

type UpdateFunc func(ctx context.Context, upd tgbotapi.Update)

type chatBacklog struct {
	pending []tgbotapi.Update
}

// ChatQueue — апдейты одного чата обрабатываются строго в порядке поступления,
// разные чаты идут параллельно. На чат не больше одного воркера, без работы он выходит.
type ChatQueue struct {
	handle UpdateFunc
	log    *zap.Logger

	mu   sync.Mutex
	byID map[int64]*chatBacklog
	wg   sync.WaitGroup
}

func NewChatQueue(handle UpdateFunc, log *zap.Logger) *ChatQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatQueue{handle: handle, log: log, byID: make(map[int64]*chatBacklog)}
}

// Push не блокирует цикл чтения апдейтов.
func (q *ChatQueue) Push(ctx context.Context, upd tgbotapi.Update) {
	chatID := updateChat(upd)

	q.mu.Lock()
	if b, ok := q.byID[chatID]; ok {
		if len(b.pending) >= maxPending {
			q.mu.Unlock()
			metrics.HandlerErrors.Inc()
			q.log.Warn("chat backlog is full, update dropped", zap.Int64("chat_id", chatID), zap.Int("update_id", upd.UpdateID))
			return
		}
		b.pending = append(b.pending, upd)
		q.mu.Unlock()
		return
	}
	b := &chatBacklog{}
	q.byID[chatID] = b
	q.wg.Add(1)
	q.mu.Unlock()

	go q.drain(ctx, chatID, b, upd)
}

func (q *ChatQueue) drain(ctx context.Context, chatID int64, b *chatBacklog, upd tgbotapi.Update) {
	defer q.wg.Done()
	for {
		q.handle(ctx, upd)

		q.mu.Lock()
		if len(b.pending) == 0 {
			delete(q.byID, chatID)
			q.mu.Unlock()
			return
		}
		upd = b.pending[0]
		b.pending[0] = tgbotapi.Update{}
		b.pending = b.pending[1:]
		q.mu.Unlock()
	}
}

// Wait ждёт, пока все воркеры разберут свои очереди.
func (q *ChatQueue) Wait() { q.wg.Wait() }

func (q *ChatQueue) chats() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byID)
}
