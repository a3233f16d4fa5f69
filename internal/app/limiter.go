package app

import "sync"

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// ChatLimiter — один апдейт на чат за раз. Тот же замок берут таймер повторной отправки кода
// и опрос уведомлений. Запись о чате живёт, пока замок кто-то держит или ждёт.
type ChatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*chatLock
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byID: make(map[int64]*chatLock)}
}

func (l *ChatLimiter) Lock(chatID int64) func() {
	l.mu.Lock()
	c, ok := l.byID[chatID]
	if !ok {
		c = &chatLock{}
		l.byID[chatID] = c
	}
	c.refs++
	l.mu.Unlock()

	c.mu.Lock()
	return func() {
		c.mu.Unlock()
		l.mu.Lock()
		c.refs--
		if c.refs == 0 {
			delete(l.byID, chatID)
		}
		l.mu.Unlock()
	}
}

func (l *ChatLimiter) chats() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
