package jobs

import (
	"context"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
	"github.com/Spok95/disclosure-portal-bot/internal/logging"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

type NotificationSource interface {
	Notifications(ctx context.Context, instID int64) ([]models.Notification, error)
}

// Locker — тот же замок по чату, что и у обработчиков апдейтов.
type Locker interface {
	Lock(chatID int64) func()
}

// Pusher отправляет сообщение в чат.
type Pusher func(ctx context.Context, chatID int64, text string) error

// NotificationPoller проверяет уведомления вошедших учреждений и присылает бейдж, когда непрочитанных стало больше.
type NotificationPoller struct {
	store session.Store
	src   NotificationSource
	lock  Locker
	push  Pusher
	log   *zap.Logger
}

func NewNotificationPoller(store session.Store, src NotificationSource, lock Locker, push Pusher, log *zap.Logger) *NotificationPoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationPoller{store: store, src: src, lock: lock, push: push, log: log}
}

// Poll — Job для Runner.Every.
func (p *NotificationPoller) Poll(ctx context.Context) error {
	// 1) Кандидаты
	list, err := p.store.ListInstitutions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	var errs []error
	for _, s := range list {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.check(ctx, s.ChatID, s.InstitutionID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *NotificationPoller) check(ctx context.Context, chatID, instID int64) error {
	ctx = ctxutil.WithChatID(ctx, chatID)
	items, err := p.src.Notifications(ctx, instID)
	if err != nil {
		logging.For(ctx, p.log).Warn("poll notifications", zap.Int64("institution_id", instID), zap.Error(err))
		return nil
	}
	unread := models.UnreadCount(items)

	unlock := p.lock.Lock(chatID)
	defer unlock()

	// сессию перечитываем под замком: пользователь мог выйти или открыть уведомления
	s, err := p.store.Get(ctx, chatID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !s.IsInstitution() || s.InstitutionID != instID || s.LastUnread == unread {
		return nil
	}

	// 2) Отправка
	if unread > s.LastUnread {
		if err := p.push(ctx, chatID, badgeText(unread, items)); err != nil {
			return fmt.Errorf("push chat %d: %w", chatID, err)
		}
	}

	// 3) Пометка
	s.LastUnread = unread
	return p.store.Save(ctx, s)
}

func badgeText(unread int, items []models.Notification) string {
	text := fmt.Sprintf("🔔 You have <b>%d</b> unread notification(s).", unread)
	for _, it := range items {
		if !it.IsRead {
			text += "\n" + html.EscapeString(it.Title)
			break
		}
	}
	return text + "\nOpen 🔔 Notifications to read them."
}
