package app

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/bot/auth"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/handlers"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
	"github.com/Spok95/disclosure-portal-bot/internal/logging"
	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/observability"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/tg"
)

// Dispatcher — вход для всех апдейтов: замок чата, сессия, маршрут, сохранение.
type Dispatcher struct {
	bot     tg.Bot
	store   session.Store
	flows   *auth.Flows
	pages   *handlers.Handler
	limiter *ChatLimiter
	log     *zap.Logger
}

func NewDispatcher(bot tg.Bot, store session.Store, flows *auth.Flows, pages *handlers.Handler, limiter *ChatLimiter, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewChatLimiter()
	}
	return &Dispatcher{bot: bot, store: store, flows: flows, pages: pages, limiter: limiter, log: log}
}

func updateChat(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil && upd.Message.Chat != nil:
		return upd.Message.Chat.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil && upd.CallbackQuery.Message.Chat != nil:
		return upd.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func (d *Dispatcher) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	metrics.BotUpdates.Inc()
	chatID := updateChat(upd)
	if chatID == 0 {
		return
	}
	op := "message"
	if upd.CallbackQuery != nil {
		op = "callback"
	}
	ctx = ctxutil.WithOp(ctxutil.WithChatID(ctx, chatID), op)
	log := logging.For(ctx, d.log)

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrors.Inc()
			log.Error("update panic", zap.Error(observability.CapturePanic(ctx, r)))
		}
	}()

	unlock := d.limiter.Lock(chatID)
	defer unlock()

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	s, err := session.Load(dbCtx, d.store, chatID)
	cancel()
	if err != nil {
		metrics.HandlerErrors.Inc()
		log.Error("load session", zap.Error(err))
		if upd.CallbackQuery != nil {
			_, _ = tg.Request(d.bot, tgbotapi.NewCallback(upd.CallbackQuery.ID, ""))
		}
		_, _ = tg.Send(d.bot, tg.HTML(chatID, "⚠️ Temporary error. Please try again."))
		return
	}

	if upd.CallbackQuery != nil {
		d.routeCallback(ctx, s, upd.CallbackQuery)
	} else {
		d.routeMessage(ctx, s, upd.Message)
	}

	dbCtx, cancel = ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if err := d.store.Save(dbCtx, s); err != nil {
		metrics.HandlerErrors.Inc()
		log.Error("save session", zap.Error(err))
	}
}

func (d *Dispatcher) routeMessage(ctx context.Context, s *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if msg.Document != nil {
		d.pages.HandleDocument(ctx, s, msg)
		return
	}
	text := strings.TrimSpace(msg.Text)

	switch text {
	case "/start":
		d.flows.Cancel(chatID)
		s.UploadSection = ""
		d.pages.ShowHome(ctx, s, chatID)
		return
	case "/logout", menu.BtnLogout:
		d.logout(s, chatID)
		return
	}

	if d.flows.Active(chatID) {
		if d.flows.HandleText(ctx, s, msg) == auth.LoggedIn {
			d.pages.ShowPage(ctx, s, chatID, router.Home(s))
		}
		return
	}

	switch text {
	case menu.BtnInstLogin, "/login":
		d.pages.Forget(chatID)
		d.flows.StartLogin(chatID, models.Institution)
		return
	case menu.BtnAuthLogin, "/authority":
		d.pages.Forget(chatID)
		d.flows.StartLogin(chatID, models.Authority)
		return
	case menu.BtnRegister, "/register":
		d.pages.Forget(chatID)
		d.flows.StartRegistration(chatID)
		return
	}

	if id, ok := menu.PageByButton(s.Role, text); ok {
		s.UploadSection = ""
		d.pages.ShowPage(ctx, s, chatID, id)
		return
	}
	if d.pages.HandleText(ctx, s, msg) {
		return
	}

	if !s.LoggedIn() {
		d.send(chatID, "⚠️ Please log in or register first.", menu.GetRoleMenu(""))
		return
	}
	d.send(chatID, "⚠️ Unknown command. Use the menu below.", menu.GetRoleMenu(s.Role))
}

func (d *Dispatcher) routeCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	switch d.flows.HandleCallback(ctx, s, cb) {
	case auth.LoggedIn:
		d.pages.ShowPage(ctx, s, chatID, router.Home(s))
		return
	case auth.Handled:
		return
	}
	if d.pages.HandleCallback(ctx, s, cb) {
		return
	}
	logging.For(ctx, d.log).Debug("unknown callback", zap.String("data", cb.Data))
	_, _ = tg.Request(d.bot, tgbotapi.NewCallback(cb.ID, ""))
}

func (d *Dispatcher) logout(s *session.Session, chatID int64) {
	d.flows.Cancel(chatID)
	d.pages.Forget(chatID)
	s.Logout()
	d.send(chatID, "👋 Logged out.", menu.GetRoleMenu(""))
}

func (d *Dispatcher) send(chatID int64, text string, kb any) {
	m := tg.HTML(chatID, text)
	m.ReplyMarkup = kb
	if _, err := tg.Send(d.bot, m); err != nil {
		metrics.HandlerErrors.Inc()
	}
}
