package auth

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/tg"
	"github.com/Spok95/disclosure-portal-bot/internal/views"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

// Outcome — что сделал сценарий с апдейтом.
type Outcome int

const (
	NotHandled Outcome = iota
	Handled
	LoggedIn
)

// Locker — замок по чату, общий с диспетчером.
type Locker interface {
	Lock(chatID int64) func()
}

// Flows — сценарии регистрации и входа. Состояние живёт по чатам до успеха или отмены.
type Flows struct {
	bot         tg.Bot
	auth        *workflow.Auth
	views       *views.Renderer
	lock        Locker
	resendAfter time.Duration
	tick        time.Duration
	log         *zap.Logger

	mu    sync.Mutex
	reg   map[int64]*regState
	login map[int64]*loginState
}

func New(bot tg.Bot, a *workflow.Auth, v *views.Renderer, lock Locker, resendAfter time.Duration, log *zap.Logger) *Flows {
	if log == nil {
		log = zap.NewNop()
	}
	if resendAfter <= 0 {
		resendAfter = 30 * time.Second
	}
	return &Flows{
		bot:         bot,
		auth:        a,
		views:       v,
		lock:        lock,
		resendAfter: resendAfter,
		tick:        time.Second,
		log:         log,
		reg:         map[int64]*regState{},
		login:       map[int64]*loginState{},
	}
}

// Active — в чате идёт регистрация или вход.
func (f *Flows) Active(chatID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reg[chatID] != nil || f.login[chatID] != nil
}

// Cancel сбрасывает любой незавершённый сценарий чата и гасит отсчёт.
func (f *Flows) Cancel(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st := f.reg[chatID]; st != nil {
		st.cd.Cancel()
	}
	delete(f.reg, chatID)
	delete(f.login, chatID)
}

func (f *Flows) send(chatID int64, text string, kb any) int {
	m := tg.HTML(chatID, text)
	if kb != nil {
		m.ReplyMarkup = kb
	}
	sent, err := tg.Send(f.bot, m)
	if err != nil {
		metrics.HandlerErrors.Inc()
		f.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return sent.MessageID
}

// edit: "message is not modified" и прочие ошибки правки не критичны.
func (f *Flows) edit(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if _, err := tg.Request(f.bot, tg.EditHTML(chatID, msgID, text, &kb)); err != nil {
		f.log.Debug("edit", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (f *Flows) answer(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	c := tgbotapi.NewCallback(cb.ID, text)
	c.ShowAlert = alert
	if _, err := tg.Request(f.bot, c); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// dropMessage убирает из чата сообщение с паролем.
func (f *Flows) dropMessage(chatID int64, msgID int) {
	if _, err := tg.Request(f.bot, tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		f.log.Debug("delete message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
