package handlers

import (
	"context"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/logging"
	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/tg"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
	"github.com/Spok95/disclosure-portal-bot/internal/views"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

type Pages interface {
	Open(ctx context.Context, s *session.Session, id router.PageID, prm router.Params) (*router.Screen, error)
}

type InstitutionActions interface {
	Submit(ctx context.Context, s *session.Session) (*models.SubmitResult, error)
	Report(ctx context.Context, s *session.Session) (*models.Report, error)
}

type AuthorityActions interface {
	OpenReview(ctx context.Context, s *session.Session, approvalID int64) (*workflow.ReviewContext, error)
	SubmitReview(ctx context.Context, s *session.Session, form *approval.ReviewForm, action string) error
	Institutions(ctx context.Context, s *session.Session, f workflow.Filter) ([]models.InstitutionSummary, error)
}

type Uploader interface {
	Upload(ctx context.Context, s *session.Session, sec models.Section, name string, data []byte) (*upload.Result, error)
}

// FetchFunc скачивает файл из Telegram по прямой ссылке.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

type awaitKind int

const (
	awaitSearch awaitKind = iota + 1
	awaitNote
	awaitNotes
)

type awaitText struct {
	kind    awaitKind
	section models.Section
}

// Handler — страницы и действия портала после входа. Черновики ревью и фильтры живут по чатам.
type Handler struct {
	bot           tg.Bot
	pages         Pages
	inst          InstitutionActions
	auth          AuthorityActions
	upl           Uploader
	views         *views.Renderer
	fetch         FetchFunc
	uploadTimeout time.Duration
	now           func() time.Time
	log           *zap.Logger

	mu       sync.Mutex
	reviews  map[int64]*workflow.ReviewContext
	filters  map[int64]workflow.Filter
	statuses map[int64]string
	awaiting map[int64]awaitText
}

type Deps struct {
	Bot           tg.Bot
	Pages         Pages
	Institution   InstitutionActions
	Authority     AuthorityActions
	Uploader      Uploader
	Views         *views.Renderer
	Fetch         FetchFunc
	UploadTimeout time.Duration
	Now           func() time.Time
	Log           *zap.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		bot:           d.Bot,
		pages:         d.Pages,
		inst:          d.Institution,
		auth:          d.Authority,
		upl:           d.Uploader,
		views:         d.Views,
		fetch:         d.Fetch,
		uploadTimeout: d.UploadTimeout,
		now:           time.Now,
		log:           d.Log,
		reviews:       map[int64]*workflow.ReviewContext{},
		filters:       map[int64]workflow.Filter{},
		statuses:      map[int64]string{},
		awaiting:      map[int64]awaitText{},
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.fetch == nil {
		h.fetch = HTTPFetch(nil)
	}
	if d.Now != nil {
		h.now = d.Now
	}
	return h
}

// Forget сбрасывает состояние чата при выходе.
func (h *Handler) Forget(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.reviews, chatID)
	delete(h.filters, chatID)
	delete(h.statuses, chatID)
	delete(h.awaiting, chatID)
}

// logger — h.log с chat_id и op текущего апдейта.
func (h *Handler) logger(ctx context.Context) *zap.Logger { return logging.For(ctx, h.log) }

func (h *Handler) send(chatID int64, text string, kb any) (tgbotapi.Message, error) {
	m := tg.HTML(chatID, text)
	if kb != nil {
		m.ReplyMarkup = kb
	}
	sent, err := tg.Send(h.bot, m)
	if err != nil {
		metrics.HandlerErrors.Inc()
		h.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return sent, err
}

func (h *Handler) sendError(chatID int64, err error, kb any) {
	h.send(chatID, html.EscapeString(workflow.UserMessage(err)), kb)
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	c := tgbotapi.NewCallback(cb.ID, text)
	c.ShowAlert = alert
	if _, err := tg.Request(h.bot, c); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) params(chatID int64) router.Params {
	h.mu.Lock()
	defer h.mu.Unlock()
	return router.Params{Status: h.statuses[chatID], Filter: h.filters[chatID]}
}

func keyboardFor(sc *router.Screen) any {
	switch sc.Page {
	case router.InstDashboard:
		return menu.Dashboard(sc.Submit)
	case router.UploadDisclosures:
		return menu.UploadGrid(sc.Grid)
	case router.ApprovalStatus:
		return menu.ApprovalStatus(sc.Downloadable)
	case router.AuthPending:
		return menu.Pending(sc.Approvals, sc.Status)
	case router.AuthInstitutions:
		return menu.Institutions(sc.Filter)
	}
	return nil
}

// ShowPage открывает страницу заново. Если портал не ответил — предлагаем повторить.
func (h *Handler) ShowPage(ctx context.Context, s *session.Session, chatID int64, id router.PageID) {
	sc, err := h.pages.Open(ctx, s, id, h.params(chatID))
	if err != nil {
		h.logger(ctx).Info("open page", zap.String("page", string(id)), zap.Error(err))
		var kb any
		if workflow.IsRemote(err) {
			kb = menu.Retry(id)
		}
		h.sendError(chatID, err, kb)
		return
	}
	h.send(chatID, sc.Text, keyboardFor(sc))
}

// ShowHome — стартовая страница роли вместе с клавиатурой меню.
func (h *Handler) ShowHome(ctx context.Context, s *session.Session, chatID int64) {
	id := router.Home(s)
	if id == "" {
		h.send(chatID, "👋 <b>AICTE Disclosure Portal</b>\nLog in or register your institution to continue.", menu.GetRoleMenu(""))
		return
	}
	h.send(chatID, "Menu updated.", menu.GetRoleMenu(s.Role))
	h.ShowPage(ctx, s, chatID, id)
}

// HandleText — ввод текста в ожидающие формы. false — текст не наш.
func (h *Handler) HandleText(ctx context.Context, s *session.Session, msg *tgbotapi.Message) bool {
	chatID := msg.Chat.ID
	h.mu.Lock()
	aw, ok := h.awaiting[chatID]
	h.mu.Unlock()
	if ok {
		return h.handleAwaiting(ctx, s, chatID, aw, msg.Text)
	}
	if s.UploadSection != "" {
		h.send(chatID, "📎 Please send the PDF file for <b>"+html.EscapeString(s.UploadSection.Def().Title)+"</b>.", menu.UploadPrompt())
		return true
	}
	return false
}

// HandleCallback разбирает inline-кнопки страниц. false — кнопка не наша.
func (h *Handler) HandleCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) bool {
	if cb.Message == nil {
		return false
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == menu.CbNoop:
		h.answer(cb, "", false)
	case strings.HasPrefix(data, menu.CbNav):
		h.answer(cb, "", false)
		h.ShowPage(ctx, s, chatID, router.PageID(data[len(menu.CbNav):]))
	case data == menu.CbDashSubmit, data == menu.CbReport,
		strings.HasPrefix(data, menu.CbUploadSection), data == menu.CbUploadCancel:
		h.institutionCallback(ctx, s, cb)
	case strings.HasPrefix(data, "pend_"), strings.HasPrefix(data, "rev_"), strings.HasPrefix(data, "inst_"):
		h.authorityCallback(ctx, s, cb)
	default:
		return false
	}
	return true
}
