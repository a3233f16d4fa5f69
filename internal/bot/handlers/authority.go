package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/disclosure-portal-bot/internal/export"
	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/tg"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

func (h *Handler) authorityCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data
	if !s.IsAuthority() {
		h.answer(cb, workflow.ErrNotAuthority.Error(), true)
		return
	}

	switch {
	case strings.HasPrefix(data, menu.CbPendingFilter):
		h.answer(cb, "", false)
		status := strings.TrimPrefix(data, menu.CbPendingFilter)
		if status == menu.All {
			status = ""
		}
		h.mu.Lock()
		h.statuses[chatID] = status
		h.mu.Unlock()
		h.ShowPage(ctx, s, chatID, router.AuthPending)

	case strings.HasPrefix(data, menu.CbPendingOpen):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, menu.CbPendingOpen), 10, 64)
		if err != nil {
			h.answer(cb, "Bad application id", false)
			return
		}
		h.answer(cb, "", false)
		h.openReview(ctx, s, chatID, id)

	case strings.HasPrefix(data, "rev_"):
		h.reviewCallback(ctx, s, cb)

	case strings.HasPrefix(data, menu.CbInstRisk):
		h.answer(cb, "", false)
		v := strings.TrimPrefix(data, menu.CbInstRisk)
		h.updateFilter(chatID, func(f *workflow.Filter) {
			f.Risk = v
			if v == menu.All {
				f.Risk = ""
			}
		})
		h.ShowPage(ctx, s, chatID, router.AuthInstitutions)

	case strings.HasPrefix(data, menu.CbInstApproval):
		h.answer(cb, "", false)
		v := strings.TrimPrefix(data, menu.CbInstApproval)
		h.updateFilter(chatID, func(f *workflow.Filter) {
			f.Approval = models.ApprovalStatus(v)
			if v == menu.All {
				f.Approval = ""
			}
		})
		h.ShowPage(ctx, s, chatID, router.AuthInstitutions)

	case data == menu.CbInstSearch:
		h.answer(cb, "", false)
		h.setAwaiting(chatID, awaitText{kind: awaitSearch})
		h.send(chatID, "🔎 Enter institution name or state (or /cancel):", nil)

	case data == menu.CbInstClear:
		h.answer(cb, "Filters cleared", false)
		h.updateFilter(chatID, func(f *workflow.Filter) { *f = workflow.Filter{} })
		h.ShowPage(ctx, s, chatID, router.AuthInstitutions)

	case data == menu.CbInstExport:
		h.answer(cb, "⏳ Building Excel…", false)
		h.exportInstitutions(ctx, s, chatID)

	default:
		h.answer(cb, "", false)
	}
}

func (h *Handler) updateFilter(chatID int64, fn func(f *workflow.Filter)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.filters[chatID]
	fn(&f)
	h.filters[chatID] = f
}

func (h *Handler) setAwaiting(chatID int64, aw awaitText) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.awaiting[chatID] = aw
}

func (h *Handler) review(chatID int64) *workflow.ReviewContext {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reviews[chatID]
}

func (h *Handler) openReview(ctx context.Context, s *session.Session, chatID int64, id int64) {
	rc, err := h.auth.OpenReview(ctx, s, id)
	if err != nil {
		h.sendError(chatID, err, nil)
		return
	}
	h.mu.Lock()
	h.reviews[chatID] = rc
	h.mu.Unlock()
	h.showReview(chatID, rc, 0)
}

// showReview: msgID != 0 — правим форму на месте.
func (h *Handler) showReview(chatID int64, rc *workflow.ReviewContext, msgID int) {
	text, err := h.views.Review(rc)
	if err != nil {
		h.log.Error("render review", zap.Error(err))
		h.send(chatID, "❌ Could not render the application.", nil)
		return
	}
	kb := menu.Review(rc.Form, workflow.Reviewable(rc.Form.Request.Status))
	if msgID != 0 {
		if _, err := tg.Request(h.bot, tg.EditHTML(chatID, msgID, text, &kb)); err == nil {
			return
		}
	}
	h.send(chatID, text, kb)
}

func (h *Handler) reviewCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data
	rc := h.review(chatID)
	if data == menu.CbReviewClose {
		h.answer(cb, "", false)
		h.mu.Lock()
		delete(h.reviews, chatID)
		delete(h.awaiting, chatID)
		h.mu.Unlock()
		s.ReviewID = 0
		h.ShowPage(ctx, s, chatID, router.AuthPending)
		return
	}
	if rc == nil {
		h.answer(cb, "Open the application again from the list.", true)
		return
	}

	switch {
	case strings.HasPrefix(data, menu.CbReviewCycle):
		sec := models.Section(strings.TrimPrefix(data, menu.CbReviewCycle))
		st, err := rc.Form.Cycle(sec)
		if err != nil {
			h.answer(cb, workflow.Text(err), false)
			return
		}
		h.answer(cb, approval.DecisionIcon(st)+" "+string(st), false)
		h.showReview(chatID, rc, cb.Message.MessageID)

	case strings.HasPrefix(data, menu.CbReviewNote):
		sec, err := models.ParseSection(strings.TrimPrefix(data, menu.CbReviewNote))
		if err != nil {
			h.answer(cb, workflow.Text(err), false)
			return
		}
		h.answer(cb, "", false)
		h.setAwaiting(chatID, awaitText{kind: awaitNote, section: sec})
		h.send(chatID, "📝 Note for <b>"+strings.ToUpper(string(sec))+"</b> (send - to clear, /cancel to stop):", nil)

	case data == menu.CbReviewNotes:
		h.answer(cb, "", false)
		h.setAwaiting(chatID, awaitText{kind: awaitNotes})
		h.send(chatID, "📝 Overall notes for the institution (send - to clear, /cancel to stop):", nil)

	case data == menu.CbReviewApprove, data == menu.CbReviewReject:
		action := approval.ActionApprove
		if data == menu.CbReviewReject {
			action = approval.ActionReject
		}
		h.submitReview(ctx, s, cb, rc, action)

	default:
		h.answer(cb, "", false)
	}
}

func (h *Handler) submitReview(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery, rc *workflow.ReviewContext, action string) {
	chatID := cb.Message.Chat.ID
	if !workflow.Reviewable(rc.Form.Request.Status) {
		h.answer(cb, "This application is already decided.", true)
		return
	}
	if !fsmutil.SetPending(chatID, "review") {
		h.answer(cb, "⏳ Already submitting…", false)
		return
	}
	defer fsmutil.ClearPending(chatID, "review")
	h.answer(cb, "⏳ Submitting decision…", false)

	if err := h.auth.SubmitReview(ctx, s, rc.Form, action); err != nil {
		// черновик остаётся, можно повторить
		h.sendError(chatID, err, nil)
		return
	}
	fsmutil.DisableMarkup(h.bot, chatID, cb.Message.MessageID)
	h.mu.Lock()
	delete(h.reviews, chatID)
	h.mu.Unlock()

	verdict := "✅ Application approved."
	if action == approval.ActionReject {
		verdict = "❌ Application rejected."
	}
	h.send(chatID, verdict+" The institution has been notified.", nil)
	h.ShowPage(ctx, s, chatID, router.AuthPending)
}

func (h *Handler) handleAwaiting(ctx context.Context, s *session.Session, chatID int64, aw awaitText, text string) bool {
	text = strings.TrimSpace(text)
	h.mu.Lock()
	delete(h.awaiting, chatID)
	h.mu.Unlock()
	if fsmutil.IsCancelText(text) {
		h.send(chatID, "🚫 Cancelled.", nil)
		return true
	}

	switch aw.kind {
	case awaitSearch:
		h.updateFilter(chatID, func(f *workflow.Filter) { f.Search = text })
		h.ShowPage(ctx, s, chatID, router.AuthInstitutions)

	case awaitNote, awaitNotes:
		rc := h.review(chatID)
		if rc == nil {
			h.send(chatID, "Open the application again from the list.", nil)
			return true
		}
		if text == "-" {
			text = ""
		}
		if aw.kind == awaitNotes {
			rc.Form.Notes = text
		} else if err := rc.Form.SetNote(aw.section, text); err != nil {
			h.sendError(chatID, err, nil)
			return true
		}
		h.showReview(chatID, rc, 0)
	}
	return true
}

func filterLabel(f workflow.Filter) string {
	var parts []string
	if f.Risk != "" {
		parts = append(parts, f.Risk+" risk")
	}
	if f.Approval != "" {
		parts = append(parts, string(f.Approval))
	}
	if f.Search != "" {
		parts = append(parts, f.Search)
	}
	if len(parts) == 0 {
		return "All"
	}
	return strings.Join(parts, ", ")
}

func (h *Handler) exportInstitutions(ctx context.Context, s *session.Session, chatID int64) {
	f := h.params(chatID).Filter
	list, err := h.auth.Institutions(ctx, s, f)
	if err != nil {
		h.sendError(chatID, err, nil)
		return
	}
	wb, err := export.InstitutionsWorkbook(list)
	if err != nil {
		h.logger(ctx).Error("institutions workbook", zap.Error(err))
		h.send(chatID, "❌ Could not build the Excel file.", nil)
		return
	}
	defer wb.Close()
	data, err := wb.Bytes()
	if err != nil {
		h.logger(ctx).Error("institutions workbook bytes", zap.Error(err))
		h.send(chatID, "❌ Could not build the Excel file.", nil)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.BuildInstitutionsFilename(filterLabel(f), h.now()),
		Bytes: data,
	})
	doc.Caption = "📊 Institutions: " + strconv.Itoa(len(list)) + " · Filter: " + filterLabel(f)
	if _, err := tg.Send(h.bot, doc); err != nil {
		metrics.HandlerErrors.Inc()
		h.logger(ctx).Error("send institutions export", zap.Error(err))
	}
}
