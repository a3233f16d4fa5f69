package handlers

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/disclosure-portal-bot/internal/ctxutil"
	"github.com/Spok95/disclosure-portal-bot/internal/export"
	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/tg"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

func (h *Handler) institutionCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data
	if !s.IsInstitution() {
		h.answer(cb, workflow.ErrNotInstitution.Error(), true)
		return
	}

	switch {
	case data == menu.CbDashSubmit:
		h.submit(ctx, s, cb)

	case data == menu.CbReport:
		h.answer(cb, "⏳ Preparing report…", false)
		h.sendReport(ctx, s, chatID)

	case data == menu.CbUploadCancel:
		h.answer(cb, "", false)
		s.UploadSection = ""
		h.ShowPage(ctx, s, chatID, router.UploadDisclosures)

	default:
		sec, err := models.ParseSection(data[len(menu.CbUploadSection):])
		if err != nil {
			h.answer(cb, "Unknown section", false)
			return
		}
		h.answer(cb, "", false)
		s.UploadSection = sec
		def := sec.Def()
		text := fmt.Sprintf("%s <b>%s</b>\n%s\n\n📎 Send the PDF file as a document.", def.Icon, html.EscapeString(def.Title), html.EscapeString(def.Desc))
		if s.IsUploaded(sec) {
			text += "\n♻️ A new file replaces the current upload."
		}
		h.send(chatID, text, menu.UploadPrompt())
	}
}

// submit: кнопку гасим сразу, повторное нажатие во время запроса игнорируем.
func (h *Handler) submit(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if !fsmutil.SetPending(chatID, "submit") {
		h.answer(cb, "⏳ Already submitting…", false)
		return
	}
	defer fsmutil.ClearPending(chatID, "submit")
	h.answer(cb, "⏳ Submitting…", false)
	fsmutil.DisableMarkup(h.bot, chatID, cb.Message.MessageID)

	res, err := h.inst.Submit(ctx, s)
	if err != nil {
		h.sendError(chatID, err, nil)
		h.ShowPage(ctx, s, chatID, router.InstDashboard)
		return
	}
	msg := res.Message
	if msg == "" {
		msg = "Application submitted for AICTE review."
	}
	h.send(chatID, "✅ "+html.EscapeString(msg), nil)
	h.ShowPage(ctx, s, chatID, router.InstDashboard)
}

func (h *Handler) sendReport(ctx context.Context, s *session.Session, chatID int64) {
	rep, err := h.inst.Report(ctx, s)
	if err != nil {
		h.sendError(chatID, err, nil)
		return
	}
	caption := "📥 AICTE report"
	if sum, err := export.SummarizeReport(rep.Data); err != nil {
		h.logger(ctx).Warn("report summary", zap.Int64("institution_id", s.InstitutionID), zap.Error(err))
	} else {
		caption = sum.Caption()
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.BuildReportFilename(rep.Filename, s.InstitutionID),
		Bytes: rep.Data,
	})
	doc.Caption = caption
	if _, err := tg.Send(h.bot, doc); err != nil {
		metrics.HandlerErrors.Inc()
		h.logger(ctx).Error("send report", zap.Error(err))
		h.send(chatID, "❌ Could not send the report file. Please try again.", nil)
	}
}

// HandleDocument — PDF для выбранного раздела: имя, скачивание, две фазы загрузки.
func (h *Handler) HandleDocument(ctx context.Context, s *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !s.IsInstitution() {
		h.sendError(chatID, workflow.ErrNotInstitution, nil)
		return
	}
	sec := s.UploadSection
	if sec == "" {
		h.send(chatID, "📁 Choose a section first.", nil)
		h.ShowPage(ctx, s, chatID, router.UploadDisclosures)
		return
	}
	doc := msg.Document
	if err := upload.CheckName(doc.FileName); err != nil {
		h.send(chatID, "❌ "+html.EscapeString(workflow.Text(err)), menu.UploadPrompt())
		return
	}
	if !fsmutil.SetPending(chatID, "upload") {
		h.send(chatID, "⏳ Previous upload is still processing.", nil)
		return
	}
	defer fsmutil.ClearPending(chatID, "upload")

	ctx, cancel := ctxutil.WithTimeout(ctx, h.uploadTimeout)
	defer cancel()

	url, err := h.bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		h.logger(ctx).Warn("file url", zap.Error(err))
		h.send(chatID, "❌ Could not download the file from Telegram. Please send it again.", menu.UploadPrompt())
		return
	}
	data, err := h.fetch(ctx, url)
	if err != nil {
		h.logger(ctx).Warn("file download", zap.Error(err))
		h.send(chatID, "❌ Could not download the file from Telegram. Please send it again.", menu.UploadPrompt())
		return
	}

	h.send(chatID, fmt.Sprintf("⏳ Analyzing %s with AI…", html.EscapeString(sec.Def().Title)), nil)
	res, err := h.upl.Upload(ctx, s, sec, doc.FileName, data)
	if err != nil {
		h.sendError(chatID, err, menu.UploadPrompt())
		return
	}
	s.UploadSection = ""
	text, err := h.views.UploadResult(res)
	if err != nil {
		h.logger(ctx).Error("render upload result", zap.Error(err))
		text = "✅ " + html.EscapeString(sec.Def().Title) + " uploaded."
	}
	h.send(chatID, text, menu.AfterUpload())
}
