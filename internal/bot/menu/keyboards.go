package menu

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/disclosure-portal-bot/internal/approval"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

// Данные inline-кнопок. Префиксы разбирает диспетчер.
const (
	CbNoop = "noop"
	CbNav  = "nav_" // nav_<page>

	CbRegSend     = "reg_send"
	CbRegSkip     = "reg_skip"
	CbRegContinue = "reg_continue"
	CbRegEmail    = "reg_email"
	CbRegCancel   = "reg_cancel"

	CbOTPDigit  = "otp_d_" // otp_d_<0-9>
	CbOTPErase  = "otp_erase"
	CbOTPVerify = "otp_verify"
	CbOTPResend = "otp_resend"
	CbOTPEdit   = "otp_edit"

	CbLoginCancel = "login_cancel"

	CbDashSubmit = "dash_submit"
	CbReport     = "report"

	CbUploadSection = "up_sec_" // up_sec_<section>
	CbUploadCancel  = "up_cancel"

	CbPendingFilter = "pend_f_"    // pend_f_<status|all>
	CbPendingOpen   = "pend_open_" // pend_open_<approval id>

	CbReviewCycle   = "rev_cyc_"  // rev_cyc_<section>
	CbReviewNote    = "rev_note_" // rev_note_<section>
	CbReviewNotes   = "rev_notes"
	CbReviewApprove = "rev_approve"
	CbReviewReject  = "rev_reject"
	CbReviewClose   = "rev_close"

	CbInstRisk     = "inst_risk_" // inst_risk_<level|all>
	CbInstApproval = "inst_appr_" // inst_appr_<status|all>
	CbInstSearch   = "inst_search"
	CbInstClear    = "inst_clear"
	CbInstExport   = "inst_xlsx"

	All = "all"
)

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func Nav(id router.PageID) string { return CbNav + string(id) }

// OTPKeypad — шесть ячеек кода вводятся с цифровой клавиатуры.
func OTPKeypad(left int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for r := 0; r < 3; r++ {
		var row []tgbotapi.InlineKeyboardButton
		for c := 1; c <= 3; c++ {
			d := strconv.Itoa(r*3 + c)
			row = append(row, btn(d, CbOTPDigit+d))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		btn("⌫", CbOTPErase), btn("0", CbOTPDigit+"0"), btn("✅ Verify", CbOTPVerify),
	))
	resend := btn("🔁 Resend OTP", CbOTPResend)
	if left > 0 {
		resend = btn(fmt.Sprintf("⏱ Resend in %ds", left), CbNoop)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(resend),
		tgbotapi.NewInlineKeyboardRow(btn("✏️ Edit details", CbOTPEdit), btn("❌ Cancel", CbRegCancel)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RegistrationReview — карточка перед вводом кода.
func RegistrationReview(sent bool, left int) tgbotapi.InlineKeyboardMarkup {
	send := btn("📨 Send OTP", CbRegSend)
	switch {
	case sent && left > 0:
		send = btn(fmt.Sprintf("⏱ Resend in %ds", left), CbNoop)
	case sent:
		send = btn("🔁 Resend OTP", CbRegSend)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(send, btn("✏️ Change email", CbRegEmail)),
		tgbotapi.NewInlineKeyboardRow(btn("➡️ Continue", CbRegContinue)),
		tgbotapi.NewInlineKeyboardRow(btn("❌ Cancel", CbRegCancel)),
	)
}

func SkipCancel() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		btn("⏭ Skip", CbRegSkip), btn("❌ Cancel", CbRegCancel),
	))
}

func CancelOnly(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn("❌ Cancel", data)))
}

// Retry — повторить открытие страницы после ошибки портала.
func Retry(id router.PageID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn("🔄 Retry", Nav(id))))
}

// Dashboard: у Telegram нет неактивных кнопок, поэтому выключенная кнопка ведёт в noop.
func Dashboard(sb approval.SubmitButton) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if sb.Visible {
		data := CbNoop
		if sb.Enabled {
			data = CbDashSubmit
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(sb.Text(), data)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		btn("📁 Upload", Nav(router.UploadDisclosures)),
		btn("🤖 AI Risk", Nav(router.AIRisk)),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🔄 Refresh", Nav(router.InstDashboard))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func UploadGrid(rows []workflow.SectionRow) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, r := range rows {
		label := fmt.Sprintf("%s %s · %s", r.Def.Icon, r.Def.Label, r.State.Button)
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(btn(label, CbUploadSection+string(r.Def.Key))))
	}
	kb = append(kb, tgbotapi.NewInlineKeyboardRow(btn("🏠 Dashboard", Nav(router.InstDashboard))))
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

func AfterUpload() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		btn("📁 Upload next", Nav(router.UploadDisclosures)),
		btn("🏠 Dashboard", Nav(router.InstDashboard)),
	))
}

func ApprovalStatus(downloadable bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if downloadable {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("📥 Download Report", CbReport)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🔄 Refresh", Nav(router.ApprovalStatus))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

var pendingFilters = []struct{ label, value string }{
	{"All", All},
	{"Submitted", string(models.StatusSubmitted)},
	{"Under review", string(models.StatusUnderReview)},
	{"Approved", string(models.StatusApproved)},
	{"Rejected", string(models.StatusRejected)},
}

func mark(active bool, label string) string {
	if active {
		return "• " + label
	}
	return label
}

// Pending — фильтр по статусу и кнопки открытия заявок.
func Pending(list []models.ApprovalRequest, status string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, f := range pendingFilters {
		active := f.value == status || (status == "" && f.value == All)
		row = append(row, btn(mark(active, f.label), CbPendingFilter+f.value))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	for i, a := range list {
		if i == 25 {
			break
		}
		icon := "👁"
		if workflow.Reviewable(a.Status) {
			icon = "🔍"
		}
		label := fmt.Sprintf("%s #%d %s", icon, a.ApprovalID, a.InstitutionName)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, CbPendingOpen+strconv.FormatInt(a.ApprovalID, 10))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Review — форма решения: по кнопке цикла и заметки на каждый раздел.
func Review(f *approval.ReviewForm, reviewable bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if reviewable {
		for _, sec := range models.AllSections {
			d := f.Decision(sec)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				btn(fmt.Sprintf("%s %s", approval.DecisionIcon(d.Status), strings.ToUpper(string(sec))), CbReviewCycle+string(sec)),
				btn("📝 Note", CbReviewNote+string(sec)),
			))
		}
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(btn("📝 Overall notes", CbReviewNotes)),
			tgbotapi.NewInlineKeyboardRow(btn("✅ Approve", CbReviewApprove), btn("❌ Reject", CbReviewReject)),
		)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back to list", CbReviewClose)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Institutions — фильтры списка учреждений и выгрузка в Excel.
func Institutions(f workflow.Filter) tgbotapi.InlineKeyboardMarkup {
	risk := []string{All, "Low", "Medium", "High"}
	appr := []string{All, string(models.StatusPending), string(models.StatusApproved), string(models.StatusRejected)}

	var rr, ar []tgbotapi.InlineKeyboardButton
	for _, r := range risk {
		active := r == f.Risk || (f.Risk == "" && r == All)
		rr = append(rr, btn(mark(active, "⚠ "+r), CbInstRisk+r))
	}
	for _, a := range appr {
		active := a == string(f.Approval) || (f.Approval == "" && a == All)
		ar = append(ar, btn(mark(active, a), CbInstApproval+a))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		rr, ar,
		tgbotapi.NewInlineKeyboardRow(btn("🔎 Search", CbInstSearch), btn("🧹 Clear", CbInstClear)),
		tgbotapi.NewInlineKeyboardRow(btn("📊 Export Excel", CbInstExport)),
	)
}

// UploadPrompt — ожидание PDF выбранного раздела.
func UploadPrompt() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(fsmutil.BackCancelRow(Nav(router.UploadDisclosures), CbUploadCancel))
}
