package menu

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
)

const (
	BtnInstLogin = "🏫 Institution Login"
	BtnRegister  = "📝 Register Institution"
	BtnAuthLogin = "🏛 Authority Login"
	BtnLogout    = "🚪 Logout"
)

// GetRoleMenu возвращает меню в зависимости от роли пользователя
func GetRoleMenu(role models.Role) tgbotapi.ReplyKeyboardMarkup {
	pages := router.Pages(role)
	if len(pages) == 0 {
		return guestMenu()
	}
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(pages); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(pages[i].Title))
		if i+1 < len(pages) {
			row = append(row, tgbotapi.NewKeyboardButton(pages[i+1].Title))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnLogout)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func guestMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnInstLogin),
			tgbotapi.NewKeyboardButton(BtnRegister),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAuthLogin),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// PageByButton — страница по тексту кнопки меню роли.
func PageByButton(role models.Role, text string) (router.PageID, bool) {
	for _, p := range router.Pages(role) {
		if p.Title == text {
			return p.ID, true
		}
	}
	return "", false
}
