package tg

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/disclosure-portal-bot/internal/observability"
)

// Bot — то, что нам нужно от *tgbotapi.BotAPI. В тестах подменяется фейком.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "Bad Request") ||
		strings.Contains(s, "message is not modified") ||
		strings.Contains(s, "chat not found") ||
		strings.Contains(s, "can't parse entities") {
		return false
	}
	for _, m := range []string{"429", "Too Many Requests", "500", "502", "503", "504", "timeout", "deadline exceeded"} {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func Send(bot Bot, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	if isSystemErr(err) {
		observability.CaptureErr(context.Background(), err)
	}
	return m, err
}

func Request(bot Bot, req tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r, err := bot.Request(req)
	if isSystemErr(err) {
		observability.CaptureErr(context.Background(), err)
	}
	return r, err
}

// HTML — текстовое сообщение с разметкой HTML и без превью ссылок.
func HTML(chatID int64, text string) tgbotapi.MessageConfig {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableWebPagePreview = true
	return m
}

// EditHTML — то же для редактирования уже отправленного сообщения.
func EditHTML(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) tgbotapi.EditMessageTextConfig {
	e := tgbotapi.NewEditMessageText(chatID, msgID, text)
	e.ParseMode = tgbotapi.ModeHTML
	e.DisableWebPagePreview = true
	e.ReplyMarkup = kb
	return e
}
