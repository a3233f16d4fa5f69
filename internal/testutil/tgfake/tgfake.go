// Package tgfake — бот в памяти для тестов хендлеров.
package tgfake

import (
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	mu       sync.Mutex
	nextID   int
	Sent     []tgbotapi.Chattable
	Requests []tgbotapi.Chattable
	Files    map[string]string
	SendErr  error
}

func New() *Bot { return &Bot{nextID: 100, Files: map[string]string{}} }

func (b *Bot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SendErr != nil {
		return tgbotapi.Message{}, b.SendErr
	}
	b.Sent = append(b.Sent, c)
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *Bot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Requests = append(b.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *Bot) GetFileDirectURL(fileID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.Files[fileID]; ok {
		return u, nil
	}
	return "", errors.New("Bad Request: file not found")
}

// Texts — тексты всех отправленных и отредактированных сообщений по порядку.
func (b *Bot) Texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range append(append([]tgbotapi.Chattable{}, b.Sent...), b.Requests...) {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		case tgbotapi.DocumentConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

// LastText — текст последнего отправленного сообщения.
func (b *Bot) LastText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.Sent) - 1; i >= 0; i-- {
		switch m := b.Sent[i].(type) {
		case tgbotapi.MessageConfig:
			return m.Text
		case tgbotapi.DocumentConfig:
			return m.Caption
		}
	}
	return ""
}

// Contains — было ли хоть одно сообщение с подстрокой.
func (b *Bot) Contains(sub string) bool {
	for _, t := range b.Texts() {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

// Callbacks — ответы на нажатия кнопок.
func (b *Bot) Callbacks() []tgbotapi.CallbackConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range b.Requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

// Documents — отправленные файлы.
func (b *Bot) Documents() []tgbotapi.DocumentConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range b.Sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bot) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = nil
	b.Requests = nil
}

// Message — входящее текстовое сообщение.
func Message(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID},
		Text:      text,
	}
}

// Callback — нажатие inline-кнопки под сообщением 42.
func Callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}
