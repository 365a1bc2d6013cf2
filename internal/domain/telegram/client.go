package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// It keeps the notifier independent from the bot library's concrete type.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
