package telegram

import (
	"context"

	"homework_status_bot/internal/domain/homework"
	domainTelegram "homework_status_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ChatNotifier delivers poll notifications to the single configured chat.
type ChatNotifier struct {
	client domainTelegram.Client
	chatID int64
	logger *logrus.Entry
}

func NewChatNotifier(client domainTelegram.Client, chatID int64, logger *logrus.Entry) *ChatNotifier {
	return &ChatNotifier{client: client, chatID: chatID, logger: logger}
}

// Send implements homework.Notifier. Any delivery error is tagged KindSendFailure.
func (n *ChatNotifier) Send(_ context.Context, text string) error {
	err := n.client.SendMessage(n.chatID, text, &telebot.SendOptions{
		ParseMode:             telebot.ModeDefault,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return homework.Wrap(homework.KindSendFailure, "failed to send telegram message", err)
	}
	n.logger.WithField("chat_id", n.chatID).Info("Message sent")
	return nil
}

var _ homework.Notifier = (*ChatNotifier)(nil)
