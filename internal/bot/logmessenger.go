package bot

import (
	"context"
	"log/slog"
)

// LogMessenger is the Messenger used when no chat transport adapter is
// configured: outbound traffic is logged instead of delivered. Transport
// adapters (e.g. a Telegram client) replace it at wiring time.
type LogMessenger struct {
	logger *slog.Logger
}

func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

func (m *LogMessenger) SendText(_ context.Context, chatID int64, text string, buttons ...[]Button) error {
	m.logger.Info("outbound text", "chat_id", chatID, "text", text, "button_rows", len(buttons))
	return nil
}

func (m *LogMessenger) SendPhoto(_ context.Context, chatID int64, image []byte, caption string, buttons ...[]Button) error {
	m.logger.Info("outbound photo", "chat_id", chatID, "caption", caption, "image_bytes", len(image), "button_rows", len(buttons))
	return nil
}

func (m *LogMessenger) Forward(_ context.Context, toChatID, fromChatID int64, messageID int) error {
	m.logger.Info("outbound forward", "to_chat_id", toChatID, "from_chat_id", fromChatID, "message_id", messageID)
	return nil
}

func (m *LogMessenger) AnswerCallback(_ context.Context, callbackID, notice string, alert bool) error {
	m.logger.Info("outbound callback answer", "callback_id", callbackID, "notice", notice, "alert", alert)
	return nil
}
