package bot

import "context"

// Button is one inline action offered under a message. Data round-trips
// back as Event.CallbackData when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, buttons ...[]Button) error
	SendPhoto(ctx context.Context, chatID int64, image []byte, caption string, buttons ...[]Button) error
	Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error

	// AnswerCallback acknowledges a button press; a non-empty notice is
	// shown to the presser, as a blocking popup when alert is set.
	AnswerCallback(ctx context.Context, callbackID, notice string, alert bool) error
}
