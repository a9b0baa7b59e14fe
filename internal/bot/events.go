// Package bot implements the conversational purchase flow: per-buyer
// sessions, rate limiting, and the dispatch of inbound chat events onto the
// order state machine. The chat transport itself is abstract; the bot only
// consumes classified events and talks back through the Messenger port.
package bot

type EventKind string

const (
	EventText   EventKind = "text"
	EventPhoto  EventKind = "photo"
	EventButton EventKind = "button"
)

// Event is one classified inbound chat event. SenderID identifies the
// author, ChatID the conversation; for direct chats they coincide.
type Event struct {
	Kind      EventKind
	ChatID    int64
	SenderID  int64
	MessageID int

	// Text carries the message text for EventText.
	Text string

	// CallbackID and CallbackData are set for EventButton.
	CallbackID   string
	CallbackData string
}
