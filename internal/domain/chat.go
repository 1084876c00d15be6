package domain

import "time"

// ChatMessageType indicates who authored a chat message.
type ChatMessageType string

const (
	ChatTypeUser      ChatMessageType = "Usuario"
	ChatTypeAssistant ChatMessageType = "Assistente"
	ChatTypeSystem    ChatMessageType = "Sistema"
)

// MaxChatMessageLen bounds the persisted message body.
const MaxChatMessageLen = 2000

// ChatMessage is one entry in a per-ticket conversation thread. Sender and
// recipient become nil when the referenced user is removed; the message
// itself survives. ParentID forms an unbounded reply chain.
type ChatMessage struct {
	ID          int64
	TicketID    *int64
	SenderID    *int64
	RecipientID *int64
	Body        string
	MessageType ChatMessageType
	ParentID    *int64
	SentAt      time.Time
}

// SentByClient reports whether the message came from the ticket owner side.
func (m *ChatMessage) SentByClient() bool {
	return m.MessageType == ChatTypeUser
}

// MaxAIResultLen bounds the stored assistant result payload.
const MaxAIResultLen = 4000

// ChatAIResult stores the serialized outcome of an assistant run for a chat
// message, kept for later inspection.
type ChatAIResult struct {
	ID            int64
	ChatMessageID int64
	ResultJSON    string
	CreatedAt     time.Time
}
