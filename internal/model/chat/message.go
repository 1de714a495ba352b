package chat

import "time"

// Sender values carried on every turn.
const (
	SenderScammer = "scammer"
	SenderUser    = "user"
)

// Message persists individual turns for replay/debug and for building
// the AI conversation context.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
