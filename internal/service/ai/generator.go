package ai

import (
	"context"

	"github.com/kavinmuthu/scamlure/internal/model/chat"
)

// Request is the context package handed to the text generator: the
// persona/system instructions, the windowed conversation history, and
// the latest inbound message.
type Request struct {
	System  string
	History []chat.Message
	Query   string
}

// Generator produces one in-persona reply. Implementations must respect
// the context deadline; the planner treats any error or empty result as
// a signal to fall back to canned replies.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
