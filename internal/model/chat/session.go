package chat

import (
	"time"

	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

// Session captures one ongoing conversation with a suspected scammer.
//
// ScamDetected is monotonic: once a turn trips the detector it never
// reverts. Finalized flips true only after the evaluation callback has
// been delivered; a finalized session still accepts turns but is not
// re-reported automatically.
type Session struct {
	ID             string             `json:"sessionId"`
	Turns          []Message          `json:"turns"`
	Intel          intel.Intelligence `json:"extractedIntelligence"`
	ScamDetected   bool               `json:"scamDetected"`
	ScamConfidence float64            `json:"scamConfidence"`
	ScamType       string             `json:"scamType,omitempty"`
	AgentNotes     []string           `json:"agentNotes"`
	Finalized      bool               `json:"finalized"`
	Exhausted      bool               `json:"exhausted"`
	CreatedAt      time.Time          `json:"createdAt"`
	LastActivityAt time.Time          `json:"lastActivityAt"`
}

// TurnCount returns the number of messages exchanged so far, both
// directions included.
func (s Session) TurnCount() int {
	return len(s.Turns)
}

// ScammerTurns counts only inbound messages.
func (s Session) ScammerTurns() int {
	n := 0
	for _, m := range s.Turns {
		if m.Sender == SenderScammer {
			n++
		}
	}
	return n
}
