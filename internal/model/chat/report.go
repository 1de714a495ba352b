package chat

import (
	"strings"

	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

// Report is the payload delivered to the external evaluation endpoint.
// Field names and shape are compatibility-critical; do not rename.
type Report struct {
	SessionID              string             `json:"sessionId"`
	ScamDetected           bool               `json:"scamDetected"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.Intelligence `json:"extractedIntelligence"`
	AgentNotes             string             `json:"agentNotes"`
}

// BuildReport assembles the evaluation payload from a session snapshot.
func BuildReport(s Session) Report {
	notes := strings.Join(s.AgentNotes, "; ")
	if notes == "" {
		notes = "Scammer engaged successfully"
	}
	return Report{
		SessionID:              s.ID,
		ScamDetected:           s.ScamDetected,
		TotalMessagesExchanged: s.TurnCount(),
		ExtractedIntelligence:  s.Intel.Clone(),
		AgentNotes:             notes,
	}
}
