package honeypot

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kavinmuthu/scamlure/internal/detect"
	"github.com/kavinmuthu/scamlure/internal/extract"
	"github.com/kavinmuthu/scamlure/internal/model/chat"
	"github.com/kavinmuthu/scamlure/internal/service/engage"
	"github.com/kavinmuthu/scamlure/internal/service/report"
	sessionstore "github.com/kavinmuthu/scamlure/internal/service/session"
	"github.com/kavinmuthu/scamlure/pkg/utils"
)

// inboundMessage mirrors the evaluator's wire format; timestamps arrive
// as ISO-8601 strings and may be absent.
type inboundMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

type honeypotRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             inboundMessage   `json:"message"`
	ConversationHistory []inboundMessage `json:"conversationHistory,omitempty"`
}

type honeypotResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// Handler drives the engagement loop for inbound scammer messages.
type Handler struct {
	store      *sessionstore.Store
	planner    *engage.Planner
	dispatcher *report.Dispatcher
}

// New wires the honeypot endpoint to the engine services.
func New(store *sessionstore.Store, planner *engage.Planner, dispatcher *report.Dispatcher) *Handler {
	return &Handler{store: store, planner: planner, dispatcher: dispatcher}
}

// RegisterRoutes mounts the honeypot endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/honeypot", h.handleProbe)
	r.Post("/honeypot", h.handleMessage)
}

// handleProbe answers the external tester's reachability check.
func (h *Handler) handleProbe(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "API is active",
		"status":  "success",
	})
}

// handleMessage runs one engagement turn. The scammer-facing path never
// surfaces an error: malformed input degrades to a friendly stall reply
// and report delivery runs off the request path.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req honeypotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.respondReply(w, "Hello! How can I help you today?")
		return
	}

	if req.SessionID == "" || req.Message.Text == "" {
		h.respondReply(w, "I didn't understand that. Can you please repeat?")
		return
	}

	snap := h.store.GetOrCreate(req.SessionID)
	if snap.TurnCount() == 0 && len(req.ConversationHistory) > 0 {
		snap = h.seedHistory(req.SessionID, req.ConversationHistory)
	}

	text := req.Message.Text
	turnNumber := snap.TurnCount() + 1

	found := extract.Extract(text)
	verdict := detect.Score(text, found)

	snap, err := h.store.ApplyTurn(req.SessionID, sessionstore.Turn{
		Message: chat.Message{
			Sender:    chat.SenderScammer,
			Text:      text,
			Timestamp: parseTimestamp(req.Message.Timestamp),
		},
		Found:      found,
		IsScam:     verdict.IsScam,
		Confidence: verdict.Confidence,
		ScamType:   verdict.ScamType,
		Notes:      []string{verdict.Notes, engage.StrategyNote(text, turnNumber)},
	})
	if err != nil {
		// Session vanished between create and apply (TTL sweep); stay in
		// character anyway.
		log.Printf("[honeypot] apply turn failed for session=%s: %v", req.SessionID, err)
		h.respondReply(w, "I'm having some trouble. Can you please repeat?")
		return
	}

	reply := h.planner.Reply(r.Context(), snap, text, verdict.ScamType)

	if _, err := h.store.Append(req.SessionID, chat.Message{
		Sender: chat.SenderUser,
		Text:   reply,
	}); err != nil {
		log.Printf("[honeypot] append reply failed for session=%s: %v", req.SessionID, err)
	}

	go func(id string) {
		if err := h.dispatcher.MaybeFinalize(context.Background(), id); err != nil {
			log.Printf("[honeypot] finalization failed for session=%s: %v", id, err)
		}
	}(req.SessionID)

	h.respondReply(w, reply)
}

// seedHistory replays evaluator-supplied history into a fresh session so
// extraction and sufficiency see the whole conversation after a restart.
func (h *Handler) seedHistory(sessionID string, history []inboundMessage) chat.Session {
	var snap chat.Session
	for _, msg := range history {
		if msg.Text == "" {
			continue
		}
		stamped := chat.Message{
			Sender:    msg.Sender,
			Text:      msg.Text,
			Timestamp: parseTimestamp(msg.Timestamp),
		}

		var err error
		if msg.Sender == chat.SenderScammer {
			found := extract.Extract(msg.Text)
			verdict := detect.Score(msg.Text, found)
			snap, err = h.store.ApplyTurn(sessionID, sessionstore.Turn{
				Message:    stamped,
				Found:      found,
				IsScam:     verdict.IsScam,
				Confidence: verdict.Confidence,
				ScamType:   verdict.ScamType,
			})
		} else {
			snap, err = h.store.Append(sessionID, stamped)
		}
		if err != nil {
			log.Printf("[honeypot] history seed failed for session=%s: %v", sessionID, err)
			break
		}
	}
	return snap
}

func (h *Handler) respondReply(w http.ResponseWriter, reply string) {
	utils.RespondJSON(w, http.StatusOK, honeypotResponse{Status: "success", Reply: reply})
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
