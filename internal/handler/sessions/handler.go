package sessions

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kavinmuthu/scamlure/internal/model/chat"
	"github.com/kavinmuthu/scamlure/internal/service/report"
	sessionstore "github.com/kavinmuthu/scamlure/internal/service/session"
	"github.com/kavinmuthu/scamlure/pkg/utils"
)

// Handler exposes the operational surface: session inspection, forced
// report dispatch, and a live turn feed.
type Handler struct {
	store      *sessionstore.Store
	dispatcher *report.Dispatcher
	upgrader   websocket.Upgrader
}

// New builds the sessions handler.
func New(store *sessionstore.Store, dispatcher *report.Dispatcher) *Handler {
	return &Handler{
		store:      store,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the session debug endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}", h.handleGet)
	r.Post("/sessions/{sessionID}/report", h.handleForceReport)
	r.Get("/sessions/{sessionID}/watch", h.handleWatch)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := h.store.Snapshot(sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, snap)
}

// handleForceReport queues an unconditional report dispatch. Delivery
// runs in the background; the response only confirms the queue.
func (h *Handler) handleForceReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := h.store.Snapshot(sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	go func(id string) {
		if err := h.dispatcher.ForceFinalize(context.Background(), id); err != nil {
			log.Printf("[sessions] forced report failed for session=%s: %v", id, err)
		}
	}(sessionID)

	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"status":                "report queued",
		"sessionId":             sessionID,
		"extractedIntelligence": snap.Intel,
	})
}

type watchEvent struct {
	Type string       `json:"type"`
	Data chat.Message `json:"data"`
}

// handleWatch streams appended turns over a websocket until the client
// disconnects or the session is cleaned up.
func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, cancel, err := h.store.Watch(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[sessions] websocket upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	// Reader goroutine only notices the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-turns:
			if !ok {
				// Session removed by the TTL sweep.
				return
			}
			if err := conn.WriteJSON(watchEvent{Type: "turn", Data: msg}); err != nil {
				return
			}
		}
	}
}
