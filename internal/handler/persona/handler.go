package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kavinmuthu/scamlure/internal/model/persona"
	"github.com/kavinmuthu/scamlure/pkg/utils"
)

// Handler lists the victim personas available to the engagement engine.
type Handler struct {
	store persona.Store
}

// New builds the persona handler.
func New(store persona.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the persona endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleList)
	r.Get("/personas/{personaID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personaID")
	item, ok := h.store.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
