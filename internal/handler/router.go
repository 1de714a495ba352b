package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kavinmuthu/scamlure/internal/handler/honeypot"
	personaHandler "github.com/kavinmuthu/scamlure/internal/handler/persona"
	"github.com/kavinmuthu/scamlure/internal/handler/sessions"
	middlewarePkg "github.com/kavinmuthu/scamlure/internal/middleware"
	personaModel "github.com/kavinmuthu/scamlure/internal/model/persona"
	"github.com/kavinmuthu/scamlure/internal/service/engage"
	"github.com/kavinmuthu/scamlure/internal/service/report"
	sessionstore "github.com/kavinmuthu/scamlure/internal/service/session"
	"github.com/kavinmuthu/scamlure/pkg/utils"
)

// NewRouter wires HTTP routes to core services. apiKey guards the /api
// subtree; health endpoints stay open for monitoring.
func NewRouter(
	store *sessionstore.Store,
	planner *engage.Planner,
	dispatcher *report.Dispatcher,
	personas personaModel.Store,
	apiKey string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)

	honeypotHandler := honeypot.New(store, planner, dispatcher)
	sessionHandler := sessions.New(store, dispatcher)
	personaH := personaHandler.New(personas)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.APIKey(apiKey))

		honeypotHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
		personaH.RegisterRoutes(api)
	})

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "online",
		"service":   "scamlure",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
