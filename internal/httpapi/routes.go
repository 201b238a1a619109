package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openfpl/draft-backend/internal/draft"
	"github.com/openfpl/draft-backend/internal/hub"
	"github.com/openfpl/draft-backend/internal/ws"
	"go.uber.org/zap"
)

func SetupRoutes(coord *draft.Coordinator, h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(coord, h, log))
	r.Get("/leagues/{leagueID}/draft", DraftState(coord))
	return r
}
