package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openfpl/draft-backend/internal/draft"
)

// DraftState serves the current snapshot of a running draft. It exists
// for ops and debugging; live clients watch over the websocket.
func DraftState(coord *draft.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID, err := strconv.ParseInt(chi.URLParam(r, "leagueID"), 10, 64)
		if err != nil {
			http.Error(w, "bad league id", http.StatusBadRequest)
			return
		}

		snap, ok := coord.StateSnapshot(leagueID)
		if !ok {
			http.Error(w, "no active draft", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
