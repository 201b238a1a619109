package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/openfpl/draft-backend/internal/draft"
	"github.com/openfpl/draft-backend/internal/hub"
	"github.com/openfpl/draft-backend/internal/types"
	"go.uber.org/zap"
)

// Handler upgrades a draft watcher to a websocket. The caller identity
// arrives on the `user` query param, put there by the auth layer in
// front of this service.
func Handler(coord *draft.Coordinator, h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID, err := strconv.ParseInt(r.URL.Query().Get("league"), 10, 64)
		if err != nil {
			http.Error(w, "missing or bad league", http.StatusBadRequest)
			return
		}
		username := r.URL.Query().Get("user")
		if username == "" {
			http.Error(w, "missing user", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 8)
		clientID := randID(6)

		h.Inbox() <- hub.Subscribe{LeagueID: leagueID, ClientID: clientID, Username: username, Outbox: out}
		defer func() { h.Inbox() <- hub.Unsubscribe{LeagueID: leagueID, ClientID: clientID} }()

		// Catch the late subscriber up (or tell them how long until the
		// draft starts).
		coord.RequestState(r.Context(), leagueID, username)

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("error marshaling server message", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. No read deadline: watchers may legitimately sit
		// silent for many turns.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			lid := cm.LeagueID
			if lid == 0 {
				lid = leagueID
			}

			switch cm.Type {
			case "PickPlayer":
				coord.SubmitPick(r.Context(), lid, username, cm.PlayerID)
			case "GetDraftState":
				coord.RequestState(r.Context(), lid, username)
			default:
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
