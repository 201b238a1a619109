package hub

import (
	"context"

	"github.com/openfpl/draft-backend/internal/draft"
	"github.com/openfpl/draft-backend/internal/types"
	"go.uber.org/zap"
)

type Msg interface{ isHubMsg() }

type Subscribe struct {
	LeagueID int64
	ClientID string
	Username string
	Outbox   chan types.ServerMessage // where this client wants to receive messages
}

type Unsubscribe struct {
	LeagueID int64
	ClientID string
}

type Shutdown struct{}

// publish fans a message out to a league's subscribers; a non-empty
// username restricts delivery to that user's connections.
type publish struct {
	leagueID int64
	username string
	msg      types.ServerMessage
}

// getView is test-only: reflect subscriber counts without data races.
type getView struct {
	leagueID int64
	reply    chan int
}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Shutdown) isHubMsg()    {}
func (publish) isHubMsg()     {}
func (getView) isHubMsg()     {}

type subscriber struct {
	username string
	outbox   chan types.ServerMessage
}

// Hub owns the league -> subscribers fan-out. It implements
// draft.Broadcaster; the draft core hands it snapshots and events and
// the ws layer hands it subscriber channels.
type Hub struct {
	inbox   chan Msg
	leagues map[int64]map[string]subscriber
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)

	h := &Hub{
		inbox:   make(chan Msg, 64),
		leagues: make(map[int64]map[string]subscriber),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go h.loop()
	return h
}

// Expose the inbox so tests or the WS layer can send messages.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				subs := h.leagues[msg.LeagueID]
				if subs == nil {
					subs = make(map[string]subscriber)
					h.leagues[msg.LeagueID] = subs
				}
				subs[msg.ClientID] = subscriber{username: msg.Username, outbox: msg.Outbox}

			case Unsubscribe:
				if subs := h.leagues[msg.LeagueID]; subs != nil {
					if sub, ok := subs[msg.ClientID]; ok {
						close(sub.outbox)
						delete(subs, msg.ClientID)
					}
					if len(subs) == 0 {
						delete(h.leagues, msg.LeagueID)
					}
				}

			case publish:
				h.deliver(msg)

			case getView:
				msg.reply <- len(h.leagues[msg.leagueID])

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) deliver(p publish) {
	subs := h.leagues[p.leagueID]
	for id, sub := range subs {
		if p.username != "" && sub.username != p.username {
			continue
		}
		select {
		case sub.outbox <- p.msg:
			// ok
		default:
			// Client is slow/full - drop them.
			close(sub.outbox)
			delete(subs, id)
		}
	}
}

func (h *Hub) shutdown() {
	for leagueID, subs := range h.leagues {
		for id, sub := range subs {
			close(sub.outbox)
			delete(subs, id)
		}
		delete(h.leagues, leagueID)
	}
	h.cancel()
}

// send enqueues without ever blocking the caller: the draft session
// publishes from inside its critical section.
func (h *Hub) send(m Msg) {
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
	default:
		h.log.Debug("hub inbox full, dropping message")
	}
}

// draft.Broadcaster implementation.

func (h *Hub) BroadcastState(leagueID int64, snap draft.Snapshot) {
	h.send(publish{
		leagueID: leagueID,
		msg:      types.ServerMessage{Type: "DraftState", LeagueID: leagueID, State: &snap},
	})
}

func (h *Hub) SendStateTo(leagueID int64, snap draft.Snapshot, username string) {
	h.send(publish{
		leagueID: leagueID,
		username: username,
		msg:      types.ServerMessage{Type: "DraftState", LeagueID: leagueID, State: &snap},
	})
}

func (h *Hub) SendStartingSoon(leagueID int64, startsInMS int64, username string) {
	h.send(publish{
		leagueID: leagueID,
		username: username,
		msg:      types.ServerMessage{Type: "DraftStartingSoon", LeagueID: leagueID, StartsInMS: startsInMS},
	})
}

func (h *Hub) SendDraftComplete(leagueID int64) {
	h.send(publish{
		leagueID: leagueID,
		msg:      types.ServerMessage{Type: "DraftComplete", LeagueID: leagueID},
	})
}
