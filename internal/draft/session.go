package draft

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/openfpl/draft-backend/internal/engine"
	"github.com/openfpl/draft-backend/internal/model"
	"github.com/openfpl/draft-backend/internal/store"
	"go.uber.org/zap"
)

const (
	completionAttempts   = 5
	completionRetryDelay = 2 * time.Second
)

// Session runs one league's live snake draft. All mutable state is
// guarded by mu; PickPlayer (reached by humans and by the turn timer)
// is the only mutator and runs the full check-commit-advance sequence
// inside a single critical section.
type Session struct {
	league    model.League
	log       *zap.Logger
	clk       clock.Clock
	rnd       *rand.Rand
	store     store.Store
	registry  *Registry
	broadcast Broadcaster

	mu              sync.Mutex
	managers        []model.Manager // order reverses at every round boundary
	rosters         map[int64][]model.Player
	pool            []model.Player
	turnIndex       int
	completed       bool
	failed          bool
	timer           *clock.Timer
	timerGen        int
	deadline        time.Time
	lastPickMessage string
	retryDelay      time.Duration
}

func NewSession(league model.League, managers []model.Manager, pool []model.Player,
	st store.Store, reg *Registry, b Broadcaster, clk clock.Clock, rnd *rand.Rand,
	log *zap.Logger) *Session {

	rosters := make(map[int64][]model.Player, len(managers))
	for _, m := range managers {
		rosters[m.ID] = []model.Player{}
	}

	return &Session{
		league:     league,
		log:        log.With(zap.Int64("league_id", league.ID), zap.String("league", league.Name)),
		clk:        clk,
		rnd:        rnd,
		store:      st,
		registry:   reg,
		broadcast:  b,
		managers:   slices.Clone(managers),
		rosters:    rosters,
		pool:       slices.Clone(pool),
		retryDelay: completionRetryDelay,
	}
}

func (s *Session) LeagueID() int64 {
	return s.league.ID
}

func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// StartDraft arms the first turn's timer and broadcasts the initial
// snapshot. Call once, right after registration.
func (s *Session) StartDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("starting draft",
		zap.Int("managers", len(s.managers)),
		zap.Int("pool_size", len(s.pool)))
	s.scheduleNextPick()
}

func (s *Session) PickPlayer(managerID, playerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pickLocked(managerID, playerID)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// pickLocked validates and commits one pick. Every rejection is a
// logged no-op: stale UI clicks and late timer fires are expected, and
// the next broadcast corrects the client.
func (s *Session) pickLocked(managerID, playerID int64) {
	if s.completed || s.failed {
		s.log.Debug("pick dropped",
			zap.Int64("manager_id", managerID), zap.Error(engine.ErrDraftCompleted))
		return
	}

	player, ok := s.poolPlayer(playerID)
	if !ok {
		s.log.Info("pick rejected",
			zap.Int64("manager_id", managerID), zap.Int64("player_id", playerID),
			zap.Error(engine.ErrPlayerNotInPool))
		return
	}

	cur := s.currentManager()
	if cur.ID != managerID {
		s.log.Info("pick rejected",
			zap.Int64("manager_id", managerID), zap.Int64("current_manager_id", cur.ID),
			zap.Error(engine.ErrNotYourTurn))
		return
	}

	if err := engine.CheckPick(s.rosters[managerID], player, s.league.MaxPerClub); err != nil {
		s.log.Info("pick rejected",
			zap.Int64("manager_id", managerID), zap.Int64("player_id", playerID),
			zap.Error(err))
		return
	}

	s.rosters[managerID] = append(s.rosters[managerID], player)
	s.removeFromPool(playerID)
	s.lastPickMessage = fmt.Sprintf("%s picked %s (%s)",
		cur.Username, player.DisplayName(), player.ClubShort)

	s.log.Info("pick committed",
		zap.Int64("manager_id", managerID), zap.Int64("player_id", playerID),
		zap.Int("roster_size", len(s.rosters[managerID])))

	if s.allRostersComplete() {
		s.completeLocked()
	} else {
		s.advanceTurnLocked()
	}
}

func (s *Session) advanceTurnLocked() {
	next, wrapped := engine.NextIndex(s.turnIndex, len(s.managers))
	s.turnIndex = next
	if wrapped {
		// Snake order: the round's last picker opens the next round.
		slices.Reverse(s.managers)
	}
	s.scheduleNextPick()
}

// scheduleNextPick replaces the pending turn timer and broadcasts the
// new state. The generation counter drops fires from timers that were
// stopped after already going off.
func (s *Session) scheduleNextPick() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen

	d := s.league.DraftTurnDuration
	s.deadline = s.clk.Now().Add(d)
	s.timer = s.clk.AfterFunc(d, func() { s.autoPick(gen) })

	s.broadcast.BroadcastState(s.league.ID, s.snapshotLocked())
}

// autoPick fires when a turn timer expires with no manual pick. It
// draws uniformly from the players that still satisfy the current
// manager's allocation rules and commits through the same path a
// manual pick takes.
func (s *Session) autoPick(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.completed || s.failed {
		return
	}

	cur := s.currentManager()
	eligible := engine.Eligible(s.pool, s.rosters[cur.ID], s.league.MaxPerClub)
	if len(eligible) == 0 {
		// The caps cannot be satisfied by what's left in the pool. That
		// means league configuration was never draftable; freezing here
		// beats stalling silently forever.
		s.failLocked(engine.ErrNoEligiblePlayers)
		return
	}

	pick := eligible[s.rnd.Intn(len(eligible))]
	s.log.Info("auto-picking on timeout",
		zap.Int64("manager_id", cur.ID), zap.Int64("player_id", pick.ID))
	s.pickLocked(cur.ID, pick.ID)
}

func (s *Session) failLocked(err error) {
	s.failed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
	s.log.Error("draft cannot continue",
		zap.Error(err),
		zap.Int64("current_manager_id", s.currentManager().ID),
		zap.Int("pool_size", len(s.pool)))
	s.broadcast.BroadcastState(s.league.ID, s.snapshotLocked())
}

// completeLocked runs the terminal commit: final snapshot, durable
// roster persistence, deregistration, completion event. The session
// stays in the registry until the store accepts the rosters, so a
// crash mid-completion never loses the outcome silently.
func (s *Session) completeLocked() {
	s.completed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
	s.broadcast.BroadcastState(s.league.ID, s.snapshotLocked())

	ctx := context.Background()
	for attempt := 1; ; attempt++ {
		err := s.store.SaveDraftResults(ctx, s.league.ID, s.rosters)
		if err == nil {
			break
		}
		s.log.Error("error persisting draft results",
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt >= completionAttempts {
			s.failed = true
			return
		}
		s.clk.Sleep(s.retryDelay)
	}

	s.registry.Remove(s.league.ID)
	s.broadcast.SendDraftComplete(s.league.ID)
	s.log.Info("draft complete")
}

func (s *Session) snapshotLocked() Snapshot {
	rosters := make(map[int64][]PlayerView, len(s.rosters))
	for id, roster := range s.rosters {
		views := make([]PlayerView, len(roster))
		for i, p := range roster {
			views[i] = playerView(p)
		}
		rosters[id] = views
	}

	pool := make([]PlayerView, len(s.pool))
	for i, p := range s.pool {
		pool[i] = playerView(p)
	}

	var next *ManagerView
	if nm := s.nextManagerLocked(); nm != nil {
		v := managerView(*nm)
		next = &v
	}

	var remaining int64
	if s.timer != nil {
		if d := s.deadline.Sub(s.clk.Now()); d > 0 {
			remaining = d.Milliseconds()
		}
	}

	return Snapshot{
		CurrentManager:  managerView(s.currentManager()),
		NextManager:     next,
		Rosters:         rosters,
		DraftPool:       pool,
		LastPickMessage: s.lastPickMessage,
		RemainingMS:     remaining,
	}
}

func (s *Session) currentManager() model.Manager {
	return s.managers[s.turnIndex]
}

// nextManagerLocked previews the following turn. At the round boundary
// the wrap-around manager picks twice; once that manager holds 14+
// players there is no meaningful "next", which clients read as the
// draft wrapping up.
func (s *Session) nextManagerLocked() *model.Manager {
	next := (s.turnIndex + 1) % len(s.managers)
	if next == 0 {
		next = len(s.managers) - 1
		if len(s.rosters[s.managers[next].ID]) >= engine.RosterLimit-1 {
			return nil
		}
	}
	m := s.managers[next]
	return &m
}

func (s *Session) allRostersComplete() bool {
	for _, roster := range s.rosters {
		if !engine.RosterComplete(roster) {
			return false
		}
	}
	return true
}

func (s *Session) poolPlayer(playerID int64) (model.Player, bool) {
	for _, p := range s.pool {
		if p.ID == playerID {
			return p, true
		}
	}
	return model.Player{}, false
}

func (s *Session) removeFromPool(playerID int64) {
	s.pool = slices.DeleteFunc(s.pool, func(p model.Player) bool {
		return p.ID == playerID
	})
}
