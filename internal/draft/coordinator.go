package draft

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/openfpl/draft-backend/internal/model"
	"github.com/openfpl/draft-backend/internal/store"
	"go.uber.org/zap"
)

// How far ahead of the draft start a subscriber gets a countdown
// notice instead of a snapshot.
const startingSoonWindow = 5 * time.Minute

// Coordinator is the service facade in front of the draft core. It
// resolves callers to managers, routes picks and state requests into
// the right session, and builds sessions for leagues whose draft time
// has arrived.
type Coordinator struct {
	store     store.Store
	registry  *Registry
	broadcast Broadcaster
	clk       clock.Clock
	log       *zap.Logger
}

func NewCoordinator(st store.Store, reg *Registry, b Broadcaster, clk clock.Clock, log *zap.Logger) *Coordinator {
	return &Coordinator{
		store:     st,
		registry:  reg,
		broadcast: b,
		clk:       clk,
		log:       log,
	}
}

// StartDueDrafts promotes every waiting league whose draft start falls
// in (since, until] into a running session. Safe to call from racing
// ticks: the store-side status claim admits one starter per league.
func (c *Coordinator) StartDueDrafts(ctx context.Context, since, until time.Time) error {
	leagues, err := c.store.DueLeagues(ctx, since, until)
	if err != nil {
		return fmt.Errorf("error querying due leagues: %w", err)
	}

	for _, league := range leagues {
		if err := c.startDraft(ctx, league); err != nil {
			c.log.Error("error starting draft",
				zap.Int64("league_id", league.ID), zap.Error(err))
		}
	}
	return nil
}

func (c *Coordinator) startDraft(ctx context.Context, league model.League) error {
	claimed, err := c.store.ClaimLeagueForDraft(ctx, league.ID)
	if err != nil {
		return fmt.Errorf("error claiming league: %w", err)
	}
	if !claimed {
		// Another tick or another process won the claim.
		return nil
	}
	league.Status = model.StatusDrafting

	managers, err := c.store.LeagueManagers(ctx, league.ID)
	if err != nil {
		return fmt.Errorf("error loading league managers: %w", err)
	}
	if len(managers) == 0 {
		return fmt.Errorf("league %d has no teams to draft for", league.ID)
	}

	pool, err := c.store.AvailablePlayers(ctx)
	if err != nil {
		return fmt.Errorf("error loading draft pool: %w", err)
	}

	rnd := rand.New(rand.NewSource(c.clk.Now().UnixNano()))
	s := NewSession(league, managers, pool, c.store, c.registry, c.broadcast, c.clk, rnd, c.log)
	c.registry.Add(s)
	s.StartDraft()
	return nil
}

// SubmitPick routes an authenticated caller's pick into the league's
// session. Requests for leagues with no active draft are dropped; the
// caller-facing edge infers why from league status.
func (c *Coordinator) SubmitPick(ctx context.Context, leagueID int64, username string, playerID int64) {
	s := c.registry.Get(leagueID)
	if s == nil || s.Completed() {
		c.log.Info("pick for league with no active draft",
			zap.Int64("league_id", leagueID), zap.String("user", username))
		return
	}

	manager, err := c.store.ManagerByUsername(ctx, username)
	if err != nil {
		c.log.Warn("cannot resolve caller to a manager",
			zap.String("user", username), zap.Error(err))
		return
	}

	s.PickPlayer(manager.ID, playerID)
}

// RequestState sends the caller a targeted copy of the league's draft
// state. Inside the five-minute window before the scheduled start it
// sends a countdown notice instead.
func (c *Coordinator) RequestState(ctx context.Context, leagueID int64, username string) {
	league, err := c.store.GetLeague(ctx, leagueID)
	if err != nil {
		c.log.Info("state request for unknown league",
			zap.Int64("league_id", leagueID), zap.Error(err))
		return
	}

	untilStart := league.DraftStart.Sub(c.clk.Now())
	if untilStart > 0 && untilStart <= startingSoonWindow {
		c.broadcast.SendStartingSoon(leagueID, untilStart.Milliseconds(), username)
		return
	}

	s := c.registry.Get(leagueID)
	if s == nil || s.Completed() {
		c.log.Info("state request for league with no active draft",
			zap.Int64("league_id", leagueID), zap.String("user", username))
		return
	}

	c.broadcast.SendStateTo(leagueID, s.Snapshot(), username)
}

// StateSnapshot returns the current snapshot for ops/debugging reads.
func (c *Coordinator) StateSnapshot(leagueID int64) (Snapshot, bool) {
	s := c.registry.Get(leagueID)
	if s == nil {
		return Snapshot{}, false
	}
	return s.Snapshot(), true
}
