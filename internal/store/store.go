package store

import (
	"context"
	"errors"
	"time"

	"github.com/openfpl/draft-backend/internal/model"
)

var (
	ErrLeagueNotFound  = errors.New("league not found")
	ErrManagerNotFound = errors.New("manager not found")
	ErrTeamNotFound    = errors.New("team not found")
)

type Store interface {
	GetLeague(ctx context.Context, id int64) (*model.League, error)

	// DueLeagues lists leagues still waiting for their draft whose
	// scheduled start falls in (since, until].
	DueLeagues(ctx context.Context, since, until time.Time) ([]model.League, error)

	// ClaimLeagueForDraft flips a league from "waiting for draft" to
	// "drafting" and reports whether this caller performed the flip.
	// Concurrent claimers race on the status column, so at most one
	// ever gets true for a given league.
	ClaimLeagueForDraft(ctx context.Context, id int64) (bool, error)

	// LeagueManagers returns one entry per distinct manager owning a
	// team in the league, in a stable order.
	LeagueManagers(ctx context.Context, leagueID int64) ([]model.Manager, error)

	AvailablePlayers(ctx context.Context) ([]model.Player, error)

	ManagerByUsername(ctx context.Context, username string) (*model.Manager, error)

	// SaveDraftResults records every manager's drafted roster and moves
	// the league to "in season" in a single transaction.
	SaveDraftResults(ctx context.Context, leagueID int64, rosters map[int64][]model.Player) error

	Close()
}
