package mockstore

import (
	"context"
	"time"

	"github.com/openfpl/draft-backend/internal/model"
	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (s *Store) GetLeague(ctx context.Context, id int64) (*model.League, error) {
	args := s.Called(ctx, id)

	var l *model.League
	if args.Get(0) != nil {
		l = args.Get(0).(*model.League)
	}
	return l, args.Error(1)
}

func (s *Store) DueLeagues(ctx context.Context, since, until time.Time) ([]model.League, error) {
	args := s.Called(ctx, since, until)

	var r []model.League
	if args.Get(0) != nil {
		r = args.Get(0).([]model.League)
	}
	return r, args.Error(1)
}

func (s *Store) ClaimLeagueForDraft(ctx context.Context, id int64) (bool, error) {
	args := s.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (s *Store) LeagueManagers(ctx context.Context, leagueID int64) ([]model.Manager, error) {
	args := s.Called(ctx, leagueID)

	var r []model.Manager
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Manager)
	}
	return r, args.Error(1)
}

func (s *Store) AvailablePlayers(ctx context.Context) ([]model.Player, error) {
	args := s.Called(ctx)

	var r []model.Player
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Player)
	}
	return r, args.Error(1)
}

func (s *Store) ManagerByUsername(ctx context.Context, username string) (*model.Manager, error) {
	args := s.Called(ctx, username)

	var m *model.Manager
	if args.Get(0) != nil {
		m = args.Get(0).(*model.Manager)
	}
	return m, args.Error(1)
}

func (s *Store) SaveDraftResults(ctx context.Context, leagueID int64, rosters map[int64][]model.Player) error {
	args := s.Called(ctx, leagueID, rosters)
	return args.Error(0)
}

func (s *Store) Close() {
	s.Called()
}
