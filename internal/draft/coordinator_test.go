package draft

import (
	"context"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/openfpl/draft-backend/internal/model"
	"github.com/openfpl/draft-backend/internal/store"
	"github.com/openfpl/draft-backend/internal/store/mockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type coordFixture struct {
	coord     *Coordinator
	registry  *Registry
	store     *mockstore.Store
	broadcast *fakeBroadcaster
	clk       *clock.Mock
}

func newCoordFixture(t *testing.T) *coordFixture {
	t.Helper()

	st := &mockstore.Store{}
	reg := NewRegistry()
	fb := &fakeBroadcaster{}
	clk := clock.NewMock()

	return &coordFixture{
		coord:     NewCoordinator(st, reg, fb, clk, zap.NewNop()),
		registry:  reg,
		store:     st,
		broadcast: fb,
		clk:       clk,
	}
}

func TestCoordinator_StartDueDrafts(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	league.Status = model.StatusWaitingForDraft

	until := f.clk.Now()
	since := until.Add(-time.Minute)

	f.store.On("DueLeagues", mock.Anything, since, until).Return([]model.League{league}, nil)
	f.store.On("ClaimLeagueForDraft", mock.Anything, league.ID).Return(true, nil)
	f.store.On("LeagueManagers", mock.Anything, league.ID).Return(testManagers(2), nil)
	f.store.On("AvailablePlayers", mock.Anything).Return(completePool(2), nil)

	require.NoError(t, f.coord.StartDueDrafts(ctx, since, until))

	s := f.registry.Get(league.ID)
	require.NotNil(t, s, "claimed league must get a registered session")
	assert.False(t, s.Completed())

	// startDraft broadcast the opening snapshot.
	f.broadcast.mu.Lock()
	assert.NotEmpty(t, f.broadcast.states)
	f.broadcast.mu.Unlock()
}

func TestCoordinator_StartDueDrafts_LostClaim(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	league.Status = model.StatusWaitingForDraft

	until := f.clk.Now()
	since := until.Add(-time.Minute)

	f.store.On("DueLeagues", mock.Anything, since, until).Return([]model.League{league}, nil)
	// A racing tick (or another process) already flipped the status.
	f.store.On("ClaimLeagueForDraft", mock.Anything, league.ID).Return(false, nil)

	require.NoError(t, f.coord.StartDueDrafts(ctx, since, until))

	assert.Nil(t, f.registry.Get(league.ID))
	f.store.AssertNotCalled(t, "LeagueManagers", mock.Anything, mock.Anything)
}

func TestCoordinator_SubmitPick(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	s := NewSession(league, testManagers(2), completePool(2), f.store, f.registry,
		f.broadcast, f.clk, newTestRand(), zap.NewNop())
	f.registry.Add(s)
	s.StartDraft()

	f.store.On("ManagerByUsername", mock.Anything, "alice").
		Return(&model.Manager{ID: 1, Username: "alice"}, nil)

	playerID := s.Snapshot().DraftPool[0].ID
	f.coord.SubmitPick(ctx, league.ID, "alice", playerID)

	assert.Len(t, s.Snapshot().Rosters[1], 1)
}

func TestCoordinator_SubmitPick_NoActiveDraft(t *testing.T) {
	f := newCoordFixture(t)

	f.coord.SubmitPick(context.Background(), 99, "alice", 1)

	f.store.AssertNotCalled(t, "ManagerByUsername", mock.Anything, mock.Anything)
}

func TestCoordinator_SubmitPick_UnknownCaller(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	s := NewSession(league, testManagers(2), completePool(2), f.store, f.registry,
		f.broadcast, f.clk, newTestRand(), zap.NewNop())
	f.registry.Add(s)
	s.StartDraft()

	f.store.On("ManagerByUsername", mock.Anything, "mallory").
		Return(nil, store.ErrManagerNotFound)

	f.coord.SubmitPick(ctx, league.ID, "mallory", s.Snapshot().DraftPool[0].ID)

	for _, roster := range s.Snapshot().Rosters {
		assert.Empty(t, roster)
	}
}

func TestCoordinator_RequestState_StartingSoon(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	league.Status = model.StatusWaitingForDraft
	league.DraftStart = f.clk.Now().Add(2 * time.Minute)

	f.store.On("GetLeague", mock.Anything, league.ID).Return(&league, nil)

	f.coord.RequestState(ctx, league.ID, "alice")

	f.broadcast.mu.Lock()
	defer f.broadcast.mu.Unlock()
	require.Len(t, f.broadcast.soon, 1)
	assert.Equal(t, "alice", f.broadcast.soon[0].username)
	assert.Equal(t, int64(120000), f.broadcast.soon[0].startsInMS)
	assert.Empty(t, f.broadcast.sent)
}

func TestCoordinator_RequestState_RunningDraft(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	league.DraftStart = f.clk.Now().Add(-time.Hour)

	s := NewSession(league, testManagers(2), completePool(2), f.store, f.registry,
		f.broadcast, f.clk, newTestRand(), zap.NewNop())
	f.registry.Add(s)
	s.StartDraft()

	f.store.On("GetLeague", mock.Anything, league.ID).Return(&league, nil)

	f.coord.RequestState(ctx, league.ID, "bob")

	f.broadcast.mu.Lock()
	defer f.broadcast.mu.Unlock()
	require.Len(t, f.broadcast.sent, 1)
	assert.Equal(t, "bob", f.broadcast.sent[0].username)
	assert.Equal(t, int64(1), f.broadcast.sent[0].snap.CurrentManager.ID)
}

func TestCoordinator_RequestState_NoSession(t *testing.T) {
	f := newCoordFixture(t)
	ctx := context.Background()

	league := testLeague()
	// Start is more than five minutes out and nothing is drafting yet.
	league.Status = model.StatusWaitingForDraft
	league.DraftStart = f.clk.Now().Add(time.Hour)

	f.store.On("GetLeague", mock.Anything, league.ID).Return(&league, nil)

	f.coord.RequestState(ctx, league.ID, "alice")

	f.broadcast.mu.Lock()
	defer f.broadcast.mu.Unlock()
	assert.Empty(t, f.broadcast.soon)
	assert.Empty(t, f.broadcast.sent)
}

func TestCoordinator_StateSnapshot(t *testing.T) {
	f := newCoordFixture(t)

	_, ok := f.coord.StateSnapshot(42)
	assert.False(t, ok)

	league := testLeague()
	s := NewSession(league, testManagers(2), completePool(2), f.store, f.registry,
		f.broadcast, f.clk, newTestRand(), zap.NewNop())
	f.registry.Add(s)
	s.StartDraft()

	snap, ok := f.coord.StateSnapshot(42)
	require.True(t, ok)
	assert.Equal(t, int64(1), snap.CurrentManager.ID)
}
