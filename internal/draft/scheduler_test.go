package draft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/openfpl/draft-backend/internal/model"
	"github.com/openfpl/draft-backend/internal/store/mockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestScheduler_PollsOnInterval(t *testing.T) {
	st := &mockstore.Store{}
	clk := clock.NewMock()
	coord := NewCoordinator(st, NewRegistry(), &fakeBroadcaster{}, clk, zap.NewNop())

	var mu sync.Mutex
	var windows [][2]time.Time
	st.On("DueLeagues", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.League{}, nil).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			windows = append(windows, [2]time.Time{
				args.Get(1).(time.Time),
				args.Get(2).(time.Time),
			})
		})

	s := NewScheduler(coord, clk, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let Run arm its ticker before moving the clock.
	time.Sleep(10 * time.Millisecond)
	clk.Add(pollInterval)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(windows) == 1
	}, time.Second, 5*time.Millisecond)

	clk.Add(pollInterval)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(windows) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	for _, w := range windows {
		assert.Equal(t, pollLookback, w[1].Sub(w[0]), "poll window spans the lookback")
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
