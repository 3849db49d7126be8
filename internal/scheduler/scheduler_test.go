package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RefreshAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestRefreshJob_Run(t *testing.T) {
	log := zerolog.Nop()

	t.Run("success", func(t *testing.T) {
		refresher := new(mockRefresher)
		refresher.On("RefreshAll", mock.Anything).Return(nil)

		job := NewRefreshJob(refresher, time.Minute, log)

		require.NoError(t, job.Run())
		refresher.AssertExpectations(t)
	})

	t.Run("passes a deadline when a timeout is set", func(t *testing.T) {
		refresher := new(mockRefresher)
		refresher.On("RefreshAll", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		})).Return(nil)

		require.NoError(t, NewRefreshJob(refresher, time.Minute, log).Run())
		refresher.AssertExpectations(t)
	})

	t.Run("error is returned", func(t *testing.T) {
		refresher := new(mockRefresher)
		refresher.On("RefreshAll", mock.Anything).Return(errors.New("provider down"))

		err := NewRefreshJob(refresher, 0, log).Run()

		assert.EqualError(t, err, "provider down")
	})
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := NewRefreshJob(new(mockRefresher), 0, zerolog.Nop())

	assert.NoError(t, s.AddJob("30 22 * * 1-5", job))
	assert.NoError(t, s.AddJob("@every 1h", job))
	// Seconds fields are not accepted.
	assert.Error(t, s.AddJob("0 30 22 * * 1-5", job))
	assert.Error(t, s.AddJob("not a schedule", job))
}

func TestScheduler_RunNow(t *testing.T) {
	refresher := new(mockRefresher)
	refresher.On("RefreshAll", mock.Anything).Return(nil).Once()

	s := New(zerolog.Nop())
	s.Start()
	defer s.Stop()

	require.NoError(t, s.RunNow(NewRefreshJob(refresher, 0, zerolog.Nop())))
	refresher.AssertNumberOfCalls(t, "RefreshAll", 1)
}
