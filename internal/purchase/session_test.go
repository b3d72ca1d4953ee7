package purchase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passgate/internal/catalog"
)

func testItem() catalog.Item {
	return catalog.Item{Name: "Skin A", GamePassID: "999", FileURL: "https://files/skinA"}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusDelivered, StatusFailed, StatusTimedOut, StatusCancelled} {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}
	for _, s := range []Status{StatusPending, StatusAwaitingAccountName, StatusVerifying} {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestSession_Authorize(t *testing.T) {
	sess := newSession("buyer-1", testItem())

	assert.NoError(t, sess.Authorize("buyer-1"))
	assert.ErrorIs(t, sess.Authorize("buyer-2"), ErrNotYourSession)
	// Rejection never changes state.
	assert.Equal(t, StatusPending, sess.Status())
}

func TestSession_BeginVerification(t *testing.T) {
	t.Run("moves pending to awaiting account name", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())

		require.NoError(t, sess.BeginVerification())
		assert.Equal(t, StatusAwaitingAccountName, sess.Status())
		assert.True(t, sess.Processing())
	})

	t.Run("second trigger is rejected while in flight", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())

		require.NoError(t, sess.BeginVerification())
		assert.ErrorIs(t, sess.BeginVerification(), ErrVerificationInFlight)
		assert.Equal(t, StatusAwaitingAccountName, sess.Status())
	})

	t.Run("rejected after a terminal state", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())
		require.NoError(t, sess.Cancel())

		assert.ErrorIs(t, sess.BeginVerification(), ErrSessionClosed)
	})

	t.Run("exactly one of many concurrent triggers wins", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())

		const goroutines = 50
		var wg sync.WaitGroup
		results := make(chan error, goroutines)
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- sess.BeginVerification()
			}()
		}
		wg.Wait()
		close(results)

		var wins int
		for err := range results {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, ErrVerificationInFlight)
			}
		}
		assert.Equal(t, 1, wins)
	})
}

func TestSession_Cancel(t *testing.T) {
	t.Run("cancels a pending session", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())

		require.NoError(t, sess.Cancel())
		assert.Equal(t, StatusCancelled, sess.Status())
	})

	t.Run("rejected once verification started", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())
		require.NoError(t, sess.BeginVerification())

		assert.ErrorIs(t, sess.Cancel(), ErrSessionClosed)
		assert.Equal(t, StatusAwaitingAccountName, sess.Status())
	})

	t.Run("rejected when already terminal", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())
		require.NoError(t, sess.Cancel())

		assert.ErrorIs(t, sess.Cancel(), ErrSessionClosed)
	})
}

func TestSession_StartChecks(t *testing.T) {
	sess := newSession("buyer-1", testItem())
	require.NoError(t, sess.BeginVerification())

	sess.StartChecks()
	assert.Equal(t, StatusVerifying, sess.Status())

	// No effect outside the awaiting state.
	other := newSession("buyer-1", testItem())
	other.StartChecks()
	assert.Equal(t, StatusPending, other.Status())
}

func TestSession_Finish(t *testing.T) {
	t.Run("records the terminal state and clears the flight flag", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())
		require.NoError(t, sess.BeginVerification())
		sess.StartChecks()

		sess.Finish(StatusDelivered)
		assert.Equal(t, StatusDelivered, sess.Status())
		assert.False(t, sess.Processing())
	})

	t.Run("never overwrites an earlier terminal state", func(t *testing.T) {
		sess := newSession("buyer-1", testItem())
		require.NoError(t, sess.BeginVerification())

		sess.Finish(StatusTimedOut)
		sess.Finish(StatusDelivered)
		assert.Equal(t, StatusTimedOut, sess.Status())
	})
}
