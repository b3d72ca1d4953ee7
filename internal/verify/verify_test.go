package verify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"passgate/internal/verify"
	"passgate/internal/verify/mocks"
)

func fastPolicy(attempts int) verify.Policy {
	return verify.Policy{Attempts: attempts, Delay: time.Millisecond}
}

func TestPolicy_StopsOnFirstOwned(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockChecker(ctrl)

	// NotOwned, NotOwned, Owned: exactly three calls, no fourth.
	gomock.InOrder(
		checker.EXPECT().OwnsGamePass(gomock.Any(), "123", "999").Return(false, nil),
		checker.EXPECT().OwnsGamePass(gomock.Any(), "123", "999").Return(false, nil),
		checker.EXPECT().OwnsGamePass(gomock.Any(), "123", "999").Return(true, nil),
	)

	owned, err := fastPolicy(5).Run(context.Background(), checker, "123", "999", nil)
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestPolicy_ExhaustsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockChecker(ctrl)
	checker.EXPECT().OwnsGamePass(gomock.Any(), "123", "999").Return(false, nil).Times(5)

	var progress []int
	owned, err := fastPolicy(5).Run(context.Background(), checker, "123", "999",
		func(attempt, total int, delay time.Duration) {
			progress = append(progress, attempt)
			assert.Equal(t, 5, total)
			assert.Equal(t, time.Millisecond, delay)
		})
	require.NoError(t, err)
	assert.False(t, owned)

	// Progress fires after each failed non-final attempt, never after the last.
	assert.Equal(t, []int{1, 2, 3, 4}, progress)
}

func TestPolicy_OwnedImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockChecker(ctrl)
	checker.EXPECT().OwnsGamePass(gomock.Any(), "42", "7").Return(true, nil)

	notified := false
	owned, err := fastPolicy(5).Run(context.Background(), checker, "42", "7",
		func(int, int, time.Duration) { notified = true })
	require.NoError(t, err)
	assert.True(t, owned)
	assert.False(t, notified, "no progress notice when the first check succeeds")
}

func TestPolicy_ContextCancelledDuringDelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockChecker(ctrl)
	checker.EXPECT().OwnsGamePass(gomock.Any(), "123", "999").Return(false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	policy := verify.Policy{Attempts: 5, Delay: time.Minute}

	done := make(chan error, 1)
	go func() {
		_, err := policy.Run(ctx, checker, "123", "999", nil)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after context cancellation")
	}
}

func TestPolicy_AtLeastOneAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockChecker(ctrl)
	checker.EXPECT().OwnsGamePass(gomock.Any(), "1", "2").Return(false, nil)

	owned, err := verify.Policy{Attempts: 0}.Run(context.Background(), checker, "1", "2", nil)
	require.NoError(t, err)
	assert.False(t, owned)
}
