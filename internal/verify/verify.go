// Package verify wraps the ownership check in a bounded-attempt retry loop.
//
// Game pass purchases are not immediately visible in the platform's read API;
// the fixed-delay retry absorbs that propagation latency without blocking the
// caller indefinitely.
package verify

//go:generate mockgen -source=verify.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"
)

// Resolver translates a display name into a platform account id.
type Resolver interface {
	ResolveAccountID(ctx context.Context, username string) (string, error)
}

// Checker reports whether an account holds a game pass.
type Checker interface {
	OwnsGamePass(ctx context.Context, accountID, gamePassID string) (bool, error)
}

// ProgressFunc receives a notification after each failed non-final attempt,
// telling the buyer which attempt just ran and how long until the next.
type ProgressFunc func(attempt, total int, delay time.Duration)

// Policy is the retry schedule for ownership checks.
type Policy struct {
	// Attempts is the total number of ownership calls before giving up.
	Attempts int
	// Delay separates consecutive attempts. No delay after the last one.
	Delay time.Duration

	Logger *slog.Logger
}

// DefaultPolicy mirrors the storefront's production schedule: five checks,
// five seconds apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 5, Delay: 5 * time.Second}
}

// Run checks ownership until it is confirmed, attempts are exhausted, or the
// context is cancelled. The first successful check wins; no further calls
// are made after it.
func (p Policy) Run(ctx context.Context, checker Checker, accountID, gamePassID string, progress ProgressFunc) (bool, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if p.Logger != nil {
			p.Logger.InfoContext(ctx, "ownership check attempt",
				"attempt", attempt,
				"attempts", attempts,
				"account_id", accountID,
				"gamepass_id", gamePassID,
			)
		}

		owned, err := checker.OwnsGamePass(ctx, accountID, gamePassID)
		if err != nil {
			return false, err
		}
		if owned {
			ObserveAttempts(attempt)
			return true, nil
		}

		if attempt == attempts {
			break
		}
		if progress != nil {
			progress(attempt, attempts, p.Delay)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return false, err
		}
	}

	ObserveAttempts(attempts)
	return false, nil
}

// sleep waits for d or until the context is done, whichever comes first. It
// holds no locks so other sessions keep making progress.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
