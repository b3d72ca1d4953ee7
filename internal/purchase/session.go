// Package purchase owns the purchase-verification workflow: the per-buyer
// session state machine, the single-flight guard around verification runs,
// and the suspended wait for the buyer's account-name message.
package purchase

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"passgate/internal/catalog"
)

// Status is the lifecycle position of a purchase session.
type Status string

const (
	// StatusPending: session created after item selection, confirmation
	// buttons live.
	StatusPending Status = "pending"
	// StatusAwaitingAccountName: buyer pressed "I bought it", waiting for
	// their platform account name.
	StatusAwaitingAccountName Status = "awaiting_account_name"
	// StatusVerifying: account name received, ownership checks running.
	StatusVerifying Status = "verifying"

	// Terminal states. No transition leaves them; the session is discarded
	// after its controls are disabled.
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

var (
	// ErrNotYourSession rejects triggers from any identity other than the
	// buyer. Side-effect free: the session state never changes.
	ErrNotYourSession = errors.New("this session belongs to another buyer")
	// ErrVerificationInFlight rejects a repeated confirm while a
	// verification run is active. A transient notice, not a failure.
	ErrVerificationInFlight = errors.New("verification already in progress")
	// ErrSessionClosed rejects triggers that are meaningless in the
	// session's current state.
	ErrSessionClosed = errors.New("session no longer accepts this action")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the per-(buyer, item) purchase state machine. The item is a
// read-only snapshot captured at selection time; catalog edits after that
// point do not affect an open session.
type Session struct {
	ID        string
	Item      catalog.Item
	BuyerID   string
	CreatedAt time.Time

	// ControlID identifies the confirmation buttons so terminal
	// transitions can disable them.
	ControlID string

	mu         sync.Mutex
	status     Status
	processing bool
}

func newSession(buyerID string, item catalog.Item) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Item:      item,
		BuyerID:   buyerID,
		CreatedAt: time.Now(),
		status:    StatusPending,
	}
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Authorize rejects any actor other than the session's buyer.
func (s *Session) Authorize(actorID string) error {
	if actorID != s.BuyerID {
		return ErrNotYourSession
	}
	return nil
}

// BeginVerification is the single-flight gate on "I bought it". It moves
// Pending to AwaitingAccountName and sets the processing flag in one atomic
// step; a second trigger while the flag is up gets ErrVerificationInFlight
// and causes no state change.
func (s *Session) BeginVerification() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return ErrVerificationInFlight
	}
	if s.status != StatusPending {
		return ErrSessionClosed
	}
	s.processing = true
	s.status = StatusAwaitingAccountName
	return nil
}

// StartChecks marks the account-name message as received.
func (s *Session) StartChecks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusAwaitingAccountName {
		s.status = StatusVerifying
	}
}

// Cancel handles "Nevermind". Only meaningful while Pending; once
// verification has started the run continues to its own terminal state.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPending {
		return ErrSessionClosed
	}
	s.status = StatusCancelled
	return nil
}

// Finish records a terminal state and unconditionally drops the processing
// flag so the session can never be left stuck mid-flight.
func (s *Session) Finish(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processing = false
	if s.status.Terminal() {
		return
	}
	s.status = status
}

// Processing reports whether a verification run is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}
