// Package audit records the purchase event trail. Operators consume it to
// reconcile deliveries against game pass sales.
package audit

import (
	"context"
	"time"
)

// Action identifies what happened to a purchase session or catalog item.
type Action string

const (
	ActionItemAdded      Action = "item_added"
	ActionItemUpdated    Action = "item_updated"
	ActionItemRemoved    Action = "item_removed"
	ActionSessionCreated Action = "session_created"
	ActionConfirmed      Action = "purchase_confirmed"
	ActionCancelled      Action = "purchase_cancelled"
	ActionDelivered      Action = "item_delivered"
	ActionFailed         Action = "verification_failed"
	ActionTimedOut       Action = "verification_timed_out"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	// BuyerID is the chat-platform identity of the buyer, empty for
	// operator catalog actions.
	BuyerID   string `json:"buyer_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ItemName  string `json:"item_name,omitempty"`
	// AccountName and AccountID identify the verified platform account for
	// delivery reconciliation.
	AccountName string `json:"account_name,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Recorder accepts events. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Store is a queryable Recorder used for the in-process trail.
type Store interface {
	Recorder
	// List returns recorded events in insertion order.
	List(ctx context.Context) ([]Event, error)
}
