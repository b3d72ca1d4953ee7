// Package messenger is the boundary to the chat platform. The purchase flow
// only ever talks to the Messenger interface; the concrete adapter (Discord,
// Slack, the HTTP gateway) decides how prompts and buttons are rendered.
package messenger

import (
	"context"
	"errors"
	"time"
)

// ErrAwaitTimeout is returned when the awaited inbound message does not
// arrive within the wait window.
var ErrAwaitTimeout = errors.New("timed out waiting for message")

// Field is a labeled value rendered inside a message.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message is a renderable notice sent to one recipient.
type Message struct {
	Title  string  `json:"title,omitempty"`
	Body   string  `json:"body"`
	Fields []Field `json:"fields,omitempty"`
}

// Messenger abstracts the chat platform's interactive surface.
type Messenger interface {
	// Send delivers a message to a recipient.
	Send(ctx context.Context, recipient string, msg Message) error
	// PromptSelect presents a single-choice menu and returns its control id.
	PromptSelect(ctx context.Context, recipient, prompt string, options []string) (string, error)
	// PromptButtons presents labeled buttons under a message and returns the
	// control id used to disable them later.
	PromptButtons(ctx context.Context, recipient string, msg Message, buttons []string) (string, error)
	// AwaitMessage blocks until the next inbound direct message from the
	// given identity, the timeout elapses (ErrAwaitTimeout), or ctx is done.
	AwaitMessage(ctx context.Context, from string, timeout time.Duration) (string, error)
	// Disable marks an already-sent interactive control inert.
	Disable(ctx context.Context, controlID string) error
}
