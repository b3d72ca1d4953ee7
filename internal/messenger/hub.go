package messenger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"passgate/pkg/platform/sentinel"
)

// SendFunc forwards an outbound message to the real chat transport. The hub
// itself only tracks controls and inbound waits; rendering is the adapter's
// problem.
type SendFunc func(ctx context.Context, recipient string, msg Message) error

// Control is an interactive element the hub handed out: a select menu or a
// button row.
type Control struct {
	ID        string
	Recipient string
	Kind      string // "select" or "buttons"
	Options   []string
	Disabled  bool
}

// Hub is the in-process Messenger implementation. Inbound messages are fed
// in through Deliver (the gateway does this); AwaitMessage hands them to the
// session currently waiting on that identity.
type Hub struct {
	mu       sync.Mutex
	waiters  map[string][]chan string
	controls map[string]*Control
	outbox   map[string][]Message

	send   SendFunc
	logger *slog.Logger
}

type HubOption func(*Hub)

// WithSendFunc forwards outbound messages to a chat transport.
func WithSendFunc(fn SendFunc) HubOption {
	return func(h *Hub) {
		h.send = fn
	}
}

func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		waiters:  make(map[string][]chan string),
		controls: make(map[string]*Control),
		outbox:   make(map[string][]Message),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Send(ctx context.Context, recipient string, msg Message) error {
	h.mu.Lock()
	h.outbox[recipient] = append(h.outbox[recipient], msg)
	h.mu.Unlock()

	if h.send != nil {
		return h.send(ctx, recipient, msg)
	}
	if h.logger != nil {
		h.logger.DebugContext(ctx, "message sent",
			"recipient", recipient,
			"title", msg.Title,
		)
	}
	return nil
}

func (h *Hub) PromptSelect(ctx context.Context, recipient, prompt string, options []string) (string, error) {
	ctl := &Control{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Kind:      "select",
		Options:   options,
	}

	h.mu.Lock()
	h.controls[ctl.ID] = ctl
	h.mu.Unlock()

	if err := h.Send(ctx, recipient, Message{Title: prompt, Body: "Select an item you'd like to purchase:"}); err != nil {
		return "", err
	}
	return ctl.ID, nil
}

func (h *Hub) PromptButtons(ctx context.Context, recipient string, msg Message, buttons []string) (string, error) {
	ctl := &Control{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Kind:      "buttons",
		Options:   buttons,
	}

	h.mu.Lock()
	h.controls[ctl.ID] = ctl
	h.mu.Unlock()

	if err := h.Send(ctx, recipient, msg); err != nil {
		return "", err
	}
	return ctl.ID, nil
}

func (h *Hub) AwaitMessage(ctx context.Context, from string, timeout time.Duration) (string, error) {
	ch := make(chan string, 1)

	h.mu.Lock()
	h.waiters[from] = append(h.waiters[from], ch)
	h.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case content := <-ch:
		return content, nil
	case <-timer.C:
		h.dropWaiter(from, ch)
		return "", ErrAwaitTimeout
	case <-ctx.Done():
		h.dropWaiter(from, ch)
		return "", ctx.Err()
	}
}

func (h *Hub) Disable(_ context.Context, controlID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctl, ok := h.controls[controlID]
	if !ok {
		return sentinel.ErrNotFound
	}
	ctl.Disabled = true
	return nil
}

// Deliver feeds an inbound direct message into the hub. The oldest waiter
// for that identity receives it; with nobody waiting the message is dropped,
// matching how a chat bot ignores unsolicited DMs.
func (h *Hub) Deliver(ctx context.Context, from, content string) bool {
	h.mu.Lock()
	queue := h.waiters[from]
	if len(queue) == 0 {
		h.mu.Unlock()
		if h.logger != nil {
			h.logger.DebugContext(ctx, "unsolicited message dropped", "from", from)
		}
		return false
	}
	ch := queue[0]
	h.waiters[from] = queue[1:]
	h.mu.Unlock()

	ch <- content
	return true
}

// ControlDisabled reports whether a control has been disabled. Used by the
// flow tests to assert confirmation buttons go inert after terminal states.
func (h *Hub) ControlDisabled(controlID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctl, ok := h.controls[controlID]
	return ok && ctl.Disabled
}

// Sent returns a copy of every message sent to the recipient so far.
func (h *Hub) Sent(recipient string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Message, len(h.outbox[recipient]))
	copy(out, h.outbox[recipient])
	return out
}

func (h *Hub) dropWaiter(from string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	queue := h.waiters[from]
	for i, c := range queue {
		if c == ch {
			h.waiters[from] = append(queue[:i], queue[i+1:]...)
			break
		}
	}
}
