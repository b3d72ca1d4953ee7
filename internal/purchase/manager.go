package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"passgate/internal/audit"
	"passgate/internal/catalog"
	"passgate/internal/messenger"
	"passgate/internal/verify"
)

// ErrMenuNotFound is returned for unknown or expired selection menus.
var ErrMenuNotFound = errors.New("menu not found")

// Catalog is the read-only surface the flow needs from the catalog service.
type Catalog interface {
	List(ctx context.Context) ([]catalog.Item, error)
	Get(ctx context.Context, name string) (catalog.Item, error)
}

// Config bounds session and menu lifetimes.
type Config struct {
	// AccountNameWait bounds the suspended wait for the buyer's account
	// name message.
	AccountNameWait time.Duration
	// MenuTTL bounds how long a selection menu stays usable.
	MenuTTL time.Duration
	// SessionTTL bounds a session's whole lifetime.
	SessionTTL time.Duration
	// ReapInterval is how often expired sessions and menus are collected.
	ReapInterval time.Duration
}

// DefaultConfig mirrors the storefront's production windows.
func DefaultConfig() Config {
	return Config{
		AccountNameWait: 60 * time.Second,
		MenuTTL:         3 * time.Minute,
		SessionTTL:      5 * time.Minute,
		ReapInterval:    30 * time.Second,
	}
}

// Menu is a live item-selection menu scoped to one buyer.
type Menu struct {
	ID        string
	BuyerID   string
	ControlID string
	CreatedAt time.Time
}

// Manager owns live purchase sessions and menus, routes interaction events
// to them, and runs verifications to completion. Sessions for different
// buyers are independent and run concurrently; nothing is persisted, so a
// restart loses in-flight verifications.
type Manager struct {
	catalog  Catalog
	msgr     messenger.Messenger
	resolver verify.Resolver
	checker  verify.Checker
	policy   verify.Policy
	cfg      Config

	trail  audit.Recorder
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	menus    map[string]*Menu

	// lifecycle context for verification runs; they must outlive the HTTP
	// request that triggered them.
	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup
}

type ManagerOption func(*Manager)

func WithPolicy(policy verify.Policy) ManagerOption {
	return func(m *Manager) {
		m.policy = policy
	}
}

func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

func WithAuditRecorder(trail audit.Recorder) ManagerOption {
	return func(m *Manager) {
		m.trail = trail
	}
}

func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager constructs the purchase flow with its collaborators.
func NewManager(cat Catalog, msgr messenger.Messenger, resolver verify.Resolver, checker verify.Checker, opts ...ManagerOption) (*Manager, error) {
	if cat == nil || msgr == nil || resolver == nil || checker == nil {
		return nil, fmt.Errorf("catalog, messenger, resolver, and checker are required")
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	m := &Manager{
		catalog:   cat,
		msgr:      msgr,
		resolver:  resolver,
		checker:   checker,
		policy:    verify.DefaultPolicy(),
		cfg:       DefaultConfig(),
		sessions:  make(map[string]*Session),
		menus:     make(map[string]*Menu),
		runCtx:    runCtx,
		runCancel: runCancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// OpenMenu presents the catalog as a single-choice menu scoped to the buyer.
func (m *Manager) OpenMenu(ctx context.Context, buyerID string) (*Menu, []catalog.Item, error) {
	items, err := m.catalog.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, ErrMenuNotFound
	}

	options := make([]string, 0, len(items))
	for _, item := range items {
		options = append(options, item.Name)
	}

	controlID, err := m.msgr.PromptSelect(ctx, buyerID, "Welcome to the Store!", options)
	if err != nil {
		return nil, nil, fmt.Errorf("present store menu: %w", err)
	}

	menu := &Menu{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		ControlID: controlID,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.menus[menu.ID] = menu
	m.mu.Unlock()

	return menu, items, nil
}

// Select turns a menu choice into a Pending purchase session and shows the
// confirmation prompt. The menu is single-use and scoped to its buyer.
func (m *Manager) Select(ctx context.Context, actorID, menuID, itemName string) (*Session, error) {
	m.mu.RLock()
	menu, ok := m.menus[menuID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMenuNotFound
	}
	if menu.BuyerID != actorID {
		return nil, ErrNotYourSession
	}

	item, err := m.catalog.Get(ctx, itemName)
	if err != nil {
		return nil, err
	}

	session := newSession(actorID, item)
	controlID, err := m.msgr.PromptButtons(ctx, actorID, confirmationPrompt(item),
		[]string{"I bought it", "Nevermind"})
	if err != nil {
		return nil, fmt.Errorf("present confirmation prompt: %w", err)
	}
	session.ControlID = controlID

	m.mu.Lock()
	m.sessions[session.ID] = session
	delete(m.menus, menuID)
	m.mu.Unlock()

	_ = m.msgr.Disable(ctx, menu.ControlID)

	m.record(ctx, audit.Event{
		Action:    audit.ActionSessionCreated,
		BuyerID:   actorID,
		SessionID: session.ID,
		ItemName:  item.Name,
	})
	if m.logger != nil {
		m.logger.InfoContext(ctx, "purchase session created",
			"session_id", session.ID,
			"buyer_id", actorID,
			"item", item.Name,
		)
	}
	return session, nil
}

// Session returns a live session by id.
func (m *Manager) Session(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Confirm handles "I bought it". It acquires the single-flight gate, then
// hands the session to a background verification run and returns
// immediately; progress reaches the buyer through the messenger.
func (m *Manager) Confirm(ctx context.Context, sessionID, actorID string) error {
	session, err := m.Session(sessionID)
	if err != nil {
		return err
	}
	if err := session.Authorize(actorID); err != nil {
		return err
	}
	if err := session.BeginVerification(); err != nil {
		return err
	}

	m.record(ctx, audit.Event{
		Action:    audit.ActionConfirmed,
		BuyerID:   session.BuyerID,
		SessionID: session.ID,
		ItemName:  session.Item.Name,
	})
	_ = m.msgr.Send(ctx, session.BuyerID, verifyingNotice())

	m.wg.Add(1)
	go m.runVerification(session)
	return nil
}

// Cancel handles "Nevermind". Only meaningful while the session is Pending.
func (m *Manager) Cancel(ctx context.Context, sessionID, actorID string) error {
	session, err := m.Session(sessionID)
	if err != nil {
		return err
	}
	if err := session.Authorize(actorID); err != nil {
		return err
	}
	if err := session.Cancel(); err != nil {
		return err
	}

	_ = m.msgr.Send(ctx, session.BuyerID, cancelledNotice())
	_ = m.msgr.Disable(ctx, session.ControlID)
	verify.CountOutcome("cancelled")
	m.record(ctx, audit.Event{
		Action:    audit.ActionCancelled,
		BuyerID:   session.BuyerID,
		SessionID: session.ID,
		ItemName:  session.Item.Name,
	})
	return nil
}

// runVerification drives one session from AwaitingAccountName to a terminal
// state. The processing flag is released on every exit path, panics
// included, so the session can never be left stuck.
func (m *Manager) runVerification(s *Session) {
	defer m.wg.Done()

	ctx := m.runCtx
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.ErrorContext(ctx, "verification run panicked",
					"session_id", s.ID,
					"panic", r,
				)
			}
			s.Finish(StatusFailed)
			_ = m.msgr.Send(ctx, s.BuyerID, internalErrorNotice())
		}
	}()

	_ = m.msgr.Send(ctx, s.BuyerID, usernamePrompt())

	content, err := m.msgr.AwaitMessage(ctx, s.BuyerID, m.cfg.AccountNameWait)
	if err != nil {
		if errors.Is(err, messenger.ErrAwaitTimeout) {
			m.finish(ctx, s, StatusTimedOut, "timed_out", "no account name within wait window", timeoutNotice())
			return
		}
		// Lifecycle shutdown; the in-flight attempt is lost by design.
		s.Finish(StatusFailed)
		return
	}

	accountName := strings.TrimSpace(content)
	s.StartChecks()
	if m.logger != nil {
		m.logger.InfoContext(ctx, "account name received",
			"session_id", s.ID,
			"account_name", accountName,
		)
	}

	accountID, err := m.resolver.ResolveAccountID(ctx, accountName)
	if err != nil {
		// Unresolvable name short-circuits without consuming any
		// ownership-check attempts.
		m.finish(ctx, s, StatusFailed, "resolution_failed", "account name unresolvable", resolutionFailedNotice())
		return
	}

	progress := func(attempt, total int, delay time.Duration) {
		_ = m.msgr.Send(ctx, s.BuyerID, progressNotice(attempt, total, delay))
	}
	owned, err := m.policy.Run(ctx, m.checker, accountID, s.Item.GamePassID, progress)
	if err != nil {
		s.Finish(StatusFailed)
		return
	}

	if !owned {
		m.record(ctx, audit.Event{
			Action:      audit.ActionFailed,
			BuyerID:     s.BuyerID,
			SessionID:   s.ID,
			ItemName:    s.Item.Name,
			AccountName: accountName,
			AccountID:   accountID,
			Reason:      "attempts exhausted",
		})
		m.finishQuiet(ctx, s, StatusFailed, "failed", verificationFailedNotice(accountName, s.Item.GamePassID))
		return
	}

	// Delivery side effect: the file reference is sent exactly once, then
	// the confirmation controls go inert.
	s.Finish(StatusDelivered)
	_ = m.msgr.Send(ctx, s.BuyerID, deliveryNotice(s.Item))
	_ = m.msgr.Send(ctx, s.BuyerID, fileDelivery(s.Item))
	_ = m.msgr.Disable(ctx, s.ControlID)
	verify.CountOutcome("delivered")
	m.record(ctx, audit.Event{
		Action:      audit.ActionDelivered,
		BuyerID:     s.BuyerID,
		SessionID:   s.ID,
		ItemName:    s.Item.Name,
		AccountName: accountName,
		AccountID:   accountID,
	})
	if m.logger != nil {
		m.logger.InfoContext(ctx, "item delivered",
			"session_id", s.ID,
			"buyer_id", s.BuyerID,
			"item", s.Item.Name,
			"account_id", accountID,
		)
	}
}

func (m *Manager) finish(ctx context.Context, s *Session, status Status, outcome, reason string, notice messenger.Message) {
	s.Finish(status)
	_ = m.msgr.Send(ctx, s.BuyerID, notice)
	_ = m.msgr.Disable(ctx, s.ControlID)
	verify.CountOutcome(outcome)

	action := audit.ActionFailed
	if status == StatusTimedOut {
		action = audit.ActionTimedOut
	}
	m.record(ctx, audit.Event{
		Action:    action,
		BuyerID:   s.BuyerID,
		SessionID: s.ID,
		ItemName:  s.Item.Name,
		Reason:    reason,
	})
	if m.logger != nil {
		m.logger.InfoContext(ctx, "verification ended",
			"session_id", s.ID,
			"status", status,
			"reason", reason,
		)
	}
}

// finishQuiet is finish without the audit entry; callers that already
// recorded a richer event use it.
func (m *Manager) finishQuiet(ctx context.Context, s *Session, status Status, outcome string, notice messenger.Message) {
	s.Finish(status)
	_ = m.msgr.Send(ctx, s.BuyerID, notice)
	_ = m.msgr.Disable(ctx, s.ControlID)
	verify.CountOutcome(outcome)
}

// Run drives the session reaper until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.reap(time.Now())
		}
	}
}

// reap discards terminal and expired sessions and stale menus. Sessions with
// a verification in flight are left alone regardless of age.
func (m *Manager) reap(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.Processing() {
			continue
		}
		if s.Status().Terminal() || now.Sub(s.CreatedAt) > m.cfg.SessionTTL {
			delete(m.sessions, id)
		}
	}
	for id, menu := range m.menus {
		if now.Sub(menu.CreatedAt) > m.cfg.MenuTTL {
			delete(m.menus, id)
		}
	}
}

// Close cancels in-flight verification runs and waits for them to unwind.
func (m *Manager) Close() {
	m.runCancel()
	m.wg.Wait()
}

func (m *Manager) record(ctx context.Context, event audit.Event) {
	if m.trail == nil {
		return
	}
	if err := m.trail.Record(ctx, event); err != nil && m.logger != nil {
		m.logger.WarnContext(ctx, "audit record failed",
			"action", event.Action,
			"error", err,
		)
	}
}
