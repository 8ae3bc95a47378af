package flow

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tontrade/tontrade/internal/balance"
)

// Kind tags which flow a conversation state belongs to.
type Kind string

const (
	KindAddToken Kind = "add"
	KindSend     Kind = "send"
	KindSwap     Kind = "swap"
)

// Step identifies the current position inside a flow.
type Step int

const (
	StepAwaitContract Step = iota
	StepAwaitResolvedConfirm
	StepAwaitManualOffer
	StepAwaitManualSymbol
	StepAwaitManualName

	StepSelectToken
	StepEnterAddress
	StepEnterAmount
	StepConfirm

	StepSelectFrom
	StepSelectTo
	StepSwapAmount
	StepSwapConfirm
)

// State is the transient per-user conversation state, alive for the
// duration of a single flow. Fields beyond Flow, Step and ID are
// populated per flow.
type State struct {
	Flow Kind
	Step Step
	ID   string

	// add-token
	Contract string
	Symbol   string
	Name     string

	// send and swap
	Snapshot []balance.Entry
	From     balance.Entry
	To       balance.Entry
	Address  string
	Amount   decimal.Decimal
}

type session struct {
	state   *State
	touched time.Time
}

// Manager holds per-user conversation state. States expire after the
// configured TTL so abandoned conversations do not accumulate.
type Manager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[int64]*session
	now      func() time.Time
}

// DefaultTTL bounds how long an abandoned conversation is kept.
const DefaultTTL = 30 * time.Minute

// NewManager creates a session manager. A non-positive ttl falls back
// to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:      ttl,
		sessions: make(map[int64]*session),
		now:      time.Now,
	}
}

// Get returns the user's active state, refreshing its expiry. An
// expired state is dropped and reported as absent.
func (m *Manager) Get(userID int64) (*State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	if m.now().Sub(sess.touched) > m.ttl {
		delete(m.sessions, userID)
		return nil, false
	}
	sess.touched = m.now()
	return sess.state, true
}

// Put stores or replaces the user's state.
func (m *Manager) Put(userID int64, st *State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &session{state: st, touched: m.now()}
}

// Clear removes the user's state, if any.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Active reports whether the user has a live, unexpired state.
func (m *Manager) Active(userID int64) bool {
	_, ok := m.Get(userID)
	return ok
}

// Sweep removes all expired states and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := m.now()
	for id, sess := range m.sessions {
		if cutoff.Sub(sess.touched) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// SweepLoop sweeps expired states at the given interval until the
// context is cancelled.
func (m *Manager) SweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
