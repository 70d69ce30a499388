package quiz

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordvault/api/internal/model"
)

// DefaultAdvanceDelay is how long a choice-mode question stays on screen
// after an answer before the session moves on.
const DefaultAdvanceDelay = 1100 * time.Millisecond

var ErrNoSession = errors.New("quiz: no such session")

// Manager owns the active quiz sessions of all users and the auto-advance
// timers of choice mode. Sessions live in memory only; a restart discards
// the session entirely.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timers   map[string]*time.Timer
	owners   map[string]int64
	delay    time.Duration
	rng      *rand.Rand
}

// NewManager builds a manager with the given feedback delay. A nil rng gets
// a time-seeded source; tests pass a fixed seed for determinism.
func NewManager(delay time.Duration, rng *rand.Rand) *Manager {
	if delay <= 0 {
		delay = DefaultAdvanceDelay
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		sessions: make(map[string]*Session),
		timers:   make(map[string]*time.Timer),
		owners:   make(map[string]int64),
		delay:    delay,
		rng:      rng,
	}
}

// Start creates a session from an already-scoped pool and registers it under
// a fresh id.
func (m *Manager) Start(userID int64, pool []model.VocabEntry, mode Mode, scope string, limit int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := Start(pool, mode, limit, m.rng)
	if err != nil {
		return nil, err
	}
	session.ID = uuid.NewString()
	session.Scope = scope

	m.sessions[session.ID] = session
	m.owners[session.ID] = userID
	return session, nil
}

// Get returns the session if it exists and belongs to the user.
func (m *Manager) Get(userID int64, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || m.owners[id] != userID {
		return nil, ErrNoSession
	}
	return session, nil
}

// Answer records a selection and schedules the auto-advance after the
// feedback delay. If the session is removed before the delay fires, the
// timer callback finds nothing and no state is touched.
func (m *Manager) Answer(userID int64, id, optionID string) (bool, error) {
	session, err := m.Get(userID, id)
	if err != nil {
		return false, err
	}

	correct, err := session.Answer(optionID)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	if old, ok := m.timers[id]; ok {
		old.Stop()
	}
	m.timers[id] = time.AfterFunc(m.delay, func() {
		m.autoAdvance(id)
	})
	m.mu.Unlock()

	return correct, nil
}

func (m *Manager) autoAdvance(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.timers, id)
	m.mu.Unlock()

	if !ok {
		// Abandoned mid-delay; nothing to advance.
		return
	}
	session.advance()
}

// Remove discards a session and cancels any pending advance. Removing an
// unknown id is a no-op, so restart and teardown paths can both call it.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
	delete(m.sessions, id)
	delete(m.owners, id)
	m.mu.Unlock()
}
