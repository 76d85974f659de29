// Package session hosts many concurrent setups, each behind its own lock,
// and persists every change through a repository.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MHostile/root-automated-setup/internal/repository"
	"github.com/MHostile/root-automated-setup/internal/setup"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Session is one setup in progress
type Session struct {
	ID         string
	CreateTime time.Time
	UpdateTime time.Time
	state      *setup.State
	mu         sync.Mutex
}

// SessionSnapshot captures session metadata for external use.
type SessionSnapshot struct {
	ID          string     `json:"id"`
	CreateTime  time.Time  `json:"create_time"`
	UpdateTime  time.Time  `json:"update_time"`
	CurrentStep setup.Step `json:"current_step"`
	Finished    bool       `json:"finished"`
}

// Snapshot returns a consistent copy of the session metadata.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionSnapshot{
		ID:          s.ID,
		CreateTime:  s.CreateTime,
		UpdateTime:  s.UpdateTime,
		CurrentStep: s.state.Flow.CurrentStep,
		Finished:    s.state.Flow.CurrentStep == setup.StepSetupEnd,
	}
}

// State returns a deep copy of the session's setup state
func (s *Session) State() *setup.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// Manager manages setup sessions
type Manager struct {
	sessions    map[string]*Session
	mu          sync.RWMutex
	engine      *setup.Engine
	repo        repository.Repository
	recorder    *setup.ReplayRecorder
	maxSessions int
	tag         language.Tag
	logger      *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithRecorder records a replay of every session and saves it when the
// setup finishes
func WithRecorder(recorder *setup.ReplayRecorder) Option {
	return func(m *Manager) { m.recorder = recorder }
}

// WithMaxSessions caps the number of sessions held in memory; 0 means no cap
func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.maxSessions = n }
}

// WithLanguage sets the collation used when building views
func WithLanguage(tag language.Tag) Option {
	return func(m *Manager) { m.tag = tag }
}

// NewManager creates a session manager. The engine is shared by every
// session, so its random source must be safe for concurrent use.
func NewManager(engine *setup.Engine, repo repository.Repository, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		engine:   engine,
		repo:     repo,
		tag:      language.English,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new setup and persists it
func (m *Manager) Create(ctx context.Context) (*Session, setup.View, error) {
	now := time.Now()
	sess := &Session{
		ID:         uuid.New().String(),
		CreateTime: now,
		UpdateTime: now,
		state:      m.engine.NewState(),
	}

	// held until the session is stored, so commands racing in see it complete
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := m.add(sess); err != nil {
		return nil, setup.View{}, err
	}
	if err := m.repo.Save(ctx, sess.ID, sess.state); err != nil {
		m.mu.Lock()
		delete(m.sessions, sess.ID)
		m.mu.Unlock()
		return nil, setup.View{}, fmt.Errorf("failed to persist session: %w", err)
	}

	if m.recorder != nil {
		m.recorder.Start(sess.ID, sess.state.Snapshot)
	}

	m.logger.Info("session created", zap.String("session_id", sess.ID))
	return sess, m.engine.View(sess.state, m.tag), nil
}

func (m *Manager) add(sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return fmt.Errorf("%w: limit is %d", ErrTooManySessions, m.maxSessions)
	}
	m.sessions[sess.ID] = sess
	return nil
}

// Get returns a session held in memory
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	return sess, ok
}

// Restore returns the session, loading it from the repository when it is not
// in memory
func (m *Manager) Restore(ctx context.Context, sessionID string) (*Session, error) {
	if sess, ok := m.Get(sessionID); ok {
		return sess, nil
	}

	state, err := m.repo.Load(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := time.Now()
	loaded := &Session{ID: sessionID, CreateTime: now, UpdateTime: now, state: state}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have restored it first
	if sess, ok := m.sessions[sessionID]; ok {
		return sess, nil
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, m.maxSessions)
	}
	m.sessions[sessionID] = loaded

	m.logger.Info("session restored",
		zap.String("session_id", sessionID),
		zap.Stringer("current_step", state.Flow.CurrentStep),
	)
	return loaded, nil
}

// Apply runs cmd against the session and persists the result. Persistence
// failures are logged; the in-memory session keeps the change.
func (m *Manager) Apply(ctx context.Context, sessionID string, cmd setup.Command) (setup.View, error) {
	sess, err := m.Restore(ctx, sessionID)
	if err != nil {
		return setup.View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := m.engine.Apply(sess.state, cmd); err != nil {
		m.logger.Debug("command rejected",
			zap.String("session_id", sessionID),
			zap.String("command", setup.CommandName(cmd)),
			zap.Error(err),
		)
		return setup.View{}, err
	}
	sess.UpdateTime = time.Now()

	if err := m.repo.Save(ctx, sessionID, sess.state); err != nil {
		m.logger.Warn("failed to persist session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	m.record(sess)

	return m.engine.View(sess.state, m.tag), nil
}

func (m *Manager) record(sess *Session) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(sess.ID, sess.state.Snapshot)

	if sess.state.Flow.CurrentStep != setup.StepSetupEnd || !m.recorder.Recording(sess.ID) {
		return
	}
	if _, err := m.recorder.Finish(sess.ID); err != nil {
		m.logger.Warn("failed to save replay",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}
}

// View returns the read model of a session
func (m *Manager) View(ctx context.Context, sessionID string) (setup.View, error) {
	sess, err := m.Restore(ctx, sessionID)
	if err != nil {
		return setup.View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return m.engine.View(sess.state, m.tag), nil
}

// Remove drops a session from memory and storage
func (m *Manager) Remove(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.Discard(sessionID)
	}
	if err := m.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.logger.Info("session removed", zap.String("session_id", sessionID))
	return nil
}

// Count returns the number of sessions held in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// StoredSessions lists the ids of every session in the repository, including
// those not loaded into memory
func (m *Manager) StoredSessions(ctx context.Context) ([]string, error) {
	ids, err := m.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// GetAllSessions returns metadata for every session held in memory
func (m *Manager) GetAllSessions() []SessionSnapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	snapshots := make([]SessionSnapshot, 0, len(sessions))
	for _, sess := range sessions {
		snapshots = append(snapshots, sess.Snapshot())
	}
	return snapshots
}

// CloseAll persists every session and releases them from memory
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for id, sess := range sessions {
		sess.mu.Lock()
		err := m.repo.Save(ctx, id, sess.state)
		sess.mu.Unlock()
		if err != nil {
			m.logger.Warn("failed to persist session on shutdown",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	}

	m.logger.Info("all sessions closed", zap.Int("count", len(sessions)))
}
