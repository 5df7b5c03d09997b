// Package session holds the state container every controller goes through.
// A transition is applied to a freshly loaded state tree and the result is
// persisted only when the transition succeeds, so a caller never observes a
// half-applied update.
package session

import (
	"context"
	"errors"
	"fmt"
	"go-storefront/models"
	"go-storefront/snapshot"
	"sync"

	"go.uber.org/zap"
)

// ErrNotSaved reports a transition that succeeded but could not be persisted
var ErrNotSaved = errors.New("state was not saved")

// Transition mutates one state tree. Returning an error discards the change.
type Transition func(state *models.AppState) error

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type Manager struct {
	snapshots *snapshot.Store
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock // entries live only while held or awaited
}

func NewManager(snapshots *snapshot.Store, logger *zap.Logger) *Manager {
	return &Manager{
		snapshots: snapshots,
		logger:    logger,
		locks:     make(map[string]*sessionLock),
	}
}

// Get returns the current state tree of a session
func (m *Manager) Get(ctx context.Context, sessionID string) models.AppState {
	unlock := m.lock(sessionID)
	defer unlock()

	return m.snapshots.Load(ctx, sessionID)
}

// Update applies fn and persists the result. When fn fails nothing is
// written and the stored state is returned unchanged. A snapshot that cannot
// be read aborts the update with snapshot.ErrUnavailable; a failed write is
// reported as ErrNotSaved together with the updated state.
func (m *Manager) Update(ctx context.Context, sessionID string, fn Transition) (models.AppState, error) {
	unlock := m.lock(sessionID)
	defer unlock()

	state, err := m.snapshots.LoadForUpdate(ctx, sessionID)
	if err != nil {
		m.logger.Error("failed to load state", zap.String("session_id", sessionID), zap.Error(err))
		return snapshot.DefaultState(), err
	}
	if err := fn(&state); err != nil {
		return m.snapshots.Load(ctx, sessionID), err
	}

	if err := m.snapshots.Save(ctx, sessionID, state); err != nil {
		m.logger.Error("failed to persist state", zap.String("session_id", sessionID), zap.Error(err))
		return state, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	return state, nil
}

// SignOut wipes the session slot and starts over from the default state.
// fn may decorate the fresh state, e.g. with a status message.
func (m *Manager) SignOut(ctx context.Context, sessionID string, fn func(state *models.AppState)) (models.AppState, error) {
	unlock := m.lock(sessionID)
	defer unlock()

	if err := m.snapshots.Clear(ctx, sessionID); err != nil {
		m.logger.Warn("failed to clear state", zap.String("session_id", sessionID), zap.Error(err))
	}

	state := snapshot.DefaultState()
	if fn != nil {
		fn(&state)
	}
	if err := m.snapshots.Save(ctx, sessionID, state); err != nil {
		return state, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	m.logger.Info("session signed out", zap.String("session_id", sessionID))
	return state, nil
}

// lock serializes work on one session and returns its release func. The
// entry is dropped once nobody holds or waits for it.
func (m *Manager) lock(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, sessionID)
		}
		m.mu.Unlock()
	}
}
