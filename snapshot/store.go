// Package snapshot persists the per-session UI state tree.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-storefront/models"

	"go.uber.org/zap"
)

const keyPrefix = "appState:"

// Store serializes the whole state tree into a single storage slot
type Store struct {
	storage Storage
	logger  *zap.Logger
}

func NewStore(storage Storage, logger *zap.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
	}
}

// DefaultState is the initial state of a fresh session
func DefaultState() models.AppState {
	return models.AppState{
		Product: models.ProductState{
			Cart: models.Cart{
				Items:       []models.CartItem{},
				SelectedIDs: []string{},
			},
		},
	}
}

// ResetTransient closes every modal and overlay and clears the product
// filter. These never survive a reload.
func ResetTransient(state *models.AppState) {
	state.Product.ProductFilterKeyword = nil
	state.Account.IsEditAccDetailModalDisplay = false
	state.Overlay.IsLoadingOverlayOpen = false
	state.Account.IsAddressModalOpen = false
	state.Auth.IsSignOutConfirmationModalOpen = false
	state.Status.IsStatusModalOpen = false
	state.Product.IsEnlargedProductImageBackdropOpen = false
}

// Save writes the state tree as-is
func (s *Store) Save(ctx context.Context, sessionID string, state models.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state failed: %w", err)
	}
	if err := s.storage.Set(ctx, key(sessionID), string(data)); err != nil {
		return fmt.Errorf("save snapshot failed: %w", err)
	}
	return nil
}

// Load reads the state tree and resets its transient fields. A missing,
// unreadable or malformed snapshot yields DefaultState.
func (s *Store) Load(ctx context.Context, sessionID string) models.AppState {
	state, err := s.LoadForUpdate(ctx, sessionID)
	if err != nil {
		s.logger.Warn("snapshot read failed, using default state",
			zap.String("session_id", sessionID), zap.Error(err))
		return DefaultState()
	}
	return state
}

// LoadForUpdate is Load for callers that write the result back. A storage
// read error is returned instead of DefaultState so an unreachable slot is
// never overwritten with an empty tree.
func (s *Store) LoadForUpdate(ctx context.Context, sessionID string) (models.AppState, error) {
	data, err := s.storage.Get(ctx, key(sessionID))
	if errors.Is(err, ErrNotFound) {
		return DefaultState(), nil
	}
	if err != nil {
		return models.AppState{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	state := DefaultState()
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.logger.Warn("snapshot is malformed, using default state",
			zap.String("session_id", sessionID), zap.Error(err))
		return DefaultState(), nil
	}
	normalize(&state)
	ResetTransient(&state)
	return state, nil
}

// Clear drops the whole slot of a session
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.storage.Delete(ctx, key(sessionID)); err != nil {
		return fmt.Errorf("clear snapshot failed: %w", err)
	}
	return nil
}

// normalize fills collections a snapshot may carry as null and drops
// selected ids that are repeated or no longer match a cart line
func normalize(state *models.AppState) {
	c := &state.Product.Cart
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	selected := make([]string, 0, len(c.SelectedIDs))
	seen := make(map[string]struct{}, len(c.SelectedIDs))
	for _, id := range c.SelectedIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := c.Item(id); ok {
			seen[id] = struct{}{}
			selected = append(selected, id)
		}
	}
	c.SelectedIDs = selected
	if _, ok := c.Item(c.PendingRemoval); !ok {
		c.PendingRemoval = ""
	}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}
