package controllers

import (
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/session"
	"net/http"

	"go.uber.org/zap"
)

// StateController exposes the session's state tree
type StateController struct {
	Sessions *session.Manager
	Logger   *zap.Logger
}

func NewStateController(sessions *session.Manager, logger *zap.Logger) *StateController {
	return &StateController{Sessions: sessions, Logger: logger}
}

// GetState returns the restored state of the session
func (sc *StateController) GetState(w http.ResponseWriter, r *http.Request) {
	state := sc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	writeJSON(w, http.StatusOK, state)
}

// UIFlags lists the modal, overlay and filter fields a client may toggle.
// Nil fields are left unchanged.
type UIFlags struct {
	IsSignOutConfirmationModalOpen     *bool   `json:"isSignOutConfirmationModalOpen,omitempty"`
	IsEnlargedProductImageBackdropOpen *bool   `json:"isEnlargedProductImageBackdropOpen,omitempty"`
	IsEditAccDetailModalDisplay        *bool   `json:"isEditAccDetailModalDisplay,omitempty"`
	IsAddressModalOpen                 *bool   `json:"isAddressModalOpen,omitempty"`
	IsStatusModalOpen                  *bool   `json:"isStatusModalOpen,omitempty"`
	IsLoadingOverlayOpen               *bool   `json:"isLoadingOverlayOpen,omitempty"`
	ProductFilterKeyword               *string `json:"productFilterKeyword,omitempty"`
}

func (f UIFlags) apply(state *models.AppState) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&state.Auth.IsSignOutConfirmationModalOpen, f.IsSignOutConfirmationModalOpen)
	set(&state.Product.IsEnlargedProductImageBackdropOpen, f.IsEnlargedProductImageBackdropOpen)
	set(&state.Account.IsEditAccDetailModalDisplay, f.IsEditAccDetailModalDisplay)
	set(&state.Account.IsAddressModalOpen, f.IsAddressModalOpen)
	set(&state.Status.IsStatusModalOpen, f.IsStatusModalOpen)
	set(&state.Overlay.IsLoadingOverlayOpen, f.IsLoadingOverlayOpen)
	if f.ProductFilterKeyword != nil {
		state.Product.ProductFilterKeyword = keywordOrNil(*f.ProductFilterKeyword)
	}
}

// UpdateUI toggles modal and overlay flags
func (sc *StateController) UpdateUI(w http.ResponseWriter, r *http.Request) {
	var flags UIFlags
	if err := decodeJSON(r, &flags); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	state, err := sc.Sessions.Update(r.Context(), middleware.SessionID(r.Context()), func(state *models.AppState) error {
		flags.apply(state)
		return nil
	})
	if err != nil {
		sc.Logger.Error("failed to update ui state", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error saving state")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func keywordOrNil(keyword string) *string {
	if keyword == "" {
		return nil
	}
	return &keyword
}
