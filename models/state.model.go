package models

// AppState is the per-session UI state tree persisted as one snapshot
type AppState struct {
	Auth    AuthState    `json:"auth"`
	Product ProductState `json:"product"`
	Account AccountState `json:"account"`
	Status  StatusState  `json:"status"`
	Overlay OverlayState `json:"overlay"`
}

type AuthState struct {
	CurrentUser                    UserDetails `json:"currentUser"`
	IsSignOutConfirmationModalOpen bool        `json:"isSignOutConfirmationModalOpen"`
}

type ProductState struct {
	Cart
	PrevOrderCount                     int          `json:"prevOrderCount"`
	PrevShippingInfo                   ShippingInfo `json:"prevShippingInfo"`
	ProductFilterKeyword               *string      `json:"productFilterKeyword"`
	IsEnlargedProductImageBackdropOpen bool         `json:"isEnlargedProductImageBackdropOpen"`
}

type AccountState struct {
	IsEditAccDetailModalDisplay bool `json:"isEditAccDetailModalDisplay"`
	IsAddressModalOpen          bool `json:"isAddressModalOpen"`
}

type StatusState struct {
	IsStatusModalOpen bool   `json:"isStatusModalOpen"`
	IsSuccess         bool   `json:"isSuccess"`
	StatusTitle       string `json:"statusTitle"`
	StatusMsg         string `json:"statusMsg"`
}

type OverlayState struct {
	IsLoadingOverlayOpen bool `json:"isLoadingOverlayOpen"`
}

// ShowStatus opens the status modal with the given message
func (s *AppState) ShowStatus(title, msg string, success bool) {
	s.Status = StatusState{
		IsStatusModalOpen: true,
		IsSuccess:         success,
		StatusTitle:       title,
		StatusMsg:         msg,
	}
	s.Overlay.IsLoadingOverlayOpen = false
}
