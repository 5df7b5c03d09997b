package controllers

import (
	"context"
	"errors"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/session"
	"go-storefront/utils"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginStatusTitle   = "Log In"
	invalidCredentials = "Invalid credentials! Please try again."
)

var errAddressNotFound = errors.New("address not found")

// VerificationMailer sends account verification links
type VerificationMailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
}

// UserController handles account, address book and order history requests
type UserController struct {
	Users    repository.UserRepository
	Orders   repository.OrderRepository
	Sessions *session.Manager
	Mailer   VerificationMailer
	TokenTTL time.Duration
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewUserController creates a new UserController
func NewUserController(users repository.UserRepository, orders repository.OrderRepository, sessions *session.Manager, mailer VerificationMailer, timeout time.Duration, logger *zap.Logger) *UserController {
	return &UserController{
		Users:    users,
		Orders:   orders,
		Sessions: sessions,
		Mailer:   mailer,
		TokenTTL: 24 * time.Hour,
		Timeout:  timeout,
		Logger:   logger,
	}
}

type registerRequest struct {
	models.AccountDetails
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.Logger.Error("failed to hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	user := models.User{
		AccountDetails: req.AccountDetails,
		Password:       string(hashedPassword),
		Roles:          []string{models.RoleCustomer},
	}
	user.VerificationToken, err = utils.GenerateVerificationToken(user.Email, uc.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error generating verification token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	if err := uc.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		uc.Logger.Error("failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	if err := uc.Mailer.SendVerificationEmail(ctx, user.Email, user.VerificationToken); err != nil {
		uc.Logger.Error("failed to send verification email", zap.String("email", user.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error sending verification email")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Verification token missing")
		return
	}
	if _, err := utils.ParseJWT(token, utils.PurposeVerify); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	if err := uc.Users.MarkVerified(ctx, token); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusBadRequest, "User not found or already verified")
			return
		}
		uc.Logger.Error("failed to verify user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating user verification status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully. You can now log in."})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	State models.AppState `json:"state"`
}

// Login handles user authentication and records the user in the session state
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds loginRequest
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	sessionID := middleware.SessionID(r.Context())
	user, err := uc.Users.GetByEmail(ctx, creds.Email)
	if err == nil && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		err = repository.ErrUserNotFound
	}
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			uc.Logger.Error("failed to load user", zap.Error(err))
		}
		uc.failLogin(w, r, sessionID)
		return
	}
	if !user.IsVerified {
		writeError(w, http.StatusUnauthorized, "Email not verified")
		return
	}
	if !user.HasRole(models.RoleCustomer) && !user.HasRole(models.RoleAdmin) {
		uc.signOut(w, r, sessionID)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Roles, uc.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	state, err := uc.Sessions.Update(ctx, sessionID, func(state *models.AppState) error {
		state.Auth.CurrentUser = user.Details()
		state.Overlay.IsLoadingOverlayOpen = false
		return nil
	})
	if err != nil {
		uc.Logger.Error("failed to store signed-in user", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error saving state")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, State: state})
}

type loginError struct {
	Error string          `json:"error"`
	State models.AppState `json:"state"`
}

// failLogin reports a credential failure through the status modal. The rest
// of the session, the cart included, is kept.
func (uc *UserController) failLogin(w http.ResponseWriter, r *http.Request, sessionID string) {
	state, err := uc.Sessions.Update(r.Context(), sessionID, func(state *models.AppState) error {
		state.ShowStatus(loginStatusTitle, invalidCredentials, false)
		return nil
	})
	if err != nil {
		uc.Logger.Error("failed to store login status", zap.String("session_id", sessionID), zap.Error(err))
	}
	writeJSON(w, http.StatusUnauthorized, loginError{Error: invalidCredentials, State: state})
}

// signOut clears the session of a user without the customer role and
// reports it through the status modal
func (uc *UserController) signOut(w http.ResponseWriter, r *http.Request, sessionID string) {
	state, err := uc.Sessions.SignOut(r.Context(), sessionID, func(state *models.AppState) {
		state.ShowStatus(loginStatusTitle, invalidCredentials, false)
	})
	if err != nil {
		uc.Logger.Error("failed to sign out session", zap.String("session_id", sessionID), zap.Error(err))
	}
	writeJSON(w, http.StatusForbidden, loginError{Error: invalidCredentials, State: state})
}

// currentUser resolves the token's user and enforces the customer role.
// A user without it is signed out of the session.
func (uc *UserController) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not parse user from context")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	user, err := uc.Users.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidID) {
			uc.signOut(w, r, middleware.SessionID(r.Context()))
			return nil, false
		}
		uc.Logger.Error("failed to load user", zap.String("uid", claims.UID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return nil, false
	}
	if !user.HasRole(models.RoleCustomer) {
		uc.signOut(w, r, middleware.SessionID(r.Context()))
		return nil, false
	}
	return user, true
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := uc.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile edits the account details
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := uc.currentUser(w, r)
	if !ok {
		return
	}

	var details models.AccountDetails
	if err := decodeJSON(r, &details); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate(details); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	if err := uc.Users.UpdateDetails(ctx, user.ID.Hex(), details); err != nil {
		uc.Logger.Error("failed to update account details", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating account details")
		return
	}
	user.AccountDetails = details

	state, err := uc.Sessions.Update(ctx, middleware.SessionID(r.Context()), func(state *models.AppState) error {
		state.Auth.CurrentUser = user.Details()
		state.Account.IsEditAccDetailModalDisplay = false
		state.ShowStatus("Account Details", "Your account details have been updated.", true)
		return nil
	})
	if err != nil {
		uc.Logger.Error("failed to update session user", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, state)
}

// AddAddress appends an entry to the address book
func (uc *UserController) AddAddress(w http.ResponseWriter, r *http.Request) {
	uc.editAddresses(w, r, http.StatusCreated, "Address added.", func(addresses []models.Address, address models.Address) ([]models.Address, error) {
		address.ID = uuid.NewString()
		return addAddress(addresses, address), nil
	})
}

// UpdateAddress replaces an entry of the address book
func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	uc.editAddresses(w, r, http.StatusOK, "Address updated.", func(addresses []models.Address, address models.Address) ([]models.Address, error) {
		address.ID = id
		return replaceAddress(addresses, address)
	})
}

// DeleteAddress removes an entry of the address book
func (uc *UserController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := uc.currentUser(w, r)
	if !ok {
		return
	}
	addresses, err := removeAddress(user.Addresses, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	uc.saveAddresses(w, r, user, addresses, http.StatusOK, "Address removed.")
}

func (uc *UserController) editAddresses(w http.ResponseWriter, r *http.Request, status int, msg string, edit func([]models.Address, models.Address) ([]models.Address, error)) {
	user, ok := uc.currentUser(w, r)
	if !ok {
		return
	}

	var address models.Address
	if err := decodeJSON(r, &address); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate(address); err != nil {
		writeValidationError(w, err)
		return
	}

	addresses, err := edit(user.Addresses, address)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	uc.saveAddresses(w, r, user, addresses, status, msg)
}

func (uc *UserController) saveAddresses(w http.ResponseWriter, r *http.Request, user *models.User, addresses []models.Address, status int, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	if err := uc.Users.SaveAddresses(ctx, user.ID.Hex(), addresses); err != nil {
		uc.Logger.Error("failed to save addresses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error saving address")
		return
	}

	_, err := uc.Sessions.Update(ctx, middleware.SessionID(r.Context()), func(state *models.AppState) error {
		state.Account.IsAddressModalOpen = false
		state.ShowStatus("Address Book", msg, true)
		return nil
	})
	if err != nil {
		uc.Logger.Error("failed to update session", zap.Error(err))
	}
	writeJSON(w, status, addresses)
}

// Logout clears the session's whole state
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	state, err := uc.Sessions.SignOut(r.Context(), middleware.SessionID(r.Context()), nil)
	if err != nil {
		uc.Logger.Error("failed to sign out", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error signing out")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// GetOrders lists the signed-in user's orders
func (uc *UserController) GetOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := uc.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	orders, err := uc.Orders.ListByUser(ctx, user.ID.Hex())
	if err != nil {
		uc.Logger.Error("failed to list orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// addAddress appends address. The first entry, or one marked default,
// becomes the only default.
func addAddress(addresses []models.Address, address models.Address) []models.Address {
	if len(addresses) == 0 {
		address.IsDefault = true
	}
	out := make([]models.Address, 0, len(addresses)+1)
	for _, a := range addresses {
		if address.IsDefault {
			a.IsDefault = false
		}
		out = append(out, a)
	}
	return append(out, address)
}

func replaceAddress(addresses []models.Address, address models.Address) ([]models.Address, error) {
	out := make([]models.Address, len(addresses))
	found := false
	for i, a := range addresses {
		switch {
		case a.ID == address.ID:
			out[i] = address
			found = true
		case address.IsDefault:
			a.IsDefault = false
			out[i] = a
		default:
			out[i] = a
		}
	}
	if !found {
		return addresses, errAddressNotFound
	}
	return ensureDefault(out), nil
}

func removeAddress(addresses []models.Address, id string) ([]models.Address, error) {
	out := make([]models.Address, 0, len(addresses))
	for _, a := range addresses {
		if a.ID != id {
			out = append(out, a)
		}
	}
	if len(out) == len(addresses) {
		return addresses, errAddressNotFound
	}
	return ensureDefault(out), nil
}

// ensureDefault promotes the first address when none is default
func ensureDefault(addresses []models.Address) []models.Address {
	for _, a := range addresses {
		if a.IsDefault {
			return addresses
		}
	}
	if len(addresses) > 0 {
		addresses[0].IsDefault = true
	}
	return addresses
}
