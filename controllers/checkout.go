package controllers

import (
	"context"
	"errors"
	"fmt"
	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/repository"
	"go-storefront/session"
	"go-storefront/snapshot"
	"go-storefront/utils"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptySelection = errors.New("select at least one item to check out")
	errOrderEmail     = errors.New("order email failed")
)

// OrderMailer sends the order summary
type OrderMailer interface {
	SendOrderEmail(ctx context.Context, order models.Order) error
}

// CheckoutController handles order drafts and submission
type CheckoutController struct {
	Sessions *session.Manager
	Orders   repository.OrderRepository
	Mailer   OrderMailer
	Shipping pricing.Table
	Timeout  time.Duration
	Logger   *zap.Logger
}

func NewCheckoutController(sessions *session.Manager, orders repository.OrderRepository, mailer OrderMailer, shipping pricing.Table, timeout time.Duration, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		Sessions: sessions,
		Orders:   orders,
		Mailer:   mailer,
		Shipping: shipping,
		Timeout:  timeout,
		Logger:   logger,
	}
}

// CheckoutView is the order draft plus what the checkout form prefills
type CheckoutView struct {
	models.OrderDraft
	FormattedSubtotal    string                 `json:"formattedSubtotal"`
	FormattedShippingFee string                 `json:"formattedShippingFee"`
	FormattedTotal       string                 `json:"formattedTotalAmount"`
	CurrentOrderCount    int                    `json:"currentOrderCount"`
	PrevShippingInfo     models.ShippingInfo    `json:"prevShippingInfo"`
	PaymentOptions       []models.PaymentOption `json:"paymentOptions"`
}

// GetCheckout returns the order draft for the optional region query
func (cc *CheckoutController) GetCheckout(w http.ResponseWriter, r *http.Request) {
	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))

	draft, err := pricing.NewOrderDraft(state.Product.Cart, cc.Shipping, r.URL.Query().Get("region"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckoutView{
		OrderDraft:           draft,
		FormattedSubtotal:    pricing.FormatPrice(draft.Subtotal, draft.Currency),
		FormattedShippingFee: pricing.FormatShippingFee(draft.ShippingFee, draft.Currency),
		FormattedTotal:       pricing.FormatPrice(draft.GrandTotal, draft.Currency),
		CurrentOrderCount:    state.Product.PrevOrderCount + 1,
		PrevShippingInfo:     state.Product.PrevShippingInfo,
		PaymentOptions:       models.PaymentOptions,
	})
}

type regionView struct {
	Region string `json:"region"`
	pricing.Tier
}

// GetRegions lists the shipping regions with their tiers
func (cc *CheckoutController) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions := cc.Shipping.Regions()
	out := make([]regionView, 0, len(regions))
	for _, region := range regions {
		tier, err := cc.Shipping.Lookup(region)
		if err != nil {
			continue
		}
		out = append(out, regionView{Region: region, Tier: tier})
	}
	writeJSON(w, http.StatusOK, out)
}

type checkoutResponse struct {
	Order models.Order    `json:"order"`
	State models.AppState `json:"state"`
}

// SubmitCheckout places an order for the selected items
func (cc *CheckoutController) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var info models.ShippingInfo
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if info.State != pricing.InternationalRegion {
		info.Country = pricing.HomeCountry
		info.OutsideMalaysiaState = ""
	}
	if err := utils.Validate(info); err != nil {
		writeValidationError(w, err)
		return
	}
	if _, err := cc.Shipping.Lookup(info.State); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()

	var userID string
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		userID = claims.UID
	}

	sessionID := middleware.SessionID(r.Context())
	var order models.Order
	state, err := cc.Sessions.Update(ctx, sessionID, func(state *models.AppState) error {
		c := state.Product.Cart
		if len(c.SelectedItems()) == 0 {
			return ErrEmptySelection
		}

		draft, err := pricing.NewOrderDraft(c, cc.Shipping, info.State)
		if err != nil {
			return err
		}

		order = models.NewOrder(newOrderNumber(), draft, info, state.Product.PrevOrderCount+1)
		order.UserID = userID

		if err := cc.Mailer.SendOrderEmail(ctx, order); err != nil {
			return fmt.Errorf("%w: %v", errOrderEmail, err)
		}
		if err := cc.Orders.Create(ctx, &order); err != nil {
			// order email is already out, keep the checkout
			cc.Logger.Error("failed to record order", zap.String("order_number", order.Number), zap.Error(err))
		}

		purchased := make([]string, 0, len(draft.Items))
		for _, item := range draft.Items {
			purchased = append(purchased, item.ID)
		}
		state.Product.Cart = cart.RemoveMany(c, purchased...)
		state.Product.PrevOrderCount = order.OrderCount
		if info.SaveShippingInfo {
			state.Product.PrevShippingInfo = info
		}
		state.ShowStatus("Order Placed", fmt.Sprintf("Thank you! Your order %s has been received.", order.Number), true)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotSaved):
		// order is mailed and recorded, report it as placed
		cc.Logger.Error("order placed but session state not saved",
			zap.String("order_number", order.Number),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	case errors.Is(err, ErrEmptySelection):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, errOrderEmail):
		cc.Logger.Error("failed to send order email", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Error sending order email")
		return
	case errors.Is(err, snapshot.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Checkout is temporarily unavailable")
		return
	default:
		cc.Logger.Error("checkout failed", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error placing order")
		return
	}

	cc.Logger.Info("order placed",
		zap.String("order_number", order.Number),
		zap.String("total", order.TotalAmount),
		zap.Int("order_count", order.OrderCount),
	)
	writeJSON(w, http.StatusCreated, checkoutResponse{Order: order, State: state})
}

func newOrderNumber() string {
	return "SO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
