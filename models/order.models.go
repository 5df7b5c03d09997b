package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShippingInfo is the checkout form
type ShippingInfo struct {
	FullName             string `json:"fullName" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	PhoneNo              string `json:"phoneNo" validate:"required,numeric,min=7,max=15"`
	AddressLine1         string `json:"addressLine1" validate:"required"`
	AddressLine2         string `json:"addressLine2,omitempty"`
	Postcode             string `json:"postcode" validate:"required,max=10"`
	City                 string `json:"city" validate:"required"`
	State                string `json:"state" validate:"required"`
	OutsideMalaysiaState string `json:"outsideMalaysiaState,omitempty" validate:"required_if=State 'Outside Malaysia'"`
	Country              string `json:"country" validate:"required"`
	NotesToSeller        string `json:"notesToSeller,omitempty"`
	SaveShippingInfo     bool   `json:"saveShippingInfo"`
	PaymentOptions       string `json:"paymentOptions" validate:"required,oneof=TNG bankTransfer"`
}

// OrderDraft is derived from the cart, the selection and the shipping region.
// It is recomputed on every read and never stored.
type OrderDraft struct {
	Items       []CartItem      `json:"selectedCheckoutItems"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	GrandTotal  decimal.Decimal `json:"totalAmount"`
	Region      string          `json:"region,omitempty"`
	Tier        string          `json:"tier,omitempty"`
	Currency    string          `json:"currency"`
}

// OrderItem is a cart line frozen at submission time
type OrderItem struct {
	ProductID string `bson:"product_id" json:"productId"`
	Name      string `bson:"name" json:"name"`
	UnitPrice string `bson:"unit_price" json:"unitPrice"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	LineTotal string `bson:"line_total" json:"lineTotal"`
}

// Order represents a submitted checkout
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Number        string             `bson:"number" json:"number"`
	UserID        string             `bson:"user_id,omitempty" json:"userId,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Subtotal      string             `bson:"subtotal" json:"subtotal"`
	ShippingFee   string             `bson:"shipping_fee" json:"shippingFee"`
	TotalAmount   string             `bson:"total_amount" json:"totalAmount"`
	Currency      string             `bson:"currency" json:"currency"`
	Shipping      ShippingInfo       `bson:"shipping" json:"shipping"`
	PaymentMethod string             `bson:"payment_method" json:"paymentMethod"`
	OrderCount    int                `bson:"order_count" json:"orderCount"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}

// NewOrder freezes a draft into an order record
func NewOrder(number string, draft OrderDraft, info ShippingInfo, orderCount int) Order {
	items := make([]OrderItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.Price.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.ItemPrice.StringFixed(2),
		})
	}
	return Order{
		Number:        number,
		Email:         info.Email,
		Items:         items,
		Subtotal:      draft.Subtotal.StringFixed(2),
		ShippingFee:   draft.ShippingFee.StringFixed(2),
		TotalAmount:   draft.GrandTotal.StringFixed(2),
		Currency:      draft.Currency,
		Shipping:      info,
		PaymentMethod: info.PaymentOptions,
		OrderCount:    orderCount,
		CreatedAt:     time.Now(),
	}
}
