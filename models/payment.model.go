package models

const (
	PaymentTNG          = "TNG"
	PaymentBankTransfer = "bankTransfer"
)

// PaymentOption is one of the payment methods offered at checkout
type PaymentOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PaymentOptions lists the methods accepted by ShippingInfo.PaymentOptions
var PaymentOptions = []PaymentOption{
	{Value: PaymentTNG, Label: "TNG E-Wallet"},
	{Value: PaymentBankTransfer, Label: "Bank Transfer"},
}

// PaymentLabel returns the display label of a payment method
func PaymentLabel(value string) string {
	for _, option := range PaymentOptions {
		if option.Value == value {
			return option.Label
		}
	}
	return value
}
