// Package pricing derives subtotals, shipping fees and order drafts from a cart.
package pricing

import (
	"errors"
	"fmt"
	"go-storefront/models"
	"sort"

	"github.com/shopspring/decimal"
)

const Currency = "MYR"

const (
	TierStandard      = "standard"
	TierRemote        = "remote"
	TierInternational = "international"
)

// InternationalRegion is the region label that needs a free-text foreign state
const InternationalRegion = "Outside Malaysia"

// HomeCountry is forced as the country for every domestic region
const HomeCountry = "Malaysia"

var ErrUnknownRegion = errors.New("unknown shipping region")

// Tier is a named shipping-fee bracket
type Tier struct {
	Name               string          `json:"name"`
	Fee                decimal.Decimal `json:"fee"`
	RequiresRegionText bool            `json:"requiresRegionText"`
}

// Table maps a region label to its tier
type Table struct {
	regions map[string]Tier
}

var peninsularStates = []string{
	"Johor", "Kedah", "Kelantan", "Kuala Lumpur", "Melaka", "Negeri Sembilan",
	"Pahang", "Penang", "Perak", "Perlis", "Putrajaya", "Selangor", "Terengganu",
}

var remoteStates = []string{"Sabah", "Sarawak", "Labuan"}

// NewTable builds the region table with the given flat fees
func NewTable(standardFee, remoteFee decimal.Decimal) Table {
	regions := make(map[string]Tier, len(peninsularStates)+len(remoteStates)+1)
	for _, state := range peninsularStates {
		regions[state] = Tier{Name: TierStandard, Fee: standardFee}
	}
	for _, state := range remoteStates {
		regions[state] = Tier{Name: TierRemote, Fee: remoteFee}
	}
	// TODO: quote international shipping per destination; zero means "not yet computed", not free.
	regions[InternationalRegion] = Tier{Name: TierInternational, Fee: decimal.Zero, RequiresRegionText: true}
	return Table{regions: regions}
}

// DefaultTable charges 7 for Peninsular Malaysia and 14 for East Malaysia
func DefaultTable() Table {
	return NewTable(decimal.NewFromInt(7), decimal.NewFromInt(14))
}

// Lookup returns the tier of region
func (t Table) Lookup(region string) (Tier, error) {
	tier, ok := t.regions[region]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	return tier, nil
}

// Regions lists every known region label, domestic ones sorted first
func (t Table) Regions() []string {
	regions := make([]string, 0, len(t.regions))
	for region := range t.regions {
		if region != InternationalRegion {
			regions = append(regions, region)
		}
	}
	sort.Strings(regions)
	if _, ok := t.regions[InternationalRegion]; ok {
		regions = append(regions, InternationalRegion)
	}
	return regions
}

// LineTotal is unit price times quantity
func LineTotal(item models.CartItem) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Subtotal sums the line totals of the selected items. Unselected items
// contribute nothing.
func Subtotal(c models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.SelectedItems() {
		total = total.Add(LineTotal(item))
	}
	return total
}

// NewOrderDraft computes the checkout totals for region. An empty region
// means none was picked yet and carries no shipping fee.
func NewOrderDraft(c models.Cart, table Table, region string) (models.OrderDraft, error) {
	items := c.SelectedItems()
	for i := range items {
		items[i].ItemPrice = LineTotal(items[i])
	}

	draft := models.OrderDraft{
		Items:       items,
		Subtotal:    Subtotal(c),
		ShippingFee: decimal.Zero,
		Region:      region,
		Currency:    Currency,
	}

	if region != "" {
		tier, err := table.Lookup(region)
		if err != nil {
			return models.OrderDraft{}, err
		}
		draft.ShippingFee = tier.Fee
		draft.Tier = tier.Name
	}

	draft.GrandTotal = draft.Subtotal.Add(draft.ShippingFee)
	return draft, nil
}

// FormatPrice renders an amount as "MYR 32.00"
func FormatPrice(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

// FormatShippingFee renders a zero fee as "-"
func FormatShippingFee(fee decimal.Decimal, currency string) string {
	if fee.IsZero() {
		return "-"
	}
	return FormatPrice(fee, currency)
}
