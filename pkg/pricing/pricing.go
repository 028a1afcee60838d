// Package pricing computes the display-only order summary shown during
// checkout. Nothing here is ever sent to the gateway.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/config"
)

const DefaultCurrency = "KSh"

var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(10000)
	DefaultShippingFee           = decimal.NewFromInt(500)
	DefaultTaxRate               = decimal.RequireFromString("0.14")
)

// Policy holds the configurable shipping and tax rules.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
	// Currency labels the amounts in a Summary. Blank means DefaultCurrency.
	Currency              string
}

// DefaultPolicy returns the storefront's standard rules: free shipping above
// KSh 10,000, otherwise a flat KSh 500, and 14% VAT on the subtotal.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		ShippingFee:           DefaultShippingFee,
		TaxRate:               DefaultTaxRate,
		Currency:              DefaultCurrency,
	}
}

// FromConfig builds the policy configured for the deployment.
func FromConfig(cfg config.PricingConfig) Policy {
	return Policy{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
		TaxRate:               cfg.TaxRate,
		Currency:              cfg.Currency,
	}
}

// Summary is the breakdown rendered next to the cart.
type Summary struct {
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	FreeShippingGap decimal.Decimal `json:"freeShippingGap"`
}

// Shipping is free only when the subtotal strictly exceeds the threshold.
func (p Policy) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

func (p Policy) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate).Round(2)
}

// FreeShippingGap is the amount still needed to reach the threshold, zero
// once the subtotal reaches it.
func (p Policy) FreeShippingGap(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(p.FreeShippingThreshold) {
		return p.FreeShippingThreshold.Sub(subtotal)
	}
	return decimal.Zero
}

func (p Policy) Summarize(subtotal decimal.Decimal) Summary {
	shipping := p.Shipping(subtotal)
	tax := p.Tax(subtotal)
	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return Summary{
		Currency:        currency,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Tax:             tax,
		Total:           subtotal.Add(shipping).Add(tax),
		FreeShippingGap: p.FreeShippingGap(subtotal),
	}
}
