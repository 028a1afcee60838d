package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/config"
)

func TestSummarize(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		subtotal string
		shipping string
		tax      string
		total    string
		gap      string
	}{
		{name: "below threshold", subtotal: "2000", shipping: "500", tax: "280", total: "2780", gap: "8000"},
		{name: "above threshold", subtotal: "12000", shipping: "0", tax: "1680", total: "13680", gap: "0"},
		{name: "exactly threshold pays shipping", subtotal: "10000", shipping: "500", tax: "1400", total: "11900", gap: "0"},
		{name: "empty cart", subtotal: "0", shipping: "500", tax: "0", total: "500", gap: "10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Summarize(decimal.RequireFromString(tt.subtotal))
			assertDecimal(t, "shipping", got.Shipping, tt.shipping)
			assertDecimal(t, "tax", got.Tax, tt.tax)
			assertDecimal(t, "total", got.Total, tt.total)
			assertDecimal(t, "gap", got.FreeShippingGap, tt.gap)
			if got.Currency != DefaultCurrency {
				t.Fatalf("expected currency %s got %s", DefaultCurrency, got.Currency)
			}
		})
	}
}

func TestCustomPolicy(t *testing.T) {
	policy := Policy{
		FreeShippingThreshold: decimal.NewFromInt(5000),
		ShippingFee:           decimal.NewFromInt(250),
		TaxRate:               decimal.RequireFromString("0.16"),
	}
	got := policy.Summarize(decimal.NewFromInt(1000))
	assertDecimal(t, "shipping", got.Shipping, "250")
	assertDecimal(t, "tax", got.Tax, "160")
	assertDecimal(t, "total", got.Total, "1410")
	if got.Currency != DefaultCurrency {
		t.Fatalf("blank currency should fall back to %s, got %s", DefaultCurrency, got.Currency)
	}
}

func TestFromConfig(t *testing.T) {
	policy := FromConfig(config.PricingConfig{
		FreeShippingThreshold: decimal.NewFromInt(8000),
		ShippingFee:           decimal.NewFromInt(300),
		TaxRate:               decimal.RequireFromString("0.16"),
		Currency:              "USD",
	})
	got := policy.Summarize(decimal.NewFromInt(9000))
	if got.Currency != "USD" {
		t.Fatalf("expected configured currency USD got %s", got.Currency)
	}
	assertDecimal(t, "shipping", got.Shipping, "0")
	assertDecimal(t, "tax", got.Tax, "1440")
	assertDecimal(t, "total", got.Total, "10440")
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s got %s", label, want, got)
	}
}
