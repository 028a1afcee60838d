package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/gateway"
)

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	ID       string          `json:"id"`
	Product  gateway.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session's authoritative cart as last confirmed by the gateway.
// It carries no stored totals; see TotalItems and TotalAmount.
type Cart struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Lines  []Line `json:"items"`
}

func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Line looks up a line by id.
func (c *Cart) Line(id string) (Line, bool) {
	if c == nil {
		return Line{}, false
	}
	for _, l := range c.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// Clone returns a deep copy safe to hand out of the store.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := &Cart{ID: c.ID, UserID: c.UserID, Lines: make([]Line, len(c.Lines))}
	for i, l := range c.Lines {
		p := l.Product
		p.Compatibility = append([]string(nil), l.Product.Compatibility...)
		if l.Product.Specifications != nil {
			p.Specifications = make(map[string]string, len(l.Product.Specifications))
			for k, v := range l.Product.Specifications {
				p.Specifications[k] = v
			}
		}
		if l.Product.OriginalPrice != nil {
			orig := *l.Product.OriginalPrice
			p.OriginalPrice = &orig
		}
		out.Lines[i] = Line{ID: l.ID, Product: p, Quantity: l.Quantity}
	}
	return out
}
