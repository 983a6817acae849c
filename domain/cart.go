package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine binds a frozen product snapshot to a quantity. Line IDs are
// assigned locally and increase monotonically; AddedAt is set on first add
// and preserved across quantity merges.
type CartLine struct {
	ID       int       `json:"id"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedDate"`
}

// Subtotal is price times quantity in exact decimal arithmetic.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered sequence of lines plus the derived total. The total is
// always computed from the lines, never stored independently.
type Cart struct {
	Lines []CartLine
	Total decimal.Decimal
}

// NewCart builds a cart view over the given lines and derives the total.
func NewCart(lines []CartLine) Cart {
	return Cart{Lines: lines, Total: CartTotal(lines)}
}

// CartTotal sums price times quantity across lines without floating point.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
