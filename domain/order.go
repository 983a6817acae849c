package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Order is a placed order as returned by the backend.
type Order struct {
	ID              int             `json:"id,omitempty"`
	CustomerName    string          `json:"customerName,omitempty"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	OrderDate       string          `json:"orderDate,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Items           []OrderItem     `json:"items,omitempty"`
	UserID          int             `json:"userId,omitempty"`
	Username        string          `json:"username,omitempty"`
}

// OrderItem is one line of a placed order. Older backend revisions used
// fruitId/fruitName for the product reference; decoding falls back to those
// keys and encoding still emits both sets.
type OrderItem struct {
	ID          int
	Quantity    int
	Price       decimal.Decimal
	ProductID   int
	ProductName string
}

type orderItemWire struct {
	ID          int             `json:"id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProductID   *int            `json:"productId,omitempty"`
	ProductName *string         `json:"productName,omitempty"`
	FruitID     *int            `json:"fruitId,omitempty"`
	FruitName   *string         `json:"fruitName,omitempty"`
}

func (i *OrderItem) UnmarshalJSON(data []byte) error {
	var w orderItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := OrderItem{ID: w.ID, Quantity: w.Quantity, Price: w.Price}
	switch {
	case w.ProductID != nil:
		out.ProductID = *w.ProductID
	case w.FruitID != nil:
		out.ProductID = *w.FruitID
	default:
		return NewError(ErrCodeDecodingFailed, "order item has neither productId nor fruitId")
	}
	switch {
	case w.ProductName != nil:
		out.ProductName = *w.ProductName
	case w.FruitName != nil:
		out.ProductName = *w.FruitName
	default:
		return NewError(ErrCodeDecodingFailed, "order item has neither productName nor fruitName")
	}
	*i = out
	return nil
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderItemWire{
		ID:          i.ID,
		Quantity:    i.Quantity,
		Price:       i.Price,
		ProductID:   &i.ProductID,
		ProductName: &i.ProductName,
		FruitID:     &i.ProductID,
		FruitName:   &i.ProductName,
	})
}

// CartItemDTO is the checkout payload line: product identifier and quantity
// only, so the backend re-prices authoritatively at order time. The legacy
// fruitId key is still emitted alongside productId.
type CartItemDTO struct {
	ProductID int
	Quantity  int
}

type cartItemDTOWire struct {
	ProductID *int `json:"productId,omitempty"`
	Quantity  int  `json:"quantity"`
	FruitID   *int `json:"fruitId,omitempty"`
}

func (d *CartItemDTO) UnmarshalJSON(data []byte) error {
	var w cartItemDTOWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := CartItemDTO{Quantity: w.Quantity}
	switch {
	case w.ProductID != nil:
		out.ProductID = *w.ProductID
	case w.FruitID != nil:
		out.ProductID = *w.FruitID
	default:
		return NewError(ErrCodeDecodingFailed, "cart item has neither productId nor fruitId")
	}
	*d = out
	return nil
}

func (d CartItemDTO) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartItemDTOWire{
		ProductID: &d.ProductID,
		Quantity:  d.Quantity,
		FruitID:   &d.ProductID,
	})
}

// CheckoutRequest submits the cart contents for server-side pricing.
type CheckoutRequest struct {
	CartItems []CartItemDTO `json:"cartItems"`
}
