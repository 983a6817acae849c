// Package cart maintains the local cart cache and reconciles it against the
// remote catalog. Cart contents are local-authoritative: the remote API is
// consulted only to resolve product snapshots at add-time and at checkout.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freshcart/shopkit/domain"
	"github.com/freshcart/shopkit/repository"
)

// API is the remote surface the engine needs; *api.Client satisfies it.
type API interface {
	Products(ctx context.Context, categoryID *int) ([]domain.Product, error)
	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error)
}

// Engine serializes all cart mutations behind one lock so concurrent adds
// for the same product merge without losing either update. Network fetches
// run outside the lock; only the merge and the persist hold it.
type Engine struct {
	api    API
	store  repository.CartStore
	logger *zap.Logger

	mu     sync.Mutex
	lines  []domain.CartLine
	loaded bool
}

// New constructs an Engine over the given catalog client and cache store.
func New(api API, store repository.CartStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{api: api, store: store, logger: logger}
}

// Load returns the cart from the local cache. A cache that cannot be read or
// decoded yields an empty cart; cart load never fails the caller.
func (e *Engine) Load() domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()
	return e.snapshot()
}

// AddItem resolves the product against the full remote catalog, freezes the
// snapshot into the cart, and merges quantities when a line for the product
// already exists. The original line's ID and AddedAt survive the merge.
func (e *Engine) AddItem(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	products, err := e.api.Products(ctx, nil)
	if err != nil {
		return err
	}
	var product *domain.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return domain.NewError(domain.ErrCodeProductNotFound, "product not found in catalog")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()

	if idx := e.indexOf(productID); idx >= 0 {
		e.lines[idx].Quantity += quantity
	} else {
		e.lines = append(e.lines, domain.CartLine{
			ID:       e.nextLineID(),
			Product:  *product,
			Quantity: quantity,
			AddedAt:  time.Now().UTC(),
		})
	}
	e.persist()
	return nil
}

// SetQuantity replaces a line's quantity, preserving its snapshot and
// AddedAt. A quantity of zero or less removes the line entirely. Unknown
// products are a no-op.
func (e *Engine) SetQuantity(productID, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()

	idx := e.indexOf(productID)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		e.lines = append(e.lines[:idx], e.lines[idx+1:]...)
	} else {
		e.lines[idx].Quantity = quantity
	}
	e.persist()
}

// Remove deletes the line for the product if present.
func (e *Engine) Remove(productID int) {
	e.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
	e.loaded = true
	e.persist()
}

// Items returns a copy of the current lines in insertion order.
func (e *Engine) Items() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()
	return append([]domain.CartLine(nil), e.lines...)
}

// Total derives the cart total in exact decimal arithmetic.
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()
	return domain.CartTotal(e.lines)
}

// ItemCount is the number of units across all lines.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()
	n := 0
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

// Checkout submits product identifiers and quantities for authoritative
// server-side re-pricing, and clears the cart once the order is accepted.
func (e *Engine) Checkout(ctx context.Context) (domain.Order, error) {
	e.mu.Lock()
	e.ensureLoaded()
	items := make([]domain.CartItemDTO, 0, len(e.lines))
	for _, l := range e.lines {
		items = append(items, domain.CartItemDTO{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	e.mu.Unlock()

	if len(items) == 0 {
		return domain.Order{}, domain.NewError(domain.ErrCodeEmptyCart, "cart is empty")
	}

	order, err := e.api.Checkout(ctx, domain.CheckoutRequest{CartItems: items})
	if err != nil {
		return domain.Order{}, err
	}

	e.mu.Lock()
	e.lines = nil
	e.persist()
	e.mu.Unlock()
	return order, nil
}

// ensureLoaded reads the cache once. Callers hold e.mu.
func (e *Engine) ensureLoaded() {
	if e.loaded {
		return
	}
	lines, err := e.store.Get()
	if err != nil {
		// Local cache corruption must not block the user from shopping.
		e.logger.Warn("cart cache unreadable, starting empty", zap.Error(err))
		lines = nil
	}
	e.lines = lines
	e.loaded = true
}

// persist writes the full cart synchronously. Callers hold e.mu. A failed
// write degrades durability, not the in-memory cart.
func (e *Engine) persist() {
	if err := e.store.Put(e.lines); err != nil {
		e.logger.Warn("failed to persist cart", zap.Error(err))
	}
}

func (e *Engine) indexOf(productID int) int {
	for i := range e.lines {
		if e.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) nextLineID() int {
	max := 0
	for _, l := range e.lines {
		if l.ID > max {
			max = l.ID
		}
	}
	return max + 1
}

func (e *Engine) snapshot() domain.Cart {
	return domain.NewCart(append([]domain.CartLine(nil), e.lines...))
}
