package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/shopkit/domain"
	"github.com/freshcart/shopkit/repository"
)

type fakeAPI struct {
	mu           sync.Mutex
	products     []domain.Product
	productsErr  error
	checkoutReq  *domain.CheckoutRequest
	checkoutResp domain.Order
	checkoutErr  error
	fetches      int
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) Products(_ context.Context, _ *int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return f.products, nil
}

func (f *fakeAPI) Checkout(_ context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutReq = &req
	if f.checkoutErr != nil {
		return domain.Order{}, f.checkoutErr
	}
	return f.checkoutResp, nil
}

type memStore struct {
	mu     sync.Mutex
	lines  []domain.CartLine
	getErr error
	puts   int
}

var _ repository.CartStore = (*memStore)(nil)

func (s *memStore) Put(lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	s.lines = append([]domain.CartLine(nil), lines...)
	return nil
}

func (s *memStore) Get() ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return append([]domain.CartLine(nil), s.lines...), nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: 5, Name: "Braeburn Apple", Price: price("1.99"), Unit: domain.UnitKG},
		{ID: 7, Name: "Oat Milk", Price: price("19.99"), Unit: domain.UnitPiece},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeAPI, *memStore) {
	t.Helper()
	api := &fakeAPI{products: catalog()}
	store := &memStore{}
	return New(api, store, nil), api, store
}

func TestAddItem_MergesQuantities(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddItem(ctx, 5, 2))
	first := e.Items()
	require.Len(t, first, 1)

	require.NoError(t, e.AddItem(ctx, 5, 3))

	items := e.Items()
	require.Len(t, items, 1, "same product merges into one line")
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, first[0].ID, items[0].ID, "merge keeps the original line ID")
	assert.Equal(t, first[0].AddedAt, items[0].AddedAt, "merge keeps the original AddedAt")
	assert.Equal(t, 2, store.puts, "every mutation persists synchronously")
}

func TestAddItem_AllocatesIncreasingIDs(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddItem(ctx, 5, 1))
	require.NoError(t, e.AddItem(ctx, 7, 1))

	items := e.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 2, items[1].ID)

	// Removing the highest line and adding again reuses max+1.
	e.Remove(7)
	require.NoError(t, e.AddItem(ctx, 7, 1))
	items = e.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1].ID)
}

func TestAddItem_ClampsQuantityToOne(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.AddItem(context.Background(), 5, -3))

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	e, _, store := newTestEngine(t)

	err := e.AddItem(context.Background(), 999, 1)
	assert.Equal(t, domain.ErrCodeProductNotFound, domain.CodeOf(err))
	assert.Empty(t, e.Items())
	assert.Zero(t, store.puts, "a failed add writes nothing")
}

func TestAddItem_CatalogFetchFailure(t *testing.T) {
	e, api, _ := newTestEngine(t)
	api.productsErr = domain.NewError(domain.ErrCodeTimeout, "request timed out")

	err := e.AddItem(context.Background(), 5, 1)
	assert.Equal(t, domain.ErrCodeTimeout, domain.CodeOf(err))
	assert.Empty(t, e.Items())
}

func TestAddItem_SnapshotFrozenAtAddTime(t *testing.T) {
	e, api, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddItem(ctx, 7, 1))

	// A later catalog price change must not touch the captured line.
	api.mu.Lock()
	api.products = []domain.Product{{ID: 7, Name: "Oat Milk", Price: price("24.99")}}
	api.mu.Unlock()

	items := e.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Product.Price.Equal(price("19.99")))
}

func TestSetQuantity(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.AddItem(ctx, 5, 2))

	e.SetQuantity(5, 7)
	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)

	e.SetQuantity(5, 0)
	assert.Empty(t, e.Items(), "zero quantity removes the line")

	puts := store.puts
	e.SetQuantity(999, 3)
	assert.Equal(t, puts, store.puts, "unknown product is a no-op, nothing is persisted")
}

func TestTotalAndItemCount(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.AddItem(ctx, 7, 3)) // 19.99 each
	require.NoError(t, e.AddItem(ctx, 5, 2)) // 1.99 each

	assert.Equal(t, "63.95", e.Total().String(), "totals use exact decimal arithmetic")
	assert.Equal(t, 5, e.ItemCount())

	cart := e.Load()
	assert.True(t, cart.Total.Equal(price("63.95")))
}

func TestLoad_CorruptCacheYieldsEmptyCart(t *testing.T) {
	api := &fakeAPI{products: catalog()}
	store := &memStore{getErr: assert.AnError}
	e := New(api, store, nil)

	cart := e.Load()
	assert.Empty(t, cart.Lines)

	// The engine stays usable after the failed read.
	require.NoError(t, e.AddItem(context.Background(), 5, 1))
	assert.Len(t, e.Items(), 1)
}

func TestLoad_PicksUpPersistedLines(t *testing.T) {
	store := &memStore{lines: []domain.CartLine{{
		ID:       3,
		Product:  domain.Product{ID: 7, Name: "Oat Milk", Price: price("19.99")},
		Quantity: 2,
		AddedAt:  time.Now().UTC(),
	}}}
	e := New(&fakeAPI{}, store, nil)

	cart := e.Load()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "Oat Milk", cart.Lines[0].Product.Name)
}

func TestCheckout(t *testing.T) {
	e, api, store := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.AddItem(ctx, 5, 2))
	require.NoError(t, e.AddItem(ctx, 7, 1))
	api.checkoutResp = domain.Order{ID: 101, TotalAmount: price("23.97")}

	order, err := e.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 101, order.ID)

	require.NotNil(t, api.checkoutReq)
	require.Len(t, api.checkoutReq.CartItems, 2)
	assert.Equal(t, domain.CartItemDTO{ProductID: 5, Quantity: 2}, api.checkoutReq.CartItems[0])
	assert.Equal(t, domain.CartItemDTO{ProductID: 7, Quantity: 1}, api.checkoutReq.CartItems[1])

	assert.Empty(t, e.Items(), "an accepted order clears the cart")
	assert.Empty(t, store.lines, "the cleared cart is persisted")
}

func TestCheckout_EmptyCart(t *testing.T) {
	e, api, _ := newTestEngine(t)

	_, err := e.Checkout(context.Background())
	assert.Equal(t, domain.ErrCodeEmptyCart, domain.CodeOf(err))
	assert.Nil(t, api.checkoutReq, "nothing is submitted for an empty cart")
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	e, api, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.AddItem(ctx, 5, 2))
	api.checkoutErr = domain.NewError(domain.ErrCodeServer, "internal error")

	_, err := e.Checkout(ctx)
	assert.Equal(t, domain.ErrCodeServer, domain.CodeOf(err))
	assert.Len(t, e.Items(), 1, "a rejected order leaves the cart intact")
}

func TestAddItem_ConcurrentMerge(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.AddItem(ctx, 5, 1))
		}()
	}
	wg.Wait()

	items := e.Items()
	require.Len(t, items, 1, "concurrent adds for one product collapse into one line")
	assert.Equal(t, 20, items[0].Quantity)
}
