package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderItem_DecodesCurrentKeys(t *testing.T) {
	var item OrderItem
	raw := `{"id":1,"quantity":2,"price":"4.50","productId":7,"productName":"Oat Milk"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, 7, item.ProductID)
	assert.Equal(t, "Oat Milk", item.ProductName)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("4.50")))
}

func TestOrderItem_FallsBackToLegacyKeys(t *testing.T) {
	var item OrderItem
	raw := `{"id":1,"quantity":2,"price":"4.50","fruitId":7,"fruitName":"Braeburn Apple"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, 7, item.ProductID)
	assert.Equal(t, "Braeburn Apple", item.ProductName)
}

func TestOrderItem_PrefersCurrentOverLegacy(t *testing.T) {
	var item OrderItem
	raw := `{"id":1,"quantity":1,"price":"1","productId":7,"productName":"New","fruitId":9,"fruitName":"Old"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, 7, item.ProductID)
	assert.Equal(t, "New", item.ProductName)
}

func TestOrderItem_MissingProductReference(t *testing.T) {
	var item OrderItem
	err := json.Unmarshal([]byte(`{"id":1,"quantity":1,"price":"1"}`), &item)
	assert.Equal(t, ErrCodeDecodingFailed, CodeOf(err))
}

func TestOrderItem_EncodesBothKeySets(t *testing.T) {
	item := OrderItem{
		ID:          1,
		Quantity:    2,
		Price:       decimal.RequireFromString("4.50"),
		ProductID:   7,
		ProductName: "Oat Milk",
	}
	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"quantity": 2,
		"price": "4.50",
		"productId": 7,
		"productName": "Oat Milk",
		"fruitId": 7,
		"fruitName": "Oat Milk"
	}`, string(out))
}

func TestCartItemDTO_EncodesBothIDKeys(t *testing.T) {
	out, err := json.Marshal(CartItemDTO{ProductID: 7, Quantity: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":7,"quantity":3,"fruitId":7}`, string(out))
}

func TestCartItemDTO_DecodeFallback(t *testing.T) {
	var dto CartItemDTO
	require.NoError(t, json.Unmarshal([]byte(`{"fruitId":7,"quantity":3}`), &dto))
	assert.Equal(t, CartItemDTO{ProductID: 7, Quantity: 3}, dto)

	err := json.Unmarshal([]byte(`{"quantity":3}`), &dto)
	assert.Equal(t, ErrCodeDecodingFailed, CodeOf(err))
}

func TestOrder_Decode(t *testing.T) {
	raw := `{
		"id": 101,
		"customerName": "Ada Lovelace",
		"orderDate": "2026-08-30T12:00:00Z",
		"totalAmount": "23.97",
		"items": [
			{"id":1,"quantity":2,"price":"1.99","productId":5,"productName":"Braeburn Apple"},
			{"id":2,"quantity":1,"price":"19.99","fruitId":7,"fruitName":"Oat Milk"}
		]
	}`
	var order Order
	require.NoError(t, json.Unmarshal([]byte(raw), &order))
	assert.Equal(t, 101, order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("23.97")))
	require.Len(t, order.Items, 2)
	assert.Equal(t, 5, order.Items[0].ProductID)
	assert.Equal(t, 7, order.Items[1].ProductID)
}
