package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalJSON(t *testing.T) {
	raw := `{
		"id": 7,
		"name": "Oat Milk",
		"description": "1L carton",
		"price": 19.99,
		"stock": 12,
		"unit": "LITER",
		"categoryId": 3,
		"categoryName": "Dairy Alternatives",
		"imageFilename": "oat-milk.jpg",
		"imageUrl": "https://cdn.example.com/oat-milk.jpg"
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, 7, p.ID)
	assert.Equal(t, "Oat Milk", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 12, p.StockCount())
	assert.Equal(t, UnitLiter, p.Unit)
	assert.Equal(t, Category{ID: 3, Name: "Dairy Alternatives"}, p.Category)
}

func TestProduct_PriceFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json number", `19.99`, "19.99"},
		{"integer number", `20`, "20"},
		{"plain numeric string", `"19.99"`, "19.99"},
		{"comma decimal string", `"19,99"`, "19.99"},
		{"grouped comma decimal", `"1.234,56"`, "1234.56"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			raw := `{"id":1,"name":"x","price":` + tt.raw + `,"categoryId":1,"categoryName":"c"}`
			require.NoError(t, json.Unmarshal([]byte(raw), &p))
			assert.True(t, p.Price.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", p.Price, tt.want)
		})
	}
}

func TestProduct_PriceUnrecognized(t *testing.T) {
	for _, raw := range []string{`"free"`, `true`, `[1]`} {
		var p Product
		err := json.Unmarshal([]byte(`{"id":1,"name":"x","price":`+raw+`}`), &p)
		assert.Error(t, err, "price %s must not decode", raw)
	}
}

func TestUnit_FallsBackToPiece(t *testing.T) {
	tests := []struct {
		raw  string
		want Unit
	}{
		{`"KG"`, UnitKG},
		{`"kg"`, UnitKG},
		{`"Dozen"`, UnitDozen},
		{`"BUSHEL"`, UnitPiece},
		{`""`, UnitPiece},
		{`42`, UnitPiece},
	}
	for _, tt := range tests {
		var u Unit
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &u))
		assert.Equal(t, tt.want, u, "raw %s", tt.raw)
	}
}

func TestProduct_MissingUnitDefaultsToPiece(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"x","price":1}`), &p))
	assert.Equal(t, UnitPiece, p.Unit)
}

func TestProduct_MarshalFlattensCategory(t *testing.T) {
	stock := 5
	p := Product{
		ID:       7,
		Name:     "Oat Milk",
		Price:    decimal.RequireFromString("19.99"),
		Stock:    &stock,
		Unit:     UnitPiece,
		Category: Category{ID: 3, Name: "Dairy Alternatives"},
	}
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"name": "Oat Milk",
		"price": "19.99",
		"stock": 5,
		"unit": "PIECE",
		"categoryId": 3,
		"categoryName": "Dairy Alternatives"
	}`, string(out))

	var back Product
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, p.Category, back.Category)
	assert.True(t, back.Price.Equal(p.Price))
}
