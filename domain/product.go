package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the measurement unit a product is sold in.
type Unit string

const (
	UnitKG    Unit = "KG"
	UnitPiece Unit = "PIECE"
	UnitPack  Unit = "PACK"
	UnitDozen Unit = "DOZEN"
	UnitLiter Unit = "LITER"
	UnitGram  Unit = "GRAM"
	UnitPound Unit = "POUND"
)

var knownUnits = map[Unit]struct{}{
	UnitKG: {}, UnitPiece: {}, UnitPack: {}, UnitDozen: {},
	UnitLiter: {}, UnitGram: {}, UnitPound: {},
}

// UnmarshalJSON accepts any casing and falls back to PIECE for unknown or
// missing units. The backend has shipped lowercase and mixed-case variants.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*u = UnitPiece
		return nil
	}
	candidate := Unit(strings.ToUpper(s))
	if _, ok := knownUnits[candidate]; !ok {
		candidate = UnitPiece
	}
	*u = candidate
	return nil
}

// Category groups products in the remote catalog.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry. Instances embedded in a CartLine are snapshots
// captured at add-time and are not live-linked to the catalog.
type Product struct {
	ID            int
	Name          string
	Description   string
	Price         decimal.Decimal
	Stock         *int
	Unit          Unit
	Category      Category
	ImageFilename string
	ImageURL      string
}

// StockCount returns the available stock, treating unknown as zero.
func (p Product) StockCount() int {
	if p.Stock == nil {
		return 0
	}
	return *p.Stock
}

// productWire is the flat JSON shape the backend serves: the category arrives
// as categoryId/categoryName rather than a nested object, and price as any of
// number, numeric string, or comma-decimal string.
type productWire struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         json.RawMessage `json:"price"`
	Stock         *int            `json:"stock,omitempty"`
	Unit          Unit            `json:"unit"`
	CategoryID    int             `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	ImageFilename string          `json:"imageFilename,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	price, err := decodePrice(w.Price)
	if err != nil {
		return err
	}
	if w.Unit == "" {
		w.Unit = UnitPiece
	}
	*p = Product{
		ID:            w.ID,
		Name:          w.Name,
		Description:   w.Description,
		Price:         price,
		Stock:         w.Stock,
		Unit:          w.Unit,
		Category:      Category{ID: w.CategoryID, Name: w.CategoryName},
		ImageFilename: w.ImageFilename,
		ImageURL:      w.ImageURL,
	}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	price, err := json.Marshal(p.Price)
	if err != nil {
		return nil, err
	}
	return json.Marshal(productWire{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		Stock:         p.Stock,
		Unit:          p.Unit,
		CategoryID:    p.Category.ID,
		CategoryName:  p.Category.Name,
		ImageFilename: p.ImageFilename,
		ImageURL:      p.ImageURL,
	})
}

// decodePrice tolerates the price formats the backend has drifted through,
// in fixed order: JSON number, plain numeric string, comma-decimal string
// ("19,99", "1.234,56"). Anything else fails decoding.
func decodePrice(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Decimal{}, NewError(ErrCodeDecodingFailed, "product price missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Not a string: treat as a JSON number.
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return decimal.Decimal{}, WrapError(ErrCodeDecodingFailed, "product price is not a number or string", err)
		}
		s = n.String()
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}
	// Comma decimal separator with optional dot grouping.
	normalized := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, WrapError(ErrCodeDecodingFailed, "product price "+s+" is not a recognized number format", err)
	}
	return d, nil
}
