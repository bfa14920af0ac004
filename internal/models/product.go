package models

import "github.com/shopspring/decimal"

func init() {
	// prices go out as JSON numbers, the same shape the catalog API sends
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a menu item as served by the catalog API
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
	Category    string          `json:"category"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
}
