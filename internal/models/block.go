package models

// Block is a category paired with its available products, cheapest first.
// Blocks are derived on every menu refresh and never stored.
type Block struct {
	ID            string    `json:"id"`
	BlockName     string    `json:"blockName"`
	Description   string    `json:"description"`
	Products      []Product `json:"products"`
	SubCategories []string  `json:"subCategories"`
}
