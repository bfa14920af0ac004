package menu

import (
	"errors"
	"slices"

	"github.com/Lixing-Zhang/qr-menu/internal/models"
)

// ErrNotFound is returned when the catalog has no categories or no products.
// Callers must not render a partial menu in that case.
var ErrNotFound = errors.New("menu not found")

// Assemble joins products into one block per category, keeping category order.
// Each block holds only available products of that category, sorted by price
// with ties in their original order.
func Assemble(categories []models.Category, products []models.Product) ([]models.Block, error) {
	if len(categories) == 0 || len(products) == 0 {
		return nil, ErrNotFound
	}

	blocks := make([]models.Block, 0, len(categories))
	for _, cat := range categories {
		selected := make([]models.Product, 0)
		for _, p := range products {
			if p.Available && p.Category == cat.ID {
				selected = append(selected, p)
			}
		}

		slices.SortStableFunc(selected, func(a, b models.Product) int {
			return a.Price.Cmp(b.Price)
		})

		blocks = append(blocks, models.Block{
			ID:            cat.ID,
			BlockName:     cat.Name,
			Description:   cat.Description,
			Products:      selected,
			SubCategories: cat.Children,
		})
	}

	return blocks, nil
}

// Find returns the first block with the given name.
func Find(blocks []models.Block, name string) (models.Block, bool) {
	for _, b := range blocks {
		if b.BlockName == name {
			return b, true
		}
	}
	return models.Block{}, false
}
