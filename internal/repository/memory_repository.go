package repository

import (
	"context"
	"slices"

	"github.com/Lixing-Zhang/qr-menu/internal/models"
	"github.com/shopspring/decimal"
)

// InMemoryCatalogRepository implements CatalogRepository with in-memory storage
type InMemoryCatalogRepository struct {
	categories []models.Category
	products   []models.Product
}

// NewInMemoryCatalogRepository creates a repository holding the given catalog
func NewInMemoryCatalogRepository(categories []models.Category, products []models.Product) *InMemoryCatalogRepository {
	return &InMemoryCatalogRepository{
		categories: categories,
		products:   products,
	}
}

// NewDemoCatalogRepository creates an in-memory repository with seed data
func NewDemoCatalogRepository() *InMemoryCatalogRepository {
	categories := []models.Category{
		{ID: "cat-oyster", Name: "oysterBar", Description: "Price per piece", Children: []string{"cat-oyster-fr", "cat-oyster-ua"}},
		{ID: "cat-seafood", Name: "cooledSeafood", Description: "Served on ice"},
		{ID: "cat-tartar", Name: "tartar"},
		{ID: "cat-salad", Name: "salad"},
		{ID: "cat-bowls", Name: "bowls", Description: "Rice, greens and fish of the day"},
		{ID: "cat-drinks", Name: "drinks"},
		{ID: "cat-hotdog", Name: "hotDog"},
		{ID: "cat-pie", Name: "pie", Description: "Baked every morning"},
	}

	price := decimal.RequireFromString
	products := []models.Product{
		{ID: "1", Name: "Fine de Claire No.3", Price: price("95"), Available: true, Category: "cat-oyster"},
		{ID: "2", Name: "Black Sea oyster", Price: price("65"), Available: true, Category: "cat-oyster"},
		{ID: "3", Name: "Gillardeau No.2", Price: price("160"), Available: false, Category: "cat-oyster"},
		{ID: "4", Name: "Mussels", Price: price("180"), Available: true, Category: "cat-seafood", Description: "500 g"},
		{ID: "5", Name: "Shrimp", Price: price("240"), Available: true, Category: "cat-seafood"},
		{ID: "6", Name: "Salmon tartar", Price: price("210"), Available: true, Category: "cat-tartar"},
		{ID: "7", Name: "Tuna tartar", Price: price("260"), Available: true, Category: "cat-tartar"},
		{ID: "8", Name: "Seafood salad", Price: price("230"), Available: true, Category: "cat-salad"},
		{ID: "9", Name: "Green salad", Price: price("120"), Available: true, Category: "cat-salad"},
		{ID: "10", Name: "Salmon bowl", Price: price("220"), Available: true, Category: "cat-bowls"},
		{ID: "11", Name: "Lemonade", Price: price("60"), Available: true, Category: "cat-drinks"},
		{ID: "12", Name: "Cider", Price: price("85"), Available: true, Category: "cat-drinks"},
		{ID: "13", Name: "Classic hot dog", Price: price("95"), Available: true, Category: "cat-hotdog"},
		{ID: "14", Name: "Apple pie", Price: price("75"), Available: false, Category: "cat-pie"},
	}

	return NewInMemoryCatalogRepository(categories, products)
}

// Categories returns a copy of the stored categories
func (r *InMemoryCatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	return slices.Clone(r.categories), nil
}

// Products returns a copy of the stored products
func (r *InMemoryCatalogRepository) Products(ctx context.Context) ([]models.Product, error) {
	return slices.Clone(r.products), nil
}
