// Package catalog provides the read-only product catalog consumed by cart
// operations and the product listing endpoints.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/services"
)

// ErrProductNotFound indicates the product id has no catalog entry.
var ErrProductNotFound = errors.New("catalog: product not found")

type staticCatalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

var _ services.CatalogProvider = (*staticCatalog)(nil)

// NewStaticCatalog constructs the in-memory catalog with the stock assortment.
func NewStaticCatalog() services.CatalogProvider {
	products := stockProducts()
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &staticCatalog{products: products, byID: byID}
}

// GetProductByID resolves a single product.
func (c *staticCatalog) GetProductByID(_ context.Context, id string) (domain.Product, error) {
	product, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

// SearchProducts matches the query case-insensitively against name, brand,
// category, and tags. An empty query returns the full assortment.
func (c *staticCatalog) SearchProducts(_ context.Context, query string) ([]domain.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		out := make([]domain.Product, len(c.products))
		copy(out, c.products)
		return out, nil
	}

	var matches []domain.Product
	for _, p := range c.products {
		if productMatches(p, needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func productMatches(p domain.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func stockProducts() []domain.Product {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return []domain.Product{
		{ID: "1", Name: "iPhone 15 Pro", Description: "Latest iPhone with advanced camera system and A17 Pro chip", UnitPrice: price(999), Brand: "Apple", Category: "electronics", Tags: []string{"smartphone", "ios", "camera"}, InStock: true},
		{ID: "2", Name: "Samsung 4K Smart TV", Description: "55-inch QLED 4K Smart TV with HDR and built-in streaming", UnitPrice: price(799), Brand: "Samsung", Category: "electronics", Tags: []string{"tv", "4k", "smart"}, InStock: true},
		{ID: "3", Name: "MacBook Pro M3", Description: "Powerful laptop with M3 chip, perfect for professionals", UnitPrice: price(1599), Brand: "Apple", Category: "electronics", Tags: []string{"laptop", "macos"}, InStock: true},
		{ID: "4", Name: "Sony WH-1000XM5", Description: "Industry-leading noise canceling wireless headphones", UnitPrice: price(349), Brand: "Sony", Category: "electronics", Tags: []string{"headphones", "wireless"}, InStock: true},
		{ID: "5", Name: "Premium Cotton T-Shirt", Description: "Soft organic cotton t-shirt in multiple colors", UnitPrice: price(29), Brand: "EcoWear", Category: "clothing", Tags: []string{"tshirt", "organic"}, InStock: true},
		{ID: "6", Name: "Designer Jeans", Description: "Classic fit denim jeans with modern styling", UnitPrice: price(89), Brand: "DenimCo", Category: "clothing", Tags: []string{"jeans", "denim"}, InStock: true},
		{ID: "7", Name: "Winter Jacket", Description: "Warm insulated jacket for cold weather", UnitPrice: price(159), Brand: "WinterWear", Category: "clothing", Tags: []string{"jacket", "winter"}, InStock: true},
		{ID: "8", Name: "Running Shoes", Description: "Lightweight running shoes with responsive cushioning", UnitPrice: price(119), Brand: "SportMax", Category: "clothing", Tags: []string{"shoes", "running"}, InStock: true},
		{ID: "9", Name: "Smart Coffee Maker", Description: "WiFi-enabled coffee maker with app control", UnitPrice: price(179), Brand: "BrewMaster", Category: "home-garden", Tags: []string{"coffee", "smart-home"}, InStock: true},
		{ID: "10", Name: "Indoor Plant Collection", Description: "Set of three easy-care houseplants", UnitPrice: price(49), Brand: "GreenLife", Category: "home-garden", Tags: []string{"plants", "decor"}, InStock: true},
		{ID: "11", Name: "Yoga Mat Premium", Description: "Non-slip yoga mat with carrying strap", UnitPrice: price(39), Brand: "YogaPro", Category: "sports", Tags: []string{"yoga", "fitness"}, InStock: true},
		{ID: "12", Name: "Adjustable Dumbbells", Description: "Space-saving adjustable dumbbells, 5-50 lbs", UnitPrice: price(299), Brand: "FitMax", Category: "sports", Tags: []string{"weights", "fitness"}, InStock: true},
		{ID: "13", Name: "The Art of Programming", Description: "Comprehensive guide to software craftsmanship", UnitPrice: price(39), Brand: "TechBooks", Category: "books", Tags: []string{"programming", "education"}, InStock: true},
		{ID: "14", Name: "Mindfulness Journal", Description: "Guided journal for daily reflection", UnitPrice: price(19), Brand: "MindfulPress", Category: "books", Tags: []string{"journal", "wellness"}, InStock: true},
		{ID: "15", Name: "Skincare Routine Set", Description: "Complete morning and evening skincare set", UnitPrice: price(79), Brand: "GlowLab", Category: "beauty", Tags: []string{"skincare", "beauty"}, InStock: true},
	}
}
