package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestGetProductByID(t *testing.T) {
	c := NewStaticCatalog()

	product, err := c.GetProductByID(context.Background(), "4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Name != "Sony WH-1000XM5" {
		t.Fatalf("unexpected product %q", product.Name)
	}
	if !product.InStock {
		t.Fatalf("expected product in stock")
	}
}

func TestGetProductByIDNotFound(t *testing.T) {
	c := NewStaticCatalog()

	_, err := c.GetProductByID(context.Background(), "999")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestSearchProductsByBrand(t *testing.T) {
	c := NewStaticCatalog()

	results, err := c.SearchProducts(context.Background(), "apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 Apple products, got %d", len(results))
	}
}

func TestSearchProductsByTag(t *testing.T) {
	c := NewStaticCatalog()

	results, err := c.SearchProducts(context.Background(), "fitness")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 fitness products, got %d", len(results))
	}
}

func TestSearchProductsEmptyQueryReturnsAll(t *testing.T) {
	c := NewStaticCatalog()

	results, err := c.SearchProducts(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 15 {
		t.Fatalf("expected full assortment, got %d", len(results))
	}
}
