package catalog

import (
	"context"
	"sort"
	"testing"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
)

func TestMemoryStoreListProductsSorted(t *testing.T) {
	store := NewMemoryStore(
		contractx.Product{ID: "c", Title: "Zinnia Mix", PriceCents: 1200, Stock: 5},
		contractx.Product{ID: "a", Title: "Aster Bunch", PriceCents: 900, Stock: 3},
		contractx.Product{ID: "b", Title: "Marigold Pot", PriceCents: 1500, Stock: 8},
	)

	products, err := store.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("len = %d, want 3", len(products))
	}
	if !sort.SliceIsSorted(products, func(i, j int) bool { return products[i].Title < products[j].Title }) {
		t.Fatalf("products not sorted by title: %v", products)
	}
}

func TestMemoryStoreGetStock(t *testing.T) {
	store := NewMemoryStore(contractx.Product{ID: "bouquet_roses", Title: "Bouquet of Red Roses", Stock: 7})

	stock, found, err := store.GetStock(context.Background(), "bouquet_roses")
	if err != nil {
		t.Fatalf("GetStock() error = %v", err)
	}
	if !found || stock != 7 {
		t.Fatalf("GetStock() = (%d, %v), want (7, true)", stock, found)
	}

	_, found, err = store.GetStock(context.Background(), "bouquet_unknown")
	if err != nil {
		t.Fatalf("GetStock() error = %v", err)
	}
	if found {
		t.Fatal("GetStock() on unknown id should report not found")
	}
}

func TestMemoryStoreSetStock(t *testing.T) {
	store := NewMemoryStore(contractx.Product{ID: "bouquet_roses", Title: "Bouquet of Red Roses", Stock: 7})

	store.SetStock("bouquet_roses", 0)
	stock, found, err := store.GetStock(context.Background(), "bouquet_roses")
	if err != nil {
		t.Fatalf("GetStock() error = %v", err)
	}
	if !found || stock != 0 {
		t.Fatalf("GetStock() = (%d, %v), want (0, true)", stock, found)
	}

	// Unknown ids are a no-op, not an insert.
	store.SetStock("bouquet_unknown", 9)
	if _, found, _ := store.GetStock(context.Background(), "bouquet_unknown"); found {
		t.Fatal("SetStock must not create products")
	}
}

func TestDemoProductsHaveUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range DemoProducts() {
		if seen[p.ID] {
			t.Fatalf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
		if p.PriceCents <= 0 {
			t.Fatalf("product %q has non-positive price", p.ID)
		}
	}
}
