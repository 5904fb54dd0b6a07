package catalog

import (
	"context"
	"sort"
	"sync"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
)

// MemoryStore is an in-process catalog used for tests and DSN-less local
// runs. Reads return copies; the store itself is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]contractx.Product
}

var _ contractx.CatalogStore = (*MemoryStore)(nil)

func NewMemoryStore(products ...contractx.Product) *MemoryStore {
	byID := make(map[string]contractx.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &MemoryStore{products: byID}
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]contractx.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contractx.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) GetStock(ctx context.Context, productID string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, false, nil
	}
	return p.Stock, true, nil
}

// SetStock overrides a product's stock level, mainly for demos and tests.
func (s *MemoryStore) SetStock(productID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.products[productID]; ok {
		p.Stock = stock
		s.products[productID] = p
	}
}

// DemoProducts returns the seed catalog used when no database is configured.
func DemoProducts() []contractx.Product {
	return []contractx.Product{
		{ID: "bouquet_roses", Title: "Bouquet of Red Roses", PriceCents: 3500, Stock: 1000},
		{ID: "bouquet_tulips", Title: "Dutch Tulip Bouquet", PriceCents: 2800, Stock: 420},
		{ID: "bouquet_peonies", Title: "Peony Garden Bouquet", PriceCents: 5200, Stock: 75},
		{ID: "orchid_pot", Title: "Potted White Orchid", PriceCents: 4100, Stock: 30},
	}
}
