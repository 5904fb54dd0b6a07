// Package catalog provides product and stock lookups for the agent.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID         string `bun:"id,pk"`
	Title      string `bun:"title,notnull"`
	PriceCents int64  `bun:"price_cents,notnull"`
	Stock      int    `bun:"stock,notnull"`
}

// PostgresStore reads the catalog from Postgres via bun.
type PostgresStore struct {
	db *bun.DB
}

var _ contractx.CatalogStore = (*PostgresStore)(nil)

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("catalog dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]contractx.Product, error) {
	var rows []productRow
	if err := s.db.NewSelect().Model(&rows).Order("title ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]contractx.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, contractx.Product{
			ID:         row.ID,
			Title:      row.Title,
			PriceCents: row.PriceCents,
			Stock:      row.Stock,
		})
	}
	return products, nil
}

func (s *PostgresStore) GetStock(ctx context.Context, productID string) (int, bool, error) {
	var stock int
	err := s.db.NewSelect().
		Model((*productRow)(nil)).
		Column("stock").
		Where("id = ?", productID).
		Scan(ctx, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get stock for %s: %w", productID, err)
	}
	return stock, true, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
