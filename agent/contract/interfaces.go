package contract

import (
	"context"

	checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"
)

// CatalogStore resolves products and stock levels.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetStock(ctx context.Context, productID string) (int, bool, error)
}

// IntentClassifier turns free text plus a catalog snapshot into a decision.
// Implementations must degrade to {IntentOther, generic message} on any
// malformed or unparseable model output instead of returning an error.
type IntentClassifier interface {
	Classify(ctx context.Context, query string, catalog []Product) (IntentDecision, error)
}

// CheckoutClient drives the external checkout capability. Update is a
// full-document replace; callers merge prior state before calling it.
type CheckoutClient interface {
	Create(ctx context.Context, req checkoutx.CreateRequest) (*checkoutx.Session, error)
	Get(ctx context.Context, id string) (*checkoutx.Session, error)
	Update(ctx context.Context, id string, sess *checkoutx.Session) (*checkoutx.Session, error)
	Complete(ctx context.Context, id string, payment checkoutx.PaymentData) (*checkoutx.Session, error)
}
