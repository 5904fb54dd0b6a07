package turnnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"
	currencyx "github.com/bloomcart/commerce-agent/pkg/currency"
)

const (
	stepUnderstanding  = "Understanding your request"
	stepCatalogLoaded  = "Catalog loaded"
	stepIntentResolved = "Intent classified"
	stepNoMatch        = "No matching product"
	stepProductMatched = "Product matched"
	stepOutOfStock     = "Out of stock"
	stepStockChecked   = "Stock checked"
	stepSessionCreate  = "Creating checkout session"
	stepSessionCreated = "Checkout session created"
	stepCollectBuyer   = "Collecting buyer information"
)

// ValidateQuery starts the purchase turn. An empty query is a caller error,
// not a conversational reply.
func ValidateQuery(in contractx.QueryInput) (*PurchaseState, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, contractx.ErrEmptyQuery
	}

	st := &PurchaseState{Query: query}
	st.done(stepUnderstanding, "")
	return st, nil
}

// LoadCatalog fetches the full catalog snapshot. An empty catalog terminates
// the turn before any session can be created.
func LoadCatalog(ctx context.Context, st *PurchaseState, store contractx.CatalogStore) (*PurchaseState, error) {
	if st.Response != nil {
		return st, nil
	}

	products, err := store.ListProducts(ctx)
	if err != nil {
		st.fail("Loading catalog", "We couldn't load the catalog right now. Please try again shortly.", fmt.Errorf("list products: %w", err))
		return st, nil
	}
	if len(products) == 0 {
		st.terminate("Our shop is restocking at the moment, so there's nothing available to order just yet.")
		return st, nil
	}

	st.Catalog = products
	st.done(stepCatalogLoaded, fmt.Sprintf("%d products", len(products)))
	return st, nil
}

// ClassifyIntent asks the classifier for a decision. The adapter guarantees
// a usable fallback for malformed model output, so only context cancellation
// can error here.
func ClassifyIntent(ctx context.Context, st *PurchaseState, classifier contractx.IntentClassifier) (*PurchaseState, error) {
	if st.Response != nil {
		return st, nil
	}

	decision, err := classifier.Classify(ctx, st.Query, st.Catalog)
	if err != nil {
		return nil, err
	}

	st.Decision = decision
	st.done(stepIntentResolved, string(decision.Intent))
	return st, nil
}

// MatchProduct resolves the classifier's product id against the catalog.
// Non-purchase intents and unmatched products end the turn with no session.
func MatchProduct(st *PurchaseState) (*PurchaseState, error) {
	if st.Response != nil {
		return st, nil
	}

	if st.Decision.Intent != contractx.IntentPurchase {
		st.terminate(st.Decision.Message)
		return st, nil
	}

	product, ok := findProduct(st.Catalog, st.Decision.ProductID)
	if !ok {
		st.done(stepNoMatch, "")
		st.terminate("I couldn't find that in our catalog. We currently have: " + productTitles(st.Catalog) + ".")
		return st, nil
	}

	st.Product = product
	st.done(stepProductMatched, fmt.Sprintf("%s (%s)", product.Title, currencyx.FormatCents(product.PriceCents)))
	return st, nil
}

// CheckStock verifies at least one unit is available before creating a
// session.
func CheckStock(ctx context.Context, st *PurchaseState, store contractx.CatalogStore) (*PurchaseState, error) {
	if st.Response != nil {
		return st, nil
	}

	stock, found, err := store.GetStock(ctx, st.Product.ID)
	if err != nil {
		st.fail("Checking stock", "We couldn't check availability right now. Please try again shortly.", fmt.Errorf("get stock: %w", err))
		return st, nil
	}
	if !found || stock < 1 {
		st.done(stepOutOfStock, "")
		st.terminate(fmt.Sprintf("Sorry, %s is out of stock right now. We currently have: %s.", st.Product.Title, productTitles(st.Catalog)))
		return st, nil
	}

	st.Stock = stock
	st.done(stepStockChecked, fmt.Sprintf("%d in stock", stock))
	return st, nil
}

// CreateSession opens the checkout session with exactly one line item and an
// empty payment placeholder, then asks the caller for buyer information.
func CreateSession(ctx context.Context, st *PurchaseState, client contractx.CheckoutClient, currency string) (*PurchaseState, error) {
	if st.Response != nil {
		return st, nil
	}

	sess, err := client.Create(ctx, checkoutx.CreateRequest{
		Currency: currency,
		LineItems: []checkoutx.LineItem{
			{
				Item: checkoutx.Item{
					ID:         st.Product.ID,
					Title:      st.Product.Title,
					PriceCents: st.Product.PriceCents,
				},
				Quantity: 1,
			},
		},
		Payment: checkoutx.Payment{},
	})
	if err != nil {
		st.fail(stepSessionCreate, "We couldn't start your checkout: "+err.Error(), fmt.Errorf("%w: create: %v", contractx.ErrCheckoutCall, err))
		return st, nil
	}

	st.Session = sess
	st.done(stepSessionCreated, idPreview(sess.ID))
	st.pending(stepCollectBuyer)

	total := currencyx.FormatCents(sess.GrandTotal())
	st.Response = &contractx.AgentResponse{
		Message: fmt.Sprintf("Great choice! %s comes to %s. I just need a few details to get it to you.", st.Product.Title, total),
		Steps:   st.Steps,
		NeedsInput: &contractx.NeedsInput{
			Type:       contractx.NeedsBuyerInfo,
			CheckoutID: sess.ID,
		},
	}
	return st, nil
}

// FinalizePurchase closes the turn. Every branch above must have produced a
// response by now.
func FinalizePurchase(st *PurchaseState) (TurnOutput, error) {
	if st == nil || st.Response == nil {
		return TurnOutput{}, fmt.Errorf("%w: purchase turn produced no response", contractx.ErrInvalidInput)
	}
	return TurnOutput{Response: *st.Response, Err: st.failErr}, nil
}

func findProduct(catalog []contractx.Product, id string) (contractx.Product, bool) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return contractx.Product{}, false
	}
	for _, p := range catalog {
		if p.ID == trimmed {
			return p, true
		}
	}
	return contractx.Product{}, false
}

func productTitles(catalog []contractx.Product) string {
	titles := make([]string, 0, len(catalog))
	for _, p := range catalog {
		titles = append(titles, p.Title)
	}
	return strings.Join(titles, ", ")
}
