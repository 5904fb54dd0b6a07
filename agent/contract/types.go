package contract

import checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"

// Product is a catalog entry as the agent sees it. Prices are integral cents.
type Product struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

type IntentType string

const (
	IntentPurchase IntentType = "purchase"
	IntentInquiry  IntentType = "inquiry"
	IntentOther    IntentType = "other"
)

// IntentDecision is the structured outcome of one classification call.
// ProductID is empty unless Intent is purchase and a catalog match was found.
type IntentDecision struct {
	Intent    IntentType `json:"intent"`
	ProductID string     `json:"product_id,omitempty"`
	Message   string     `json:"message"`
}

type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepDone    StepStatus = "done"
)

// StepRecord is one entry in the per-turn progress trace. Records are
// append-only within a turn and never mutated after append.
type StepRecord struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

type NeedsInputType string

const (
	NeedsBuyerInfo       NeedsInputType = "buyer_info"
	NeedsShippingAddress NeedsInputType = "shipping_address"
	NeedsShippingOption  NeedsInputType = "shipping_option"
	NeedsPayment         NeedsInputType = "payment"
)

// NeedsInput tells the caller which stage's data the flow requires next.
// It is the only mechanism for advancing a checkout session.
type NeedsInput struct {
	Type       NeedsInputType             `json:"type"`
	CheckoutID string                     `json:"checkout_id"`
	Options    []checkoutx.ShippingOption `json:"options,omitempty"`
}

// OrderSummary is returned once the payment turn completes the session.
type OrderSummary struct {
	ID    string   `json:"id"`
	Total string   `json:"total"`
	Items []string `json:"items"`
}

// AgentResponse is the envelope every turn returns, success or failure.
// Order and NeedsInput are mutually exclusive; absence of both means a
// terminal non-purchase reply or an error already described in Message.
type AgentResponse struct {
	Message    string        `json:"message"`
	Steps      []StepRecord  `json:"steps"`
	Order      *OrderSummary `json:"order,omitempty"`
	NeedsInput *NeedsInput   `json:"needs_input,omitempty"`
}

/* ------------------------------ turn inputs ------------------------------ */

type QueryInput struct {
	Query string `json:"query"`
}

type BuyerInput struct {
	CheckoutID string          `json:"checkout_id"`
	Buyer      checkoutx.Buyer `json:"buyer"`
}

type AddressInput struct {
	CheckoutID string            `json:"checkout_id"`
	Address    checkoutx.Address `json:"address"`
}

type OptionInput struct {
	CheckoutID string `json:"checkout_id"`
	OptionID   string `json:"option_id"`
}

// PaymentCard carries raw card data for the completion call. The full number
// is forwarded only in the request body; traces and logs see last-4 only.
type PaymentCard struct {
	Number         string            `json:"number"`
	ExpMonth       int               `json:"exp_month"`
	ExpYear        int               `json:"exp_year"`
	CVC            string            `json:"cvc"`
	HolderName     string            `json:"holder_name"`
	BillingAddress checkoutx.Address `json:"billing_address"`
}

type PaymentInput struct {
	CheckoutID string      `json:"checkout_id"`
	Card       PaymentCard `json:"card"`
}
