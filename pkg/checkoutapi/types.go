package checkoutapi

const (
	StatusOpen      = "open"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Session is the capability's canonical representation of an in-progress
// purchase. The agent never caches one across turns; it re-fetches by ID,
// merges, and submits the whole document back.
type Session struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Currency    string       `json:"currency"`
	Buyer       *Buyer       `json:"buyer,omitempty"`
	LineItems   []LineItem   `json:"line_items"`
	Fulfillment *Fulfillment `json:"fulfillment,omitempty"`
	Totals      []Total      `json:"totals,omitempty"`
	Payment     Payment      `json:"payment"`
	OrderID     string       `json:"order_id,omitempty"`
}

type Buyer struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type Item struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
}

type LineItem struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

type Fulfillment struct {
	Methods []FulfillmentMethod `json:"methods"`
}

type FulfillmentMethod struct {
	Type                  string        `json:"type"`
	Destinations          []Destination `json:"destinations,omitempty"`
	SelectedDestinationID string        `json:"selected_destination_id,omitempty"`
	Groups                []OptionGroup `json:"groups,omitempty"`
}

type Destination struct {
	ID      string  `json:"id"`
	Address Address `json:"address"`
}

type Address struct {
	FullName   string `json:"full_name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OptionGroup struct {
	Options          []ShippingOption `json:"options"`
	SelectedOptionID string           `json:"selected_option_id,omitempty"`
}

type ShippingOption struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
}

// TotalTypeTotal is the totals entry the agent reads the grand total from.
const TotalTypeTotal = "total"

type Total struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

// Payment is the placeholder block a session is created with; it stays empty
// until the completion call supplies real payment data.
type Payment struct {
	Provider string `json:"provider,omitempty"`
}

// PaymentData is the credential forwarded to the completion endpoint. The
// raw card number travels only here, never in traces.
type PaymentData struct {
	CardNumber     string  `json:"card_number"`
	ExpMonth       int     `json:"exp_month"`
	ExpYear        int     `json:"exp_year"`
	CVC            string  `json:"cvc"`
	HolderName     string  `json:"holder_name"`
	BillingAddress Address `json:"billing_address"`
}

type CreateRequest struct {
	Currency  string     `json:"currency"`
	LineItems []LineItem `json:"line_items"`
	Payment   Payment    `json:"payment"`
}

type completeRequest struct {
	PaymentData PaymentData `json:"payment_data"`
}

// GrandTotal returns the amount of the "total" totals entry, or 0 if absent.
func (s *Session) GrandTotal() int64 {
	if s == nil {
		return 0
	}
	for _, t := range s.Totals {
		if t.Type == TotalTypeTotal {
			return t.Amount
		}
	}
	return 0
}

// ShippingOptions returns the option list offered on the first fulfillment
// method's first group, or nil when no options have been offered yet.
func (s *Session) ShippingOptions() []ShippingOption {
	if s == nil || s.Fulfillment == nil || len(s.Fulfillment.Methods) == 0 {
		return nil
	}
	groups := s.Fulfillment.Methods[0].Groups
	if len(groups) == 0 {
		return nil
	}
	return groups[0].Options
}
