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
	stepPaymentFailed = "Payment failed"
	stepOrderPlaced   = "Order placed"
)

// ValidatePayment starts the terminal payment turn.
func ValidatePayment(in contractx.PaymentInput) (*StageState, error) {
	checkoutID := strings.TrimSpace(in.CheckoutID)
	if checkoutID == "" {
		return nil, contractx.ErrMissingCheckoutID
	}
	if strings.TrimSpace(in.Card.Number) == "" || strings.TrimSpace(in.Card.HolderName) == "" {
		return nil, fmt.Errorf("%w: card number and holder name are required", contractx.ErrInvalidInput)
	}
	if in.Card.ExpMonth < 1 || in.Card.ExpMonth > 12 || in.Card.ExpYear < 2000 {
		return nil, fmt.Errorf("%w: card expiry is invalid", contractx.ErrInvalidInput)
	}

	card := in.Card
	return &StageState{CheckoutID: checkoutID, Card: &card}, nil
}

// CompletePayment calls the capability's completion operation. The full card
// number travels only in the request body; the trace sees last-4 only. On
// success the conversation state machine ends with an order summary.
func CompletePayment(ctx context.Context, st *StageState, client contractx.CheckoutClient) (*StageState, error) {
	if st.Response != nil {
		return st, nil
	}

	sess, err := client.Complete(ctx, st.CheckoutID, checkoutx.PaymentData{
		CardNumber:     st.Card.Number,
		ExpMonth:       st.Card.ExpMonth,
		ExpYear:        st.Card.ExpYear,
		CVC:            st.Card.CVC,
		HolderName:     st.Card.HolderName,
		BillingAddress: st.Card.BillingAddress,
	})
	if err != nil {
		st.fail(stepPaymentFailed, "Payment failed: "+err.Error(), fmt.Errorf("%w: complete: %v", contractx.ErrCheckoutCall, err))
		return st, nil
	}

	st.Session = sess
	st.done(stepProcessPayment, "card ending "+cardLast4(st.Card.Number))
	st.done(stepOrderPlaced, idPreview(sess.OrderID))

	total := currencyx.FormatCents(sess.GrandTotal())
	items := make([]string, 0, len(sess.LineItems))
	for _, li := range sess.LineItems {
		items = append(items, li.Item.Title)
	}

	st.Response = &contractx.AgentResponse{
		Message: fmt.Sprintf("Your order is placed! Total charged: %s. A confirmation is on its way.", total),
		Steps:   st.Steps,
		Order: &contractx.OrderSummary{
			ID:    sess.OrderID,
			Total: total,
			Items: items,
		},
	}
	return st, nil
}
