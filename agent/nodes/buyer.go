package turnnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
)

const (
	stepBuyerSaved     = "Buyer information saved"
	stepCollectAddress = "Collecting shipping address"
)

// ValidateBuyer starts the buyer-info turn.
func ValidateBuyer(in contractx.BuyerInput) (*StageState, error) {
	checkoutID := strings.TrimSpace(in.CheckoutID)
	if checkoutID == "" {
		return nil, contractx.ErrMissingCheckoutID
	}
	if strings.TrimSpace(in.Buyer.FullName) == "" || strings.TrimSpace(in.Buyer.Email) == "" {
		return nil, fmt.Errorf("%w: buyer full name and email are required", contractx.ErrInvalidInput)
	}

	buyer := in.Buyer
	return &StageState{CheckoutID: checkoutID, Buyer: &buyer}, nil
}

// SaveBuyer merges the buyer record into the fetched session and submits the
// full document back. Replays are last-write-wins.
func SaveBuyer(ctx context.Context, st *StageState, client contractx.CheckoutClient) (*StageState, error) {
	if st.Response != nil {
		return st, nil
	}
	if err := requireOpenSession(st.Session); err != nil {
		return nil, err
	}

	st.Session.Buyer = st.Buyer
	updated, err := client.Update(ctx, st.CheckoutID, st.Session)
	if err != nil {
		st.fail("Saving buyer information", "We couldn't save your details: "+err.Error(), fmt.Errorf("%w: update buyer: %v", contractx.ErrCheckoutCall, err))
		return st, nil
	}

	st.Session = updated
	st.done(stepBuyerSaved, "")
	st.pending(stepCollectAddress)
	st.Response = &contractx.AgentResponse{
		Message: fmt.Sprintf("Thanks, %s! Where should we send your order?", st.Buyer.FullName),
		Steps:   st.Steps,
		NeedsInput: &contractx.NeedsInput{
			Type:       contractx.NeedsShippingAddress,
			CheckoutID: st.CheckoutID,
		},
	}
	return st, nil
}
