package turnnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"
	currencyx "github.com/bloomcart/commerce-agent/pkg/currency"
)

// destinationID is a stable placeholder; the flow only ever carries a single
// destination per session.
const destinationID = "dest_1"

const (
	stepAddressSaved   = "Shipping address saved"
	stepOptionsLoaded  = "Loading shipping options"
	stepOptionSelected = "Shipping option selected"
	stepTotalComputed  = "Total calculated"
	stepProcessPayment = "Processing payment"
)

// ValidateAddress starts the shipping-address turn.
func ValidateAddress(in contractx.AddressInput) (*StageState, error) {
	checkoutID := strings.TrimSpace(in.CheckoutID)
	if checkoutID == "" {
		return nil, contractx.ErrMissingCheckoutID
	}
	if strings.TrimSpace(in.Address.Line1) == "" || strings.TrimSpace(in.Address.City) == "" ||
		strings.TrimSpace(in.Address.PostalCode) == "" || strings.TrimSpace(in.Address.Country) == "" {
		return nil, fmt.Errorf("%w: address line1, city, postal code and country are required", contractx.ErrInvalidInput)
	}

	addr := in.Address
	return &StageState{CheckoutID: checkoutID, Address: &addr}, nil
}

// SaveAddress replaces the session's fulfillment methods with a single
// shipping method carrying the supplied address, then reads back the options
// the capability offers for it.
func SaveAddress(ctx context.Context, st *StageState, client contractx.CheckoutClient) (*StageState, error) {
	if st.Response != nil {
		return st, nil
	}
	if err := requireOpenSession(st.Session); err != nil {
		return nil, err
	}
	if st.Session.Buyer == nil {
		return nil, fmt.Errorf("%w: buyer information must be set before a shipping address", contractx.ErrStageOrder)
	}

	st.Session.Fulfillment = &checkoutx.Fulfillment{
		Methods: []checkoutx.FulfillmentMethod{
			{
				Type: "shipping",
				Destinations: []checkoutx.Destination{
					{ID: destinationID, Address: *st.Address},
				},
				SelectedDestinationID: destinationID,
			},
		},
	}

	updated, err := client.Update(ctx, st.CheckoutID, st.Session)
	if err != nil {
		st.fail("Saving shipping address", "We couldn't save your address: "+err.Error(), fmt.Errorf("%w: update address: %v", contractx.ErrCheckoutCall, err))
		return st, nil
	}

	st.Session = updated
	options := updated.ShippingOptions()

	st.done(stepAddressSaved, "")
	st.done(stepOptionsLoaded, fmt.Sprintf("%d options", len(options)))
	st.Response = &contractx.AgentResponse{
		Message: "Address saved. How would you like your order delivered?",
		Steps:   st.Steps,
		NeedsInput: &contractx.NeedsInput{
			Type:       contractx.NeedsShippingOption,
			CheckoutID: st.CheckoutID,
			Options:    options,
		},
	}
	return st, nil
}

// ValidateOption starts the shipping-option turn.
func ValidateOption(in contractx.OptionInput) (*StageState, error) {
	checkoutID := strings.TrimSpace(in.CheckoutID)
	if checkoutID == "" {
		return nil, contractx.ErrMissingCheckoutID
	}
	optionID := strings.TrimSpace(in.OptionID)
	if optionID == "" {
		return nil, fmt.Errorf("%w: shipping option id is required", contractx.ErrInvalidInput)
	}

	return &StageState{CheckoutID: checkoutID, OptionID: optionID}, nil
}

// SelectOption records the chosen option on the first method's first group
// and reports the recalculated total.
func SelectOption(ctx context.Context, st *StageState, client contractx.CheckoutClient) (*StageState, error) {
	if st.Response != nil {
		return st, nil
	}
	if err := requireOpenSession(st.Session); err != nil {
		return nil, err
	}
	if st.Session.Fulfillment == nil || len(st.Session.Fulfillment.Methods) == 0 ||
		len(st.Session.Fulfillment.Methods[0].Groups) == 0 {
		return nil, fmt.Errorf("%w: a shipping address must be set before selecting an option", contractx.ErrStageOrder)
	}

	st.Session.Fulfillment.Methods[0].Groups[0].SelectedOptionID = st.OptionID

	updated, err := client.Update(ctx, st.CheckoutID, st.Session)
	if err != nil {
		st.fail("Selecting shipping option", "We couldn't select that option: "+err.Error(), fmt.Errorf("%w: update option: %v", contractx.ErrCheckoutCall, err))
		return st, nil
	}

	st.Session = updated
	total := currencyx.FormatCents(updated.GrandTotal())

	st.done(stepOptionSelected, "")
	st.done(stepTotalComputed, total)
	st.pending(stepProcessPayment)
	st.Response = &contractx.AgentResponse{
		Message: fmt.Sprintf("Your total comes to %s. How would you like to pay?", total),
		Steps:   st.Steps,
		NeedsInput: &contractx.NeedsInput{
			Type:       contractx.NeedsPayment,
			CheckoutID: st.CheckoutID,
		},
	}
	return st, nil
}

// FetchSession loads the canonical session document before a stage merge.
// The session is never cached across turns; a stale copy could silently
// revert an already-advanced stage.
func FetchSession(ctx context.Context, st *StageState, client contractx.CheckoutClient) (*StageState, error) {
	if st.Response != nil {
		return st, nil
	}

	sess, err := client.Get(ctx, st.CheckoutID)
	if err != nil {
		st.fail("Loading checkout session", "We couldn't load your checkout: "+err.Error(), fmt.Errorf("%w: get: %v", contractx.ErrCheckoutCall, err))
		return st, nil
	}

	st.Session = sess
	return st, nil
}

// FinalizeStage closes a stage turn.
func FinalizeStage(st *StageState) (TurnOutput, error) {
	if st == nil || st.Response == nil {
		return TurnOutput{}, fmt.Errorf("%w: stage turn produced no response", contractx.ErrInvalidInput)
	}
	return TurnOutput{Response: *st.Response, Err: st.failErr}, nil
}

func requireOpenSession(sess *checkoutx.Session) error {
	if sess == nil {
		return fmt.Errorf("%w: session is not loaded", contractx.ErrInvalidInput)
	}
	if sess.Status == checkoutx.StatusCompleted || sess.Status == checkoutx.StatusCanceled {
		return fmt.Errorf("%w: session %s is %s", contractx.ErrStageOrder, sess.ID, sess.Status)
	}
	return nil
}
