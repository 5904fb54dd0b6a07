// Package orchestrator drives the guided purchase flow. It is stateless
// between turns: each entry point receives the caller-supplied input, runs
// exactly one step of the flow against the external checkout session, and
// returns the step trace plus either a request for more input or a terminal
// outcome.
package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	nodex "github.com/bloomcart/commerce-agent/agent/nodes"
)

const defaultCurrency = "usd"

type Config struct {
	Currency string
}

// Orchestrator holds no per-conversation state. All durable state lives in
// the external checkout session, addressed by the id threaded through the
// NeedsInput/response pair.
type Orchestrator struct {
	catalog    contractx.CatalogStore
	classifier contractx.IntentClassifier
	checkout   contractx.CheckoutClient
	currency   string

	queryRunner   compose.Runnable[contractx.QueryInput, nodex.TurnOutput]
	buyerRunner   compose.Runnable[contractx.BuyerInput, nodex.TurnOutput]
	addressRunner compose.Runnable[contractx.AddressInput, nodex.TurnOutput]
	optionRunner  compose.Runnable[contractx.OptionInput, nodex.TurnOutput]
	paymentRunner compose.Runnable[contractx.PaymentInput, nodex.TurnOutput]
}

func New(
	catalog contractx.CatalogStore,
	classifier contractx.IntentClassifier,
	checkout contractx.CheckoutClient,
	cfg Config,
) (*Orchestrator, error) {
	if catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if checkout == nil {
		return nil, errors.New("checkout client is required")
	}

	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	o := &Orchestrator{
		catalog:    catalog,
		classifier: classifier,
		checkout:   checkout,
		currency:   currency,
	}

	ctx := context.Background()
	var err error
	if o.queryRunner, err = o.compileQueryGraph(ctx); err != nil {
		return nil, err
	}
	if o.buyerRunner, err = o.compileBuyerGraph(ctx); err != nil {
		return nil, err
	}
	if o.addressRunner, err = o.compileAddressGraph(ctx); err != nil {
		return nil, err
	}
	if o.optionRunner, err = o.compileOptionGraph(ctx); err != nil {
		return nil, err
	}
	if o.paymentRunner, err = o.compilePaymentGraph(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// HandleQuery is the flow start: no checkout id exists yet. A purchase
// intent with a matched, in-stock product ends with a created session and a
// buyer_info request; every other branch ends with no session created.
func (o *Orchestrator) HandleQuery(ctx context.Context, in contractx.QueryInput) (contractx.AgentResponse, error) {
	return invokeTurn(ctx, o.queryRunner, in)
}

// HandleBuyerInfo merges the buyer record into the session.
func (o *Orchestrator) HandleBuyerInfo(ctx context.Context, in contractx.BuyerInput) (contractx.AgentResponse, error) {
	return invokeTurn(ctx, o.buyerRunner, in)
}

// HandleShippingAddress sets the destination and surfaces the offered
// shipping options.
func (o *Orchestrator) HandleShippingAddress(ctx context.Context, in contractx.AddressInput) (contractx.AgentResponse, error) {
	return invokeTurn(ctx, o.addressRunner, in)
}

// HandleShippingOption selects an option and reports the recalculated total.
func (o *Orchestrator) HandleShippingOption(ctx context.Context, in contractx.OptionInput) (contractx.AgentResponse, error) {
	return invokeTurn(ctx, o.optionRunner, in)
}

// HandlePayment completes the session. This is the terminal turn; on success
// no further NeedsInput is returned.
func (o *Orchestrator) HandlePayment(ctx context.Context, in contractx.PaymentInput) (contractx.AgentResponse, error) {
	return invokeTurn(ctx, o.paymentRunner, in)
}

func invokeTurn[I any](ctx context.Context, runner compose.Runnable[I, nodex.TurnOutput], in I) (contractx.AgentResponse, error) {
	out, err := runner.Invoke(ctx, in)
	if err != nil {
		return contractx.AgentResponse{}, err
	}
	return out.Response, out.Err
}
