package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	nodex "github.com/bloomcart/commerce-agent/agent/nodes"
)

// compileQueryGraph wires the intent-and-match turn. The pipeline is linear;
// soft-terminal branches (empty catalog, non-purchase intent, no match, out
// of stock) set the response on the graph state and later nodes pass through.
func (o *Orchestrator) compileQueryGraph(
	ctx context.Context,
) (compose.Runnable[contractx.QueryInput, nodex.TurnOutput], error) {
	graph := compose.NewGraph[contractx.QueryInput, nodex.TurnOutput]()

	if err := graph.AddLambdaNode("validate_query",
		compose.InvokableLambda(func(ctx context.Context, in contractx.QueryInput) (*nodex.PurchaseState, error) {
			return nodex.ValidateQuery(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_query: %w", err)
	}

	if err := graph.AddLambdaNode("load_catalog",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PurchaseState) (*nodex.PurchaseState, error) {
			return nodex.LoadCatalog(ctx, in, o.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_catalog: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PurchaseState) (*nodex.PurchaseState, error) {
			return nodex.ClassifyIntent(ctx, in, o.classifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	if err := graph.AddLambdaNode("match_product",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PurchaseState) (*nodex.PurchaseState, error) {
			return nodex.MatchProduct(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node match_product: %w", err)
	}

	if err := graph.AddLambdaNode("check_stock",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PurchaseState) (*nodex.PurchaseState, error) {
			return nodex.CheckStock(ctx, in, o.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_stock: %w", err)
	}

	if err := graph.AddLambdaNode("create_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PurchaseState) (*nodex.PurchaseState, error) {
			return nodex.CreateSession(ctx, in, o.checkout, o.currency)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node create_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.PurchaseState) (nodex.TurnOutput, error) {
			return nodex.FinalizePurchase(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_query"},
		{"validate_query", "load_catalog"},
		{"load_catalog", "classify_intent"},
		{"classify_intent", "match_product"},
		{"match_product", "check_stock"},
		{"check_stock", "create_session"},
		{"create_session", "finalize"},
		{"finalize", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("agent.query_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile query graph: %w", err)
	}
	return runner, nil
}

func (o *Orchestrator) compileBuyerGraph(
	ctx context.Context,
) (compose.Runnable[contractx.BuyerInput, nodex.TurnOutput], error) {
	graph := compose.NewGraph[contractx.BuyerInput, nodex.TurnOutput]()

	if err := graph.AddLambdaNode("validate_buyer",
		compose.InvokableLambda(func(ctx context.Context, in contractx.BuyerInput) (*nodex.StageState, error) {
			return nodex.ValidateBuyer(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_buyer: %w", err)
	}

	if err := o.addStageNodes(func(key string, node *compose.Lambda) error {
		return graph.AddLambdaNode(key, node)
	}, "save_buyer",
		func(ctx context.Context, in *nodex.StageState) (*nodex.StageState, error) {
			return nodex.SaveBuyer(ctx, in, o.checkout)
		},
	); err != nil {
		return nil, err
	}

	if err := wireStageEdges(func(start string, end string) error {
		return graph.AddEdge(start, end)
	}, "validate_buyer", "save_buyer"); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("agent.buyer_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile buyer graph: %w", err)
	}
	return runner, nil
}

func (o *Orchestrator) compileAddressGraph(
	ctx context.Context,
) (compose.Runnable[contractx.AddressInput, nodex.TurnOutput], error) {
	graph := compose.NewGraph[contractx.AddressInput, nodex.TurnOutput]()

	if err := graph.AddLambdaNode("validate_address",
		compose.InvokableLambda(func(ctx context.Context, in contractx.AddressInput) (*nodex.StageState, error) {
			return nodex.ValidateAddress(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_address: %w", err)
	}

	if err := o.addStageNodes(func(key string, node *compose.Lambda) error {
		return graph.AddLambdaNode(key, node)
	}, "save_address",
		func(ctx context.Context, in *nodex.StageState) (*nodex.StageState, error) {
			return nodex.SaveAddress(ctx, in, o.checkout)
		},
	); err != nil {
		return nil, err
	}

	if err := wireStageEdges(func(start string, end string) error {
		return graph.AddEdge(start, end)
	}, "validate_address", "save_address"); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("agent.address_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile address graph: %w", err)
	}
	return runner, nil
}

func (o *Orchestrator) compileOptionGraph(
	ctx context.Context,
) (compose.Runnable[contractx.OptionInput, nodex.TurnOutput], error) {
	graph := compose.NewGraph[contractx.OptionInput, nodex.TurnOutput]()

	if err := graph.AddLambdaNode("validate_option",
		compose.InvokableLambda(func(ctx context.Context, in contractx.OptionInput) (*nodex.StageState, error) {
			return nodex.ValidateOption(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_option: %w", err)
	}

	if err := o.addStageNodes(func(key string, node *compose.Lambda) error {
		return graph.AddLambdaNode(key, node)
	}, "select_option",
		func(ctx context.Context, in *nodex.StageState) (*nodex.StageState, error) {
			return nodex.SelectOption(ctx, in, o.checkout)
		},
	); err != nil {
		return nil, err
	}

	if err := wireStageEdges(func(start string, end string) error {
		return graph.AddEdge(start, end)
	}, "validate_option", "select_option"); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("agent.option_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile option graph: %w", err)
	}
	return runner, nil
}

// compilePaymentGraph wires the terminal turn. Completion is a single
// capability call, so there is no fetch node: the capability validates the
// session's stage itself and the turn never re-merges prior state.
func (o *Orchestrator) compilePaymentGraph(
	ctx context.Context,
) (compose.Runnable[contractx.PaymentInput, nodex.TurnOutput], error) {
	graph := compose.NewGraph[contractx.PaymentInput, nodex.TurnOutput]()

	if err := graph.AddLambdaNode("validate_payment",
		compose.InvokableLambda(func(ctx context.Context, in contractx.PaymentInput) (*nodex.StageState, error) {
			return nodex.ValidatePayment(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_payment: %w", err)
	}

	if err := graph.AddLambdaNode("complete_payment",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.StageState) (*nodex.StageState, error) {
			return nodex.CompletePayment(ctx, in, o.checkout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node complete_payment: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.StageState) (nodex.TurnOutput, error) {
			return nodex.FinalizeStage(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_payment"},
		{"validate_payment", "complete_payment"},
		{"complete_payment", "finalize"},
		{"finalize", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("agent.payment_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile payment graph: %w", err)
	}
	return runner, nil
}

type addLambdaFn func(key string, node *compose.Lambda) error

type addEdgeFn func(start string, end string) error

// addStageNodes registers the shared fetch/merge/finalize trio every session
// stage graph uses around its validate node.
func (o *Orchestrator) addStageNodes(
	addNode addLambdaFn,
	mergeName string,
	merge func(ctx context.Context, in *nodex.StageState) (*nodex.StageState, error),
) error {
	if err := addNode("fetch_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.StageState) (*nodex.StageState, error) {
			return nodex.FetchSession(ctx, in, o.checkout)
		}),
	); err != nil {
		return fmt.Errorf("add node fetch_session: %w", err)
	}

	if err := addNode(mergeName, compose.InvokableLambda(merge)); err != nil {
		return fmt.Errorf("add node %s: %w", mergeName, err)
	}

	if err := addNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.StageState) (nodex.TurnOutput, error) {
			return nodex.FinalizeStage(in)
		}),
	); err != nil {
		return fmt.Errorf("add node finalize: %w", err)
	}

	return nil
}

func wireStageEdges(addEdge addEdgeFn, validateName string, mergeName string) error {
	edges := [][2]string{
		{compose.START, validateName},
		{validateName, "fetch_session"},
		{"fetch_session", mergeName},
		{mergeName, "finalize"},
		{"finalize", compose.END},
	}
	for _, edge := range edges {
		if err := addEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}
