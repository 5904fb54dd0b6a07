// Package server exposes the agent over HTTP. Handlers decode one turn's
// input, invoke the orchestrator, and write the shared response envelope for
// both success and failure so the UI can always render partial progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"
)

const maxBodyBytes = 1 << 20

// TurnHandler is the orchestrator surface the server depends on.
type TurnHandler interface {
	HandleQuery(ctx context.Context, in contractx.QueryInput) (contractx.AgentResponse, error)
	HandleBuyerInfo(ctx context.Context, in contractx.BuyerInput) (contractx.AgentResponse, error)
	HandleShippingAddress(ctx context.Context, in contractx.AddressInput) (contractx.AgentResponse, error)
	HandleShippingOption(ctx context.Context, in contractx.OptionInput) (contractx.AgentResponse, error)
	HandlePayment(ctx context.Context, in contractx.PaymentInput) (contractx.AgentResponse, error)
}

type AgentHandler struct {
	agent   TurnHandler
	metrics *Metrics
}

func NewAgentHandler(agent TurnHandler, metrics *Metrics) *AgentHandler {
	return &AgentHandler{agent: agent, metrics: metrics}
}

func (h *AgentHandler) Query(w http.ResponseWriter, r *http.Request) {
	runTurn(h, w, r, "query", h.agent.HandleQuery)
}

func (h *AgentHandler) BuyerInfo(w http.ResponseWriter, r *http.Request) {
	runTurn(h, w, r, "buyer_info", h.agent.HandleBuyerInfo)
}

func (h *AgentHandler) ShippingAddress(w http.ResponseWriter, r *http.Request) {
	runTurn(h, w, r, "shipping_address", h.agent.HandleShippingAddress)
}

func (h *AgentHandler) ShippingOption(w http.ResponseWriter, r *http.Request) {
	runTurn(h, w, r, "shipping_option", h.agent.HandleShippingOption)
}

func (h *AgentHandler) Payment(w http.ResponseWriter, r *http.Request) {
	runTurn(h, w, r, "payment", h.agent.HandlePayment)
}

func runTurn[I any](
	h *AgentHandler,
	w http.ResponseWriter,
	r *http.Request,
	turn string,
	handle func(ctx context.Context, in I) (contractx.AgentResponse, error),
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in I
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.metrics.ObserveTurn(turn, "bad_request")
		writeJSON(w, http.StatusBadRequest, contractx.AgentResponse{
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	timer := h.metrics.TurnTimer(turn)
	resp, err := handle(r.Context(), in)
	timer.ObserveDuration()

	status, outcome := statusFor(err)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("turn", turn).Int("status", status).Msg("turn failed")
		if resp.Message == "" {
			resp.Message = userMessageFor(err)
		}
	}

	h.metrics.ObserveTurn(turn, outcome)
	writeJSON(w, status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, "ok"
	case errors.Is(err, contractx.ErrEmptyQuery),
		errors.Is(err, contractx.ErrMissingCheckoutID),
		errors.Is(err, contractx.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, contractx.ErrStageOrder):
		return http.StatusConflict, "stage_conflict"
	case errors.Is(err, checkoutx.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, contractx.ErrCheckoutCall):
		return http.StatusBadGateway, "checkout_failure"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func userMessageFor(err error) string {
	switch {
	case errors.Is(err, checkoutx.ErrSessionNotFound):
		return "We couldn't find that checkout session."
	case errors.Is(err, contractx.ErrStageOrder):
		return "That step isn't available for this checkout right now."
	case errors.Is(err, contractx.ErrEmptyQuery),
		errors.Is(err, contractx.ErrMissingCheckoutID),
		errors.Is(err, contractx.ErrInvalidInput):
		return err.Error()
	default:
		return "Something went wrong handling your request."
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
