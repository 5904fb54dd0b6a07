// Package turnnode holds the per-turn graph state and the node functions the
// orchestrator's graphs are wired from. One conversation turn drives exactly
// one graph run; nothing here survives across turns. The external checkout
// session is the only durable state.
package turnnode

import (
	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"
)

// TurnOutput is what every turn graph produces. Err is set only for
// unrecoverable external-call failures; Response still carries the step
// trace accumulated up to the failure so callers can render partial progress.
type TurnOutput struct {
	Response contractx.AgentResponse
	Err      error
}

// PurchaseState flows through the intent-and-match turn.
type PurchaseState struct {
	Query    string
	Catalog  []contractx.Product
	Decision contractx.IntentDecision
	Product  contractx.Product
	Stock    int
	Session  *checkoutx.Session

	Steps    []contractx.StepRecord
	Response *contractx.AgentResponse

	failErr error
}

func (s *PurchaseState) done(name string, detail string) {
	s.Steps = appendStep(s.Steps, name, contractx.StepDone, detail)
}

func (s *PurchaseState) pending(name string) {
	s.Steps = appendStep(s.Steps, name, contractx.StepPending, "")
}

// terminate ends the turn with a plain message and no follow-up request.
func (s *PurchaseState) terminate(message string) {
	s.Response = &contractx.AgentResponse{
		Message: message,
		Steps:   s.Steps,
	}
}

// fail records an external-call failure: a failed step with the detail, a
// terminal envelope, and the wrapped error for the transport layer.
func (s *PurchaseState) fail(step string, detail string, err error) {
	s.done(step, detail)
	s.terminate(detail)
	s.failErr = err
}

// StageState flows through the four session-stage turns. Only the fields the
// current turn needs are populated.
type StageState struct {
	CheckoutID string
	Buyer      *checkoutx.Buyer
	Address    *checkoutx.Address
	OptionID   string
	Card       *contractx.PaymentCard

	Session *checkoutx.Session

	Steps    []contractx.StepRecord
	Response *contractx.AgentResponse

	failErr error
}

func (s *StageState) done(name string, detail string) {
	s.Steps = appendStep(s.Steps, name, contractx.StepDone, detail)
}

func (s *StageState) pending(name string) {
	s.Steps = appendStep(s.Steps, name, contractx.StepPending, "")
}

func (s *StageState) fail(step string, detail string, err error) {
	s.done(step, detail)
	s.Response = &contractx.AgentResponse{
		Message: detail,
		Steps:   s.Steps,
	}
	s.failErr = err
}

func appendStep(steps []contractx.StepRecord, name string, status contractx.StepStatus, detail string) []contractx.StepRecord {
	return append(steps, contractx.StepRecord{
		Name:   name,
		Status: status,
		Detail: detail,
	})
}
