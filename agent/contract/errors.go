package contract

import "errors"

var (
	ErrEmptyQuery        = errors.New("query is empty")
	ErrMissingCheckoutID = errors.New("checkout id is empty")
	ErrInvalidInput      = errors.New("invalid turn input")
	ErrCheckoutCall      = errors.New("checkout capability call failed")
	ErrStageOrder        = errors.New("checkout session is not at the required stage")
)
