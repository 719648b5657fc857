package gate

import "errors"

var (
	ErrNotFinal       = errors.New("gate: session is not on its final step")
	ErrInFlight       = errors.New("gate: submission already in progress")
	ErrInvalid        = errors.New("gate: final step has validation errors")
	ErrNoPayments     = errors.New("gate: payment mode requires a payment api and checkout")
	ErrOrder          = errors.New("gate: order creation failed")
	ErrCheckout       = errors.New("gate: checkout was not completed")
	ErrVerify         = errors.New("gate: payment verification failed")
	ErrSubmit         = errors.New("gate: submission failed")
	ErrMissingPayment = errors.New("gate: checkout returned no payment id")
)
