package gate

import "context"

// Order is the descriptor returned by the payment backend.
type Order struct {
	ID       string `json:"id"`
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}

// Verification is sent back to the payment backend after checkout.
type Verification struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// PaymentResult is what the gateway checkout hands back on success. It is
// consumed immediately and never retained.
type PaymentResult struct {
	PaymentID string
	OrderID   string
	Signature string
}

// CheckoutRequest describes the checkout to open.
type CheckoutRequest struct {
	Order     Order
	Amount    string
	EventName string
	Prefill   map[string]string
}

// PaymentAPI is the order/verification backend.
type PaymentAPI interface {
	CreateOrder(ctx context.Context, amount string) (Order, error)
	VerifyPayment(ctx context.Context, v Verification) error
}

// Checkout opens the external gateway UI and blocks until it reports success
// or failure.
type Checkout interface {
	Open(ctx context.Context, req CheckoutRequest) (PaymentResult, error)
}

// CheckoutFunc adapts a function into a Checkout.
type CheckoutFunc func(ctx context.Context, req CheckoutRequest) (PaymentResult, error)

// Open calls the underlying function.
func (fn CheckoutFunc) Open(ctx context.Context, req CheckoutRequest) (PaymentResult, error) {
	return fn(ctx, req)
}

// Submitter posts the final payload and returns the server's message.
type Submitter interface {
	Submit(ctx context.Context, slug string, payload map[string]any) (string, error)
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, slug string, payload map[string]any) (string, error)

// Submit calls the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, slug string, payload map[string]any) (string, error) {
	return fn(ctx, slug, payload)
}

// Dialog is the host container the gate hides before checkout opens.
type Dialog interface {
	Hide()
}

// Receipt reports a completed submission.
type Receipt struct {
	PaymentID string
	Message   string
}
