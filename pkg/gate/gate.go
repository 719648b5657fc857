// Package gate implements the final-step submission control: a payment flow
// (order, checkout, verification, submit) or a direct submit, guarded by a
// small state machine so one trigger produces at most one order.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/looplab/fsm"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
)

// Gate states.
const (
	StateIdle       = "idle"
	StateOrdering   = "ordering"
	StateCheckout   = "checkout"
	StateVerifying  = "verifying"
	StateSubmitting = "submitting"
)

const (
	eventOrder    = "order"
	eventCheckout = "checkout"
	eventVerify   = "verify"
	eventSubmit   = "submit"
	eventFinish   = "finish"
)

// Notification texts.
const (
	MsgServerError    = "Server error, try again later!!"
	MsgPaymentAborted = "Payment was not completed, please try again"
	MsgVerifyFailed   = "Payment verification failed, please contact support"
	MsgSubmitFailed   = "Failed to submit your application"
	MsgSubmitted      = "Application submitted successfully!!"
	MsgFixErrors      = "Please fix the highlighted fields"
)

// Option customises a Gate.
type Option func(*Gate)

// WithPayments wires the payment backend and checkout used in payment mode.
func WithPayments(api PaymentAPI, checkout Checkout) Option {
	return func(g *Gate) {
		g.payments = api
		g.checkout = checkout
	}
}

// WithNotifier sets where success and failure toasts go.
func WithNotifier(n engine.Notifier) Option {
	return func(g *Gate) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithDialog sets the host dialog hidden before checkout.
func WithDialog(d Dialog) Option {
	return func(g *Gate) { g.dialog = d }
}

// WithTransitionHook observes every state change.
func WithTransitionHook(hook func(from, to string)) Option {
	return func(g *Gate) { g.hook = hook }
}

// Gate runs the submission flow for sessions on their final step.
type Gate struct {
	submitter Submitter
	payments  PaymentAPI
	checkout  Checkout
	notifier  engine.Notifier
	dialog    Dialog
	hook      func(from, to string)

	machine *fsm.FSM
}

type silent struct{}

func (silent) Success(string) {}
func (silent) Error(string)   {}

// New returns an idle Gate.
func New(submitter Submitter, opts ...Option) *Gate {
	g := &Gate{submitter: submitter, notifier: silent{}}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventOrder, Src: []string{StateIdle}, Dst: StateOrdering},
			{Name: eventCheckout, Src: []string{StateOrdering}, Dst: StateCheckout},
			{Name: eventVerify, Src: []string{StateCheckout}, Dst: StateVerifying},
			{Name: eventSubmit, Src: []string{StateIdle, StateVerifying}, Dst: StateSubmitting},
			{Name: eventFinish, Src: []string{StateOrdering, StateCheckout, StateVerifying, StateSubmitting}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if g.hook != nil {
					g.hook(e.Src, e.Dst)
				}
			},
		},
	)
	return g
}

// State returns the current gate state.
func (g *Gate) State() string {
	return g.machine.Current()
}

// Ready reports whether the gate can be triggered.
func (g *Gate) Ready() bool {
	return g.machine.Current() == StateIdle
}

// Trigger runs the submission flow for session. It fails fast with
// ErrInFlight while a previous trigger is still running, so the order and
// submit endpoints are called at most once per trigger. On success the
// session is Reset; on any failure its values are left intact for a retry.
func (g *Gate) Trigger(ctx context.Context, session *engine.Session) (Receipt, error) {
	if !session.IsFinal() {
		return Receipt{}, ErrNotFinal
	}
	sub := session.Definition().Submission
	if sub.Mode == model.SubmissionPayment && (g.payments == nil || g.checkout == nil) {
		return Receipt{}, ErrNoPayments
	}

	start := eventSubmit
	if sub.Mode == model.SubmissionPayment {
		start = eventOrder
	}
	if err := g.machine.Event(ctx, start); err != nil {
		return Receipt{}, ErrInFlight
	}
	defer func() { _ = g.machine.Event(context.Background(), eventFinish) }()

	ok, err := session.ValidateStep(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if !ok {
		g.notifier.Error(MsgFixErrors)
		return Receipt{}, ErrInvalid
	}

	paymentID := ""
	if sub.Mode == model.SubmissionPayment {
		paymentID, err = g.pay(ctx, session, sub)
		if err != nil {
			return Receipt{}, err
		}
		if err := g.machine.Event(ctx, eventSubmit); err != nil {
			return Receipt{}, fmt.Errorf("gate: %w", err)
		}
	}
	return g.submit(ctx, session, sub, paymentID)
}

func (g *Gate) pay(ctx context.Context, session *engine.Session, sub model.Submission) (string, error) {
	if g.dialog != nil {
		g.dialog.Hide()
	}

	order, err := g.payments.CreateOrder(ctx, sub.Amount)
	if err != nil {
		g.notifier.Error(MsgServerError)
		return "", fmt.Errorf("%w: %w", ErrOrder, err)
	}

	if err := g.machine.Event(ctx, eventCheckout); err != nil {
		return "", fmt.Errorf("gate: %w", err)
	}
	result, err := g.checkout.Open(ctx, CheckoutRequest{
		Order:     order,
		Amount:    sub.Amount,
		EventName: sub.EventName,
		Prefill:   prefill(session.Values()),
	})
	if err == nil && result.PaymentID == "" {
		err = ErrMissingPayment
	}
	if err != nil {
		g.notifier.Error(MsgPaymentAborted)
		return "", fmt.Errorf("%w: %w", ErrCheckout, err)
	}

	if err := g.machine.Event(ctx, eventVerify); err != nil {
		return "", fmt.Errorf("gate: %w", err)
	}
	orderID := result.OrderID
	if orderID == "" {
		orderID = order.ID
	}
	if err := g.payments.VerifyPayment(ctx, Verification{
		OrderID:   orderID,
		PaymentID: result.PaymentID,
		Signature: result.Signature,
	}); err != nil {
		g.notifier.Error(MsgVerifyFailed)
		return "", fmt.Errorf("%w: %w", ErrVerify, err)
	}
	return result.PaymentID, nil
}

func (g *Gate) submit(ctx context.Context, session *engine.Session, sub model.Submission, paymentID string) (Receipt, error) {
	payload, err := session.Payload(paymentID)
	if err != nil {
		return Receipt{}, err
	}
	slug := sub.Endpoint
	if slug == "" {
		slug = session.Definition().Slug
	}

	message, err := g.submitter.Submit(ctx, slug, payload)
	if err != nil {
		g.notifier.Error(failureText(err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	if strings.TrimSpace(message) == "" {
		message = MsgSubmitted
	}
	g.notifier.Success(message)
	session.Reset()
	return Receipt{PaymentID: paymentID, Message: message}, nil
}

// failureText prefers a server-provided message when the error carries one.
func failureText(err error) string {
	var described interface{ UserMessage() string }
	if errors.As(err, &described) {
		if msg := strings.TrimSpace(described.UserMessage()); msg != "" {
			return msg
		}
	}
	return MsgSubmitFailed
}

func prefill(values map[string]any) map[string]string {
	out := make(map[string]string, 3)
	for _, key := range []string{"name", "email", "phone"} {
		if text, ok := values[key].(string); ok && strings.TrimSpace(text) != "" {
			out[key] = text
		}
	}
	return out
}
