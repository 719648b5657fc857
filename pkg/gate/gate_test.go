package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
)

type fakePayments struct {
	orders       []string
	verification []Verification
	orderErr     error
	verifyErr    error
	onOrder      func()
}

func (f *fakePayments) CreateOrder(_ context.Context, amount string) (Order, error) {
	f.orders = append(f.orders, amount)
	if f.onOrder != nil {
		f.onOrder()
	}
	if f.orderErr != nil {
		return Order{}, f.orderErr
	}
	return Order{ID: "order_1", Amount: 62500, Currency: "INR"}, nil
}

func (f *fakePayments) VerifyPayment(_ context.Context, v Verification) error {
	f.verification = append(f.verification, v)
	return f.verifyErr
}

type notes struct {
	ok, failed []string
}

func (n *notes) Success(msg string) { n.ok = append(n.ok, msg) }
func (n *notes) Error(msg string)   { n.failed = append(n.failed, msg) }

type dialog struct{ hidden int }

func (d *dialog) Hide() { d.hidden++ }

type submission struct {
	slug    string
	payload map[string]any
}

func definition(mode model.SubmissionMode) *model.Definition {
	return &model.Definition{
		Slug: "startup-atlas",
		Fields: []model.Field{
			{Name: "name", Kind: model.FieldKindString, Required: true},
			{Name: "email", Kind: model.FieldKindEmail, Required: true},
		},
		Steps:      []model.Step{{Fields: []string{"name", "email"}}},
		Submission: model.Submission{Mode: mode, Amount: "625", EventName: "Startup Atlas"},
	}
}

func finalSession(t *testing.T, mode model.SubmissionMode) *engine.Session {
	t.Helper()
	s, err := engine.New(definition(mode))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := s.Set("name", "Asha"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("email", "asha@example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}
	return s
}

func recorder(calls *[]submission, err error) Submitter {
	return SubmitterFunc(func(_ context.Context, slug string, payload map[string]any) (string, error) {
		*calls = append(*calls, submission{slug: slug, payload: payload})
		if err != nil {
			return "", err
		}
		return "Registered", nil
	})
}

func TestPaymentFlowUsesGatewayPaymentID(t *testing.T) {
	payments := &fakePayments{}
	var trace []string
	var submitted []submission
	var checkoutSeen []CheckoutRequest
	n := &notes{}
	d := &dialog{}

	checkout := CheckoutFunc(func(_ context.Context, req CheckoutRequest) (PaymentResult, error) {
		if len(payments.orders) != 1 {
			t.Fatalf("checkout opened before order creation")
		}
		checkoutSeen = append(checkoutSeen, req)
		return PaymentResult{PaymentID: "pay_gateway_42", Signature: "sig"}, nil
	})
	g := New(recorder(&submitted, nil),
		WithPayments(payments, checkout),
		WithNotifier(n),
		WithDialog(d),
		WithTransitionHook(func(_, to string) { trace = append(trace, to) }),
	)

	s := finalSession(t, model.SubmissionPayment)
	receipt, err := g.Trigger(context.Background(), s)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}

	if diff := cmp.Diff([]string{"625"}, payments.orders); diff != "" {
		t.Fatalf("order amount mismatch (-want +got):\n%s", diff)
	}
	if d.hidden != 1 {
		t.Fatalf("expected dialog hidden once, got %d", d.hidden)
	}
	if checkoutSeen[0].EventName != "Startup Atlas" || checkoutSeen[0].Order.ID != "order_1" {
		t.Fatalf("unexpected checkout request %#v", checkoutSeen[0])
	}
	wantVerify := []Verification{{OrderID: "order_1", PaymentID: "pay_gateway_42", Signature: "sig"}}
	if diff := cmp.Diff(wantVerify, payments.verification); diff != "" {
		t.Fatalf("verification mismatch (-want +got):\n%s", diff)
	}
	if len(submitted) != 1 || submitted[0].payload["paymentId"] != "pay_gateway_42" {
		t.Fatalf("expected submit with gateway payment id, got %#v", submitted)
	}
	if submitted[0].slug != "startup-atlas" {
		t.Fatalf("unexpected slug %q", submitted[0].slug)
	}
	if receipt.PaymentID != "pay_gateway_42" || receipt.Message != "Registered" {
		t.Fatalf("unexpected receipt %#v", receipt)
	}
	wantTrace := []string{StateOrdering, StateCheckout, StateVerifying, StateSubmitting, StateIdle}
	if diff := cmp.Diff(wantTrace, trace); diff != "" {
		t.Fatalf("state trace mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Registered"}, n.ok); diff != "" {
		t.Fatalf("success toast mismatch (-want +got):\n%s", diff)
	}
	if v, _ := s.Get("name"); v != "" {
		t.Fatalf("expected session reset after success, got name %v", v)
	}
}

func TestDirectFlowSubmitsWithoutPayment(t *testing.T) {
	payments := &fakePayments{}
	var submitted []submission
	checkout := CheckoutFunc(func(context.Context, CheckoutRequest) (PaymentResult, error) {
		t.Fatalf("checkout must not open in direct mode")
		return PaymentResult{}, nil
	})
	g := New(recorder(&submitted, nil), WithPayments(payments, checkout))

	receipt, err := g.Trigger(context.Background(), finalSession(t, model.SubmissionDirect))
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if len(payments.orders) != 0 || len(payments.verification) != 0 {
		t.Fatalf("expected no payment calls, got %#v", payments)
	}
	if _, ok := submitted[0].payload["paymentId"]; ok {
		t.Fatalf("expected empty transaction identifier to be omitted")
	}
	if receipt.PaymentID != "" {
		t.Fatalf("expected empty payment id, got %q", receipt.PaymentID)
	}
}

func TestSecondTriggerWhileInFlightIsRejected(t *testing.T) {
	var (
		g      *Gate
		s      = finalSession(t, model.SubmissionPayment)
		nested error
	)
	payments := &fakePayments{}
	payments.onOrder = func() {
		_, nested = g.Trigger(context.Background(), s)
	}
	checkout := CheckoutFunc(func(context.Context, CheckoutRequest) (PaymentResult, error) {
		return PaymentResult{PaymentID: "pay_1"}, nil
	})
	var submitted []submission
	g = New(recorder(&submitted, nil), WithPayments(payments, checkout))

	if _, err := g.Trigger(context.Background(), s); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if !errors.Is(nested, ErrInFlight) {
		t.Fatalf("expected ErrInFlight for nested trigger, got %v", nested)
	}
	if len(payments.orders) != 1 || len(submitted) != 1 {
		t.Fatalf("expected exactly one order and one submit, got %d and %d", len(payments.orders), len(submitted))
	}
	if !g.Ready() {
		t.Fatalf("expected gate idle after completion, got %s", g.State())
	}
}

func TestFailuresPreserveStateAndSkipSubmit(t *testing.T) {
	cases := []struct {
		name     string
		payments *fakePayments
		checkout Checkout
		want     error
		toast    string
	}{
		{
			name:     "order",
			payments: &fakePayments{orderErr: errors.New("503")},
			checkout: CheckoutFunc(func(context.Context, CheckoutRequest) (PaymentResult, error) { return PaymentResult{PaymentID: "x"}, nil }),
			want:     ErrOrder,
			toast:    MsgServerError,
		},
		{
			name:     "checkout",
			payments: &fakePayments{},
			checkout: CheckoutFunc(func(context.Context, CheckoutRequest) (PaymentResult, error) { return PaymentResult{}, errors.New("dismissed") }),
			want:     ErrCheckout,
			toast:    MsgPaymentAborted,
		},
		{
			name:     "verify",
			payments: &fakePayments{verifyErr: errors.New("bad signature")},
			checkout: CheckoutFunc(func(context.Context, CheckoutRequest) (PaymentResult, error) { return PaymentResult{PaymentID: "x"}, nil }),
			want:     ErrVerify,
			toast:    MsgVerifyFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var submitted []submission
			n := &notes{}
			g := New(recorder(&submitted, nil), WithPayments(tc.payments, tc.checkout), WithNotifier(n))
			s := finalSession(t, model.SubmissionPayment)

			if _, err := g.Trigger(context.Background(), s); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(submitted) != 0 {
				t.Fatalf("submit handler must not run")
			}
			if diff := cmp.Diff([]string{tc.toast}, n.failed); diff != "" {
				t.Fatalf("toast mismatch (-want +got):\n%s", diff)
			}
			if v, _ := s.Get("name"); v != "Asha" {
				t.Fatalf("expected values preserved, got %v", v)
			}
			if !g.Ready() {
				t.Fatalf("expected gate back to idle, got %s", g.State())
			}
		})
	}
}

func TestSubmitFailureKeepsValues(t *testing.T) {
	var submitted []submission
	n := &notes{}
	g := New(recorder(&submitted, errors.New("network down")), WithNotifier(n))
	s := finalSession(t, model.SubmissionDirect)

	if _, err := g.Trigger(context.Background(), s); !errors.Is(err, ErrSubmit) {
		t.Fatalf("expected ErrSubmit, got %v", err)
	}
	if v, _ := s.Get("email"); v != "asha@example.com" {
		t.Fatalf("expected values preserved, got %v", v)
	}
	if diff := cmp.Diff([]string{MsgSubmitFailed}, n.failed); diff != "" {
		t.Fatalf("toast mismatch (-want +got):\n%s", diff)
	}
}

func TestTriggerRequiresValidFinalStep(t *testing.T) {
	var submitted []submission
	g := New(recorder(&submitted, nil))

	s, err := engine.New(definition(model.SubmissionDirect))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := g.Trigger(context.Background(), s); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(submitted) != 0 {
		t.Fatalf("submit must not run with invalid data")
	}
	if s.ErrorsFor("name") == "" {
		t.Fatalf("expected field errors to be surfaced")
	}

	multi := definition(model.SubmissionDirect)
	multi.Steps = []model.Step{{Fields: []string{"name"}}, {Fields: []string{"email"}}}
	s, err = engine.New(multi)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := g.Trigger(context.Background(), s); !errors.Is(err, ErrNotFinal) {
		t.Fatalf("expected ErrNotFinal, got %v", err)
	}
}

func TestPaymentModeRequiresCollaborators(t *testing.T) {
	var submitted []submission
	g := New(recorder(&submitted, nil))
	if _, err := g.Trigger(context.Background(), finalSession(t, model.SubmissionPayment)); !errors.Is(err, ErrNoPayments) {
		t.Fatalf("expected ErrNoPayments, got %v", err)
	}
}
