package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/renderers/tui"
)

type blockingBackend struct {
	mu      sync.Mutex
	orders  int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBackend) CreateOrder(context.Context, string) (gate.Order, error) {
	b.mu.Lock()
	b.orders++
	b.mu.Unlock()
	close(b.entered)
	<-b.release
	return gate.Order{}, errors.New("gateway offline")
}

func (b *blockingBackend) VerifyPayment(context.Context, gate.Verification) error {
	return nil
}

func (b *blockingBackend) Submit(context.Context, string, map[string]any) (string, error) {
	return "", errors.New("submit must not run without payment")
}

func paidSession(t *testing.T) *engine.Session {
	t.Helper()
	def := &model.Definition{
		Slug:       "startup-atlas",
		Fields:     []model.Field{{Name: "name", Kind: model.FieldKindString}},
		Steps:      []model.Step{{Fields: []string{"name"}}},
		Submission: model.Submission{Mode: model.SubmissionPayment, Amount: "625", EventName: "Startup Atlas"},
	}
	session, err := engine.New(def)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func TestSubmissionSharesOneGateAcrossSubmits(t *testing.T) {
	api := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	sub := &submission{api: api}
	wizard, err := tui.New(tui.WithSubmit(sub.trigger), tui.WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	sub.bind(wizard)

	session := paidSession(t)
	first := make(chan error, 1)
	go func() {
		_, err := sub.trigger(context.Background(), session)
		first <- err
	}()
	<-api.entered

	if _, err := sub.trigger(context.Background(), session); !errors.Is(err, gate.ErrInFlight) {
		t.Fatalf("expected ErrInFlight from a second submit, got %v", err)
	}
	close(api.release)
	if err := <-first; !errors.Is(err, gate.ErrOrder) {
		t.Fatalf("expected ErrOrder from the first submit, got %v", err)
	}
	if api.orders != 1 {
		t.Fatalf("expected one order, got %d", api.orders)
	}
}

func TestSubmissionRequiresBind(t *testing.T) {
	sub := &submission{api: &blockingBackend{}}
	if _, err := sub.trigger(context.Background(), paidSession(t)); err == nil {
		t.Fatalf("expected an error before the wizard is bound")
	}
}
