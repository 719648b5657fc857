package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-stepform/pkg/gate"
)

// Checkout is a gate.Checkout for terminals. It shows the order and asks
// for the payment reference the gateway issued out of band.
type Checkout struct {
	driver PromptDriver
	theme  Theme
	key    string
}

var _ gate.Checkout = (*Checkout)(nil)

// Checkout returns a terminal checkout sharing the wizard's driver.
func (w *Wizard) Checkout() *Checkout {
	return &Checkout{driver: w.driver, theme: w.theme, key: w.checkoutKey}
}

// Open implements gate.Checkout.
func (c *Checkout) Open(ctx context.Context, req gate.CheckoutRequest) (gate.PaymentResult, error) {
	summary := fmt.Sprintf("Pay Rs. %s for %s (order %s)", req.Amount, req.EventName, req.Order.ID)
	if err := c.driver.Info(ctx, c.theme.InfoPrefix+summary); err != nil {
		return gate.PaymentResult{}, err
	}
	if c.key != "" {
		_ = c.driver.Info(ctx, c.theme.InfoPrefix+"Gateway key: "+c.key)
	}
	for _, key := range []string{"name", "email", "phone"} {
		if value := req.Prefill[key]; value != "" {
			_ = c.driver.Info(ctx, fmt.Sprintf("%s%s: %s", c.theme.InfoPrefix, key, value))
		}
	}

	paid, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Have you completed the payment?"})
	if err != nil {
		return gate.PaymentResult{}, err
	}
	if !paid {
		return gate.PaymentResult{}, ErrCheckoutDismissed
	}

	paymentID, err := c.driver.Input(ctx, InputConfig{
		Message: "Payment ID",
		Validator: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("payment id is required")
			}
			return nil
		},
	})
	if err != nil {
		return gate.PaymentResult{}, err
	}
	signature, err := c.driver.Input(ctx, InputConfig{Message: "Payment signature", Help: "Shown on the gateway receipt."})
	if err != nil {
		return gate.PaymentResult{}, err
	}
	return gate.PaymentResult{
		PaymentID: strings.TrimSpace(paymentID),
		OrderID:   req.Order.ID,
		Signature: strings.TrimSpace(signature),
	}, nil
}
