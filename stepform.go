// Package stepform drives multi-step registration forms from declarative
// definitions: step navigation, conditional fields, repeatable groups and a
// payment-gated submission.
package stepform

import (
	"context"

	"github.com/goliatone/go-stepform/pkg/catalog"
	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
)

// Definition aliases model.Definition for callers that only need the root
// package.
type Definition = model.Definition

// Session is the live state of one form instance.
type Session = engine.Session

// RenderOptions describes per-request rendering overrides such as the form
// action, hidden fields and flash messages.
type RenderOptions = render.RenderOptions

// View is the renderer-facing snapshot of a session's current step.
type View = render.View

// LoadCatalog loads the bundled event definitions.
func LoadCatalog(options ...catalog.Option) (*catalog.Store, error) {
	return catalog.Default(options...)
}

// NewSession starts a session for def on its first step.
func NewSession(def *Definition, options ...engine.Option) (*Session, error) {
	return engine.New(def, options...)
}

// NewGate builds the submission gate for a session's final step.
func NewGate(submitter gate.Submitter, options ...gate.Option) *gate.Gate {
	return gate.New(submitter, options...)
}

// RenderHTML renders the current step of session with the HTML renderer.
// It is the simplest entry point for callers that just want markup.
func RenderHTML(ctx context.Context, session *Session, opts RenderOptions, options ...html.Option) ([]byte, error) {
	view, err := render.NewView(session)
	if err != nil {
		return nil, err
	}
	renderer, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, view, opts)
}
