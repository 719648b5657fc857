package tui

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
)

// OutputFormat controls how the submitted payload is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional message prefixes.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitFunc runs the final submission, usually gate.Gate.Trigger.
type SubmitFunc func(ctx context.Context, session *engine.Session) (gate.Receipt, error)

// FileOpener opens a local path for upload. The caller closes the returned
// closer once the upload finishes.
type FileOpener func(path string) (engine.File, io.Closer, error)

// Option configures the wizard.
type Option func(*Wizard)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(w *Wizard) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// WithOutputFormat selects the payload serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(w *Wizard) {
		if format != "" {
			w.outputFormat = format
		}
	}
}

// WithSubmit wires the final submission. Without it Run returns the payload
// without sending it anywhere.
func WithSubmit(fn SubmitFunc) Option {
	return func(w *Wizard) {
		w.submit = fn
	}
}

// WithFileOpener overrides how file paths typed at upload prompts are opened.
func WithFileOpener(open FileOpener) Option {
	return func(w *Wizard) {
		if open != nil {
			w.open = open
		}
	}
}

// WithOutput sets where the default survey driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(w *Wizard) {
		w.out = out
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(w *Wizard) {
		w.theme = theme
	}
}

// WithCheckoutKey sets the gateway key shown at checkout so the payment can
// be completed on the gateway's hosted page.
func WithCheckoutKey(key string) Option {
	return func(w *Wizard) {
		w.checkoutKey = strings.TrimSpace(key)
	}
}

func openLocalFile(path string) (engine.File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.File{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return engine.File{}, nil, err
	}
	return engine.File{
		Name:        info.Name(),
		ContentType: contentType(info.Name()),
		Size:        info.Size(),
		Body:        f,
	}, f, nil
}
