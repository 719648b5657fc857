package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/pkg/client"
	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/renderers/tui"
)

func runFill(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	format := fs.String("format", string(tui.OutputFormatJSON), "payload output format: json, form or pretty")
	output := fs.String("output", "", "write the payload to a file (stdout if empty)")
	dryRun := fs.Bool("dry-run", false, "print the payload without submitting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: fill [flags] <slug>")
	}

	store, err := cfg.Catalog()
	if err != nil {
		return err
	}
	def, ok := store.Get(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown form %q", fs.Arg(0))
	}

	var api *client.Client
	if cfg.APIURL != "" {
		if api, err = client.New(client.Config{BaseURL: cfg.APIURL}); err != nil {
			return err
		}
	}

	opts := []tui.Option{
		tui.WithOutputFormat(tui.OutputFormat(*format)),
		tui.WithCheckoutKey(cfg.CheckoutKey),
	}
	var sub *submission
	if api != nil && !*dryRun {
		sub = &submission{api: api}
		opts = append(opts, tui.WithSubmit(sub.trigger))
	} else if !*dryRun {
		log.Printf("%s is not set; the payload will be printed, not submitted", config.EnvAPIURL)
	}
	wizard, err := tui.New(opts...)
	if err != nil {
		return err
	}
	if sub != nil {
		sub.bind(wizard)
	}

	sessionOpts := []engine.Option{engine.WithNotifier(wizard.Notifier())}
	if api != nil {
		sessionOpts = append(sessionOpts, engine.WithOptionsLoader(api))
	}
	if cfg.UploadURL != "" {
		uploader, err := client.NewUploader(client.UploaderConfig{URL: cfg.UploadURL, Preset: cfg.UploadPreset})
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, engine.WithUploader(uploader))
	}
	session, err := engine.New(def, sessionOpts...)
	if err != nil {
		return err
	}
	if api != nil {
		if err := session.LoadOptions(ctx); err != nil {
			log.Printf("load options: %v", err)
		}
	}

	payload, err := wizard.Run(ctx, session)
	if err != nil {
		return err
	}
	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			return err
		}
		fmt.Printf("Payload written to %s\n", *output)
		return nil
	}
	fmt.Println(string(payload))
	return nil
}

// backend is the submission and payment API behind the fill wizard.
type backend interface {
	gate.Submitter
	gate.PaymentAPI
}

// submission holds the one gate every wizard submit goes through.
type submission struct {
	api  backend
	gate *gate.Gate
}

func (s *submission) bind(wizard *tui.Wizard) {
	s.gate = gate.New(s.api,
		gate.WithPayments(s.api, wizard.Checkout()),
		gate.WithNotifier(wizard.Notifier()),
	)
}

func (s *submission) trigger(ctx context.Context, session *engine.Session) (gate.Receipt, error) {
	if s.gate == nil {
		return gate.Receipt{}, errors.New("submission is not bound to a wizard")
	}
	return s.gate.Trigger(ctx, session)
}
