package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
)

func runRender(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	rendererName := fs.String("renderer", "html", "renderer to use: html or json")
	step := fs.Int("step", 1, "step to render; earlier steps must validate with the given values")
	valuesFile := fs.String("values", "", "JSON file with values to seed the form")
	templates := fs.String("templates", "", "directory with template overrides")
	styles := fs.Bool("styles", true, "inline the default stylesheet")
	locale := fs.String("locale", "", "locale passed to the renderer")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: render [flags] <slug>")
	}

	store, err := cfg.Catalog()
	if err != nil {
		return err
	}
	def, ok := store.Get(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown form %q", fs.Arg(0))
	}

	var opts []engine.Option
	if *valuesFile != "" {
		raw, err := os.ReadFile(*valuesFile)
		if err != nil {
			return err
		}
		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("decode %s: %w", *valuesFile, err)
		}
		opts = append(opts, engine.WithValues(values))
	}
	session, err := engine.New(def, opts...)
	if err != nil {
		return err
	}
	if reached, err := session.SeekStep(ctx, *step); err != nil {
		return err
	} else if reached != *step {
		fmt.Fprintf(os.Stderr, "stopped at step %d: %v\n", reached, session.Errors())
	}

	view, err := render.NewView(session)
	if err != nil {
		return err
	}

	htmlOpts := []html.Option{html.WithTemplatesDir(*templates)}
	if *styles {
		htmlOpts = append(htmlOpts, html.WithDefaultStyles())
	}
	htmlRenderer, err := html.New(htmlOpts...)
	if err != nil {
		return err
	}
	registry, err := render.NewRegistry(htmlRenderer, render.JSONRenderer{})
	if err != nil {
		return err
	}
	renderer, err := registry.Get(*rendererName)
	if err != nil {
		return err
	}
	out, err := renderer.Render(ctx, view, render.RenderOptions{
		Action: "/forms/" + def.Slug,
		Locale: *locale,
	})
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			return err
		}
		fmt.Printf("Form written to %s\n", *output)
		return nil
	}
	fmt.Println(string(out))
	return nil
}
