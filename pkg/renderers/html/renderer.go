package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/render"
	rendertemplate "github.com/goliatone/go-stepform/pkg/render/template"
	"github.com/goliatone/go-stepform/pkg/render/template/pongo"
)

// Gate state in which the submit button stays enabled.
const gateIdle = "idle"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	funcs            map[string]any
	overrides        map[string]string
	classes          Classes
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateFuncs exposes helper functions to every template, e.g. the
// result of render.TemplateI18nFuncs.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.funcs[name] = fn
		}
	}
}

// WithWidgetTemplate renders the field at path (a dotted path, its
// index-free form, or a bare field name) with templates/widgets/<name>.tpl.
func WithWidgetTemplate(path, name string) Option {
	return func(cfg *config) {
		path, name = strings.TrimSpace(path), strings.TrimSpace(name)
		if path == "" || name == "" {
			return
		}
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string)
		}
		cfg.overrides[path] = name
	}
}

// WithClasses overrides the chrome CSS classes.
func WithClasses(classes Classes) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithDefaultStyles inlines the embedded stylesheet into the form.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer renders a step View as an HTML form that posts back the
// navigation action, the step index and the field values.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	overrides    map[string]string
	classes      map[string]any
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithFuncs(cfg.funcs),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		overrides:    cfg.overrides,
		classes:      cfg.classes.merged().context(),
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	render.LocalizeView(&view, opts)

	fields := &fieldRenderer{templates: r.templates, overrides: r.overrides, classes: r.classes}
	markup, err := fields.renderAll(view.Fields)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	steps := make([]int, 0, view.TotalSteps)
	for i := 1; i <= view.TotalSteps; i++ {
		steps = append(steps, i)
	}
	hidden := render.MergeHiddenFields(opts.Hidden, render.StepField(view.Step))

	data := map[string]any{
		"view":            view,
		"fields":          markup,
		"steps":           steps,
		"progress":        view.Progress(),
		"classes":         r.classes,
		"action":          opts.Action,
		"locale":          opts.Locale,
		"flash":           render.MergeFlash(opts.Flash),
		"hidden_fields":   render.SortedHiddenFields(hidden),
		"action_input":    render.ActionInput,
		"actions":         map[string]any{"next": render.ActionNext, "back": render.ActionBack, "submit": render.ActionSubmit},
		"submit_label":    submitLabel(view),
		"submit_disabled": opts.GateState != "" && opts.GateState != gateIdle,
	}
	if r.inlineStyles {
		data["stylesheet"] = defaultStylesheet()
	}

	result, err := r.templates.RenderTemplate("form", data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func submitLabel(view render.View) string {
	if view.Mode == model.SubmissionPayment && view.Amount != "" {
		return "Pay Rs. " + view.Amount + " and Submit"
	}
	return "Submit"
}
