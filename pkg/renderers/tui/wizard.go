package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/widgets"
)

const (
	choiceNext     = "Next"
	choiceBack     = "Back"
	choiceSubmit   = "Submit"
	choiceContinue = "Continue"
)

// Wizard walks a session step by step in the terminal: it prompts each
// visible field, offers Next/Back navigation and runs the submission on the
// final step.
type Wizard struct {
	driver       PromptDriver
	outputFormat OutputFormat
	submit       SubmitFunc
	open         FileOpener
	theme        Theme
	out          io.Writer
	checkoutKey  string
}

// New constructs a wizard with defaults (survey driver, JSON output).
func New(options ...Option) (*Wizard, error) {
	w := &Wizard{
		outputFormat: OutputFormatJSON,
		open:         openLocalFile,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	if w.driver == nil {
		w.driver = newSurveyDriver(w.out)
	}
	return w, nil
}

// Notifier routes session and gate toasts through the prompt driver.
func (w *Wizard) Notifier() engine.Notifier {
	return notifier{w: w}
}

type notifier struct{ w *Wizard }

func (n notifier) Success(message string) { n.w.info(context.Background(), message) }
func (n notifier) Error(message string)   { n.w.fail(context.Background(), message) }

// Run drives session until it is submitted and returns the serialized
// payload. Leaving a step is blocked until its fields validate.
func (w *Wizard) Run(ctx context.Context, session *engine.Session) ([]byte, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		view, err := render.NewView(session)
		if err != nil {
			return nil, err
		}
		w.info(ctx, fmt.Sprintf("%s: %s", view.Progress(), stepHeading(view)))
		if view.Step == 1 && view.Notice != "" {
			w.info(ctx, view.Notice)
		}
		if view.StepDescription != "" {
			w.info(ctx, view.StepDescription)
		}

		if err := w.promptStep(ctx, session); err != nil {
			return nil, err
		}

		choice, err := w.navigate(ctx, view)
		if err != nil {
			return nil, err
		}
		switch choice {
		case choiceBack:
			session.Retreat()
		case choiceNext:
			ok, err := session.Advance(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				w.reportErrors(ctx, session)
			}
		case choiceSubmit:
			out, done, err := w.finish(ctx, session)
			if err != nil || done {
				return out, err
			}
		}
	}
}

func (w *Wizard) navigate(ctx context.Context, view render.View) (string, error) {
	var choices []string
	if view.Final {
		choices = append(choices, choiceSubmit)
	} else {
		choices = append(choices, choiceNext)
	}
	if view.Step > 1 {
		choices = append(choices, choiceBack)
	}
	idx, err := w.driver.Select(ctx, SelectConfig{Message: "What next?", Options: choices})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(choices) {
		return choices[0], nil
	}
	return choices[idx], nil
}

// finish validates the final step and submits. done is false when the user
// should keep editing.
func (w *Wizard) finish(ctx context.Context, session *engine.Session) ([]byte, bool, error) {
	ok, err := session.ValidateStep(ctx)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		w.reportErrors(ctx, session)
		return nil, false, nil
	}

	payload, err := session.Payload("")
	if err != nil {
		return nil, false, err
	}
	if w.submit == nil {
		out, err := w.serialize(payload)
		return out, true, err
	}

	receipt, err := w.submit(ctx, session)
	if err != nil {
		if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
			return nil, true, err
		}
		retry, askErr := w.driver.Confirm(ctx, ConfirmConfig{Message: "Submission failed. Try again?", Default: true})
		if askErr != nil {
			return nil, true, askErr
		}
		if retry {
			return nil, false, nil
		}
		return nil, true, err
	}
	if receipt.PaymentID != "" {
		payload[engine.PaymentIDKey] = receipt.PaymentID
	}
	out, err := w.serialize(payload)
	return out, true, err
}

// promptStep prompts every visible field of the current step once. The view
// is rebuilt after each answer so conditional fields and resized groups show
// up as soon as the answer that drives them is given.
func (w *Wizard) promptStep(ctx context.Context, session *engine.Session) error {
	prompted := make(map[string]bool)
	for {
		view, err := render.NewView(session)
		if err != nil {
			return err
		}
		var next *render.FieldView
		for i := range view.Fields {
			if !prompted[view.Fields[i].Path] {
				next = &view.Fields[i]
				break
			}
		}
		if next == nil {
			return nil
		}
		prompted[next.Path] = true
		if err := w.promptField(ctx, session, *next); err != nil {
			return err
		}
	}
}

func (w *Wizard) promptField(ctx context.Context, session *engine.Session, field render.FieldView) error {
	switch field.Widget {
	case widgets.WidgetFieldset:
		w.info(ctx, field.Label)
		for _, child := range field.Children {
			if err := w.promptField(ctx, session, child); err != nil {
				return err
			}
		}
		return nil
	case widgets.WidgetRepeater:
		return w.promptGroup(ctx, session, field)
	case widgets.WidgetToggle:
		return w.promptToggle(ctx, session, field)
	case widgets.WidgetRadio, widgets.WidgetSelect:
		return w.promptSelect(ctx, session, field)
	case widgets.WidgetMultiSelect:
		return w.promptMulti(ctx, session, field)
	case widgets.WidgetFile:
		return w.promptFile(ctx, session, field)
	case widgets.WidgetTextarea:
		return w.promptText(ctx, session, field, true)
	default:
		return w.promptText(ctx, session, field, false)
	}
}

func (w *Wizard) promptText(ctx context.Context, session *engine.Session, field render.FieldView, multiline bool) error {
	for {
		var (
			response string
			err      error
		)
		if multiline {
			response, err = w.driver.TextArea(ctx, TextAreaConfig{Message: label(field), Default: field.Text, Help: help(field)})
		} else {
			response, err = w.driver.Input(ctx, InputConfig{Message: label(field), Default: field.Text, Help: help(field)})
		}
		if err != nil {
			return err
		}
		if err := session.SetText(field.Path, response); err != nil {
			if errors.Is(err, engine.ErrUnknownField) {
				return err
			}
			w.fail(ctx, fmt.Sprintf("Invalid %s: %v", field.Label, err))
			continue
		}
		return nil
	}
}

func (w *Wizard) promptToggle(ctx context.Context, session *engine.Session, field render.FieldView) error {
	resp, err := w.driver.Confirm(ctx, ConfirmConfig{Message: label(field), Default: field.Checked, Help: help(field)})
	if err != nil {
		return err
	}
	return session.Set(field.Path, resp)
}

func (w *Wizard) promptSelect(ctx context.Context, session *engine.Session, field render.FieldView) error {
	labels, values := optionLists(field.Options)
	if len(labels) == 0 {
		return w.promptText(ctx, session, field, false)
	}
	defaultIdx := -1
	for i, opt := range field.Options {
		if opt.Selected {
			defaultIdx = i
		}
	}
	for {
		idx, err := w.driver.Select(ctx, SelectConfig{
			Message:      label(field),
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         help(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			w.fail(ctx, fmt.Sprintf("Invalid %s selection", field.Label))
			continue
		}
		if err := session.SetText(field.Path, values[idx]); err != nil {
			w.fail(ctx, fmt.Sprintf("Invalid %s: %v", field.Label, err))
			continue
		}
		return nil
	}
}

func (w *Wizard) promptMulti(ctx context.Context, session *engine.Session, field render.FieldView) error {
	labels, values := optionLists(field.Options)
	var defaults []int
	for i, opt := range field.Options {
		if opt.Selected {
			defaults = append(defaults, i)
		}
	}
	indices, err := w.driver.MultiSelect(ctx, SelectConfig{
		Message:  label(field),
		Options:  labels,
		Defaults: defaults,
		Help:     help(field),
	})
	if err != nil {
		return err
	}
	selected := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(values) {
			selected = append(selected, values[idx])
		}
	}
	return session.SetText(field.Path, selected...)
}

func (w *Wizard) promptFile(ctx context.Context, session *engine.Session, field render.FieldView) error {
	message := label(field)
	if field.Accept != "" {
		message += " (" + field.Accept + ")"
	}
	for {
		path, err := w.driver.Input(ctx, InputConfig{
			Message: message,
			Help:    "Path to a local file. Leave blank to keep the current upload.",
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}
		file, closer, err := w.open(path)
		if err != nil {
			w.fail(ctx, fmt.Sprintf("Cannot open %s: %v", path, err))
			continue
		}
		url, err := session.Upload(ctx, field.Path, file)
		if closer != nil {
			_ = closer.Close()
		}
		if err != nil {
			if errors.Is(err, engine.ErrUploaderMissing) {
				return err
			}
			w.fail(ctx, fmt.Sprintf("%s: %v", field.Label, err))
			continue
		}
		w.info(ctx, fmt.Sprintf("Uploaded %s", url))
		return nil
	}
}

// promptGroup fills every member, then for manual groups offers add and
// remove until the user continues. Only members not yet filled are prompted
// after a change.
func (w *Wizard) promptGroup(ctx context.Context, session *engine.Session, field render.FieldView) error {
	filled := 0
	for {
		for _, member := range field.Members {
			if member.Index < filled {
				continue
			}
			w.info(ctx, member.Label)
			for _, child := range member.Fields {
				if err := w.promptField(ctx, session, child); err != nil {
					return err
				}
			}
		}
		filled = len(field.Members)
		if !field.CanAdd && !anyRemovable(field.Members) {
			return nil
		}

		choices := []string{choiceContinue}
		actions := []string{""}
		if field.CanAdd {
			choices = append(choices, "Add "+itemNoun(field))
			actions = append(actions, render.EncodeAction(render.ActionAdd, field.Path))
		}
		for _, member := range field.Members {
			if member.Removable {
				choices = append(choices, "Remove "+member.Label)
				actions = append(actions, render.EncodeAction(render.ActionRemove, fmt.Sprintf("%s.%d", field.Path, member.Index)))
			}
		}
		idx, err := w.driver.Select(ctx, SelectConfig{Message: field.Label, Options: choices})
		if err != nil {
			return err
		}
		if idx <= 0 || idx >= len(actions) {
			return nil
		}

		action, target := render.ParseAction(actions[idx])
		switch action {
		case render.ActionAdd:
			if _, err := session.Append(target); err != nil {
				w.fail(ctx, err.Error())
			}
		case render.ActionRemove:
			group, index := splitMember(target)
			if err := session.Remove(group, index); err != nil {
				w.fail(ctx, err.Error())
			}
			filled = session.Len(group)
		}

		view, err := render.NewView(session)
		if err != nil {
			return err
		}
		refreshed, ok := findField(view.Fields, field.Path)
		if !ok {
			return nil
		}
		field = refreshed
	}
}

func (w *Wizard) reportErrors(ctx context.Context, session *engine.Session) {
	errs := session.Errors()
	paths := make([]string, 0, len(errs))
	for path := range errs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		w.fail(ctx, fmt.Sprintf("%s: %s", path, errs[path]))
	}
}

func (w *Wizard) info(ctx context.Context, msg string) {
	_ = w.driver.Info(ctx, w.theme.InfoPrefix+msg)
}

func (w *Wizard) fail(ctx context.Context, msg string) {
	_ = w.driver.Info(ctx, w.theme.ErrorPrefix+msg)
}

func stepHeading(view render.View) string {
	if view.StepTitle != "" {
		return view.StepTitle
	}
	return view.Title
}

func label(field render.FieldView) string {
	text := field.Label
	if text == "" {
		text = field.Name
	}
	if field.Required {
		text += " *"
	}
	return text
}

func help(field render.FieldView) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Placeholder
}

func optionLists(options []render.OptionView) ([]string, []string) {
	labels := make([]string, 0, len(options))
	values := make([]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, opt.Label)
		values = append(values, opt.Value)
	}
	return labels, values
}

func anyRemovable(members []render.MemberView) bool {
	for _, member := range members {
		if member.Removable {
			return true
		}
	}
	return false
}

func itemNoun(field render.FieldView) string {
	if len(field.Members) > 0 {
		if i := strings.LastIndex(field.Members[0].Label, " "); i > 0 {
			return field.Members[0].Label[:i]
		}
	}
	return field.Label
}

func splitMember(target string) (string, int) {
	i := strings.LastIndex(target, ".")
	if i < 0 {
		return target, -1
	}
	var index int
	if _, err := fmt.Sscanf(target[i+1:], "%d", &index); err != nil {
		return target, -1
	}
	return target[:i], index
}

func findField(fields []render.FieldView, path string) (render.FieldView, bool) {
	for _, field := range fields {
		if field.Path == path {
			return field, true
		}
		if found, ok := findField(field.Children, path); ok {
			return found, true
		}
	}
	return render.FieldView{}, false
}
