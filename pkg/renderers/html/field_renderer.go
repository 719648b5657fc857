package html

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/render/template"
	"github.com/goliatone/go-stepform/pkg/widgets"
)

type fieldRenderer struct {
	templates template.TemplateRenderer
	overrides map[string]string
	classes   map[string]any
}

func (r *fieldRenderer) renderAll(fields []render.FieldView) ([]string, error) {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		markup, err := r.render(field)
		if err != nil {
			return nil, err
		}
		out = append(out, markup)
	}
	return out, nil
}

func (r *fieldRenderer) render(field render.FieldView) (string, error) {
	name := r.templateFor(field)
	data := map[string]any{
		"field":        field,
		"id":           controlID(field.Path),
		"classes":      r.classes,
		"action_input": render.ActionInput,
	}
	if kind, ok := inputType(field.Widget); ok {
		data["input_type"] = kind
	} else if name == "input" {
		data["input_type"] = "text"
	}

	switch field.Widget {
	case widgets.WidgetFieldset:
		children, err := r.renderAll(field.Children)
		if err != nil {
			return "", err
		}
		data["children"] = children
	case widgets.WidgetRepeater:
		members := make([]map[string]any, 0, len(field.Members))
		for _, member := range field.Members {
			markup, err := r.renderAll(member.Fields)
			if err != nil {
				return "", err
			}
			members = append(members, map[string]any{
				"index":     member.Index,
				"label":     member.Label,
				"fields":    markup,
				"removable": member.Removable,
				"remove":    render.EncodeAction(render.ActionRemove, fmt.Sprintf("%s.%d", field.Path, member.Index)),
			})
		}
		data["members"] = members
		data["add"] = render.EncodeAction(render.ActionAdd, field.Path)
		data["item_label"] = itemLabel(field)
	}

	control, err := r.templates.RenderTemplate("widgets/"+name, data)
	if err != nil {
		return "", fmt.Errorf("render widget %q for field %q: %w", name, field.Path, err)
	}
	if widgetHandlesChrome(field.Widget) {
		return control, nil
	}

	data["control"] = control
	data["label_for"] = labelSupportsFor(field.Widget)
	markup, err := r.templates.RenderTemplate("field", data)
	if err != nil {
		return "", fmt.Errorf("render chrome for field %q: %w", field.Path, err)
	}
	return markup, nil
}

func (r *fieldRenderer) templateFor(field render.FieldView) string {
	for _, key := range []string{field.Path, schemaPath(field.Path), field.Name} {
		if name, ok := r.overrides[key]; ok {
			return name
		}
	}
	if _, ok := inputType(field.Widget); ok {
		return "input"
	}
	switch field.Widget {
	case widgets.WidgetTextarea, widgets.WidgetToggle, widgets.WidgetRadio, widgets.WidgetSelect,
		widgets.WidgetMultiSelect, widgets.WidgetFile, widgets.WidgetFieldset, widgets.WidgetRepeater:
		return field.Widget
	default:
		return "input"
	}
}

// schemaPath drops member indices: "coFounders.1.name" -> "coFounders.name".
func schemaPath(path string) string {
	parts := strings.Split(path, ".")
	keep := parts[:0]
	for _, part := range parts {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			continue
		}
		keep = append(keep, part)
	}
	return strings.Join(keep, ".")
}

// itemLabel is the singular noun on the add button: the first member label
// without its number, else the group label.
func itemLabel(field render.FieldView) string {
	if len(field.Members) > 0 {
		label := field.Members[0].Label
		if i := strings.LastIndex(label, " "); i > 0 {
			return label[:i]
		}
	}
	return field.Label
}
