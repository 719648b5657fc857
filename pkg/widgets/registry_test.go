package widgets

import (
	"testing"

	"github.com/goliatone/go-stepform/pkg/model"
)

func options(values ...string) []model.Option {
	out := make([]model.Option, 0, len(values))
	for _, value := range values {
		out = append(out, model.Option{Value: value})
	}
	return out
}

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := model.Field{
		Kind:     model.FieldKindBoolean,
		Metadata: map[string]string{"widget": "radio"},
	}

	if got := reg.Resolve(field, Scope{}); got != WidgetRadio {
		t.Fatalf("expected explicit widget to win, got %q", got)
	}
}

func TestResolve_Builtins(t *testing.T) {
	cases := []struct {
		name   string
		field  model.Field
		scope  Scope
		expect string
	}{
		{name: "string", field: model.Field{Kind: model.FieldKindString}, expect: WidgetText},
		{name: "text", field: model.Field{Kind: model.FieldKindText}, expect: WidgetTextarea},
		{name: "email", field: model.Field{Kind: model.FieldKindEmail}, expect: WidgetEmail},
		{name: "phone", field: model.Field{Kind: model.FieldKindPhone}, expect: WidgetPhone},
		{name: "integer", field: model.Field{Kind: model.FieldKindInteger}, expect: WidgetNumber},
		{name: "boolean", field: model.Field{Kind: model.FieldKindBoolean}, expect: WidgetToggle},
		{name: "file", field: model.Field{Kind: model.FieldKindFile}, expect: WidgetFile},
		{name: "radio", field: model.Field{Kind: model.FieldKindRadio, Options: options("yes", "no")}, expect: WidgetRadio},
		{name: "multiselect", field: model.Field{Kind: model.FieldKindMultiSelect}, expect: WidgetMultiSelect},
		{name: "object", field: model.Field{Kind: model.FieldKindObject}, expect: WidgetFieldset},
		{name: "group", field: model.Field{Kind: model.FieldKindGroup}, expect: WidgetRepeater},
		{
			name:   "top level short enum stays select",
			field:  model.Field{Kind: model.FieldKindEnum, Options: options("a", "b")},
			expect: WidgetSelect,
		},
		{
			name:   "member short enum renders radio",
			field:  model.Field{Kind: model.FieldKindEnum, Options: options("male", "female", "trans-gender")},
			scope:  Scope{Member: true},
			expect: WidgetRadio,
		},
		{
			name:   "member long enum stays select",
			field:  model.Field{Kind: model.FieldKindEnum, Options: options("1", "2", "3", "4")},
			scope:  Scope{Member: true},
			expect: WidgetSelect,
		},
		{
			name:   "member sourced enum stays select",
			field:  model.Field{Kind: model.FieldKindEnum, Options: options("Other"), OptionsSource: "/colleges"},
			scope:  Scope{Member: true},
			expect: WidgetSelect,
		},
		{name: "unknown kind falls back", field: model.Field{Kind: "mystery"}, expect: WidgetText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := For(tc.field, tc.scope); got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestRegister_PriorityAndOrder(t *testing.T) {
	reg := &Registry{}
	reg.Register("first", 10, func(model.Field, Scope) bool { return true })
	reg.Register("second", 10, func(model.Field, Scope) bool { return true })
	reg.Register("high", 20, func(field model.Field, _ Scope) bool { return field.Name == "pick" })

	if got := reg.Resolve(model.Field{Name: "pick"}, Scope{}); got != "high" {
		t.Fatalf("expected high priority match, got %q", got)
	}
	if got := reg.Resolve(model.Field{Name: "other"}, Scope{}); got != "first" {
		t.Fatalf("expected registration order tie-break, got %q", got)
	}
	if got := (&Registry{}).Resolve(model.Field{}, Scope{}); got != WidgetText {
		t.Fatalf("empty registry should fall back to text, got %q", got)
	}
}
