package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-stepform/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText        = "text"
	WidgetTextarea    = "textarea"
	WidgetEmail       = "email"
	WidgetPhone       = "tel"
	WidgetURL         = "url"
	WidgetNumber      = "number"
	WidgetDate        = "date"
	WidgetToggle      = "toggle"
	WidgetRadio       = "radio"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multiselect"
	WidgetFile        = "file"
	WidgetFieldset    = "fieldset"
	WidgetRepeater    = "repeater"
)

// compactChoices is the largest option count rendered as radio buttons inside
// a group member card.
const compactChoices = 3

// Scope describes where a field is rendered.
type Scope struct {
	// Member is true for fields rendered inside a group member card.
	Member bool
}

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field, scope Scope) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit metadata or
// registered matchers. Higher priority wins; ties fall back to registration
// order. Fields no matcher claims render as plain text inputs.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

var defaultRegistry = NewRegistry()

// For resolves field with the built-in registry.
func For(field model.Field, scope Scope) string {
	return defaultRegistry.Resolve(field, scope)
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Metadata["widget"] is honoured
// before matcher evaluation.
func (r *Registry) Resolve(field model.Field, scope Scope) string {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit
	}
	if r == nil {
		return WidgetText
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field, scope) {
			return entry.name
		}
	}
	return WidgetText
}

func explicitWidget(field model.Field) string {
	if field.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(field.Metadata["widget"])
}

func kindIs(kinds ...model.FieldKind) Matcher {
	return func(field model.Field, _ Scope) bool {
		for _, kind := range kinds {
			if field.Kind == kind {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	// Member cards keep short enums inline.
	r.Register(WidgetRadio, 100, func(field model.Field, scope Scope) bool {
		return scope.Member && field.Kind == model.FieldKindEnum &&
			field.OptionsSource == "" && len(field.Options) > 0 && len(field.Options) <= compactChoices
	})
	r.Register(WidgetRepeater, 90, kindIs(model.FieldKindGroup))
	r.Register(WidgetFieldset, 90, kindIs(model.FieldKindObject))
	r.Register(WidgetMultiSelect, 80, kindIs(model.FieldKindMultiSelect))
	r.Register(WidgetRadio, 80, kindIs(model.FieldKindRadio))
	r.Register(WidgetSelect, 70, kindIs(model.FieldKindEnum))
	r.Register(WidgetToggle, 70, kindIs(model.FieldKindBoolean))
	r.Register(WidgetFile, 70, kindIs(model.FieldKindFile))
	r.Register(WidgetTextarea, 60, kindIs(model.FieldKindText))
	r.Register(WidgetEmail, 60, kindIs(model.FieldKindEmail))
	r.Register(WidgetPhone, 60, kindIs(model.FieldKindPhone))
	r.Register(WidgetURL, 60, kindIs(model.FieldKindURL))
	r.Register(WidgetNumber, 60, kindIs(model.FieldKindNumber, model.FieldKindInteger))
	r.Register(WidgetDate, 60, kindIs(model.FieldKindDate))
}

// Builtins returns the built-in widget identifiers, sorted.
func Builtins() []string {
	names := []string{
		WidgetText, WidgetTextarea, WidgetEmail, WidgetPhone, WidgetURL,
		WidgetNumber, WidgetDate, WidgetToggle, WidgetRadio, WidgetSelect,
		WidgetMultiSelect, WidgetFile, WidgetFieldset, WidgetRepeater,
	}
	sort.Strings(names)
	return names
}
