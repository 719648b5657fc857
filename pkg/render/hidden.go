package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Hidden input names the HTML renderer emits and the server reads back.
const (
	StepInput   = "_step"
	ActionInput = "_action"
	ValuesInput = "_values"
)

// Navigation actions posted by the stepper buttons.
const (
	ActionNext   = "next"
	ActionBack   = "back"
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionSubmit = "submit"
)

// EncodeAction joins an action with its target path, e.g. "remove:coFounders.1".
func EncodeAction(action, target string) string {
	if target == "" {
		return action
	}
	return action + ":" + target
}

// ParseAction splits a posted action value into the action and its target.
// An empty value means ActionNext.
func ParseAction(raw string) (action, target string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ActionNext, ""
	}
	action, target, _ = strings.Cut(raw, ":")
	return action, target
}

// HiddenField is a hidden form input emitted alongside the visible fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token under the
// caller's input name (for example "_csrf").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// StepField records the step the page was rendered for so a post can be
// replayed onto a fresh session.
func StepField(step int) HiddenField {
	return HiddenField{Name: StepInput, Value: strconv.Itoa(step)}
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns fields sorted by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
