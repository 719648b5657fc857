package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TotalSteps reports the fixed number of steps.
func (d *Definition) TotalSteps() int {
	if d == nil {
		return 0
	}
	return len(d.Steps)
}

// StepAt returns the 1-based step, or false when out of range.
func (d *Definition) StepAt(index int) (Step, bool) {
	if d == nil || index < 1 || index > len(d.Steps) {
		return Step{}, false
	}
	return d.Steps[index-1], true
}

// TopLevel returns the top-level field with the given name.
func (d *Definition) TopLevel(name string) (*Field, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Field resolves a dotted path to its schema node. Numeric segments index into
// group fields and resolve to the member schema, so "teamMembers.0.email" and
// "teamMembers.email" both find the member email field.
func (d *Definition) Field(path string) (*Field, bool) {
	if d == nil || path == "" {
		return nil, false
	}
	segments := SplitPath(path)
	current, ok := d.TopLevel(segments[0])
	if !ok {
		return nil, false
	}
	for _, segment := range segments[1:] {
		if current.Kind == FieldKindGroup {
			if current.Item == nil {
				return nil, false
			}
			current = current.Item
			if _, err := strconv.Atoi(segment); err == nil {
				continue
			}
		}
		next, ok := nestedField(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func nestedField(parent *Field, name string) (*Field, bool) {
	for i := range parent.Nested {
		if parent.Nested[i].Name == name {
			return &parent.Nested[i], true
		}
	}
	return nil, false
}

// Repeater returns the repeater bound to the named group field.
func (d *Definition) Repeater(group string) (Repeater, bool) {
	if d == nil {
		return Repeater{}, false
	}
	for _, rep := range d.Repeaters {
		if rep.Field == group {
			return rep, true
		}
	}
	return Repeater{}, false
}

// RepeaterForCount returns the repeater resized by the given count field.
func (d *Definition) RepeaterForCount(countField string) (Repeater, bool) {
	if d == nil || countField == "" {
		return Repeater{}, false
	}
	for _, rep := range d.Repeaters {
		if rep.CountField == countField {
			return rep, true
		}
	}
	return Repeater{}, false
}

// BlankRecord returns a member record with a blank default for every key of
// the group's member schema.
func (d *Definition) BlankRecord(group string) (map[string]any, bool) {
	field, ok := d.Field(group)
	if !ok || field.Kind != FieldKindGroup || field.Item == nil {
		return nil, false
	}
	record, _ := BlankValue(*field.Item).(map[string]any)
	if record == nil {
		record = map[string]any{}
	}
	return record, true
}

// BlankValue returns the blank initial value for a field: its default when
// declared, otherwise the zero value of its kind.
func BlankValue(field Field) any {
	if field.Default != nil {
		return cloneValue(field.Default)
	}
	switch field.Kind {
	case FieldKindObject:
		out := make(map[string]any, len(field.Nested))
		for _, child := range field.Nested {
			out[child.Name] = BlankValue(child)
		}
		return out
	case FieldKindGroup:
		return []any{}
	case FieldKindMultiSelect:
		return []any{}
	case FieldKindBoolean:
		return false
	case FieldKindNumber, FieldKindInteger:
		return nil
	default:
		return ""
	}
}

// OptionValues returns the declared option values in order.
func (f Field) OptionValues() []any {
	if len(f.Options) == 0 {
		return nil
	}
	out := make([]any, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, opt.Value)
	}
	return out
}

// HasOption reports whether value matches one of the declared options. Values
// are compared by their string form so YAML integers match form-posted text.
func (f Field) HasOption(value any) bool {
	needle := OptionKey(value)
	for _, opt := range f.Options {
		if OptionKey(opt.Value) == needle {
			return true
		}
	}
	return false
}

// OptionKey returns the comparable string form of an option value.
func OptionKey(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// SplitPath splits a dotted path into its segments.
func SplitPath(path string) []string {
	return strings.Split(strings.Trim(path, "."), ".")
}

// JoinPath joins path segments, skipping empty ones.
func JoinPath(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ".")
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}

// NoticeText returns the notice with the {amount} placeholder replaced by the
// submission amount.
func (d *Definition) NoticeText() string {
	if d == nil {
		return ""
	}
	return strings.ReplaceAll(d.Notice, "{amount}", d.Submission.Amount)
}
