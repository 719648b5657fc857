package engine

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-stepform/pkg/model"
)

// PaymentIDKey is the payload key carrying the transaction identifier.
const PaymentIDKey = "paymentId"

var textPolicy = bluemonday.StrictPolicy()

// Payload builds the SubmissionPayload: the values of every field visible on
// any step, with "other" overrides merged, markup stripped from free text and
// paymentID attached when non-empty. The result is a fresh map the caller
// owns.
func (s *Session) Payload(paymentID string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := cloneValues(s.values)
	dropped := applyOverrides(values, s.def.Overrides)

	out := make(map[string]any, len(values))
	for step := 1; step <= s.def.TotalSteps(); step++ {
		fields, err := s.visibleFields(step)
		if err != nil {
			return nil, err
		}
		for _, field := range fields {
			raw, ok := values[field.Name]
			if !ok {
				continue
			}
			out[field.Name] = project(field, raw)
		}
	}
	for _, path := range dropped {
		deletePath(out, path)
	}

	if paymentID != "" {
		out[PaymentIDKey] = paymentID
	}
	return out, nil
}

// applyOverrides merges each non-blank "other" answer into its selection and
// returns the paths of the other fields, which never appear in the payload.
func applyOverrides(values map[string]any, overrides []model.Override) []string {
	dropped := make([]string, 0, len(overrides))
	for _, override := range overrides {
		dropped = append(dropped, override.OtherField)
		other, _ := getPath(values, override.OtherField)
		text, _ := other.(string)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		selection, ok := getPath(values, override.Field)
		if !ok {
			continue
		}
		switch current := selection.(type) {
		case []any:
			merged := make([]any, 0, len(current))
			for _, item := range current {
				if model.OptionKey(item) == override.Sentinel {
					merged = append(merged, text)
					continue
				}
				merged = append(merged, item)
			}
			_ = setPath(values, override.Field, merged)
		default:
			if model.OptionKey(current) == override.Sentinel {
				_ = setPath(values, override.Field, text)
			}
		}
	}
	return dropped
}

func project(field model.Field, raw any) any {
	switch field.Kind {
	case model.FieldKindObject:
		record, ok := raw.(map[string]any)
		if !ok {
			return raw
		}
		out := make(map[string]any, len(field.Nested))
		for _, child := range field.Nested {
			if value, ok := record[child.Name]; ok {
				out[child.Name] = project(child, value)
			}
		}
		return out
	case model.FieldKindGroup:
		members, ok := raw.([]any)
		if !ok {
			return raw
		}
		out := make([]any, 0, len(members))
		for _, member := range members {
			if field.Item == nil {
				out = append(out, member)
				continue
			}
			out = append(out, project(*field.Item, member))
		}
		return out
	case model.FieldKindMultiSelect:
		items, ok := raw.([]any)
		if !ok {
			return raw
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			if text, ok := item.(string); ok {
				out = append(out, sanitize(text))
				continue
			}
			out = append(out, item)
		}
		return out
	case model.FieldKindInteger:
		if text, ok := raw.(string); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
				return n
			}
		}
		return raw
	case model.FieldKindNumber:
		if text, ok := raw.(string); ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
				return n
			}
		}
		return raw
	case model.FieldKindBoolean:
		if text, ok := raw.(string); ok {
			b, _ := strconv.ParseBool(strings.TrimSpace(text))
			return b
		}
		return raw
	default:
		if text, ok := raw.(string); ok {
			return sanitize(text)
		}
		return raw
	}
}

func sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(text)))
}

func deletePath(root map[string]any, path string) {
	segments := model.SplitPath(path)
	parent := root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := parent[segment].(map[string]any)
		if !ok {
			return
		}
		parent = next
	}
	delete(parent, segments[len(segments)-1])
}

// String renders a payload value for logs and summaries.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, String(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
