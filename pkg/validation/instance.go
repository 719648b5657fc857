package validation

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-stepform/pkg/model"
)

// instance converts form values into the shape the schema expects. Blank
// strings and nil values are dropped so that "required" treats them as
// missing and optional blanks skip their format and pattern checks.
func instance(fields []model.Field, values map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		raw, ok := values[field.Name]
		if !ok {
			continue
		}
		if value, keep := normalize(field, raw); keep {
			out[field.Name] = value
		}
	}
	return out
}

func normalize(field model.Field, raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	switch field.Kind {
	case model.FieldKindObject:
		record, ok := asRecord(raw)
		if !ok {
			return raw, true
		}
		return instance(field.Nested, record), true
	case model.FieldKindGroup:
		items, ok := asList(raw)
		if !ok {
			return raw, true
		}
		var nested []model.Field
		if field.Item != nil {
			nested = field.Item.Nested
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			record, ok := asRecord(item)
			if !ok {
				out = append(out, item)
				continue
			}
			out = append(out, instance(nested, record))
		}
		return out, true
	case model.FieldKindMultiSelect:
		items, ok := asList(raw)
		if !ok {
			if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
				return nil, false
			}
			return raw, true
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, model.OptionKey(item))
		}
		return out, true
	case model.FieldKindNumber, model.FieldKindInteger:
		if s, ok := raw.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, false
			}
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return n, true
			}
			return s, true
		}
		return raw, true
	case model.FieldKindBoolean:
		if s, ok := raw.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "on", "yes", "1":
				return true, true
			case "", "false", "off", "no", "0":
				return false, true
			}
		}
		return raw, true
	default:
		if s, ok := raw.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, false
			}
			return s, true
		}
		switch raw.(type) {
		case map[string]any, []any:
			return raw, true
		}
		return model.OptionKey(raw), true
	}
}

func asRecord(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
