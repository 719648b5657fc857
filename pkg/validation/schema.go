package validation

import (
	"strconv"

	"github.com/goliatone/go-stepform/pkg/model"
)

const draft2020 = "https://json-schema.org/draft/2020-12/schema"

// buildSchema renders the given fields as a Draft 2020-12 object schema. Only
// the supplied fields are described, so values for any other key are ignored.
func buildSchema(fields []model.Field) map[string]any {
	root := objectSchema(fields)
	root["$schema"] = draft2020
	return root
}

func objectSchema(fields []model.Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]any, 0)
	for _, field := range fields {
		properties[field.Name] = fieldSchema(field)
		if field.Required {
			required = append(required, field.Name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldSchema(field model.Field) map[string]any {
	var out map[string]any
	switch field.Kind {
	case model.FieldKindObject:
		out = objectSchema(field.Nested)
	case model.FieldKindGroup:
		item := map[string]any{"type": "object"}
		if field.Item != nil {
			item = objectSchema(field.Item.Nested)
		}
		out = map[string]any{"type": "array", "items": item}
		if field.Required {
			out["minItems"] = 1
		}
	case model.FieldKindMultiSelect:
		items := map[string]any{"type": "string"}
		if enum := optionEnum(field); enum != nil {
			items["enum"] = enum
		}
		out = map[string]any{"type": "array", "items": items}
		if field.Required {
			out["minItems"] = 1
		}
	case model.FieldKindNumber:
		out = map[string]any{"type": "number"}
	case model.FieldKindInteger:
		out = map[string]any{"type": "integer"}
	case model.FieldKindBoolean:
		out = map[string]any{"type": "boolean"}
		if field.Required {
			// A required checkbox is an acknowledgement and must be ticked.
			out["const"] = true
		}
	case model.FieldKindEmail:
		out = map[string]any{"type": "string", "format": "email"}
	case model.FieldKindURL:
		out = map[string]any{"type": "string", "format": "uri"}
	case model.FieldKindDate:
		out = map[string]any{"type": "string", "format": "date"}
	case model.FieldKindEnum, model.FieldKindRadio:
		out = map[string]any{"type": "string"}
		if enum := optionEnum(field); enum != nil {
			out["enum"] = enum
		}
	default:
		out = map[string]any{"type": "string"}
	}

	for _, rule := range field.Validations {
		applyRule(out, rule)
	}
	return out
}

// optionEnum returns nil for remotely sourced lists, which are advisory.
func optionEnum(field model.Field) []any {
	if len(field.Options) == 0 || field.OptionsSource != "" {
		return nil
	}
	out := make([]any, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, model.OptionKey(opt.Value))
	}
	return out
}

func applyRule(out map[string]any, rule model.ValidationRule) {
	value := rule.Params["value"]
	switch rule.Kind {
	case model.ValidationRuleMin:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			out["minimum"] = n
		}
	case model.ValidationRuleMax:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			out["maximum"] = n
		}
	case model.ValidationRuleMinLength:
		if n, err := strconv.Atoi(value); err == nil {
			out["minLength"] = n
		}
	case model.ValidationRuleMaxLength:
		if n, err := strconv.Atoi(value); err == nil {
			out["maxLength"] = n
		}
	case model.ValidationRuleMinItems:
		if n, err := strconv.Atoi(value); err == nil {
			out["minItems"] = n
		}
	case model.ValidationRuleMaxItems:
		if n, err := strconv.Atoi(value); err == nil {
			out["maxItems"] = n
		}
	case model.ValidationRulePattern:
		if pattern := rule.Params["pattern"]; pattern != "" {
			out["pattern"] = pattern
		}
	case model.ValidationRuleFormat:
		if format := rule.Params["format"]; format != "" {
			out["format"] = format
		}
	case model.ValidationRuleConst:
		out["const"] = value
	}
}

// ruleKindForKeyword maps a JSON Schema keyword back to the rule that set it.
func ruleKindForKeyword(keyword string) string {
	switch keyword {
	case "minimum":
		return model.ValidationRuleMin
	case "maximum":
		return model.ValidationRuleMax
	case "minLength", "maxLength", "minItems", "maxItems", "pattern", "format", "const":
		return keyword
	default:
		return ""
	}
}
