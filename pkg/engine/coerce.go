package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-stepform/pkg/model"
)

// Coerce converts raw text input, as posted by a browser or typed at a
// prompt, into the value type of field. Option-backed kinds resolve to the
// declared option value so YAML integers survive; unknown options are kept
// as text and left to validation. Blank numbers become nil.
func Coerce(field model.Field, raw ...string) (any, error) {
	first := ""
	if len(raw) > 0 {
		first = strings.TrimSpace(raw[0])
	}

	switch field.Kind {
	case model.FieldKindInteger:
		if first == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(first)
		if err != nil {
			return nil, fmt.Errorf("engine: %s is not a whole number: %w", field.Name, err)
		}
		return n, nil
	case model.FieldKindNumber:
		if first == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(first, 64)
		if err != nil {
			return nil, fmt.Errorf("engine: %s is not a number: %w", field.Name, err)
		}
		return f, nil
	case model.FieldKindBoolean:
		switch strings.ToLower(first) {
		case "true", "on", "yes", "1":
			return true, nil
		default:
			return false, nil
		}
	case model.FieldKindMultiSelect:
		out := make([]any, 0, len(raw))
		for _, item := range raw {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, optionValue(field, item))
			}
		}
		return out, nil
	case model.FieldKindEnum, model.FieldKindRadio:
		if first == "" {
			return "", nil
		}
		return optionValue(field, first), nil
	case model.FieldKindObject, model.FieldKindGroup:
		return nil, fmt.Errorf("engine: %s cannot be set from text", field.Name)
	default:
		if len(raw) == 0 {
			return "", nil
		}
		return raw[0], nil
	}
}

func optionValue(field model.Field, key string) any {
	for _, opt := range field.Options {
		if model.OptionKey(opt.Value) == key {
			return opt.Value
		}
	}
	return key
}

// SetText coerces raw text for the field at path and stores it.
func (s *Session) SetText(path string, raw ...string) error {
	field, ok := s.def.Field(path)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, path)
	}
	value, err := Coerce(*field, raw...)
	if err != nil {
		return err
	}
	return s.Set(path, value)
}
