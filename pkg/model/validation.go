package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrSlugMissing         = errors.New("model: definition slug is required")
	ErrNoSteps             = errors.New("model: definition requires at least one step")
	ErrUnknownField        = errors.New("model: unknown field")
	ErrDuplicateField      = errors.New("model: duplicate field")
	ErrInvalidRepeater     = errors.New("model: invalid repeater")
	ErrInvalidOverride     = errors.New("model: invalid override")
	ErrInvalidSubmission   = errors.New("model: invalid submission")
	ErrUnsupportedKind     = errors.New("model: unsupported field kind")
	ErrRepeaterExclusivity = errors.New("model: repeater cannot be both count-driven and manual")
)

// Validate checks the structural invariants of a definition: step fields,
// guards, repeaters and overrides reference schema fields, and the submission
// mode is complete.
func (d *Definition) Validate() error {
	if d == nil {
		return ErrSlugMissing
	}
	if d.Slug == "" {
		return ErrSlugMissing
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSteps, d.Slug)
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for _, field := range d.Fields {
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w %q", ErrDuplicateField, field.Name)
		}
		seen[field.Name] = struct{}{}
		if err := validateField(field, field.Name); err != nil {
			return err
		}
	}

	for i, step := range d.Steps {
		for _, name := range step.Fields {
			if _, ok := d.TopLevel(name); !ok {
				return fmt.Errorf("%w %q in step %d", ErrUnknownField, name, i+1)
			}
		}
		for _, guard := range step.Guards {
			if _, ok := d.Field(guard.Field); !ok {
				return fmt.Errorf("%w %q in step %d guard", ErrUnknownField, guard.Field, i+1)
			}
		}
	}

	groups := make(map[string]struct{}, len(d.Repeaters))
	for _, rep := range d.Repeaters {
		if err := d.validateRepeater(rep); err != nil {
			return err
		}
		if _, dup := groups[rep.Field]; dup {
			return fmt.Errorf("%w: %q bound twice", ErrInvalidRepeater, rep.Field)
		}
		groups[rep.Field] = struct{}{}
	}

	for _, override := range d.Overrides {
		if override.Sentinel == "" {
			return fmt.Errorf("%w: %q has no sentinel", ErrInvalidOverride, override.Field)
		}
		if _, ok := d.Field(override.Field); !ok {
			return fmt.Errorf("%w %q in override", ErrUnknownField, override.Field)
		}
		if _, ok := d.Field(override.OtherField); !ok {
			return fmt.Errorf("%w %q in override", ErrUnknownField, override.OtherField)
		}
	}

	switch d.Submission.Mode {
	case SubmissionPayment:
		if d.Submission.Amount == "" {
			return fmt.Errorf("%w: payment mode requires an amount", ErrInvalidSubmission)
		}
	case SubmissionDirect:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSubmission, d.Submission.Mode)
	}
	return nil
}

func validateField(field Field, path string) error {
	if field.Name == "" {
		return fmt.Errorf("%w: field name is required under %q", ErrUnknownField, path)
	}
	if !field.Kind.Known() {
		return fmt.Errorf("%w %q at %s", ErrUnsupportedKind, field.Kind, path)
	}
	switch field.Kind {
	case FieldKindGroup:
		if field.Item == nil {
			return fmt.Errorf("model: group %s requires a member schema", path)
		}
		for _, child := range field.Item.Nested {
			if err := validateField(child, path+"."+child.Name); err != nil {
				return err
			}
		}
	case FieldKindObject:
		for _, child := range field.Nested {
			if err := validateField(child, path+"."+child.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Definition) validateRepeater(rep Repeater) error {
	group, ok := d.Field(rep.Field)
	if !ok {
		return fmt.Errorf("%w %q in repeater", ErrUnknownField, rep.Field)
	}
	if group.Kind != FieldKindGroup {
		return fmt.Errorf("%w: %q is not a group", ErrInvalidRepeater, rep.Field)
	}
	if rep.CountDriven() && rep.Manual {
		return fmt.Errorf("%w: %q", ErrRepeaterExclusivity, rep.Field)
	}
	if !rep.CountDriven() && !rep.Manual {
		return fmt.Errorf("%w: %q needs a count field or manual mode", ErrInvalidRepeater, rep.Field)
	}
	if rep.Max > 0 && rep.Min > rep.Max {
		return fmt.Errorf("%w: %q min exceeds max", ErrInvalidRepeater, rep.Field)
	}
	if rep.CountDriven() {
		count, ok := d.Field(rep.CountField)
		if !ok {
			return fmt.Errorf("%w %q in repeater", ErrUnknownField, rep.CountField)
		}
		if len(count.Options) == 0 {
			return fmt.Errorf("%w: count field %q must enumerate its options", ErrInvalidRepeater, rep.CountField)
		}
		for _, opt := range count.Options {
			if _, err := ParseCount(opt.Value); err != nil {
				return fmt.Errorf("%w: count field %q: %v", ErrInvalidRepeater, rep.CountField, err)
			}
		}
	}
	return nil
}

// ParseCount converts a count selector value into a non-negative length.
func ParseCount(value any) (int, error) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative count %d", v)
		}
		return v, nil
	case int64:
		return ParseCount(int(v))
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("count %v is not whole", v)
		}
		return ParseCount(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("count %q is not a number", v)
		}
		return ParseCount(n)
	default:
		return 0, fmt.Errorf("unsupported count value %T", value)
	}
}
