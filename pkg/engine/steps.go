package engine

import (
	"context"
	"fmt"

	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/visibility"
)

// VisibleFields returns the fields rendered on step for the current values,
// in step order. Hidden object children are pruned and loaded option lists
// are applied.
func (s *Session) VisibleFields(step int) ([]model.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleFields(step)
}

func (s *Session) visibleFields(step int) ([]model.Field, error) {
	def, ok := s.def.StepAt(step)
	if !ok {
		return nil, fmt.Errorf("engine: step %d out of range [1, %d]", step, s.def.TotalSteps())
	}
	out := make([]model.Field, 0, len(def.Fields))
	for _, name := range def.Fields {
		field, _ := s.def.TopLevel(name)
		pruned, visible, err := s.prune(*field, field.Name, "")
		if err != nil {
			return nil, err
		}
		if visible {
			out = append(out, pruned)
		}
	}
	return out, nil
}

func (s *Session) prune(field model.Field, path, scope string) (model.Field, bool, error) {
	visible, err := s.evaluator.Eval(path, field.VisibleIf, visibility.Context{Values: s.values, Scope: scope})
	if err != nil {
		return model.Field{}, false, fmt.Errorf("engine: visibility of %s: %w", path, err)
	}
	if !visible {
		return model.Field{}, false, nil
	}
	if loaded, ok := s.options[schemaPath(path)]; ok {
		field.Options = loaded
	}

	switch field.Kind {
	case model.FieldKindObject:
		children := make([]model.Field, 0, len(field.Nested))
		for _, child := range field.Nested {
			pruned, ok, err := s.prune(child, path+"."+child.Name, path)
			if err != nil {
				return model.Field{}, false, err
			}
			if ok {
				children = append(children, pruned)
			}
		}
		field.Nested = children
	case model.FieldKindGroup:
		if field.Item != nil {
			item := *field.Item
			item.Nested = append([]model.Field(nil), item.Nested...)
			for i, child := range item.Nested {
				if loaded, ok := s.options[path+"."+child.Name]; ok {
					item.Nested[i].Options = loaded
				}
			}
			field.Item = &item
		}
	}
	return field, true, nil
}

// ValidateStep validates the current step without moving and records the
// resulting field errors. It reports whether the step is valid.
func (s *Session) ValidateStep(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateStep()
}

func (s *Session) validateStep() (bool, error) {
	fields, err := s.visibleFields(s.step)
	if err != nil {
		return false, err
	}
	result, err := s.validator.Validate(fields, s.values)
	if err != nil {
		return false, fmt.Errorf("engine: validate step %d: %w", s.step, err)
	}
	errs := result.ByField()

	step, _ := s.def.StepAt(s.step)
	visible := make(map[string]bool, len(fields))
	for _, field := range fields {
		visible[field.Name] = true
	}
	for _, guard := range step.Guards {
		if !visible[model.SplitPath(guard.Field)[0]] {
			continue
		}
		blocked, err := s.evaluator.Eval(guard.Field, guard.When, visibility.Context{Values: s.values})
		if err != nil {
			return false, fmt.Errorf("engine: guard on %s: %w", guard.Field, err)
		}
		if blocked {
			if _, exists := errs[guard.Field]; !exists {
				errs[guard.Field] = guard.Message
			}
		}
	}

	s.errors = errs
	return len(errs) == 0, nil
}

// Advance validates the visible fields and guards of the current step. On
// success it moves forward one step (staying put on the last step) and
// reports true; on failure the step is unchanged and Errors holds the
// field messages. The returned error is reserved for malformed rules and
// cancelled contexts.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.validateStep()
	if err != nil || !ok {
		return false, err
	}
	if s.step < s.def.TotalSteps() {
		s.step++
	}
	return true, nil
}

// Retreat moves back one step without validation, staying on step 1.
func (s *Session) Retreat() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step > 1 {
		s.step--
	}
	s.errors = make(map[string]string)
	return s.step
}
