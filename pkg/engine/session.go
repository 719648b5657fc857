package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/validation"
	"github.com/goliatone/go-stepform/pkg/visibility"
	"github.com/goliatone/go-stepform/pkg/visibility/expr"
)

// Notifier surfaces transient user-facing messages (toasts).
type Notifier interface {
	Success(message string)
	Error(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// Option customises a Session.
type Option func(*Session)

// WithEvaluator overrides the rule evaluator used for VisibleIf and guards.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithValidator overrides the schema validator.
func WithValidator(validator *validation.Validator) Option {
	return func(s *Session) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithUploader configures the file upload service.
func WithUploader(uploader Uploader) Option {
	return func(s *Session) { s.uploader = uploader }
}

// WithOptionsLoader configures the source of remote option lists.
func WithOptionsLoader(loader OptionsLoader) Option {
	return func(s *Session) { s.loader = loader }
}

// WithNotifier configures where upload failures are reported.
func WithNotifier(notifier Notifier) Option {
	return func(s *Session) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithValues seeds initial values on top of field defaults. Seeded values
// become part of the state Reset returns to.
func WithValues(values map[string]any) Option {
	return func(s *Session) { s.seed = values }
}

// Session is the live FormState of one form instance.
type Session struct {
	def       *model.Definition
	evaluator visibility.Evaluator
	validator *validation.Validator
	uploader  Uploader
	loader    OptionsLoader
	notifier  Notifier
	seed      map[string]any

	mu      sync.Mutex
	initial map[string]any
	values  map[string]any
	errors  map[string]string
	step    int
	busy    map[string]bool
	options map[string][]model.Option
}

// New validates def and returns a session positioned on step 1 with every
// field set to its blank default and count-driven groups already sized.
func New(def *model.Definition, opts ...Option) (*Session, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		def:      def,
		notifier: nopNotifier{},
		busy:     make(map[string]bool),
		options:  make(map[string][]model.Option),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.evaluator == nil {
		s.evaluator = expr.New()
	}
	if s.validator == nil {
		s.validator = validation.New()
	}

	values := make(map[string]any, len(def.Fields))
	for _, field := range def.Fields {
		values[field.Name] = model.BlankValue(field)
	}
	s.values = values
	for path, value := range s.seed {
		if rep, ok := def.Repeater(path); ok && rep.CountDriven() {
			// Members are restored as-is; the count field trims them below.
			if err := setPath(s.values, path, deepCopy(value)); err != nil {
				return nil, fmt.Errorf("engine: seed %s: %w", path, err)
			}
			continue
		}
		if err := s.set(path, value); err != nil {
			return nil, fmt.Errorf("engine: seed %s: %w", path, err)
		}
	}
	for _, rep := range def.Repeaters {
		if !rep.CountDriven() {
			if err := s.fillMinimum(rep); err != nil {
				return nil, err
			}
			continue
		}
		if raw, ok := getPath(s.values, rep.CountField); ok && !isBlank(raw) {
			if err := s.resize(rep, raw); err != nil {
				return nil, fmt.Errorf("engine: initial %s: %w", rep.CountField, err)
			}
		}
	}

	s.initial = cloneValues(s.values)
	s.errors = make(map[string]string)
	s.step = 1
	return s, nil
}

// Definition returns the definition the session conforms to.
func (s *Session) Definition() *model.Definition {
	return s.def
}

// Step returns the current 1-based step index.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// TotalSteps returns the fixed number of steps.
func (s *Session) TotalSteps() int {
	return s.def.TotalSteps()
}

// IsFinal reports whether the session is on the last step.
func (s *Session) IsFinal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step == s.def.TotalSteps()
}

// Values returns a deep copy of the current values.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.values)
}

// Get reads the value at a dotted path.
func (s *Session) Get(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := getPath(s.values, path)
	return deepCopy(value), ok
}

// Set writes a value at a dotted path and clears that path's error. Writing a
// repeater's count field resizes the bound group before Set returns; counts
// outside the field's options are rejected and leave the group untouched.
func (s *Session) Set(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(path, value)
}

func (s *Session) set(path string, value any) error {
	field, ok := s.def.Field(path)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, path)
	}

	if rep, ok := s.def.RepeaterForCount(path); ok {
		if !field.HasOption(value) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidCount, path, value)
		}
		if err := setPath(s.values, path, value); err != nil {
			return err
		}
		delete(s.errors, path)
		return s.resize(rep, value)
	}

	if field.Kind == model.FieldKindGroup && path == schemaPath(path) {
		if rep, ok := s.def.Repeater(path); ok && rep.CountDriven() {
			return fmt.Errorf("%w: %s", ErrCountDriven, path)
		}
		value = deepCopy(value)
	}

	if err := setPath(s.values, path, value); err != nil {
		return err
	}
	delete(s.errors, path)
	return nil
}

// Errors returns a copy of the current field errors keyed by dotted path.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// ErrorsFor returns the error attached to path, if any.
func (s *Session) ErrorsFor(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[path]
}

// Reset returns the session to its initial FormState: initial values, step 1,
// no errors. Loaded option lists are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = cloneValues(s.initial)
	s.errors = make(map[string]string)
	s.busy = make(map[string]bool)
	s.step = 1
}

// Busy reports whether an upload is in flight for path.
func (s *Session) Busy(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[path]
}

// SeekStep advances from the current step towards target, validating every
// step on the way, and stops at the first step that fails. It returns the
// step reached. Used to rebuild a session from posted values without
// bypassing validation.
func (s *Session) SeekStep(ctx context.Context, target int) (int, error) {
	for {
		current := s.Step()
		if current >= target || current == s.TotalSteps() {
			return current, nil
		}
		ok, err := s.Advance(ctx)
		if err != nil {
			return s.Step(), err
		}
		if !ok {
			return s.Step(), nil
		}
	}
}
