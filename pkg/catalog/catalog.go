package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/visibility/expr"
)

var (
	ErrDuplicateSlug = errors.New("catalog: duplicate definition slug")
	ErrEmptyFile     = errors.New("catalog: definition file is empty")
	ErrInvalidRule   = errors.New("catalog: invalid rule")
)

// Option configures Load.
type Option func(*loader)

type loader struct {
	decorators []model.Decorator
	amounts    map[string]string
	checker    *expr.Evaluator
}

// WithDecorators appends decorators run on every definition after parsing and
// before validation. LabelDecorator always runs first.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(l *loader) {
		l.decorators = append(l.decorators, decorators...)
	}
}

// WithAmounts overrides the payment amount per slug. Blank values are
// ignored.
func WithAmounts(amounts map[string]string) Option {
	return func(l *loader) {
		for slug, amount := range amounts {
			slug, amount = strings.TrimSpace(slug), strings.TrimSpace(amount)
			if slug == "" || amount == "" {
				continue
			}
			if l.amounts == nil {
				l.amounts = make(map[string]string)
			}
			l.amounts[slug] = amount
		}
	}
}

func newLoader(opts []Option) *loader {
	l := &loader{checker: expr.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Store holds the loaded definitions keyed by slug. Definitions are shared
// between callers and must be treated as read-only.
type Store struct {
	defs map[string]*model.Definition
}

// Load walks fsys and parses every JSON/YAML file as one definition. A nil
// filesystem yields an empty store.
func Load(fsys fs.FS, opts ...Option) (*Store, error) {
	l := newLoader(opts)

	store := &Store{defs: make(map[string]*model.Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		def, err := parseDefinition(data, path)
		if err != nil {
			return err
		}
		if err := l.prepare(def); err != nil {
			return fmt.Errorf("catalog: %s: %w", path, err)
		}
		if _, exists := store.defs[def.Slug]; exists {
			return fmt.Errorf("%w %q (file %s)", ErrDuplicateSlug, def.Slug, path)
		}
		store.defs[def.Slug] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Default loads the bundled definitions.
func Default(opts ...Option) (*Store, error) {
	return Load(EmbeddedFS(), opts...)
}

// Get returns the definition registered under slug.
func (s *Store) Get(slug string) (*model.Definition, bool) {
	if s == nil {
		return nil, false
	}
	def, ok := s.defs[strings.TrimSpace(slug)]
	return def, ok
}

// List returns every definition ordered by slug.
func (s *Store) List() []*model.Definition {
	if s == nil {
		return nil
	}
	slugs := make([]string, 0, len(s.defs))
	for slug := range s.defs {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	out := make([]*model.Definition, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, s.defs[slug])
	}
	return out
}

// Len reports how many definitions are loaded.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.defs)
}

// Parse decodes one definition (JSON when source ends in .json, YAML
// otherwise) and prepares it the way Load does.
func Parse(data []byte, source string, opts ...Option) (*model.Definition, error) {
	l := newLoader(opts)
	def, err := parseDefinition(data, source)
	if err != nil {
		return nil, err
	}
	if err := l.prepare(def); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", source, err)
	}
	return def, nil
}

func parseDefinition(data []byte, source string) (*model.Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, source)
	}

	var def model.Definition
	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", source, err)
		}
		return &def, nil
	}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", source, err)
	}
	return &def, nil
}

func (l *loader) prepare(def *model.Definition) error {
	decorators := append([]model.Decorator{model.LabelDecorator(nil)}, l.decorators...)
	for _, decorator := range decorators {
		if err := decorator.Decorate(def); err != nil {
			return err
		}
	}
	if amount, ok := l.amounts[def.Slug]; ok {
		def.Submission.Amount = amount
	}
	if err := def.Validate(); err != nil {
		return err
	}
	return l.checkRules(def)
}

// checkRules parses every VisibleIf and guard condition up front so a typo
// fails at load time instead of on the first render.
func (l *loader) checkRules(def *model.Definition) error {
	var errs []error
	var visit func(fields []model.Field, prefix string)
	visit = func(fields []model.Field, prefix string) {
		for _, field := range fields {
			path := model.JoinPath(prefix, field.Name)
			if err := l.checker.Check(field.VisibleIf); err != nil {
				errs = append(errs, fmt.Errorf("%w on %s: %w", ErrInvalidRule, path, err))
			}
			visit(field.Nested, path)
			if field.Item != nil {
				visit(field.Item.Nested, path)
			}
		}
	}
	visit(def.Fields, "")

	for i, step := range def.Steps {
		for _, guard := range step.Guards {
			if err := l.checker.Check(guard.When); err != nil {
				errs = append(errs, fmt.Errorf("%w in step %d guard %s: %w", ErrInvalidRule, i+1, guard.Field, err))
			}
		}
	}
	return errors.Join(errs...)
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
