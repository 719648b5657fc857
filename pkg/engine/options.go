package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-stepform/pkg/model"
)

// OptionsLoader fetches a remote option list identified by source.
type OptionsLoader interface {
	Options(ctx context.Context, source string) ([]model.Option, error)
}

// LoadOptions fetches every field's OptionsSource and merges the result after
// the field's static options, so static entries such as "Other" stay first.
// A failed source keeps the static options; all failures are joined into the
// returned error.
func (s *Session) LoadOptions(ctx context.Context) error {
	if s.loader == nil {
		return ErrOptionsLoaderNil
	}
	var errs []error
	for _, target := range optionSources(s.def.Fields, "") {
		loaded, err := s.loader.Options(ctx, target.field.OptionsSource)
		if err != nil {
			errs = append(errs, fmt.Errorf("engine: options for %s: %w", target.path, err))
			continue
		}
		merged := mergeOptions(target.field.Options, loaded)
		s.mu.Lock()
		s.options[target.path] = merged
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

type sourceTarget struct {
	path  string
	field model.Field
}

func optionSources(fields []model.Field, prefix string) []sourceTarget {
	var out []sourceTarget
	for _, field := range fields {
		path := model.JoinPath(prefix, field.Name)
		if field.OptionsSource != "" {
			out = append(out, sourceTarget{path: path, field: field})
		}
		out = append(out, optionSources(field.Nested, path)...)
		if field.Item != nil {
			out = append(out, optionSources(field.Item.Nested, path)...)
		}
	}
	return out
}

func mergeOptions(static, loaded []model.Option) []model.Option {
	out := make([]model.Option, 0, len(static)+len(loaded))
	seen := make(map[string]struct{}, len(static)+len(loaded))
	for _, group := range [][]model.Option{static, loaded} {
		for _, opt := range group {
			key := model.OptionKey(opt.Value)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, opt)
		}
	}
	return out
}
