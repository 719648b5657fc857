package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/pkg/catalog"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/widgets"
)

// Metadata keys understood by the renderers.
var metadataKeys = []string{"widget", "titleKey", "labelKey", "descriptionKey", "placeholderKey"}

type violation struct {
	file     string
	location string
	message  string
}

func (v violation) String() string {
	if v.location == "" {
		return fmt.Sprintf("%s: %s", v.file, v.message)
	}
	return fmt.Sprintf("%s: %s -> %s", v.file, v.location, v.message)
}

var errLintFailed = errors.New("definitions have errors")

func runLint(_ context.Context, cfg config.Config, args []string) error {
	flags := flag.NewFlagSet("lint", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	var violations []violation
	if flags.NArg() == 0 {
		embedded, err := lintFS(catalog.EmbeddedFS(), "definitions", cfg)
		if err != nil {
			return err
		}
		violations = embedded
	}
	for _, path := range flags.Args() {
		found, err := lintPath(path, cfg)
		if err != nil {
			return fmt.Errorf("lint %s: %w", path, err)
		}
		violations = append(violations, found...)
	}

	if len(violations) == 0 {
		return nil
	}
	sortViolations(violations)
	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v)
	}
	return fmt.Errorf("%w (%d problems)", errLintFailed, len(violations))
}

func lintPath(path string, cfg config.Config) ([]violation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return lintFS(os.DirFS(path), path, cfg)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return lintFile(path, raw, cfg), nil
}

func lintFS(fsys fs.FS, root string, cfg config.Config) ([]violation, error) {
	var result []violation
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		ext := strings.ToLower(filepath.Ext(path))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		result = append(result, lintFile(filepath.Join(root, path), raw, cfg)...)
		return nil
	})
	return result, err
}

func lintFile(file string, raw []byte, cfg config.Config) []violation {
	def, err := catalog.Parse(raw, file, cfg.CatalogOptions()...)
	if err != nil {
		return []violation{{file: file, message: err.Error()}}
	}

	result := lintMetadata(file, []string{"definition"}, def.Metadata, false)
	for _, field := range def.Fields {
		result = append(result, lintField(file, []string{"fields", field.Name}, field)...)
	}
	if def.Submission.Mode == model.SubmissionPayment && strings.Contains(def.Notice, "{amount}") && def.Submission.Amount == "" {
		result = append(result, violation{file: file, location: "notice", message: "notice refers to {amount} but no amount is set"})
	}
	return result
}

func lintField(file string, path []string, field model.Field) []violation {
	result := lintMetadata(file, path, field.Metadata, true)
	for _, child := range field.Nested {
		result = append(result, lintField(file, appendPath(path, child.Name), child)...)
	}
	if field.Item != nil {
		result = append(result, lintField(file, appendPath(path, "item"), *field.Item)...)
	}
	return result
}

func lintMetadata(file string, path []string, metadata map[string]string, isField bool) []violation {
	if len(metadata) == 0 {
		return nil
	}
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result []violation
	for _, key := range keys {
		value := strings.TrimSpace(metadata[key])
		switch {
		case !contains(metadataKeys, key):
			result = append(result, violation{
				file:     file,
				location: formatLocation(path),
				message:  fmt.Sprintf("unsupported metadata key %q (supported: %s)", key, strings.Join(metadataKeys, ", ")),
			})
		case value == "":
			result = append(result, violation{file: file, location: formatLocation(appendPath(path, key)), message: "value is empty"})
		case key == "widget" && !isField:
			result = append(result, violation{file: file, location: formatLocation(path), message: "widget applies to fields only"})
		case key == "widget" && !contains(widgets.Builtins(), value):
			result = append(result, violation{
				file:     file,
				location: formatLocation(appendPath(path, key)),
				message:  fmt.Sprintf("unknown widget %q (supported: %s)", value, strings.Join(widgets.Builtins(), ", ")),
			})
		}
	}
	return result
}

func sortViolations(violations []violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	next = append(next, segment)
	return next
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
