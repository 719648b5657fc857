// Package validation checks form values against the schema of a restricted
// field set using JSON Schema (Draft 2020-12).
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-stepform/pkg/model"
)

const schemaURL = "https://go-stepform.local/fields.json"

// Issue is one failed constraint, keyed by the dotted field path.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field"`
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of validating one field set.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// ByField returns the first message per field path.
func (r Result) ByField() map[string]string {
	out := make(map[string]string, len(r.Issues))
	for _, issue := range r.Issues {
		if _, exists := out[issue.Field]; !exists {
			out[issue.Field] = issue.Message
		}
	}
	return out
}

// Option customises a Validator.
type Option func(*Validator)

// WithPrinter sets the printer used to localise library messages.
func WithPrinter(printer *message.Printer) Option {
	return func(v *Validator) {
		if printer != nil {
			v.printer = printer
		}
	}
}

// Validator compiles per-field-set schemas and caches them by content.
type Validator struct {
	printer *message.Printer

	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

// New returns a Validator with English messages.
func New(opts ...Option) *Validator {
	v := &Validator{
		printer: message.NewPrinter(language.English),
		cache:   make(map[string]*jsonschema.Schema),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate checks values against fields only. Keys in values that are not
// described by fields are never validated. The error is non-nil only when
// the field set itself cannot be compiled (e.g. a malformed pattern).
func (v *Validator) Validate(fields []model.Field, values map[string]any) (Result, error) {
	schema, err := v.compile(fields)
	if err != nil {
		return Result{}, err
	}

	doc, err := roundTrip(instance(fields, values))
	if err != nil {
		return Result{}, fmt.Errorf("validation: encode values: %w", err)
	}

	verr := schema.Validate(doc)
	if verr == nil {
		return Result{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(verr, &ve) {
		return Result{}, fmt.Errorf("validation: %w", verr)
	}

	issues := v.collect(fields, doc, ve, nil)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return Result{Valid: len(issues) == 0, Issues: dedupe(issues)}, nil
}

func (v *Validator) compile(fields []model.Field) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(buildSchema(fields))
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	key := string(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if cached, ok := v.cache[key]; ok {
		return cached, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: decode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	compiler.AssertFormat()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("validation: add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	v.cache[key] = schema
	return schema, nil
}

func roundTrip(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

func (v *Validator) collect(fields []model.Field, doc any, ve *jsonschema.ValidationError, acc []Issue) []Issue {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			acc = v.collect(fields, doc, cause, acc)
		}
		return acc
	}
	if ve.ErrorKind == nil {
		return acc
	}

	keyword := lastKeyword(ve.ErrorKind.KeywordPath())
	location := append([]string(nil), ve.InstanceLocation...)

	if keyword == "required" {
		for _, missing := range missingRequired(fields, doc, location) {
			path := append(append([]string(nil), location...), missing)
			acc = append(acc, Issue{
				Path:    pointer(path),
				Field:   strings.Join(path, "."),
				Keyword: keyword,
				Message: v.requiredMessage(locate(fields, path)),
			})
		}
		return acc
	}

	field := locate(fields, location)
	return append(acc, Issue{
		Path:    pointer(location),
		Field:   strings.Join(location, "."),
		Keyword: keyword,
		Message: v.message(field, keyword, ve.ErrorKind),
	})
}

func (v *Validator) requiredMessage(field *model.Field) string {
	if field != nil && field.RequiredMsg != "" {
		return field.RequiredMsg
	}
	if field != nil && field.Label != "" {
		return v.printer.Sprintf("%s is required", field.Label)
	}
	return v.printer.Sprintf("This field is required")
}

func (v *Validator) message(field *model.Field, keyword string, kind jsonschema.ErrorKind) string {
	if field != nil {
		if want := ruleKindForKeyword(keyword); want != "" {
			for _, rule := range field.Validations {
				if rule.Kind == want && rule.Message != "" {
					return rule.Message
				}
			}
		}
		if field.Required {
			switch {
			case keyword == "minItems" && !hasRule(field, model.ValidationRuleMinItems):
				return v.requiredMessage(field)
			case keyword == "const" && field.Kind == model.FieldKindBoolean:
				return v.requiredMessage(field)
			}
		}
	}
	return kind.LocalizedString(v.printer)
}

func hasRule(field *model.Field, kind string) bool {
	for _, rule := range field.Validations {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

// missingRequired lists the required children of the object at location that
// are absent from doc.
func missingRequired(fields []model.Field, doc any, location []string) []string {
	var children []model.Field
	if len(location) == 0 {
		children = fields
	} else {
		parent := locate(fields, location)
		if parent == nil {
			return nil
		}
		switch parent.Kind {
		case model.FieldKindObject:
			children = parent.Nested
		case model.FieldKindGroup:
			if parent.Item != nil {
				children = parent.Item.Nested
			}
		}
	}

	record, _ := walk(doc, location).(map[string]any)
	var out []string
	for _, child := range children {
		if !child.Required {
			continue
		}
		if _, ok := record[child.Name]; !ok {
			out = append(out, child.Name)
		}
	}
	return out
}

// locate resolves an instance location against the field set. Numeric
// segments step into group members.
func locate(fields []model.Field, location []string) *model.Field {
	if len(location) == 0 {
		return nil
	}
	current := findField(fields, location[0])
	for _, segment := range location[1:] {
		if current == nil {
			return nil
		}
		if current.Kind == model.FieldKindGroup {
			if _, err := strconv.Atoi(segment); err == nil {
				if current.Item == nil {
					return nil
				}
				current = current.Item
				continue
			}
		}
		current = findField(current.Nested, segment)
	}
	return current
}

func findField(fields []model.Field, name string) *model.Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func walk(doc any, location []string) any {
	current := doc
	for _, segment := range location {
		switch typed := current.(type) {
		case map[string]any:
			current = typed[segment]
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil
			}
			current = typed[idx]
		default:
			return nil
		}
	}
	return current
}

func lastKeyword(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func pointer(location []string) string {
	if len(location) == 0 {
		return ""
	}
	escaped := make([]string, len(location))
	for i, segment := range location {
		segment = strings.ReplaceAll(segment, "~", "~0")
		escaped[i] = strings.ReplaceAll(segment, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}

func dedupe(issues []Issue) []Issue {
	seen := make(map[string]struct{}, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		key := issue.Field + "\x00" + issue.Message
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, issue)
	}
	return out
}
