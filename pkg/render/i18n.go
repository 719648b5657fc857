package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Metadata keys a field or definition uses to point at translation keys.
const (
	titleKeyHint       = "titleKey"
	labelKeyHint       = "labelKey"
	descriptionKeyHint = "descriptionKey"
	placeholderKeyHint = "placeholderKey"
)

var (
	// ErrMissingTranslator is passed to MissingTranslationHandler when a key
	// is present but no Translator was configured.
	ErrMissingTranslator = errors.New("render: translator not configured")
	// ErrMissingTranslation reports a key absent from the catalog.
	ErrMissingTranslation = errors.New("render: missing translation")
)

// Translator resolves a translation key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when key cannot be
// translated. args carries a map with the literal "default" text when one
// exists.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if m, ok := arg.(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// LocalizeView translates the view in place using the *Key metadata of the
// definition and its fields. Literal text is kept as the fallback.
func LocalizeView(view *View, opts RenderOptions) {
	if view == nil {
		return
	}
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if key := view.Metadata[titleKeyHint]; key != "" {
		view.Title = translate(opts.Locale, key, view.Title, opts.Translator, onMissing)
	}
	if key := view.Metadata[descriptionKeyHint]; key != "" {
		view.Description = translate(opts.Locale, key, view.Description, opts.Translator, onMissing)
	}
	for i := range view.Fields {
		localizeField(&view.Fields[i], opts.Locale, opts.Translator, onMissing)
	}
}

func localizeField(field *FieldView, locale string, t Translator, onMissing MissingTranslationHandler) {
	if key := field.Metadata[labelKeyHint]; key != "" {
		field.Label = translate(locale, key, field.Label, t, onMissing)
	}
	if key := field.Metadata[descriptionKeyHint]; key != "" {
		field.Description = translate(locale, key, field.Description, t, onMissing)
	}
	if key := field.Metadata[placeholderKeyHint]; key != "" {
		field.Placeholder = translate(locale, key, field.Placeholder, t, onMissing)
	}
	for i := range field.Children {
		localizeField(&field.Children[i], locale, t, onMissing)
	}
	for m := range field.Members {
		for i := range field.Members[m].Fields {
			localizeField(&field.Members[m].Fields[i], locale, t, onMissing)
		}
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	args := []any{map[string]any{"default": fallback}}
	if t == nil {
		return onMissing(locale, key, args, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, args, err)
}

// CatalogTranslator is a Translator backed by an x/text message catalog.
// Messages use fmt verbs for arguments. Unknown locales fall back to the
// closest registered language, then to the fallback language.
type CatalogTranslator struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	fallback language.Tag
	keys     map[language.Tag]map[string]struct{}
	langs    []language.Tag
	matcher  language.Matcher
}

// NewCatalogTranslator returns an empty translator that falls back to
// fallback, e.g. language.English.
func NewCatalogTranslator(fallback language.Tag) *CatalogTranslator {
	return &CatalogTranslator{
		builder:  catalog.NewBuilder(catalog.Fallback(fallback)),
		fallback: fallback,
		keys:     make(map[language.Tag]map[string]struct{}),
	}
}

// Add registers messages for locale.
func (c *CatalogTranslator) Add(locale string, messages map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("render: parse locale %q: %w", locale, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[tag]; !ok {
		c.keys[tag] = make(map[string]struct{}, len(messages))
		c.langs = append(c.langs, tag)
		c.matcher = language.NewMatcher(c.langs)
	}
	for key, msg := range messages {
		if err := c.builder.SetString(tag, key, msg); err != nil {
			return fmt.Errorf("render: set %s/%s: %w", locale, key, err)
		}
		c.keys[tag][key] = struct{}{}
	}
	return nil
}

// Translate implements Translator.
func (c *CatalogTranslator) Translate(locale, key string, args ...any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tag := c.resolve(locale)
	if _, ok := c.keys[tag][key]; !ok {
		if _, ok := c.keys[c.fallback][key]; !ok {
			return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
		}
		tag = c.fallback
	}
	printer := message.NewPrinter(tag, message.Catalog(c.builder))
	return printer.Sprintf(key, args...), nil
}

func (c *CatalogTranslator) resolve(locale string) language.Tag {
	if c.matcher == nil {
		return c.fallback
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return c.fallback
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return c.fallback
	}
	return c.langs[index]
}
