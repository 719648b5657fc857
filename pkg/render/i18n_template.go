package render

import (
	"fmt"
	"strings"
)

// TemplateI18nConfig configures the template translation helpers.
type TemplateI18nConfig struct {
	// FuncName renames the translate helper.
	FuncName string
	// OnMissing produces the text for keys that cannot be translated.
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns the "translate" and "current_locale" helpers for
// html.WithTemplateFuncs. Templates call
//
//	{{ translate(locale, "form.next") }}
//
// where locale is a locale string, RenderOptions or a map with a "locale"
// entry. Missing keys render as the key itself unless OnMissing says
// otherwise.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	translate := func(src any, key string, args ...any) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		locale := localeOf(src)
		if t == nil {
			return onMissing(locale, key, args, ErrMissingTranslator)
		}
		msg, err := t.Translate(locale, key, args...)
		if err != nil || strings.TrimSpace(msg) == "" {
			return onMissing(locale, key, args, err)
		}
		return msg
	}

	return map[string]any{
		name:             translate,
		"current_locale": localeOf,
	}
}

func localeOf(src any) string {
	switch v := src.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case RenderOptions:
		return v.Locale
	case *RenderOptions:
		if v == nil {
			return ""
		}
		return v.Locale
	case map[string]string:
		return v["locale"]
	case map[string]any:
		if raw, ok := v["locale"]; ok && raw != nil {
			return strings.TrimSpace(fmt.Sprint(raw))
		}
	}
	return ""
}
