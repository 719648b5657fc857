package render_test

import (
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/goliatone/go-stepform/pkg/render"
)

func newTranslator(t *testing.T) *render.CatalogTranslator {
	t.Helper()
	tr := render.NewCatalogTranslator(language.English)
	if err := tr.Add("en", map[string]string{
		"startup.name": "Startup name",
		"greeting":     "Hello %s",
	}); err != nil {
		t.Fatalf("add en: %v", err)
	}
	if err := tr.Add("ta", map[string]string{"startup.name": "நிறுவனத்தின் பெயர்"}); err != nil {
		t.Fatalf("add ta: %v", err)
	}
	return tr
}

func TestCatalogTranslator(t *testing.T) {
	tr := newTranslator(t)

	got, err := tr.Translate("ta-IN", "startup.name")
	if err != nil || got != "நிறுவனத்தின் பெயர்" {
		t.Fatalf("expected tamil label, got %q err=%v", got, err)
	}
	got, err = tr.Translate("ta", "greeting", "Ada")
	if err != nil || got != "Hello Ada" {
		t.Fatalf("expected english fallback with args, got %q err=%v", got, err)
	}
	if _, err := tr.Translate("en", "missing.key"); !errors.Is(err, render.ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
	if err := tr.Add("not a locale!", nil); err == nil {
		t.Fatalf("expected parse error for invalid locale")
	}
}

func TestLocalizeView(t *testing.T) {
	view, err := render.NewView(newDistrictSession(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}

	render.LocalizeView(&view, render.RenderOptions{Locale: "ta", Translator: newTranslator(t)})
	if view.Fields[0].Label != "நிறுவனத்தின் பெயர்" {
		t.Fatalf("expected translated label, got %q", view.Fields[0].Label)
	}
	if view.Fields[1].Label != "Stage" {
		t.Fatalf("fields without keys must keep their label, got %q", view.Fields[1].Label)
	}
}

func TestLocalizeViewMissingTranslator(t *testing.T) {
	view, err := render.NewView(newDistrictSession(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}

	var gotErr error
	render.LocalizeView(&view, render.RenderOptions{
		OnMissing: func(_ string, key string, _ []any, err error) string {
			gotErr = err
			return "[" + key + "]"
		},
	})
	if view.Fields[0].Label != "[startup.name]" {
		t.Fatalf("expected handler output, got %q", view.Fields[0].Label)
	}
	if !errors.Is(gotErr, render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", gotErr)
	}

	view, _ = render.NewView(newDistrictSession(t))
	render.LocalizeView(&view, render.RenderOptions{})
	if view.Fields[0].Label != "Startup Name" {
		t.Fatalf("default handler should keep literal label, got %q", view.Fields[0].Label)
	}
}

func TestTemplateI18nFuncs(t *testing.T) {
	funcs := render.TemplateI18nFuncs(newTranslator(t), render.TemplateI18nConfig{})
	translate := funcs["translate"].(func(any, string, ...any) string)
	if got := translate(map[string]any{"locale": "en"}, "greeting", "Ada"); got != "Hello Ada" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := translate("en", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	current := funcs["current_locale"].(func(any) string)
	if got := current(map[string]string{"locale": "ta"}); got != "ta" {
		t.Fatalf("unexpected locale %q", got)
	}
	if got := translate(render.RenderOptions{Locale: "ta"}, "startup.name"); got != "நிறுவனத்தின் பெயர்" {
		t.Fatalf("expected locale from render options, got %q", got)
	}
	if got := current(42); got != "" {
		t.Fatalf("expected no locale for unsupported source, got %q", got)
	}
}

func TestMergeFlash(t *testing.T) {
	got := render.MergeFlash(
		[]render.Flash{{Kind: render.FlashError, Message: " Failed "}},
		render.Flash{Kind: render.FlashError, Message: "Failed"},
		render.Flash{Kind: render.FlashSuccess, Message: " "},
	)
	if len(got) != 1 || got[0].Message != "Failed" {
		t.Fatalf("unexpected flashes %+v", got)
	}
	if render.MergeFlash(nil) != nil {
		t.Fatalf("expected nil for no flashes")
	}
}
