package html_test

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
	"github.com/goliatone/go-stepform/pkg/testsupport"
)

func districtSession(t *testing.T) *engine.Session {
	t.Helper()
	return testsupport.MustSession(t, testsupport.MustDefinition(t, "startup-district"))
}

func renderSession(t *testing.T, renderer *html.Renderer, session *engine.Session, opts render.RenderOptions) string {
	t.Helper()
	view, err := render.NewView(session)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	out, err := renderer.Render(testsupport.Context(), view, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func newRenderer(t *testing.T, opts ...html.Option) *html.Renderer {
	t.Helper()
	renderer, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func TestRenderer_FirstStep(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "html" || !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected renderer identity %q %q", renderer.Name(), renderer.ContentType())
	}

	output := renderSession(t, renderer, districtSession(t), render.RenderOptions{Action: "/forms/startup-district"})

	testsupport.AssertContains(t, output,
		`<form class="stepform-form" method="post" action="/forms/startup-district"`,
		`Step 1 of 3`,
		`<li aria-current="step">1</li>`,
		`Rs.625/-`,
		`<h2>Startup Details</h2>`,
		`id="sf-startupName" name="startupName"`,
		`type="email" id="sf-founderEmail"`,
		`type="tel" id="sf-founderPhone"`,
		`name="_step" value="1"`,
		`name="_action" value="next"`,
		`value="add:coFounders" formnovalidate>Add Co-founder</button>`,
	)
	testsupport.AssertNotContains(t, output, `value="back"`, `value="submit"`, `<style>`)
}

func TestRenderer_MembersErrorsAndEscaping(t *testing.T) {
	session := districtSession(t)
	for i := 0; i < 2; i++ {
		if _, err := session.Append("coFounders"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	testsupport.MustSet(t, session, map[string]any{
		"startupName":       `<b>Acme</b>`,
		"coFounders.1.name": "Grace",
	})
	if ok, err := session.ValidateStep(testsupport.Context()); err != nil || ok {
		t.Fatalf("expected invalid step, ok=%v err=%v", ok, err)
	}

	output := renderSession(t, newRenderer(t), session, render.RenderOptions{})

	testsupport.AssertContains(t, output,
		`<legend>Co-founder 1</legend>`,
		`<legend>Co-founder 2</legend>`,
		`name="coFounders.1.name" value="Grace"`,
		`value="remove:coFounders.0"`,
		`value="remove:coFounders.1"`,
		`Co-founder name is required.`,
		`stepform-field stepform-field--invalid`,
		`aria-invalid="true" aria-describedby="sf-coFounders-0-name-error"`,
		`value="&lt;b&gt;Acme&lt;/b&gt;"`,
	)
	testsupport.AssertNotContains(t, output, `<b>Acme</b>`)
}

func TestRenderer_FinalStepAndGate(t *testing.T) {
	session := districtSession(t)
	testsupport.MustSet(t, session, map[string]any{
		"startupName":  "Acme",
		"founderName":  "Ada",
		"founderEmail": "ada@example.com",
		"founderPhone": "9876543210",
	})
	testsupport.MustAdvance(t, session)
	testsupport.MustSet(t, session, map[string]any{
		"aboutCompany": "We build warehouse robots.",
		"sdg":          "SDG 9",
		"startupType":  "Services",
		"sector":       "Robotics",
	})
	testsupport.MustAdvance(t, session)

	renderer := newRenderer(t)
	output := renderSession(t, renderer, session, render.RenderOptions{GateState: "idle"})
	testsupport.AssertContains(t, output,
		`Step 3 of 3`,
		`<li class="done">1</li>`,
		`name="_action" value="back" formnovalidate>Back</button>`,
		`name="_action" value="submit">Pay Rs. 625 and Submit</button>`,
		`<textarea id="sf-productDetails"`,
	)
	testsupport.AssertNotContains(t, output, `value="next"`)

	output = renderSession(t, renderer, session, render.RenderOptions{GateState: "submitting"})
	testsupport.AssertContains(t, output, `value="submit" disabled>`)
}

func TestRenderer_FlashHiddenStylesAndClasses(t *testing.T) {
	renderer := newRenderer(t,
		html.WithDefaultStyles(),
		html.WithClasses(html.Classes{Form: "custom-form sf-ignored"}),
	)
	output := renderSession(t, renderer, districtSession(t), render.RenderOptions{
		Hidden: render.MergeHiddenFields(nil, render.CSRFToken("_csrf", "tok")),
		Flash: []render.Flash{
			{Kind: render.FlashError, Message: "Failed to submit your application"},
		},
	})

	testsupport.AssertContains(t, output,
		`<form class="custom-form"`,
		`<style>.stepform-form{`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`class="stepform-flash stepform-flash--error" role="status">Failed to submit your application</div>`,
	)
	testsupport.AssertNotContains(t, output, "sf-ignored")
}

type stubTemplateRenderer struct {
	names []string
}

func (s *stubTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return s.RenderTemplate(name, data, out...)
}

func (s *stubTemplateRenderer) RenderTemplate(name string, _ any, _ ...io.Writer) (string, error) {
	s.names = append(s.names, name)
	if name == "form" {
		return "custom-output", nil
	}
	return "<component />", nil
}

func (s *stubTemplateRenderer) RenderString(string, any, ...io.Writer) (string, error) {
	return "", nil
}

func (s *stubTemplateRenderer) RegisterFilter(string, func(any, any) (any, error)) error {
	return nil
}

func (s *stubTemplateRenderer) GlobalContext(any) error {
	return nil
}

func TestRenderer_WithTemplateRendererAndOverride(t *testing.T) {
	stub := &stubTemplateRenderer{}
	renderer := newRenderer(t,
		html.WithTemplateRenderer(stub),
		html.WithWidgetTemplate("founderName", "textarea"),
	)

	output := renderSession(t, renderer, districtSession(t), render.RenderOptions{})
	if output != "custom-output" {
		t.Fatalf("expected stub output, got %q", output)
	}

	want := []string{"widgets/input", "field", "widgets/input", "field", "widgets/textarea", "field"}
	if got := stub.names[:len(want)]; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected template sequence %v", stub.names)
	}
	if last := stub.names[len(stub.names)-1]; last != "form" {
		t.Fatalf("expected form template last, got %q", last)
	}
}

func TestRenderer_TemplateFuncs(t *testing.T) {
	translator := render.NewCatalogTranslator(language.English)
	if err := translator.Add("en", map[string]string{"form.next": "Continue"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	files := fstest.MapFS{
		"form.tpl": {Data: []byte(`{{ view.title }}|{{ translate(locale, "form.next") }}`)},
	}
	renderer := newRenderer(t,
		html.WithTemplatesFS(files),
		html.WithTemplateFuncs(render.TemplateI18nFuncs(translator, render.TemplateI18nConfig{})),
	)

	out, err := renderer.Render(testsupport.Context(), render.View{Title: "Path Finder", Step: 1, TotalSteps: 1}, render.RenderOptions{Locale: "en"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "Path Finder|Continue" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAssetsFS(t *testing.T) {
	files := html.AssetsFS()
	if _, err := files.Open(html.StylesheetName); err != nil {
		t.Fatalf("expected embedded stylesheet: %v", err)
	}
}
