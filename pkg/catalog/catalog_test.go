package catalog_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/catalog"
	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
)

func TestDefaultLoadsEveryEvent(t *testing.T) {
	store, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}

	var slugs []string
	for _, def := range store.List() {
		slugs = append(slugs, def.Slug)
	}
	want := []string{
		"e-cell-awards",
		"founder-find",
		"gurus-pitch",
		"intern-hunt",
		"path-finder",
		"pitch-x",
		"scholars-spin-off",
		"startup-atlas",
		"startup-cafe",
		"startup-district",
		"startup-mughavari",
	}
	if diff := cmp.Diff(want, slugs); diff != "" {
		t.Fatalf("slugs mismatch (-want +got):\n%s", diff)
	}

	steps := map[string]int{
		"startup-cafe":  3,
		"startup-atlas": 4,
		"e-cell-awards": 6,
		"intern-hunt":   4,
		"path-finder":   2,
	}
	for slug, total := range steps {
		def, ok := store.Get(slug)
		if !ok {
			t.Fatalf("definition %s missing", slug)
		}
		if def.TotalSteps() != total {
			t.Fatalf("%s: total steps = %d, want %d", slug, def.TotalSteps(), total)
		}
	}
}

func TestDefaultDefinitionsStartSessions(t *testing.T) {
	store, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	for _, def := range store.List() {
		if _, err := engine.New(def); err != nil {
			t.Fatalf("%s: new session: %v", def.Slug, err)
		}
	}
}

func TestStartupCafeSeedsOneTeamMember(t *testing.T) {
	store, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	def, _ := store.Get("startup-cafe")
	session, err := engine.New(def)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if got := session.Len("teamMembers"); got != 1 {
		t.Fatalf("team members = %d, want 1", got)
	}
	if err := session.Set("memberCount", "3"); err != nil {
		t.Fatalf("set member count: %v", err)
	}
	if got := session.Len("teamMembers"); got != 3 {
		t.Fatalf("team members = %d, want 3", got)
	}
	if def.NoticeText() == def.Notice {
		t.Fatalf("notice placeholder not substituted: %q", def.NoticeText())
	}
}

func TestLabelsAreDerivedWhenMissing(t *testing.T) {
	store, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	def, _ := store.Get("scholars-spin-off")
	field, ok := def.Field("areaOfResearch")
	if !ok {
		t.Fatalf("areaOfResearch missing")
	}
	if field.Label != "Area Of Research" {
		t.Fatalf("label = %q", field.Label)
	}
}

func TestInternHuntBranchesOnUserType(t *testing.T) {
	store, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	def, _ := store.Get("intern-hunt")
	session, err := engine.New(def)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	names := func() []string {
		fields, err := session.VisibleFields(2)
		if err != nil {
			t.Fatalf("visible fields: %v", err)
		}
		out := make([]string, 0, len(fields))
		for _, field := range fields {
			out = append(out, field.Name)
		}
		return out
	}

	startup := []string{"startupName", "founderName", "designation", "email", "mobile", "website", "location", "industryDomain"}
	if diff := cmp.Diff(startup, names()); diff != "" {
		t.Fatalf("startup fields mismatch (-want +got):\n%s", diff)
	}

	if err := session.Set("userType", "student"); err != nil {
		t.Fatalf("set user type: %v", err)
	}
	student := []string{"fullName", "email", "mobile", "gender", "institutionName", "course", "yearOfStudy", "dateOfBirth"}
	if diff := cmp.Diff(student, names()); diff != "" {
		t.Fatalf("student fields mismatch (-want +got):\n%s", diff)
	}
}

func TestWithAmountsOverridesFee(t *testing.T) {
	store, err := catalog.Default(catalog.WithAmounts(map[string]string{"founder-find": "300", "pitch-x": " "}))
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	def, _ := store.Get("founder-find")
	if def.Submission.Amount != "300" {
		t.Fatalf("amount = %q, want 300", def.Submission.Amount)
	}
	pitch, _ := store.Get("pitch-x")
	if pitch.Submission.Amount != "1250" {
		t.Fatalf("blank override applied: %q", pitch.Submission.Amount)
	}
}

const minimal = `
slug: demo
title: Demo
fields:
  - name: name
    kind: string
    required: true
steps:
  - fields: [name]
submission:
  mode: direct
`

func TestLoadRejectsDuplicateSlugs(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte(minimal)},
		"b.yml":  {Data: []byte(minimal)},
	}
	_, err := catalog.Load(fsys)
	if !errors.Is(err, catalog.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestLoadRejectsBrokenRules(t *testing.T) {
	doc := `
slug: demo
title: Demo
fields:
  - name: name
    kind: string
    visibleIf: role ==
steps:
  - fields: [name]
submission:
  mode: direct
`
	_, err := catalog.Load(fstest.MapFS{"demo.yaml": {Data: []byte(doc)}})
	if !errors.Is(err, catalog.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
}

func TestLoadValidatesDefinitions(t *testing.T) {
	doc := `
slug: demo
fields:
  - name: name
    kind: string
steps:
  - fields: [missing]
submission:
  mode: direct
`
	_, err := catalog.Load(fstest.MapFS{"demo.yaml": {Data: []byte(doc)}})
	if !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestLoadSkipsOtherFilesAndHandlesNil(t *testing.T) {
	store, err := catalog.Load(fstest.MapFS{
		"README.md": {Data: []byte("# notes")},
		"demo.json": {Data: []byte(`{"slug":"demo","fields":[{"name":"name","kind":"string"}],"steps":[{"fields":["name"]}],"submission":{"mode":"direct"}}`)},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 definition, got %d", store.Len())
	}

	empty, err := catalog.Load(nil)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("nil fs: len=%d err=%v", empty.Len(), err)
	}
}

func TestLoadRejectsEmptyFiles(t *testing.T) {
	_, err := catalog.Load(fstest.MapFS{"demo.yaml": {Data: []byte("  \n")}})
	if !errors.Is(err, catalog.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestParseSingleDefinition(t *testing.T) {
	data := []byte(`{"slug":"solo","fields":[{"name":"fullName","kind":"string"}],"steps":[{"fields":["fullName"]}],"submission":{"mode":"direct"}}`)
	def, err := catalog.Parse(data, "solo.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Fields[0].Label != "Full Name" {
		t.Fatalf("expected derived label, got %q", def.Fields[0].Label)
	}

	if _, err := catalog.Parse([]byte("  "), "blank.yaml"); !errors.Is(err, catalog.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}
