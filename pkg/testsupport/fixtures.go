package testsupport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-stepform/pkg/catalog"
	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustDefinition returns a definition from the embedded catalog.
func MustDefinition(t *testing.T, slug string) *model.Definition {
	t.Helper()

	store, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	def, ok := store.Get(slug)
	if !ok {
		t.Fatalf("definition %q not in catalog", slug)
	}
	return def
}

// MustSession starts a session for def.
func MustSession(t *testing.T, def *model.Definition, opts ...engine.Option) *engine.Session {
	t.Helper()

	session, err := engine.New(def, opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

// MustSet assigns values by dotted path.
func MustSet(t *testing.T, session *engine.Session, values map[string]any) {
	t.Helper()

	for path, value := range values {
		if err := session.Set(path, value); err != nil {
			t.Fatalf("set %s: %v", path, err)
		}
	}
}

// MustAdvance moves to the next step and fails when validation blocks it.
func MustAdvance(t *testing.T, session *engine.Session) {
	t.Helper()

	ok, err := session.Advance(Context())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !ok {
		t.Fatalf("advance blocked on step %d: %v", session.Step(), session.Errors())
	}
}

// AssertContains fails for every fragment missing from output.
func AssertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

// AssertNotContains fails for every fragment present in output.
func AssertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Errorf("expected output not to contain %q\n%s", fragment, output)
		}
	}
}

// CaptureTemplateOutput runs render against a buffer and returns the result
// alongside what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
