package stepform

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
)

func TestRenderHTMLFromCatalog(t *testing.T) {
	store, err := LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	def, ok := store.Get("path-finder")
	if !ok {
		t.Fatalf("path-finder missing from catalog")
	}
	session, err := NewSession(def)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	out, err := RenderHTML(context.Background(), session, RenderOptions{Action: "/apply"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `action="/apply"`) || !strings.Contains(string(out), "Step 1 of") {
		t.Fatalf("unexpected markup:\n%s", out)
	}

	if g := NewGate(gate.SubmitterFunc(nil)); !g.Ready() {
		t.Fatalf("new gate should be idle, got %q", g.State())
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "form.tpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
	data, err := fs.ReadFile(AssetsFS(), html.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if !strings.Contains(string(data), ".stepform-form") {
		t.Fatalf("stylesheet missing form rules")
	}
}
