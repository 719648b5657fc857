package render_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/render"
)

type namedRenderer struct {
	name, contentType string
}

func (n namedRenderer) Name() string        { return n.name }
func (n namedRenderer) ContentType() string { return n.contentType }
func (n namedRenderer) Render(context.Context, render.View, render.RenderOptions) ([]byte, error) {
	return []byte(n.name), nil
}

func TestRegistry(t *testing.T) {
	page := namedRenderer{name: "page", contentType: "text/html; charset=utf-8"}
	registry, err := render.NewRegistry(page, render.JSONRenderer{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if diff := cmp.Diff([]string{"json", "page"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if got, _ := registry.Get(""); got.Name() != "page" {
		t.Fatalf("expected first registered renderer as default, got %q", got.Name())
	}
	if got, err := registry.ForContentType("Application/JSON; charset=utf-8"); err != nil || got.Name() != "json" {
		t.Fatalf("expected json renderer by content type, got %v err=%v", got, err)
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if err := registry.Register(page); !errors.Is(err, render.ErrRendererDuplicate) {
		t.Fatalf("expected ErrRendererDuplicate, got %v", err)
	}
	if _, err := render.NewRegistry(namedRenderer{}); err == nil {
		t.Fatalf("expected error for unnamed renderer")
	}
}

func TestJSONRendererLocalizes(t *testing.T) {
	view, err := render.NewView(newDistrictSession(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	out, err := render.JSONRenderer{}.Render(context.Background(), view, render.RenderOptions{Locale: "ta", Translator: newTranslator(t)})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded render.View
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Fields[0].Label != "நிறுவனத்தின் பெயர்" || decoded.Progress() != "Step 1 of 2" {
		t.Fatalf("unexpected view %+v", decoded)
	}
}
