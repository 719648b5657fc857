package render

import (
	"context"
	"encoding/json"
)

// JSONRenderer emits the localized View as indented JSON, for clients that
// draw the form themselves.
type JSONRenderer struct{}

var _ Renderer = JSONRenderer{}

func (JSONRenderer) Name() string        { return "json" }
func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Render(_ context.Context, view View, opts RenderOptions) ([]byte, error) {
	LocalizeView(&view, opts)
	return json.MarshalIndent(view, "", "  ")
}
