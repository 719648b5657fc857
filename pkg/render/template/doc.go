// Package template defines the engine-agnostic template interface used by the
// HTML renderer. The pongo subpackage provides the pongo2-backed engine.
package template
