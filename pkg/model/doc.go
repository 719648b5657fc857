// Package model defines the declarative form definitions consumed by the
// stepped form engine. A Definition pairs a field schema with an ordered
// partition of top-level field names into steps, plus the repeaters, guards,
// overrides and submission mode that make up one event application form.
//
// Field kinds are an explicit tagged union (FieldKind) so renderers and the
// validator can map every kind without inspecting schema nodes at runtime.
// Validation rules use canonical identifiers (min/max, minLength/maxLength,
// minItems/maxItems, pattern, format, const) with string parameters, keeping
// definitions stable when serialised to YAML or JSON.
package model
