// Package catalog loads form definitions from JSON or YAML files and ships
// the bundled event definitions (startup-cafe, pitch-x, e-cell-awards and the
// rest) as an embedded filesystem.
package catalog
