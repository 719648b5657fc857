// Package engine runs one in-progress form session against a
// model.Definition: it owns the live values, the current step, the per-field
// errors, the group repeaters and in-flight uploads.
//
// A Session is created per form instance and is never shared between users.
// Forward navigation is gated by validation of exactly the fields visible on
// the current step; backward navigation is always allowed. Reset returns the
// session to the state it had right after New.
package engine
