package render

import "strings"

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notification shown above the form, the server-side
// equivalent of a toast.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RenderOptions describe per-request data renderers use to customise their
// output without touching the session.
type RenderOptions struct {
	// Action is the URL the HTML form posts to.
	Action string
	// Hidden carries extra hidden inputs such as CSRF tokens.
	Hidden map[string]string
	// Flash lists notifications for this response.
	Flash []Flash
	// GateState is the submission gate state; anything other than "idle"
	// disables the submit button.
	GateState string
	// Locale selects translations for fields carrying *Key metadata.
	Locale string
	// Translator resolves translation keys. Nil keeps the literal labels.
	Translator Translator
	// OnMissing decides the text used when a translation is missing.
	OnMissing MissingTranslationHandler
}

// MergeFlash appends notifications, dropping blanks and exact duplicates
// while preserving order.
func MergeFlash(existing []Flash, extras ...Flash) []Flash {
	out := make([]Flash, 0, len(existing)+len(extras))
	seen := make(map[Flash]struct{}, len(existing)+len(extras))
	for _, group := range [][]Flash{existing, extras} {
		for _, flash := range group {
			flash.Message = strings.TrimSpace(flash.Message)
			if flash.Message == "" {
				continue
			}
			if _, dup := seen[flash]; dup {
				continue
			}
			seen[flash] = struct{}{}
			out = append(out, flash)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
