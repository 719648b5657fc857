package html

// Classes are the CSS classes applied to the form chrome. Empty entries fall
// back to the defaults.
type Classes struct {
	Form        string
	Header      string
	Notice      string
	Stepper     string
	Flash       string
	Section     string
	Field       string
	Label       string
	Description string
	Error       string
	Busy        string
	Choices     string
	Upload      string
	Fieldset    string
	Repeater    string
	Member      string
	Actions     string
}

// DefaultClasses mirror the embedded stylesheet.
var DefaultClasses = Classes{
	Form:        "stepform-form",
	Header:      "stepform-header",
	Notice:      "stepform-notice",
	Stepper:     "stepform-stepper",
	Flash:       "stepform-flash",
	Section:     "stepform-section",
	Field:       "stepform-field",
	Label:       "stepform-label",
	Description: "stepform-description",
	Error:       "stepform-error",
	Busy:        "stepform-busy",
	Choices:     "stepform-choices",
	Upload:      "stepform-upload",
	Fieldset:    "stepform-fieldset",
	Repeater:    "stepform-repeater",
	Member:      "stepform-member",
	Actions:     "stepform-actions",
}

func (c Classes) merged() Classes {
	pick := func(value, fallback string) string {
		if value = sanitizeClassList(value); value != "" {
			return value
		}
		return fallback
	}
	d := DefaultClasses
	return Classes{
		Form:        pick(c.Form, d.Form),
		Header:      pick(c.Header, d.Header),
		Notice:      pick(c.Notice, d.Notice),
		Stepper:     pick(c.Stepper, d.Stepper),
		Flash:       pick(c.Flash, d.Flash),
		Section:     pick(c.Section, d.Section),
		Field:       pick(c.Field, d.Field),
		Label:       pick(c.Label, d.Label),
		Description: pick(c.Description, d.Description),
		Error:       pick(c.Error, d.Error),
		Busy:        pick(c.Busy, d.Busy),
		Choices:     pick(c.Choices, d.Choices),
		Upload:      pick(c.Upload, d.Upload),
		Fieldset:    pick(c.Fieldset, d.Fieldset),
		Repeater:    pick(c.Repeater, d.Repeater),
		Member:      pick(c.Member, d.Member),
		Actions:     pick(c.Actions, d.Actions),
	}
}

func (c Classes) context() map[string]any {
	return map[string]any{
		"form":        c.Form,
		"header":      c.Header,
		"notice":      c.Notice,
		"stepper":     c.Stepper,
		"flash":       c.Flash,
		"section":     c.Section,
		"field":       c.Field,
		"label":       c.Label,
		"description": c.Description,
		"error":       c.Error,
		"busy":        c.Busy,
		"choices":     c.Choices,
		"upload":      c.Upload,
		"fieldset":    c.Fieldset,
		"repeater":    c.Repeater,
		"member":      c.Member,
		"actions":     c.Actions,
	}
}
