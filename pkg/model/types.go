package model

// FieldKind is the tagged variant of a form field.
type FieldKind string

const (
	FieldKindString      FieldKind = "string"
	FieldKindText        FieldKind = "text"
	FieldKindEmail       FieldKind = "email"
	FieldKindPhone       FieldKind = "phone"
	FieldKindURL         FieldKind = "url"
	FieldKindNumber      FieldKind = "number"
	FieldKindInteger     FieldKind = "integer"
	FieldKindBoolean     FieldKind = "boolean"
	FieldKindDate        FieldKind = "date"
	FieldKindEnum        FieldKind = "enum"
	FieldKindRadio       FieldKind = "radio"
	FieldKindMultiSelect FieldKind = "multiselect"
	FieldKindFile        FieldKind = "file"
	FieldKindObject      FieldKind = "object"
	FieldKindGroup       FieldKind = "group"
)

// Known reports whether the kind is one of the supported variants.
func (k FieldKind) Known() bool {
	switch k {
	case FieldKindString, FieldKindText, FieldKindEmail, FieldKindPhone, FieldKindURL,
		FieldKindNumber, FieldKindInteger, FieldKindBoolean, FieldKindDate,
		FieldKindEnum, FieldKindRadio, FieldKindMultiSelect, FieldKindFile,
		FieldKindObject, FieldKindGroup:
		return true
	default:
		return false
	}
}

// Textual reports whether values of this kind are strings.
func (k FieldKind) Textual() bool {
	switch k {
	case FieldKindString, FieldKindText, FieldKindEmail, FieldKindPhone, FieldKindURL,
		FieldKindDate, FieldKindEnum, FieldKindRadio, FieldKindFile:
		return true
	default:
		return false
	}
}

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRuleMinItems  = "minItems"
	ValidationRuleMaxItems  = "maxItems"
	ValidationRulePattern   = "pattern"
	ValidationRuleFormat    = "format"
	ValidationRuleConst     = "const"
)

// ValidationRule represents a single constraint applied to a field. Numeric
// thresholds live in Params["value"], patterns in Params["pattern"] and
// formats in Params["format"]. Message, when set, replaces the validator's
// default wording for this rule.
type ValidationRule struct {
	Kind    string            `json:"kind" yaml:"kind"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
}

// Option is one selectable value for enum, radio and multiselect fields.
type Option struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Field models one input. Object fields carry Nested children; group fields
// carry the member schema in Item.
type Field struct {
	Name          string            `json:"name" yaml:"name"`
	Kind          FieldKind         `json:"kind" yaml:"kind"`
	Label         string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder   string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Required      bool              `json:"required,omitempty" yaml:"required,omitempty"`
	RequiredMsg   string            `json:"requiredMessage,omitempty" yaml:"requiredMessage,omitempty"`
	Default       any               `json:"default,omitempty" yaml:"default,omitempty"`
	Options       []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	OptionsSource string            `json:"optionsSource,omitempty" yaml:"optionsSource,omitempty"`
	Validations   []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Nested        []Field           `json:"nested,omitempty" yaml:"nested,omitempty"`
	Item          *Field            `json:"item,omitempty" yaml:"item,omitempty"`
	VisibleIf     string            `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
	Accept        string            `json:"accept,omitempty" yaml:"accept,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Guard is a cross-field check evaluated alongside schema validation. When
// the When rule evaluates to true the step cannot advance and Message is
// attached to Field.
type Guard struct {
	Field   string `json:"field" yaml:"field"`
	When    string `json:"when" yaml:"when"`
	Message string `json:"message" yaml:"message"`
}

// Step lists the top-level field names rendered and validated together.
type Step struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []string `json:"fields" yaml:"fields"`
	Guards      []Guard  `json:"guards,omitempty" yaml:"guards,omitempty"`
}

// Repeater binds a group field to exactly one sizing mechanism: a count
// selector (CountField) or manual add/remove buttons (Manual).
type Repeater struct {
	Field      string `json:"field" yaml:"field"`
	CountField string `json:"countField,omitempty" yaml:"countField,omitempty"`
	Manual     bool   `json:"manual,omitempty" yaml:"manual,omitempty"`
	Min        int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max        int    `json:"max,omitempty" yaml:"max,omitempty"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
}

// CountDriven reports whether the repeater is resized from a count field.
func (r Repeater) CountDriven() bool {
	return r.CountField != ""
}

// Override merges an "other" free-text answer into the selection it refines
// when the submission payload is built. Scalar fields have their sentinel
// value replaced; array fields have the sentinel element replaced.
type Override struct {
	Field      string `json:"field" yaml:"field"`
	Sentinel   string `json:"sentinel" yaml:"sentinel"`
	OtherField string `json:"otherField" yaml:"otherField"`
}

// SubmissionMode selects how the final step submits.
type SubmissionMode string

const (
	SubmissionPayment SubmissionMode = "payment"
	SubmissionDirect  SubmissionMode = "direct"
)

// Submission configures the final-step gate.
type Submission struct {
	Mode      SubmissionMode `json:"mode" yaml:"mode"`
	Amount    string         `json:"amount,omitempty" yaml:"amount,omitempty"`
	EventName string         `json:"eventName,omitempty" yaml:"eventName,omitempty"`
	Endpoint  string         `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// Definition is the static schema and step layout for one application type.
type Definition struct {
	Slug        string            `json:"slug" yaml:"slug"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Notice      string            `json:"notice,omitempty" yaml:"notice,omitempty"`
	Fee         string            `json:"fee,omitempty" yaml:"fee,omitempty"`
	Fields      []Field           `json:"fields" yaml:"fields"`
	Steps       []Step            `json:"steps" yaml:"steps"`
	Repeaters   []Repeater        `json:"repeaters,omitempty" yaml:"repeaters,omitempty"`
	Overrides   []Override        `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Submission  Submission        `json:"submission" yaml:"submission"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
