package render

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/widgets"
)

// View is a render-ready snapshot of a session's current step.
type View struct {
	Slug            string               `json:"slug"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Notice          string               `json:"notice,omitempty"`
	Step            int                  `json:"step"`
	TotalSteps      int                  `json:"total_steps"`
	StepTitle       string               `json:"step_title,omitempty"`
	StepDescription string               `json:"step_description,omitempty"`
	Final           bool                 `json:"final"`
	Mode            model.SubmissionMode `json:"mode"`
	Amount          string               `json:"amount,omitempty"`
	EventName       string               `json:"event_name,omitempty"`
	Fields          []FieldView          `json:"fields"`
	Metadata        map[string]string    `json:"metadata,omitempty"`
}

// Progress returns the stepper caption, e.g. "Step 2 of 3".
func (v View) Progress() string {
	return fmt.Sprintf("Step %d of %d", v.Step, v.TotalSteps)
}

// OptionView is one choice of a select, radio or multiselect widget.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// MemberView is one record of a group.
type MemberView struct {
	Index     int         `json:"index"`
	Label     string      `json:"label"`
	Fields    []FieldView `json:"fields"`
	Removable bool        `json:"removable"`
}

// FieldView is a field resolved against the session: value, error, widget
// and options.
type FieldView struct {
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Kind        model.FieldKind   `json:"kind"`
	Label       string            `json:"label"`
	Widget      string            `json:"widget"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Accept      string            `json:"accept,omitempty"`
	Required    bool              `json:"required"`
	Value       any               `json:"value,omitempty"`
	Text        string            `json:"text"`
	Checked     bool              `json:"checked"`
	Options     []OptionView      `json:"options,omitempty"`
	Error       string            `json:"error,omitempty"`
	Busy        bool              `json:"busy"`
	Children    []FieldView       `json:"children,omitempty"`
	Members     []MemberView      `json:"members,omitempty"`
	CanAdd      bool              `json:"can_add"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewView snapshots the session's current step.
func NewView(session *engine.Session) (View, error) {
	if session == nil {
		return View{}, fmt.Errorf("render: session is required")
	}
	def := session.Definition()
	step := session.Step()
	fields, err := session.VisibleFields(step)
	if err != nil {
		return View{}, err
	}
	stepDef, _ := def.StepAt(step)

	view := View{
		Slug:            def.Slug,
		Title:           def.Title,
		Description:     def.Description,
		Notice:          def.NoticeText(),
		Step:            step,
		TotalSteps:      session.TotalSteps(),
		StepTitle:       stepDef.Title,
		StepDescription: stepDef.Description,
		Final:           session.IsFinal(),
		Mode:            def.Submission.Mode,
		Amount:          def.Submission.Amount,
		EventName:       def.Submission.EventName,
		Metadata:        def.Metadata,
		Fields:          make([]FieldView, 0, len(fields)),
	}
	for _, field := range fields {
		view.Fields = append(view.Fields, buildField(session, field, field.Name, widgets.Scope{}))
	}
	return view, nil
}

func buildField(session *engine.Session, field model.Field, path string, scope widgets.Scope) FieldView {
	value, _ := session.Get(path)
	out := FieldView{
		Path:        path,
		Name:        field.Name,
		Kind:        field.Kind,
		Label:       field.Label,
		Widget:      widgets.For(field, scope),
		Placeholder: field.Placeholder,
		Description: field.Description,
		Accept:      field.Accept,
		Required:    field.Required,
		Value:       value,
		Text:        engine.String(value),
		Error:       session.ErrorsFor(path),
		Busy:        session.Busy(path),
		Metadata:    field.Metadata,
	}
	if field.Kind == model.FieldKindBoolean {
		checked, _ := value.(bool)
		out.Checked = checked
	}
	if len(field.Options) > 0 {
		out.Options = optionViews(field, value)
	}

	switch field.Kind {
	case model.FieldKindObject:
		out.Text = ""
		for _, child := range field.Nested {
			out.Children = append(out.Children, buildField(session, child, path+"."+child.Name, scope))
		}
	case model.FieldKindGroup:
		out.Text = ""
		out.Members, out.CanAdd = buildMembers(session, field, path)
	}
	return out
}

func buildMembers(session *engine.Session, field model.Field, path string) ([]MemberView, bool) {
	def := session.Definition()
	rep, _ := def.Repeater(path)
	base := rep.Label
	if base == "" {
		base = field.Label
	}

	count := session.Len(path)
	members := make([]MemberView, 0, count)
	for i := 0; i < count; i++ {
		member := MemberView{
			Index:     i,
			Label:     model.MemberLabel(base, i),
			Removable: rep.Manual && count > rep.Min,
		}
		if field.Item != nil {
			prefix := path + "." + strconv.Itoa(i)
			for _, child := range field.Item.Nested {
				member.Fields = append(member.Fields, buildField(session, child, prefix+"."+child.Name, widgets.Scope{Member: true}))
			}
		}
		members = append(members, member)
	}
	canAdd := rep.Manual && (rep.Max == 0 || count < rep.Max)
	return members, canAdd
}

func optionViews(field model.Field, value any) []OptionView {
	selected := make(map[string]bool)
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			selected[model.OptionKey(item)] = true
		}
	case []string:
		for _, item := range v {
			selected[item] = true
		}
	default:
		if value != nil {
			selected[model.OptionKey(value)] = true
		}
	}

	out := make([]OptionView, 0, len(field.Options))
	for _, opt := range field.Options {
		key := model.OptionKey(opt.Value)
		label := opt.Label
		if label == "" {
			label = key
		}
		out = append(out, OptionView{Value: key, Label: label, Selected: selected[key]})
	}
	return out
}
