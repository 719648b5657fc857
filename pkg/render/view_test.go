package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/widgets"
)

func districtDefinition() *model.Definition {
	founder := &model.Field{Kind: model.FieldKindObject, Nested: []model.Field{
		{Name: "name", Kind: model.FieldKindString, Label: "Name", Required: true},
		{Name: "gender", Kind: model.FieldKindEnum, Label: "Gender",
			Options: []model.Option{{Value: "male", Label: "Male"}, {Value: "female", Label: "Female"}}},
	}}
	return &model.Definition{
		Slug:        "startup-district",
		Title:       "Startup District",
		Notice:      "Registration fee: Rs. {amount}",
		Description: "Apply for a desk.",
		Fields: []model.Field{
			{Name: "startupName", Kind: model.FieldKindString, Label: "Startup Name", Required: true,
				Placeholder: "Acme", Metadata: map[string]string{"labelKey": "startup.name"}},
			{Name: "stage", Kind: model.FieldKindEnum, Label: "Stage", Required: true,
				Options: []model.Option{{Value: "idea"}, {Value: "mvp", Label: "MVP"}, {Value: "Other"}}},
			{Name: "otherStage", Kind: model.FieldKindString, Label: "Other Stage", VisibleIf: `stage == "Other"`},
			{Name: "incorporated", Kind: model.FieldKindBoolean, Label: "Incorporated"},
			{Name: "coFounders", Kind: model.FieldKindGroup, Label: "Co-Founders", Item: founder},
		},
		Steps: []model.Step{
			{Title: "Startup", Fields: []string{"startupName", "stage", "otherStage", "incorporated"}},
			{Title: "Team", Description: "Tell us who is building it.", Fields: []string{"coFounders"}},
		},
		Repeaters:  []model.Repeater{{Field: "coFounders", Manual: true, Min: 1, Max: 2, Label: "Co-Founder"}},
		Overrides:  []model.Override{{Field: "stage", Sentinel: "Other", OtherField: "otherStage"}},
		Submission: model.Submission{Mode: model.SubmissionPayment, Amount: "625", EventName: "Startup District"},
	}
}

func newDistrictSession(t *testing.T) *engine.Session {
	t.Helper()
	session, err := engine.New(districtDefinition())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func TestNewViewFirstStep(t *testing.T) {
	session := newDistrictSession(t)
	if err := session.Set("stage", "mvp"); err != nil {
		t.Fatalf("set stage: %v", err)
	}

	view, err := render.NewView(session)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}

	if view.Progress() != "Step 1 of 2" || view.Final {
		t.Fatalf("unexpected progress %q final=%v", view.Progress(), view.Final)
	}
	if view.Notice != "Registration fee: Rs. 625" {
		t.Fatalf("unexpected notice %q", view.Notice)
	}
	if view.StepTitle != "Startup" {
		t.Fatalf("unexpected step title %q", view.StepTitle)
	}

	var names []string
	for _, field := range view.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"startupName", "stage", "incorporated"}, names); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}

	stage := view.Fields[1]
	if stage.Widget != widgets.WidgetSelect || stage.Text != "mvp" {
		t.Fatalf("unexpected stage view %+v", stage)
	}
	wantOptions := []render.OptionView{
		{Value: "idea", Label: "idea"},
		{Value: "mvp", Label: "MVP", Selected: true},
		{Value: "Other", Label: "Other"},
	}
	if diff := cmp.Diff(wantOptions, stage.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if view.Fields[2].Widget != widgets.WidgetToggle || view.Fields[2].Checked {
		t.Fatalf("unexpected toggle view %+v", view.Fields[2])
	}
}

func TestNewViewRevealsConditionalFieldAndErrors(t *testing.T) {
	session := newDistrictSession(t)
	if err := session.Set("stage", "Other"); err != nil {
		t.Fatalf("set stage: %v", err)
	}
	if ok, err := session.ValidateStep(context.Background()); err != nil || ok {
		t.Fatalf("expected step to be invalid, ok=%v err=%v", ok, err)
	}

	view, err := render.NewView(session)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	if len(view.Fields) != 4 || view.Fields[2].Name != "otherStage" {
		t.Fatalf("expected otherStage to be visible, got %+v", view.Fields)
	}
	if view.Fields[0].Error == "" {
		t.Fatalf("expected required error on startupName")
	}
}

func TestNewViewManualMembers(t *testing.T) {
	session := newDistrictSession(t)
	if err := session.Set("startupName", "Acme"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := session.Set("stage", "idea"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := session.Advance(context.Background()); err != nil || !ok {
		t.Fatalf("advance ok=%v err=%v errors=%v", ok, err, session.Errors())
	}

	view, err := render.NewView(session)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	if !view.Final || view.StepDescription != "Tell us who is building it." {
		t.Fatalf("unexpected final step view %+v", view)
	}

	group := view.Fields[0]
	if group.Widget != widgets.WidgetRepeater || !group.CanAdd || len(group.Members) != 1 {
		t.Fatalf("unexpected group view %+v", group)
	}
	if group.Members[0].Label != "Co-Founder 1" || group.Members[0].Removable {
		t.Fatalf("single required member must not be removable: %+v", group.Members[0])
	}

	if _, err := session.Append("coFounders"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := session.Set("coFounders.1.gender", "female"); err != nil {
		t.Fatalf("set member: %v", err)
	}
	view, err = render.NewView(session)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	group = view.Fields[0]
	if group.CanAdd || len(group.Members) != 2 || !group.Members[1].Removable {
		t.Fatalf("unexpected group view after append %+v", group)
	}
	gender := group.Members[1].Fields[1]
	if gender.Path != "coFounders.1.gender" || gender.Widget != widgets.WidgetRadio || gender.Text != "female" {
		t.Fatalf("unexpected member field %+v", gender)
	}
}

func TestNewViewRequiresSession(t *testing.T) {
	if _, err := render.NewView(nil); err == nil {
		t.Fatalf("expected error for nil session")
	}
}
