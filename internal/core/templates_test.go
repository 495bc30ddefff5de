package core

import (
	"context"
	"errors"
	"testing"

	"formcore/pkg/domain"
)

func TestCreateTemplateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Choices"})

	base := basicTemplateInput(set.ID)

	cases := []struct {
		name   string
		mutate func(*TemplateInput)
	}{
		{name: "missing name", mutate: func(in *TemplateInput) { in.Name = "" }},
		{name: "missing module", mutate: func(in *TemplateInput) { in.ModuleID = "" }},
		{name: "no fields", mutate: func(in *TemplateInput) { in.Fields = nil }},
		{name: "bad field key", mutate: func(in *TemplateInput) { in.Fields[0].Key = "Bad-Key" }},
		{name: "duplicate field key", mutate: func(in *TemplateInput) { in.Fields[1].Key = in.Fields[0].Key }},
		{name: "dropdown without set", mutate: func(in *TemplateInput) { in.Fields[1].OptionSetID = "" }},
		{name: "dropdown with unknown set", mutate: func(in *TemplateInput) { in.Fields[1].OptionSetID = "ghost" }},
		{name: "empty whitelist", mutate: func(in *TemplateInput) {
			in.AccessType = domain.AccessWhitelist
			in.AccessWhitelist = nil
		}},
		{name: "too many managers", mutate: func(in *TemplateInput) {
			in.ManagerEmails = []string{"a@x", "b@x", "c@x", "d@x", "e@x", "f@x"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			input.Fields = append([]domain.FieldDefinition(nil), base.Fields...)
			tc.mutate(&input)
			_, err := svc.CreateTemplate(ctx, admin, input)
			var v domain.ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateTemplateNormalizesFieldOrder(t *testing.T) {
	svc := newTestService(t)
	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Choices"})

	input := basicTemplateInput(set.ID)
	input.Fields[0].Order = 10
	input.Fields[1].Order = 3
	tmpl := mustCreateTemplate(t, svc, input)

	if tmpl.Fields[0].Key != "category" || tmpl.Fields[0].Order != 0 {
		t.Fatalf("fields not reordered: %+v", tmpl.Fields)
	}
	if tmpl.Fields[1].Key != "summary" || tmpl.Fields[1].Order != 1 {
		t.Fatalf("fields not renumbered: %+v", tmpl.Fields)
	}
}

func TestUpdateTemplateBumpsVersion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Choices"})
	tmpl := mustCreateTemplate(t, svc, basicTemplateInput(set.ID))

	input := basicTemplateInput(set.ID)
	input.Name = "Renamed"
	updated, err := svc.UpdateTemplate(ctx, admin, tmpl.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 || updated.Name != "Renamed" {
		t.Fatalf("unexpected template %+v", updated)
	}

	if _, err := svc.UpdateTemplate(ctx, leader, tmpl.ID, input); err == nil {
		t.Fatal("leaders should not update production templates")
	}
}

func TestSetTemplateEnabledDoesNotBumpVersion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Choices"})
	tmpl := mustCreateTemplate(t, svc, basicTemplateInput(set.ID))

	disabled, err := svc.SetTemplateEnabled(ctx, admin, tmpl.ID, false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if disabled.Enabled || disabled.Version != 1 {
		t.Fatalf("unexpected template %+v", disabled)
	}
}

func TestUpdateTemplateFieldKeysAreImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Choices"})
	tmpl := mustCreateTemplate(t, svc, basicTemplateInput(set.ID))

	replaced := basicTemplateInput(set.ID)
	replaced.Fields = []domain.FieldDefinition{
		{Key: "totally_new_key", Type: "text", Label: "New", Required: true, Order: 0},
	}
	_, err := svc.UpdateTemplate(ctx, admin, tmpl.ID, replaced)
	var v domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("replacing existing field keys should fail validation, got %v", err)
	}
	unchanged, err := svc.GetTemplate(tmpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if unchanged.Version != 1 || len(unchanged.Fields) != 2 {
		t.Fatalf("template mutated by rejected update: %+v", unchanged)
	}

	// Adding a field while keeping every existing key is allowed.
	grown := basicTemplateInput(set.ID)
	grown.Fields = append(grown.Fields, domain.FieldDefinition{
		Key: "severity", Type: "text", Label: "Severity", Order: 2,
	})
	updated, err := svc.UpdateTemplate(ctx, admin, tmpl.ID, grown)
	if err != nil {
		t.Fatalf("additive update: %v", err)
	}
	if updated.Version != 2 || len(updated.Fields) != 3 {
		t.Fatalf("unexpected template %+v", updated)
	}
	for _, key := range []string{"summary", "category", "severity"} {
		if _, ok := updated.FindField(key); !ok {
			t.Fatalf("field %q missing after update", key)
		}
	}
}
