package core

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"formcore/internal/infra/persistence/memory"
	"formcore/pkg/domain"
)

var (
	admin  = Actor{Email: "admin@example.org", Role: RoleAdmin}
	leader = Actor{Email: "leader@example.org", Role: RoleLeader}
	staff  = Actor{Email: "staff@example.org", Role: RoleStaff}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	return NewService(store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func mustCreateSet(t *testing.T, svc *Service, input CreateOptionSetInput) domain.OptionSet {
	t.Helper()
	set, err := svc.CreateOptionSet(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("create option set: %v", err)
	}
	return set
}

func mustCreateTemplate(t *testing.T, svc *Service, input TemplateInput) domain.Template {
	t.Helper()
	tmpl, err := svc.CreateTemplate(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tmpl
}

func basicTemplateInput(optionSetID string) TemplateInput {
	return TemplateInput{
		Name:     "Incident Report",
		ModuleID: "ops",
		ActionID: "incident",
		Fields: []domain.FieldDefinition{
			{Key: "summary", Type: "text", Label: "Summary", Required: true, Order: 0},
			{Key: "category", Type: "dropdown", Label: "Category", Required: true, Order: 1, OptionSetID: optionSetID},
		},
		AccessType: domain.AccessAll,
	}
}
