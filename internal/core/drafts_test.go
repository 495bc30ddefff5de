package core

import (
	"context"
	"errors"
	"testing"

	"formcore/pkg/domain"
)

func draftInput(name string) OptionSetDraftInput {
	return OptionSetDraftInput{
		Code: "",
		Name: name,
		Items: []NewOptionItemInput{
			{Value: "YES", Label: "Yes"},
			{Value: "NO", Label: "No"},
		},
	}
}

func TestDraftLifecycleApproval(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	draft, err := svc.CreateOptionSetDraft(ctx, leader, draftInput("Confirmation"))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if draft.Status != domain.DraftEditing {
		t.Fatalf("status = %s, want draft", draft.Status)
	}

	submitted, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID)
	if err != nil {
		t.Fatalf("submit draft: %v", err)
	}
	if submitted.Status != domain.DraftPendingReview || submitted.SubmittedAt == nil {
		t.Fatalf("unexpected draft %+v", submitted)
	}

	approved, err := svc.ReviewOptionSetDraft(ctx, admin, draft.ID, true, "ship it")
	if err != nil {
		t.Fatalf("approve draft: %v", err)
	}
	if approved.Status != domain.DraftApproved || approved.PromotedID == "" {
		t.Fatalf("unexpected draft %+v", approved)
	}

	promoted, err := svc.GetOptionSet(approved.PromotedID)
	if err != nil {
		t.Fatalf("promoted set missing: %v", err)
	}
	if len(promoted.Items) != 2 || promoted.CreatedBy != leader.Email {
		t.Fatalf("promoted set %+v", promoted)
	}
}

func TestDraftEditGating(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	draft, err := svc.CreateOptionSetDraft(ctx, leader, draftInput("Gated"))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	// A non-owner cannot edit even with a stronger role.
	_, err = svc.UpdateOptionSetDraft(ctx, admin, draft.ID, draftInput("Hijacked"))
	var authz domain.AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}

	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Pending drafts are frozen for their owner too.
	_, err = svc.UpdateOptionSetDraft(ctx, leader, draft.ID, draftInput("Too Late"))
	var conflict domain.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if err := svc.DeleteOptionSetDraft(ctx, leader, draft.ID); err == nil {
		t.Fatal("deleting a pending draft should fail")
	}
}

func TestRejectedDraftIsEditableAgain(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	draft, err := svc.CreateOptionSetDraft(ctx, leader, draftInput("Retry"))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rejected, err := svc.ReviewOptionSetDraft(ctx, admin, draft.ID, false, "needs work")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.DraftRejected || rejected.ReviewNote != "needs work" {
		t.Fatalf("unexpected draft %+v", rejected)
	}

	updated, err := svc.UpdateOptionSetDraft(ctx, leader, draft.ID, draftInput("Retry v2"))
	if err != nil {
		t.Fatalf("editing a rejected draft: %v", err)
	}
	if updated.Status != domain.DraftEditing || updated.Name != "Retry v2" {
		t.Fatalf("unexpected draft %+v", updated)
	}

	// Resubmit and approve on the second pass.
	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if _, err := svc.ReviewOptionSetDraft(ctx, admin, draft.ID, true, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

// A promotion that fails leaves the draft pending and creates nothing.
func TestDraftPromotionFailureAbortsReview(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreateSet(t, svc, CreateOptionSetInput{Code: "taken", Name: "Occupies The Code"})

	input := draftInput("Collider")
	input.Code = "taken"
	draft, err := svc.CreateOptionSetDraft(ctx, leader, input)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.ReviewOptionSetDraft(ctx, admin, draft.ID, true, ""); err == nil {
		t.Fatal("promotion onto a taken code should fail")
	}
	after, _ := svc.GetOptionSetDraft(draft.ID)
	if after.Status != domain.DraftPendingReview {
		t.Fatalf("draft status = %s, want pending_review after failed promotion", after.Status)
	}
	if len(svc.ListOptionSets()) != 1 {
		t.Fatal("failed promotion leaked a production set")
	}
}

func TestApprovedDraftIsImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	draft, err := svc.CreateOptionSetDraft(ctx, leader, draftInput("Done"))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.ReviewOptionSetDraft(ctx, admin, draft.ID, true, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := svc.UpdateOptionSetDraft(ctx, leader, draft.ID, draftInput("Undo")); err == nil {
		t.Fatal("editing an approved draft should fail")
	}
	// Approved drafts may still be deleted by their owner.
	if err := svc.DeleteOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("deleting an approved draft: %v", err)
	}
}

func TestTemplateDraftLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	set := mustCreateSet(t, svc, CreateOptionSetInput{
		Name:  "Severity",
		Items: []NewOptionItemInput{{Value: "LOW", Label: "Low"}, {Value: "HIGH", Label: "High"}},
	})

	draft, err := svc.CreateTemplateDraft(ctx, leader, basicTemplateInput(set.ID))
	if err != nil {
		t.Fatalf("create template draft: %v", err)
	}
	if _, err := svc.SubmitTemplateDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved, err := svc.ReviewTemplateDraft(ctx, admin, draft.ID, true, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	tmpl, err := svc.GetTemplate(approved.PromotedID)
	if err != nil {
		t.Fatalf("promoted template missing: %v", err)
	}
	if tmpl.Version != 1 || !tmpl.Enabled || len(tmpl.Fields) != 2 {
		t.Fatalf("promoted template %+v", tmpl)
	}
}

func TestRejectedDraftRequiresEditBeforeResubmit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	draft, err := svc.CreateOptionSetDraft(ctx, leader, draftInput("Strict"))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.ReviewOptionSetDraft(ctx, admin, draft.ID, false, "needs work"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err = svc.SubmitOptionSetDraft(ctx, leader, draft.ID)
	var conflict domain.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("resubmitting a rejected draft unmodified should conflict, got %v", err)
	}

	if _, err := svc.UpdateOptionSetDraft(ctx, leader, draft.ID, draftInput("Strict v2")); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := svc.SubmitOptionSetDraft(ctx, leader, draft.ID); err != nil {
		t.Fatalf("submit after edit: %v", err)
	}
}
