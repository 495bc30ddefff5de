package core

import (
	"context"
	"errors"
	"testing"

	"formcore/internal/infra/persistence/memory"
	"formcore/pkg/domain"
)

func TestOptionItemIntegrityRuleBlocksBadSets(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	cases := []struct {
		name  string
		items []domain.OptionItem
	}{
		{name: "duplicate values", items: []domain.OptionItem{
			{Value: "A", Status: domain.OptionItemActive},
			{Value: "A", Status: domain.OptionItemActive},
		}},
		{name: "invalid status", items: []domain.OptionItem{
			{Value: "A", Status: domain.OptionItemStatus("zombie")},
		}},
		{name: "merged pointer on active item", items: []domain.OptionItem{
			{Value: "A", Status: domain.OptionItemActive, MergedInto: "B"},
			{Value: "B", Status: domain.OptionItemActive},
		}},
		{name: "merged into unknown item", items: []domain.OptionItem{
			{Value: "A", Status: domain.OptionItemDeprecated, MergedInto: "GONE"},
		}},
		{name: "merged into inactive item", items: []domain.OptionItem{
			{Value: "A", Status: domain.OptionItemDeprecated, MergedInto: "B"},
			{Value: "B", Status: domain.OptionItemStaging},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
				_, err := tx.CreateOptionSet(domain.OptionSet{Name: "Broken", Items: tc.items})
				return err
			})
			var violation domain.RuleViolationError
			if !errors.As(err, &violation) {
				t.Fatalf("expected RuleViolationError, got %v", err)
			}
		})
	}
}

func TestTransitionRuleProtectsTerminalStates(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	var id string
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		req, err := tx.CreateOptionRequest(domain.OptionRequest{
			Type:   domain.RequestAdd,
			Status: domain.RequestApproved,
		})
		id = req.ID
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateOptionRequest(id, func(r *domain.OptionRequest) error {
			r.Status = domain.RequestPending
			return nil
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
}

func TestTransitionRuleBlocksInvalidStates(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateSubmission(domain.Submission{Status: domain.SubmissionStatus("PAUSED")})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
}

func TestTransitionRuleAllowsDeletingTerminalDrafts(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		d, err := tx.CreateOptionSetDraft(domain.OptionSetDraft{
			DraftMeta: domain.DraftMeta{Status: domain.DraftApproved},
			Name:      "Finished",
		})
		id = d.ID
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteOptionSetDraft(id)
	}); err != nil {
		t.Fatalf("deleting approved draft: %v", err)
	}
}
