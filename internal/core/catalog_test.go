package core

import (
	"context"
	"errors"
	"testing"

	"formcore/pkg/domain"
)

func TestCreateOptionSetValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateOptionSetInput
	}{
		{name: "missing name", input: CreateOptionSetInput{Code: "colors"}},
		{name: "bad code", input: CreateOptionSetInput{Code: "Colors!", Name: "Colors"}},
		{name: "duplicate item values", input: CreateOptionSetInput{
			Name:  "Colors",
			Items: []NewOptionItemInput{{Value: "RED", Label: "Red"}, {Value: "RED", Label: "Crimson"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOptionSet(ctx, admin, tc.input)
			var v domain.ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	if _, err := svc.CreateOptionSet(ctx, staff, CreateOptionSetInput{Name: "Colors"}); err == nil {
		t.Fatal("staff should not create option sets")
	}
}

func TestCreateOptionSetRejectsDuplicateCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreateSet(t, svc, CreateOptionSetInput{Code: "colors", Name: "Colors"})
	_, err := svc.CreateOptionSet(ctx, admin, CreateOptionSetInput{Code: "colors", Name: "Other"})
	var v domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected ValidationError on duplicate code, got %v", err)
	}
}

func TestCreateSubsetFromMaster(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	master := mustCreateSet(t, svc, CreateOptionSetInput{
		Name:     "All Regions",
		IsMaster: true,
		Items: []NewOptionItemInput{
			{Value: "NORTH", Label: "North"},
			{Value: "SOUTH", Label: "South"},
			{Value: "EAST", Label: "East"},
		},
	})

	subset, err := svc.CreateSubsetFromMaster(ctx, leader, master.ID, "Coastal Regions", []string{"SOUTH", "EAST"})
	if err != nil {
		t.Fatalf("create subset: %v", err)
	}
	if subset.MasterID != master.ID || subset.IsMaster {
		t.Fatalf("subset should reference master %s, got %+v", master.ID, subset)
	}
	if len(subset.Items) != 2 {
		t.Fatalf("subset items = %d, want 2", len(subset.Items))
	}
	for _, item := range subset.Items {
		if _, ok := master.FindItem(item.Value); !ok {
			t.Fatalf("subset item %s not in master", item.Value)
		}
	}

	if _, err := svc.CreateSubsetFromMaster(ctx, leader, subset.ID, "Nested", nil); err == nil {
		t.Fatal("subset of a non-master set should fail")
	}
}

func TestMigrateOptionSetCodeOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Legacy"})
	migrated, err := svc.MigrateOptionSetCode(ctx, admin, set.ID, "legacy_codes")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if migrated.Code != "legacy_codes" {
		t.Fatalf("code = %q, want legacy_codes", migrated.Code)
	}

	_, err = svc.MigrateOptionSetCode(ctx, admin, set.ID, "other_code")
	var conflict domain.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError on second migration, got %v", err)
	}
}

func TestBatchUploadModes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	newSet := func(name string) domain.OptionSet {
		return mustCreateSet(t, svc, CreateOptionSetInput{
			Name:  name,
			Items: []NewOptionItemInput{{Value: "OLD", Label: "Old Label"}},
		})
	}
	rows := []UploadRow{
		{Code: "OLD", Label: "New Label"},
		{Label: "Brand New"},
	}

	t.Run("append keeps existing labels", func(t *testing.T) {
		set := newSet("Append Target")
		updated, err := svc.BatchUpload(ctx, admin, set.ID, rows, UploadAppend)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		old, _ := updated.FindItem("OLD")
		if old.Label != "Old Label" {
			t.Fatalf("append overwrote label: %q", old.Label)
		}
		if _, ok := updated.FindItem("BRAND_NEW"); !ok {
			t.Fatal("derived item BRAND_NEW missing")
		}
	})

	t.Run("merge overwrites with history", func(t *testing.T) {
		set := newSet("Merge Target")
		updated, err := svc.BatchUpload(ctx, admin, set.ID, rows, UploadMerge)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		old, _ := updated.FindItem("OLD")
		if old.Label != "New Label" {
			t.Fatalf("merge kept old label: %q", old.Label)
		}
		if len(old.LabelHistory) != 1 || old.LabelHistory[0].Label != "Old Label" {
			t.Fatalf("label history = %+v", old.LabelHistory)
		}
	})

	t.Run("replace drops unlisted items", func(t *testing.T) {
		set := newSet("Replace Target")
		updated, err := svc.BatchUpload(ctx, admin, set.ID, []UploadRow{{Label: "Only One"}}, UploadReplace)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if len(updated.Items) != 1 || updated.Items[0].Value != "ONLY_ONE" {
			t.Fatalf("items = %+v", updated.Items)
		}
	})

	t.Run("in-upload collision rejected before mutation", func(t *testing.T) {
		set := newSet("Collision Target")
		_, err := svc.BatchUpload(ctx, admin, set.ID, []UploadRow{
			{Label: "Same Thing"},
			{Label: "same thing"},
		}, UploadAppend)
		var v domain.ValidationError
		if !errors.As(err, &v) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		after, _ := svc.GetOptionSet(set.ID)
		if len(after.Items) != 1 {
			t.Fatalf("set was mutated despite rejected upload: %+v", after.Items)
		}
	})
}

func TestEveryCatalogMutationWritesOneAuditEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	set := mustCreateSet(t, svc, CreateOptionSetInput{Name: "Audited"})
	if entries := svc.ListAuditLog(set.ID); len(entries) != 1 {
		t.Fatalf("entries after create = %d, want 1", len(entries))
	}

	if _, err := svc.MigrateOptionSetCode(ctx, admin, set.ID, "audited"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := svc.BatchUpload(ctx, admin, set.ID, []UploadRow{{Label: "Row"}}, UploadAppend); err != nil {
		t.Fatalf("upload: %v", err)
	}

	entries := svc.ListAuditLog(set.ID)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" || e.PerformedBy != admin.Email || e.PerformedAt.IsZero() {
			t.Fatalf("incomplete audit entry %+v", e)
		}
	}
}

func TestSubsetRejectsInactiveMasterItems(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	master := mustCreateSet(t, svc, CreateOptionSetInput{
		Name:     "All Regions",
		IsMaster: true,
		Items: []NewOptionItemInput{
			{Value: "NORTH", Label: "North"},
			{Value: "SOUTH", Label: "South"},
		},
	})
	req := submitRequest(t, svc, master.ID, domain.RequestDeprecate, domain.RequestPayload{Code: "SOUTH"})
	if _, err := svc.ApproveOptionRequest(ctx, admin, req.ID, ""); err != nil {
		t.Fatalf("deprecate SOUTH: %v", err)
	}

	_, err := svc.CreateSubsetFromMaster(ctx, leader, master.ID, "Coastal", []string{"SOUTH"})
	var v domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("deprecated master item should be rejected, got %v", err)
	}

	subset, err := svc.CreateSubsetFromMaster(ctx, leader, master.ID, "Northern", []string{"NORTH"})
	if err != nil {
		t.Fatalf("create subset: %v", err)
	}
	if len(subset.Items) != 1 || subset.Items[0].Value != "NORTH" {
		t.Fatalf("subset items %+v", subset.Items)
	}
}
