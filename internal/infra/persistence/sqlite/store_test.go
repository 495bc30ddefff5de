package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"formcore/pkg/domain"
)

func newTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formcore.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	store, path := newTempStore(t)
	ctx := context.Background()

	var setID string
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		set, err := tx.CreateOptionSet(domain.OptionSet{
			Name:  "Durable",
			Items: []domain.OptionItem{{Value: "A", Label: "Alpha", Status: domain.OptionItemActive}},
		})
		if err != nil {
			return err
		}
		setID = set.ID
		tx.AppendAuditLog(domain.AuditLogEntry{
			Action:           "option_set_created",
			TargetCollection: "optionSets",
			TargetID:         set.ID,
			PerformedBy:      "admin@example.org",
		})
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	set, ok := reopened.GetOptionSet(setID)
	if !ok {
		t.Fatal("set missing after reopen")
	}
	if len(set.Items) != 1 || set.Items[0].Label != "Alpha" {
		t.Fatalf("set %+v", set)
	}
	if entries := reopened.ListAuditLog(setID); len(entries) != 1 {
		t.Fatalf("audit entries after reopen = %d, want 1", len(entries))
	}
}

func TestFailedTransactionIsNotPersisted(t *testing.T) {
	store, path := newTempStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateOptionSet(domain.OptionSet{Name: "Ghost"}); err != nil {
			return err
		}
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if sets := reopened.ListOptionSets(); len(sets) != 0 {
		t.Fatalf("aborted transaction reached disk: %+v", sets)
	}
}

func TestEmptyDatabaseStartsClean(t *testing.T) {
	store, _ := newTempStore(t)
	if sets := store.ListOptionSets(); len(sets) != 0 {
		t.Fatalf("fresh store not empty: %+v", sets)
	}
	if store.Path() == "" || store.DB() == nil {
		t.Fatal("store accessors broken")
	}
}

func TestDefaultPathFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore with nested path: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != path {
		t.Fatalf("path = %q, want %q", store.Path(), path)
	}
}
