package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"formcore/internal/infra/persistence/memory"
	"formcore/internal/infra/persistence/postgres/testutil"
	"formcore/pkg/domain"
)

func TestNewStoreLoadsExistingSnapshot(t *testing.T) {
	db, conn := testutil.NewStubDB()
	seed := map[string]domain.OptionSet{
		"set-1": {Base: domain.Base{ID: "set-1"}, Name: "Seeded"},
	}
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	conn.Buckets["optionSets"] = payload

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	set, ok := store.GetOptionSet("set-1")
	if !ok || set.Name != "Seeded" {
		t.Fatalf("seeded set not hydrated: %+v", set)
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("state table DDL not applied, execs: %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsBuckets(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateOptionSet(domain.OptionSet{Name: "Persisted"})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	payload, ok := conn.Buckets["optionSets"]
	if !ok {
		t.Fatalf("optionSets bucket not written, buckets: %v", conn.Buckets)
	}
	var sets map[string]domain.OptionSet
	if err := json.Unmarshal(payload, &sets); err != nil {
		t.Fatalf("decode persisted bucket: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("persisted sets = %d, want 1", len(sets))
	}
}

func TestRunInTransactionStopsOnUserError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	userErr := fmt.Errorf("user fail")
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return userErr }); !errors.Is(err, userErr) {
		t.Fatalf("expected user error, got %v", err)
	}
	if len(conn.Buckets) != 0 {
		t.Fatalf("aborted transaction persisted buckets: %v", conn.Buckets)
	}
}

func TestRunInTransactionReportsPersistFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.FailCommit = true
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateOptionSet(domain.OptionSet{Name: "Unlucky"})
		return err
	}); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestLoadSnapshotRowsError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.RowsErr = fmt.Errorf("row err")
	if _, err := loadSnapshot(context.Background(), db); err == nil {
		t.Fatalf("expected rows error")
	}
}

func TestLoadSnapshotDecodeError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.Buckets["submissions"] = []byte("not-json")
	if _, err := loadSnapshot(context.Background(), db); err == nil || !strings.Contains(err.Error(), "submissions") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestLoadSnapshotIgnoresUnknownBuckets(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.Buckets["legacy"] = []byte(`{"weird": true}`)
	snapshot, err := loadSnapshot(context.Background(), db)
	if err != nil {
		t.Fatalf("loadSnapshot: %v", err)
	}
	if snapshot.OptionSets != nil && len(snapshot.OptionSets) != 0 {
		t.Fatalf("unexpected snapshot content %+v", snapshot)
	}
}

func TestSnapshotRoundTripThroughStub(t *testing.T) {
	db, _ := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateTemplate(domain.Template{Name: "Form", Version: 1, Enabled: true}); err != nil {
			return err
		}
		tx.AppendAuditLog(domain.AuditLogEntry{Action: "template_created", TargetID: "t"})
		return nil
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	loaded, err := loadSnapshot(context.Background(), db)
	if err != nil {
		t.Fatalf("loadSnapshot: %v", err)
	}
	if len(loaded.Templates) != 1 || len(loaded.AuditLogs) != 1 {
		t.Fatalf("round trip lost data: %+v", loaded)
	}

	hydrated := memory.NewStore(nil)
	hydrated.ImportState(loaded)
	if len(hydrated.ListTemplates()) != 1 {
		t.Fatal("hydrated store missing template")
	}
}
