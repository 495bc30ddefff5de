// Package memory implements the transactional in-memory document store that
// the durable SQLite and Postgres stores build upon. State is cloned per
// transaction and swapped in wholesale on commit, so concurrent operations
// serialize on the store mutex and always re-read current state before
// applying preconditions.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"formcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	optionSets      map[string]domain.OptionSet
	optionRequests  map[string]domain.OptionRequest
	optionSetDrafts map[string]domain.OptionSetDraft
	templates       map[string]domain.Template
	templateDrafts  map[string]domain.TemplateDraft
	submissions     map[string]domain.Submission
	auditLogs       []domain.AuditLogEntry
}

// Snapshot is the serialisable representation of the in-memory state.
type Snapshot struct {
	OptionSets      map[string]domain.OptionSet      `json:"option_sets"`
	OptionRequests  map[string]domain.OptionRequest  `json:"option_requests"`
	OptionSetDrafts map[string]domain.OptionSetDraft `json:"option_set_drafts"`
	Templates       map[string]domain.Template       `json:"templates"`
	TemplateDrafts  map[string]domain.TemplateDraft  `json:"template_drafts"`
	Submissions     map[string]domain.Submission     `json:"submissions"`
	AuditLogs       []domain.AuditLogEntry           `json:"audit_logs"`
}

func newMemoryState() memoryState {
	return memoryState{
		optionSets:      map[string]domain.OptionSet{},
		optionRequests:  map[string]domain.OptionRequest{},
		optionSetDrafts: map[string]domain.OptionSetDraft{},
		templates:       map[string]domain.Template{},
		templateDrafts:  map[string]domain.TemplateDraft{},
		submissions:     map[string]domain.Submission{},
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.optionSets {
		cloned.optionSets[k] = cloneOptionSet(v)
	}
	for k, v := range s.optionRequests {
		cloned.optionRequests[k] = cloneOptionRequest(v)
	}
	for k, v := range s.optionSetDrafts {
		cloned.optionSetDrafts[k] = cloneOptionSetDraft(v)
	}
	for k, v := range s.templates {
		cloned.templates[k] = cloneTemplate(v)
	}
	for k, v := range s.templateDrafts {
		cloned.templateDrafts[k] = cloneTemplateDraft(v)
	}
	for k, v := range s.submissions {
		cloned.submissions[k] = cloneSubmission(v)
	}
	cloned.auditLogs = cloneAuditLogs(s.auditLogs)
	return cloned
}

func cloneItems(items []domain.OptionItem) []domain.OptionItem {
	if items == nil {
		return nil
	}
	out := make([]domain.OptionItem, len(items))
	for i, item := range items {
		item.LabelHistory = append([]domain.LabelRevision(nil), item.LabelHistory...)
		out[i] = item
	}
	return out
}

func cloneOptionSet(s domain.OptionSet) domain.OptionSet {
	cp := s
	cp.Items = cloneItems(s.Items)
	return cp
}

func cloneOptionRequest(r domain.OptionRequest) domain.OptionRequest {
	cp := r
	if r.ReviewedAt != nil {
		at := *r.ReviewedAt
		cp.ReviewedAt = &at
	}
	return cp
}

func cloneDraftMeta(m domain.DraftMeta) domain.DraftMeta {
	cp := m
	if m.SubmittedAt != nil {
		at := *m.SubmittedAt
		cp.SubmittedAt = &at
	}
	if m.ReviewedAt != nil {
		at := *m.ReviewedAt
		cp.ReviewedAt = &at
	}
	return cp
}

func cloneOptionSetDraft(d domain.OptionSetDraft) domain.OptionSetDraft {
	cp := d
	cp.DraftMeta = cloneDraftMeta(d.DraftMeta)
	cp.Items = cloneItems(d.Items)
	return cp
}

func cloneTemplateDraft(d domain.TemplateDraft) domain.TemplateDraft {
	cp := d
	cp.DraftMeta = cloneDraftMeta(d.DraftMeta)
	cp.Fields = append([]domain.FieldDefinition(nil), d.Fields...)
	cp.AccessWhitelist = append([]string(nil), d.AccessWhitelist...)
	cp.ManagerEmails = append([]string(nil), d.ManagerEmails...)
	return cp
}

func cloneTemplate(t domain.Template) domain.Template {
	cp := t
	cp.Fields = append([]domain.FieldDefinition(nil), t.Fields...)
	cp.AccessWhitelist = append([]string(nil), t.AccessWhitelist...)
	cp.ManagerEmails = append([]string(nil), t.ManagerEmails...)
	return cp
}

func cloneSubmission(s domain.Submission) domain.Submission {
	cp := s
	if s.Values != nil {
		cp.Values = make(map[string]any, len(s.Values))
		for k, v := range s.Values {
			cp.Values[k] = v
		}
	}
	if s.LabelsSnapshot != nil {
		cp.LabelsSnapshot = make(map[string]string, len(s.LabelsSnapshot))
		for k, v := range s.LabelsSnapshot {
			cp.LabelsSnapshot[k] = v
		}
	}
	cp.Files = append([]domain.FileRef(nil), s.Files...)
	if s.CancelledAt != nil {
		at := *s.CancelledAt
		cp.CancelledAt = &at
	}
	return cp
}

func cloneAuditLogs(entries []domain.AuditLogEntry) []domain.AuditLogEntry {
	if entries == nil {
		return nil
	}
	out := make([]domain.AuditLogEntry, len(entries))
	for i, e := range entries {
		if e.Metadata != nil {
			md := make(map[string]any, len(e.Metadata))
			for k, v := range e.Metadata {
				md[k] = v
			}
			e.Metadata = md
		}
		out[i] = e
	}
	return out
}

// Store provides an in-memory transactional store for the governance domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the transaction timestamp source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Tx represents a mutation set applied to the store state.
type Tx struct {
	state   *memoryState
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*Tx)(nil)

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy is swapped in only after all registered rules pass, so a mutation
// and its audit entry commit atomically.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state.clone()
	tx := &Tx{state: &state, now: s.nowFn()}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := newView(&state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newView(&snapshot))
}

// ImportState replaces store contents with the supplied snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for k, v := range snapshot.OptionSets {
		state.optionSets[k] = cloneOptionSet(v)
	}
	for k, v := range snapshot.OptionRequests {
		state.optionRequests[k] = cloneOptionRequest(v)
	}
	for k, v := range snapshot.OptionSetDrafts {
		state.optionSetDrafts[k] = cloneOptionSetDraft(v)
	}
	for k, v := range snapshot.Templates {
		state.templates[k] = cloneTemplate(v)
	}
	for k, v := range snapshot.TemplateDrafts {
		state.templateDrafts[k] = cloneTemplateDraft(v)
	}
	for k, v := range snapshot.Submissions {
		state.submissions[k] = cloneSubmission(v)
	}
	state.auditLogs = cloneAuditLogs(snapshot.AuditLogs)
	s.state = state
}

// ExportState returns a serialisable copy of the store contents.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := Snapshot{
		OptionSets:      map[string]domain.OptionSet{},
		OptionRequests:  map[string]domain.OptionRequest{},
		OptionSetDrafts: map[string]domain.OptionSetDraft{},
		Templates:       map[string]domain.Template{},
		TemplateDrafts:  map[string]domain.TemplateDraft{},
		Submissions:     map[string]domain.Submission{},
	}
	for k, v := range s.state.optionSets {
		snapshot.OptionSets[k] = cloneOptionSet(v)
	}
	for k, v := range s.state.optionRequests {
		snapshot.OptionRequests[k] = cloneOptionRequest(v)
	}
	for k, v := range s.state.optionSetDrafts {
		snapshot.OptionSetDrafts[k] = cloneOptionSetDraft(v)
	}
	for k, v := range s.state.templates {
		snapshot.Templates[k] = cloneTemplate(v)
	}
	for k, v := range s.state.templateDrafts {
		snapshot.TemplateDrafts[k] = cloneTemplateDraft(v)
	}
	for k, v := range s.state.submissions {
		snapshot.Submissions[k] = cloneSubmission(v)
	}
	snapshot.AuditLogs = cloneAuditLogs(s.state.auditLogs)
	return snapshot
}
