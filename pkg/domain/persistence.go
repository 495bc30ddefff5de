package domain

import (
	"context"
	"time"
)

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Every mutation and the audit entry
// recording it commit together or not at all.
type Transaction interface {
	Snapshot() TransactionView
	Now() time.Time

	CreateOptionSet(OptionSet) (OptionSet, error)
	UpdateOptionSet(id string, mutator func(*OptionSet) error) (OptionSet, error)

	CreateOptionRequest(OptionRequest) (OptionRequest, error)
	UpdateOptionRequest(id string, mutator func(*OptionRequest) error) (OptionRequest, error)

	CreateOptionSetDraft(OptionSetDraft) (OptionSetDraft, error)
	UpdateOptionSetDraft(id string, mutator func(*OptionSetDraft) error) (OptionSetDraft, error)
	DeleteOptionSetDraft(id string) error

	CreateTemplateDraft(TemplateDraft) (TemplateDraft, error)
	UpdateTemplateDraft(id string, mutator func(*TemplateDraft) error) (TemplateDraft, error)
	DeleteTemplateDraft(id string) error

	CreateTemplate(Template) (Template, error)
	UpdateTemplate(id string, mutator func(*Template) error) (Template, error)

	CreateSubmission(Submission) (Submission, error)
	UpdateSubmission(id string, mutator func(*Submission) error) (Submission, error)

	// AppendAuditLog adds one immutable ledger entry within the transaction.
	AppendAuditLog(AuditLogEntry) AuditLogEntry

	FindOptionSet(id string) (OptionSet, bool)
	FindOptionSetByCode(code string) (OptionSet, bool)
	FindOptionRequest(id string) (OptionRequest, bool)
	FindOptionSetDraft(id string) (OptionSetDraft, bool)
	FindTemplateDraft(id string) (TemplateDraft, bool)
	FindTemplate(id string) (Template, bool)
	FindSubmission(id string) (Submission, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
	FindOptionSetByCode(code string) (OptionSet, bool)
	ListOptionSetDrafts() []OptionSetDraft
	ListTemplateDrafts() []TemplateDraft
	ListTemplates() []Template
	FindOptionRequest(id string) (OptionRequest, bool)
	FindOptionSetDraft(id string) (OptionSetDraft, bool)
	FindTemplateDraft(id string) (TemplateDraft, bool)
	FindSubmission(id string) (Submission, bool)
	ListAuditLog(targetID string) []AuditLogEntry
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetOptionSet(id string) (OptionSet, bool)
	ListOptionSets() []OptionSet
	GetOptionRequest(id string) (OptionRequest, bool)
	ListOptionRequests() []OptionRequest
	GetOptionSetDraft(id string) (OptionSetDraft, bool)
	ListOptionSetDrafts() []OptionSetDraft
	GetTemplateDraft(id string) (TemplateDraft, bool)
	ListTemplateDrafts() []TemplateDraft
	GetTemplate(id string) (Template, bool)
	ListTemplates() []Template
	GetSubmission(id string) (Submission, bool)
	ListSubmissions() []Submission
	ListAuditLog(targetID string) []AuditLogEntry
}
