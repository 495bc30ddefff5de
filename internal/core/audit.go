package core

import (
	"github.com/google/uuid"

	"formcore/pkg/domain"
)

// Audit actions written to the ledger.
const (
	AuditOptionSetCreated    = "option_set_created"
	AuditOptionSetCodeSet    = "option_set_code_assigned"
	AuditOptionBatchUploaded = "option_batch_uploaded"
	AuditRequestSubmitted    = "option_request_submitted"
	AuditRequestApproved     = "option_request_approved"
	AuditRequestRejected     = "option_request_rejected"
	AuditDraftCreated        = "draft_created"
	AuditDraftUpdated        = "draft_updated"
	AuditDraftSubmitted      = "draft_submitted_for_review"
	AuditDraftApproved       = "draft_approved"
	AuditDraftRejected       = "draft_rejected"
	AuditDraftDeleted        = "draft_deleted"
	AuditTemplateCreated     = "template_created"
	AuditTemplateUpdated     = "template_updated"
	AuditSubmissionCreated   = "submission_created"
	AuditFileAttached        = "submission_file_attached"
	AuditSubmissionCancelled = "submission_cancelled"
)

// Persisted collection names recorded on audit entries.
const (
	CollectionOptionSets      = "optionSets"
	CollectionOptionRequests  = "optionRequests"
	CollectionOptionSetDrafts = "optionSetDrafts"
	CollectionTemplates       = "templates"
	CollectionTemplateDrafts  = "templateDrafts"
	CollectionSubmissions     = "submissions"
)

// auditEntry builds a ledger entry for one mutation. The caller appends it
// via the same transaction that carries the mutation.
func auditEntry(action, collection, targetID string, actor Actor) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		ID:               uuid.NewString(),
		Action:           action,
		TargetCollection: collection,
		TargetID:         targetID,
		PerformedBy:      actor.Email,
	}
}

func withStatusTransition(entry domain.AuditLogEntry, previous, next string) domain.AuditLogEntry {
	entry.PreviousStatus = previous
	entry.NewStatus = next
	return entry
}
