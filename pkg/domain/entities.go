// Package domain defines the persistent entities, value types, error
// taxonomy, and rule evaluation primitives used by formcore.
package domain

import "time"

// EntityType identifies the type of record stored in the governance domain.
type EntityType string

// Supported entity type identifiers used in Change records, audit entries,
// and persistence buckets.
const (
	// EntityOptionSet identifies a governed dictionary record.
	EntityOptionSet EntityType = "option_set"
	// EntityOptionRequest identifies a proposed dictionary mutation record.
	EntityOptionRequest EntityType = "option_request"
	// EntityOptionSetDraft identifies a leader-owned dictionary draft.
	EntityOptionSetDraft EntityType = "option_set_draft"
	// EntityTemplate identifies a production form template record.
	EntityTemplate EntityType = "template"
	// EntityTemplateDraft identifies a leader-owned template draft.
	EntityTemplateDraft EntityType = "template_draft"
	// EntitySubmission identifies a filled-in form submission record.
	EntitySubmission EntityType = "submission"
)

// OptionItemStatus represents the lifecycle states of a dictionary entry.
type OptionItemStatus string

// Canonical option item statuses. Items are never deleted, only deprecated.
const (
	// OptionItemStaging marks an item proposed but not yet selectable.
	OptionItemStaging OptionItemStatus = "staging"
	// OptionItemActive marks a selectable item.
	OptionItemActive OptionItemStatus = "active"
	// OptionItemDeprecated marks a retired item kept for history.
	OptionItemDeprecated OptionItemStatus = "deprecated"
)

// RequestStatus enumerates change request review states.
type RequestStatus string

// Canonical change request statuses. Approved and rejected are terminal.
const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RequestType tags the mutation proposed by a change request.
type RequestType string

// Supported change request mutation kinds.
const (
	RequestAdd       RequestType = "add"
	RequestRename    RequestType = "rename"
	RequestMerge     RequestType = "merge"
	RequestDeprecate RequestType = "deprecate"
	RequestActivate  RequestType = "activate"
)

// DraftStatus enumerates the shared draft lifecycle states.
type DraftStatus string

// Canonical draft statuses. Approved is terminal; rejected drafts remain
// editable by their owner.
const (
	DraftEditing       DraftStatus = "draft"
	DraftPendingReview DraftStatus = "pending_review"
	DraftApproved      DraftStatus = "approved"
	DraftRejected      DraftStatus = "rejected"
)

// SubmissionStatus enumerates submission states. CANCELLED is terminal.
type SubmissionStatus string

// Canonical submission statuses.
const (
	SubmissionActive    SubmissionStatus = "ACTIVE"
	SubmissionCancelled SubmissionStatus = "CANCELLED"
)

// AccessType controls who may submit against a template.
type AccessType string

// Template access modes.
const (
	AccessAll       AccessType = "all"
	AccessWhitelist AccessType = "whitelist"
)

// Base contains common fields for all governed records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LabelRevision captures a superseded display label of an option item.
type LabelRevision struct {
	Label     string    `json:"label"`
	ChangedAt time.Time `json:"changed_at"`
}

// OptionItem is one entry of a governed dictionary. Value is immutable and
// unique within its set; the label may be renamed with history retained.
type OptionItem struct {
	Value        string           `json:"value"`
	Label        string           `json:"label"`
	Status       OptionItemStatus `json:"status"`
	MergedInto   string           `json:"merged_into,omitempty"`
	LabelHistory []LabelRevision  `json:"label_history,omitempty"`
	Sort         int              `json:"sort"`
	CreatedAt    time.Time        `json:"created_at"`
	CreatedBy    string           `json:"created_by"`
}

// OptionSet is a named dictionary of selectable values. A master set is the
// authoritative vocabulary; a subset is a frozen selection of a master's
// values for narrower use.
type OptionSet struct {
	Base
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	IsMaster    bool         `json:"is_master"`
	MasterID    string       `json:"master_id,omitempty"`
	Items       []OptionItem `json:"items"`
	CreatedBy   string       `json:"created_by"`
}

// FindItem returns the item with the given value and whether it exists.
func (s OptionSet) FindItem(value string) (OptionItem, bool) {
	for _, item := range s.Items {
		if item.Value == value {
			return item, true
		}
	}
	return OptionItem{}, false
}

// RequestPayload is the tagged union carried by an OptionRequest. Only the
// fields relevant to the request type are populated.
type RequestPayload struct {
	// Code addresses the target item for add, rename, deprecate, activate.
	Code string `json:"code,omitempty"`
	// Label carries the display text for add and rename.
	Label string `json:"label,omitempty"`
	// SourceCode and TargetCode address the two items of a merge.
	SourceCode string `json:"source_code,omitempty"`
	TargetCode string `json:"target_code,omitempty"`
}

// OptionRequest is a proposed mutation against an existing option set,
// resolved by an admin review.
type OptionRequest struct {
	Base
	SetID       string         `json:"set_id"`
	SetName     string         `json:"set_name"`
	Type        RequestType    `json:"type"`
	Payload     RequestPayload `json:"payload"`
	Status      RequestStatus  `json:"status"`
	RequestedBy string         `json:"requested_by"`
	RequestedAt time.Time      `json:"requested_at"`
	ReviewedBy  string         `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNote  string         `json:"review_note,omitempty"`
}

// DraftMeta carries the lifecycle fields shared by both draft kinds.
type DraftMeta struct {
	Status      DraftStatus `json:"status"`
	CreatedBy   string      `json:"created_by"`
	SubmittedAt *time.Time  `json:"submitted_at,omitempty"`
	ReviewedBy  string      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time  `json:"reviewed_at,omitempty"`
	ReviewNote  string      `json:"review_note,omitempty"`
	// PromotedID references the production entity created on approval.
	PromotedID string `json:"promoted_id,omitempty"`
}

// OptionSetDraft is a leader-owned proposal for a brand-new dictionary.
type OptionSetDraft struct {
	Base
	DraftMeta
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Items       []OptionItem `json:"items"`
}

// TemplateDraft is a leader-owned proposal for a new form template.
type TemplateDraft struct {
	Base
	DraftMeta
	Name            string            `json:"name"`
	ModuleID        string            `json:"module_id"`
	ActionID        string            `json:"action_id"`
	Fields          []FieldDefinition `json:"fields"`
	AccessType      AccessType        `json:"access_type"`
	AccessWhitelist []string          `json:"access_whitelist,omitempty"`
	ManagerEmails   []string          `json:"manager_emails,omitempty"`
}

// FieldDefinition describes one field of a form template. Key is immutable
// once assigned and unique within the template.
type FieldDefinition struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Required    bool   `json:"required"`
	Order       int    `json:"order"`
	OptionSetID string `json:"option_set_id,omitempty"`
	Multiple    bool   `json:"multiple,omitempty"`
}

// Template is a production form definition. Version increments on every edit;
// submissions freeze the version they were captured against.
type Template struct {
	Base
	Name            string            `json:"name"`
	ModuleID        string            `json:"module_id"`
	ActionID        string            `json:"action_id"`
	Version         int               `json:"version"`
	Enabled         bool              `json:"enabled"`
	Fields          []FieldDefinition `json:"fields"`
	AccessType      AccessType        `json:"access_type"`
	AccessWhitelist []string          `json:"access_whitelist,omitempty"`
	ManagerEmails   []string          `json:"manager_emails,omitempty"`
	CreatedBy       string            `json:"created_by"`
}

// FindField returns the field with the given key and whether it exists.
func (t Template) FindField(key string) (FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FileRef points at an uploaded file held by the blob store.
type FileRef struct {
	FileID     string    `json:"file_id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	ViewLink   string    `json:"view_link,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}

// Submission is one filled-in instance of a template. TemplateVersion and
// LabelsSnapshot are frozen at creation so later template edits do not
// retroactively change historical records.
type Submission struct {
	Base
	TemplateID      string            `json:"template_id"`
	TemplateVersion int               `json:"template_version"`
	ModuleID        string            `json:"module_id"`
	ActionID        string            `json:"action_id"`
	Status          SubmissionStatus  `json:"status"`
	Values          map[string]any    `json:"values"`
	LabelsSnapshot  map[string]string `json:"labels_snapshot"`
	Files           []FileRef         `json:"files,omitempty"`
	CreatedBy       string            `json:"created_by"`
	CancelledBy     string            `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
}

// AuditLogEntry records one governance mutation. The ledger is append-only;
// entries are never updated or deleted.
type AuditLogEntry struct {
	ID               string         `json:"id"`
	Action           string         `json:"action"`
	TargetCollection string         `json:"target_collection"`
	TargetID         string         `json:"target_id"`
	PerformedBy      string         `json:"performed_by"`
	PerformedAt      time.Time      `json:"performed_at"`
	PreviousStatus   string         `json:"previous_status,omitempty"`
	NewStatus        string         `json:"new_status,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}
