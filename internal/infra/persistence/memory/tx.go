package memory

import (
	"time"

	"formcore/pkg/domain"
)

// Snapshot returns a read-only view of the transactional state.
func (tx *Tx) Snapshot() domain.TransactionView {
	return newView(tx.state)
}

// Now returns the timestamp frozen at transaction start.
func (tx *Tx) Now() time.Time { return tx.now }

func (tx *Tx) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// CreateOptionSet stores a new option set within the transaction.
func (tx *Tx) CreateOptionSet(s domain.OptionSet) (domain.OptionSet, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	if _, exists := tx.state.optionSets[s.ID]; exists {
		return domain.OptionSet{}, domain.Validationf("option set %q already exists", s.ID)
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.optionSets[s.ID] = cloneOptionSet(s)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionSet, Action: domain.ActionCreate, After: cloneOptionSet(s)})
	return cloneOptionSet(s), nil
}

// UpdateOptionSet mutates an option set using the provided mutator.
func (tx *Tx) UpdateOptionSet(id string, mutator func(*domain.OptionSet) error) (domain.OptionSet, error) {
	current, ok := tx.state.optionSets[id]
	if !ok {
		return domain.OptionSet{}, domain.NotFoundError{Entity: domain.EntityOptionSet, ID: id}
	}
	before := cloneOptionSet(current)
	if err := mutator(&current); err != nil {
		return domain.OptionSet{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.optionSets[id] = cloneOptionSet(current)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionSet, Action: domain.ActionUpdate, Before: before, After: cloneOptionSet(current)})
	return cloneOptionSet(current), nil
}

// CreateOptionRequest stores a new change request.
func (tx *Tx) CreateOptionRequest(r domain.OptionRequest) (domain.OptionRequest, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	if _, exists := tx.state.optionRequests[r.ID]; exists {
		return domain.OptionRequest{}, domain.Validationf("option request %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.optionRequests[r.ID] = cloneOptionRequest(r)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionRequest, Action: domain.ActionCreate, After: cloneOptionRequest(r)})
	return cloneOptionRequest(r), nil
}

// UpdateOptionRequest mutates an existing change request.
func (tx *Tx) UpdateOptionRequest(id string, mutator func(*domain.OptionRequest) error) (domain.OptionRequest, error) {
	current, ok := tx.state.optionRequests[id]
	if !ok {
		return domain.OptionRequest{}, domain.NotFoundError{Entity: domain.EntityOptionRequest, ID: id}
	}
	before := cloneOptionRequest(current)
	if err := mutator(&current); err != nil {
		return domain.OptionRequest{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.optionRequests[id] = cloneOptionRequest(current)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionRequest, Action: domain.ActionUpdate, Before: before, After: cloneOptionRequest(current)})
	return cloneOptionRequest(current), nil
}

// CreateOptionSetDraft stores a new dictionary draft.
func (tx *Tx) CreateOptionSetDraft(d domain.OptionSetDraft) (domain.OptionSetDraft, error) {
	if d.ID == "" {
		d.ID = newID()
	}
	if _, exists := tx.state.optionSetDrafts[d.ID]; exists {
		return domain.OptionSetDraft{}, domain.Validationf("option set draft %q already exists", d.ID)
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.optionSetDrafts[d.ID] = cloneOptionSetDraft(d)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionSetDraft, Action: domain.ActionCreate, After: cloneOptionSetDraft(d)})
	return cloneOptionSetDraft(d), nil
}

// UpdateOptionSetDraft mutates an existing dictionary draft.
func (tx *Tx) UpdateOptionSetDraft(id string, mutator func(*domain.OptionSetDraft) error) (domain.OptionSetDraft, error) {
	current, ok := tx.state.optionSetDrafts[id]
	if !ok {
		return domain.OptionSetDraft{}, domain.NotFoundError{Entity: domain.EntityOptionSetDraft, ID: id}
	}
	before := cloneOptionSetDraft(current)
	if err := mutator(&current); err != nil {
		return domain.OptionSetDraft{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.optionSetDrafts[id] = cloneOptionSetDraft(current)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionSetDraft, Action: domain.ActionUpdate, Before: before, After: cloneOptionSetDraft(current)})
	return cloneOptionSetDraft(current), nil
}

// DeleteOptionSetDraft removes a dictionary draft.
func (tx *Tx) DeleteOptionSetDraft(id string) error {
	current, ok := tx.state.optionSetDrafts[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityOptionSetDraft, ID: id}
	}
	delete(tx.state.optionSetDrafts, id)
	tx.recordChange(domain.Change{Entity: domain.EntityOptionSetDraft, Action: domain.ActionDelete, Before: cloneOptionSetDraft(current)})
	return nil
}

// CreateTemplateDraft stores a new template draft.
func (tx *Tx) CreateTemplateDraft(d domain.TemplateDraft) (domain.TemplateDraft, error) {
	if d.ID == "" {
		d.ID = newID()
	}
	if _, exists := tx.state.templateDrafts[d.ID]; exists {
		return domain.TemplateDraft{}, domain.Validationf("template draft %q already exists", d.ID)
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.templateDrafts[d.ID] = cloneTemplateDraft(d)
	tx.recordChange(domain.Change{Entity: domain.EntityTemplateDraft, Action: domain.ActionCreate, After: cloneTemplateDraft(d)})
	return cloneTemplateDraft(d), nil
}

// UpdateTemplateDraft mutates an existing template draft.
func (tx *Tx) UpdateTemplateDraft(id string, mutator func(*domain.TemplateDraft) error) (domain.TemplateDraft, error) {
	current, ok := tx.state.templateDrafts[id]
	if !ok {
		return domain.TemplateDraft{}, domain.NotFoundError{Entity: domain.EntityTemplateDraft, ID: id}
	}
	before := cloneTemplateDraft(current)
	if err := mutator(&current); err != nil {
		return domain.TemplateDraft{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.templateDrafts[id] = cloneTemplateDraft(current)
	tx.recordChange(domain.Change{Entity: domain.EntityTemplateDraft, Action: domain.ActionUpdate, Before: before, After: cloneTemplateDraft(current)})
	return cloneTemplateDraft(current), nil
}

// DeleteTemplateDraft removes a template draft.
func (tx *Tx) DeleteTemplateDraft(id string) error {
	current, ok := tx.state.templateDrafts[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityTemplateDraft, ID: id}
	}
	delete(tx.state.templateDrafts, id)
	tx.recordChange(domain.Change{Entity: domain.EntityTemplateDraft, Action: domain.ActionDelete, Before: cloneTemplateDraft(current)})
	return nil
}

// CreateTemplate stores a new production template.
func (tx *Tx) CreateTemplate(t domain.Template) (domain.Template, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if _, exists := tx.state.templates[t.ID]; exists {
		return domain.Template{}, domain.Validationf("template %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.templates[t.ID] = cloneTemplate(t)
	tx.recordChange(domain.Change{Entity: domain.EntityTemplate, Action: domain.ActionCreate, After: cloneTemplate(t)})
	return cloneTemplate(t), nil
}

// UpdateTemplate mutates an existing template.
func (tx *Tx) UpdateTemplate(id string, mutator func(*domain.Template) error) (domain.Template, error) {
	current, ok := tx.state.templates[id]
	if !ok {
		return domain.Template{}, domain.NotFoundError{Entity: domain.EntityTemplate, ID: id}
	}
	before := cloneTemplate(current)
	if err := mutator(&current); err != nil {
		return domain.Template{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.templates[id] = cloneTemplate(current)
	tx.recordChange(domain.Change{Entity: domain.EntityTemplate, Action: domain.ActionUpdate, Before: before, After: cloneTemplate(current)})
	return cloneTemplate(current), nil
}

// CreateSubmission stores a new submission.
func (tx *Tx) CreateSubmission(s domain.Submission) (domain.Submission, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	if _, exists := tx.state.submissions[s.ID]; exists {
		return domain.Submission{}, domain.Validationf("submission %q already exists", s.ID)
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.submissions[s.ID] = cloneSubmission(s)
	tx.recordChange(domain.Change{Entity: domain.EntitySubmission, Action: domain.ActionCreate, After: cloneSubmission(s)})
	return cloneSubmission(s), nil
}

// UpdateSubmission mutates an existing submission.
func (tx *Tx) UpdateSubmission(id string, mutator func(*domain.Submission) error) (domain.Submission, error) {
	current, ok := tx.state.submissions[id]
	if !ok {
		return domain.Submission{}, domain.NotFoundError{Entity: domain.EntitySubmission, ID: id}
	}
	before := cloneSubmission(current)
	if err := mutator(&current); err != nil {
		return domain.Submission{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.submissions[id] = cloneSubmission(current)
	tx.recordChange(domain.Change{Entity: domain.EntitySubmission, Action: domain.ActionUpdate, Before: before, After: cloneSubmission(current)})
	return cloneSubmission(current), nil
}

// AppendAuditLog adds one ledger entry to the transaction state. The entry
// commits together with the mutations recorded in the same transaction.
func (tx *Tx) AppendAuditLog(entry domain.AuditLogEntry) domain.AuditLogEntry {
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = tx.now
	}
	tx.state.auditLogs = append(tx.state.auditLogs, entry)
	return entry
}

// FindOptionSet retrieves an option set by ID from the transaction state.
func (tx *Tx) FindOptionSet(id string) (domain.OptionSet, bool) {
	s, ok := tx.state.optionSets[id]
	if !ok {
		return domain.OptionSet{}, false
	}
	return cloneOptionSet(s), true
}

// FindOptionSetByCode retrieves an option set by its immutable code.
func (tx *Tx) FindOptionSetByCode(code string) (domain.OptionSet, bool) {
	return findByCode(tx.state, code)
}

// FindOptionRequest retrieves a change request by ID.
func (tx *Tx) FindOptionRequest(id string) (domain.OptionRequest, bool) {
	r, ok := tx.state.optionRequests[id]
	if !ok {
		return domain.OptionRequest{}, false
	}
	return cloneOptionRequest(r), true
}

// FindOptionSetDraft retrieves a dictionary draft by ID.
func (tx *Tx) FindOptionSetDraft(id string) (domain.OptionSetDraft, bool) {
	d, ok := tx.state.optionSetDrafts[id]
	if !ok {
		return domain.OptionSetDraft{}, false
	}
	return cloneOptionSetDraft(d), true
}

// FindTemplateDraft retrieves a template draft by ID.
func (tx *Tx) FindTemplateDraft(id string) (domain.TemplateDraft, bool) {
	d, ok := tx.state.templateDrafts[id]
	if !ok {
		return domain.TemplateDraft{}, false
	}
	return cloneTemplateDraft(d), true
}

// FindTemplate retrieves a template by ID.
func (tx *Tx) FindTemplate(id string) (domain.Template, bool) {
	t, ok := tx.state.templates[id]
	if !ok {
		return domain.Template{}, false
	}
	return cloneTemplate(t), true
}

// FindSubmission retrieves a submission by ID.
func (tx *Tx) FindSubmission(id string) (domain.Submission, bool) {
	s, ok := tx.state.submissions[id]
	if !ok {
		return domain.Submission{}, false
	}
	return cloneSubmission(s), true
}

func findByCode(state *memoryState, code string) (domain.OptionSet, bool) {
	if code == "" {
		return domain.OptionSet{}, false
	}
	for _, s := range state.optionSets {
		if s.Code == code {
			return cloneOptionSet(s), true
		}
	}
	return domain.OptionSet{}, false
}
