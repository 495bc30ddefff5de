package memory

import "formcore/pkg/domain"

// Top-level convenience accessors mirroring the View snapshot methods.

// GetOptionSet retrieves an option set by ID.
func (s *Store) GetOptionSet(id string) (domain.OptionSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).FindOptionSet(id)
}

// ListOptionSets returns all option sets.
func (s *Store) ListOptionSets() []domain.OptionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListOptionSets()
}

// GetOptionRequest retrieves a change request by ID.
func (s *Store) GetOptionRequest(id string) (domain.OptionRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).FindOptionRequest(id)
}

// ListOptionRequests returns all change requests.
func (s *Store) ListOptionRequests() []domain.OptionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListOptionRequests()
}

// GetOptionSetDraft retrieves a dictionary draft by ID.
func (s *Store) GetOptionSetDraft(id string) (domain.OptionSetDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).FindOptionSetDraft(id)
}

// ListOptionSetDrafts returns all dictionary drafts.
func (s *Store) ListOptionSetDrafts() []domain.OptionSetDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListOptionSetDrafts()
}

// GetTemplateDraft retrieves a template draft by ID.
func (s *Store) GetTemplateDraft(id string) (domain.TemplateDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).FindTemplateDraft(id)
}

// ListTemplateDrafts returns all template drafts.
func (s *Store) ListTemplateDrafts() []domain.TemplateDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListTemplateDrafts()
}

// GetTemplate retrieves a template by ID.
func (s *Store) GetTemplate(id string) (domain.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).FindTemplate(id)
}

// ListTemplates returns all production templates.
func (s *Store) ListTemplates() []domain.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListTemplates()
}

// GetSubmission retrieves a submission by ID.
func (s *Store) GetSubmission(id string) (domain.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).FindSubmission(id)
}

// ListSubmissions returns all submissions.
func (s *Store) ListSubmissions() []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListSubmissions()
}

// ListAuditLog returns ledger entries for the given target, oldest first.
func (s *Store) ListAuditLog(targetID string) []domain.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newView(&s.state).ListAuditLog(targetID)
}
