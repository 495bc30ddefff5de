package memory

import (
	"sort"

	"formcore/pkg/domain"
)

// view exposes a read-only snapshot of transactional state to rules and
// callers of Store.View.
type view struct {
	state *memoryState
}

var _ domain.TransactionView = view{}

func newView(state *memoryState) view {
	return view{state: state}
}

// ListOptionSets returns all option sets within the snapshot.
func (v view) ListOptionSets() []domain.OptionSet {
	out := make([]domain.OptionSet, 0, len(v.state.optionSets))
	for _, s := range v.state.optionSets {
		out = append(out, cloneOptionSet(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindOptionSet retrieves an option set by ID from the snapshot.
func (v view) FindOptionSet(id string) (domain.OptionSet, bool) {
	s, ok := v.state.optionSets[id]
	if !ok {
		return domain.OptionSet{}, false
	}
	return cloneOptionSet(s), true
}

// FindOptionSetByCode retrieves an option set by its immutable code.
func (v view) FindOptionSetByCode(code string) (domain.OptionSet, bool) {
	return findByCode(v.state, code)
}

// ListOptionRequests returns all change requests.
func (v view) ListOptionRequests() []domain.OptionRequest {
	out := make([]domain.OptionRequest, 0, len(v.state.optionRequests))
	for _, r := range v.state.optionRequests {
		out = append(out, cloneOptionRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindOptionRequest retrieves a change request by ID.
func (v view) FindOptionRequest(id string) (domain.OptionRequest, bool) {
	r, ok := v.state.optionRequests[id]
	if !ok {
		return domain.OptionRequest{}, false
	}
	return cloneOptionRequest(r), true
}

// ListOptionSetDrafts returns all dictionary drafts.
func (v view) ListOptionSetDrafts() []domain.OptionSetDraft {
	out := make([]domain.OptionSetDraft, 0, len(v.state.optionSetDrafts))
	for _, d := range v.state.optionSetDrafts {
		out = append(out, cloneOptionSetDraft(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindOptionSetDraft retrieves a dictionary draft by ID.
func (v view) FindOptionSetDraft(id string) (domain.OptionSetDraft, bool) {
	d, ok := v.state.optionSetDrafts[id]
	if !ok {
		return domain.OptionSetDraft{}, false
	}
	return cloneOptionSetDraft(d), true
}

// ListTemplateDrafts returns all template drafts.
func (v view) ListTemplateDrafts() []domain.TemplateDraft {
	out := make([]domain.TemplateDraft, 0, len(v.state.templateDrafts))
	for _, d := range v.state.templateDrafts {
		out = append(out, cloneTemplateDraft(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindTemplateDraft retrieves a template draft by ID.
func (v view) FindTemplateDraft(id string) (domain.TemplateDraft, bool) {
	d, ok := v.state.templateDrafts[id]
	if !ok {
		return domain.TemplateDraft{}, false
	}
	return cloneTemplateDraft(d), true
}

// ListTemplates returns all production templates.
func (v view) ListTemplates() []domain.Template {
	out := make([]domain.Template, 0, len(v.state.templates))
	for _, t := range v.state.templates {
		out = append(out, cloneTemplate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindTemplate retrieves a template by ID.
func (v view) FindTemplate(id string) (domain.Template, bool) {
	t, ok := v.state.templates[id]
	if !ok {
		return domain.Template{}, false
	}
	return cloneTemplate(t), true
}

// ListSubmissions returns all submissions.
func (v view) ListSubmissions() []domain.Submission {
	out := make([]domain.Submission, 0, len(v.state.submissions))
	for _, s := range v.state.submissions {
		out = append(out, cloneSubmission(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindSubmission retrieves a submission by ID.
func (v view) FindSubmission(id string) (domain.Submission, bool) {
	s, ok := v.state.submissions[id]
	if !ok {
		return domain.Submission{}, false
	}
	return cloneSubmission(s), true
}

// ListAuditLog returns ledger entries for the given target, oldest first.
// An empty targetID returns the full ledger.
func (v view) ListAuditLog(targetID string) []domain.AuditLogEntry {
	out := make([]domain.AuditLogEntry, 0, len(v.state.auditLogs))
	for _, e := range v.state.auditLogs {
		if targetID == "" || e.TargetID == targetID {
			out = append(out, e)
		}
	}
	return cloneAuditLogs(out)
}
