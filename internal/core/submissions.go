package core

import (
	"context"

	"formcore/pkg/domain"
)

// CreateSubmissionInput carries one filled-in form instance.
type CreateSubmissionInput struct {
	TemplateID string
	Values     map[string]any
	Files      []domain.FileRef
}

// CreateSubmission validates the values against the template's current
// definition and records the submission with the template version and option
// labels frozen at capture time.
func (s *Service) CreateSubmission(ctx context.Context, actor Actor, input CreateSubmissionInput) (domain.Submission, error) {
	var created domain.Submission
	err := s.run(ctx, "create_submission", func(tx domain.Transaction) error {
		template, ok := tx.FindTemplate(input.TemplateID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityTemplate, ID: input.TemplateID}
		}
		if !template.Enabled {
			return domain.Conflictf("template %s is disabled", template.ID)
		}
		if err := checkTemplateAccess(actor, template); err != nil {
			return err
		}

		labels, err := validateSubmissionValues(tx, template, input.Values)
		if err != nil {
			return err
		}

		created, err = tx.CreateSubmission(domain.Submission{
			TemplateID:      template.ID,
			TemplateVersion: template.Version,
			ModuleID:        template.ModuleID,
			ActionID:        template.ActionID,
			Status:          domain.SubmissionActive,
			Values:          input.Values,
			LabelsSnapshot:  labels,
			Files:           input.Files,
			CreatedBy:       actor.Email,
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditSubmissionCreated, CollectionSubmissions, created.ID, actor)
		entry.Metadata = map[string]any{
			"templateId": template.ID,
			"moduleId":   template.ModuleID,
			"actionId":   template.ActionID,
		}
		tx.AppendAuditLog(entry)
		return nil
	})
	return created, err
}

func checkTemplateAccess(actor Actor, template domain.Template) error {
	if template.AccessType != domain.AccessWhitelist {
		return nil
	}
	for _, email := range template.AccessWhitelist {
		if email == actor.Email {
			return nil
		}
	}
	return domain.Authorizationf("%s is not whitelisted for template %s", actor.Email, template.ID)
}

// validateSubmissionValues checks required fields and dropdown membership and
// returns the label snapshot for every selected option value.
func validateSubmissionValues(tx domain.Transaction, template domain.Template, values map[string]any) (map[string]string, error) {
	for key := range values {
		if _, ok := template.FindField(key); !ok {
			return nil, domain.Validationf("value for unknown field %q", key)
		}
	}

	labels := map[string]string{}
	for _, field := range template.Fields {
		raw, present := values[field.Key]
		if !present || raw == nil || raw == "" {
			if field.Required {
				return nil, domain.Validationf("field %q is required", field.Key)
			}
			continue
		}
		if field.Type != "dropdown" {
			continue
		}
		set, ok := tx.FindOptionSet(field.OptionSetID)
		if !ok {
			return nil, domain.Validationf("field %q references unknown option set %s", field.Key, field.OptionSetID)
		}
		selected, err := selectedValues(field, raw)
		if err != nil {
			return nil, err
		}
		for _, value := range selected {
			item, ok := set.FindItem(value)
			if !ok {
				return nil, domain.Validationf("field %q value %q is not in its option set", field.Key, value)
			}
			if item.Status != domain.OptionItemActive {
				return nil, domain.Validationf("field %q value %q is not selectable", field.Key, value)
			}
			// Single-select fields key the snapshot by field key alone.
			// Multi-select fields need one entry per chosen value.
			if field.Multiple {
				labels[field.Key+":"+value] = item.Label
			} else {
				labels[field.Key] = item.Label
			}
		}
	}
	return labels, nil
}

func selectedValues(field domain.FieldDefinition, raw any) ([]string, error) {
	if field.Multiple {
		switch vs := raw.(type) {
		case []string:
			return vs, nil
		case []any:
			out := make([]string, 0, len(vs))
			for _, v := range vs {
				str, ok := v.(string)
				if !ok {
					return nil, domain.Validationf("field %q expects string values, got %T", field.Key, v)
				}
				out = append(out, str)
			}
			return out, nil
		default:
			return nil, domain.Validationf("field %q expects a list of values, got %T", field.Key, raw)
		}
	}
	str, ok := raw.(string)
	if !ok {
		return nil, domain.Validationf("field %q expects a single value, got %T", field.Key, raw)
	}
	return []string{str}, nil
}

// CancelSubmission retires an active submission. Only the creator may cancel,
// and only once. Checks run in order so a missing record reports not found
// before ownership, and ownership before state.
func (s *Service) CancelSubmission(ctx context.Context, actor Actor, id string) (domain.Submission, error) {
	var cancelled domain.Submission
	err := s.run(ctx, "cancel_submission", func(tx domain.Transaction) error {
		submission, ok := tx.FindSubmission(id)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntitySubmission, ID: id}
		}
		if submission.CreatedBy != actor.Email {
			return domain.Authorizationf("only the submitter may cancel submission %s", id)
		}
		if submission.Status != domain.SubmissionActive {
			return domain.Conflictf("submission %s is already %s", id, submission.Status)
		}

		now := tx.Now()
		var err error
		cancelled, err = tx.UpdateSubmission(id, func(sub *domain.Submission) error {
			sub.Status = domain.SubmissionCancelled
			sub.CancelledBy = actor.Email
			sub.CancelledAt = &now
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditSubmissionCancelled, CollectionSubmissions, id, actor)
		entry = withStatusTransition(entry, string(domain.SubmissionActive), string(domain.SubmissionCancelled))
		entry.Metadata = map[string]any{
			"templateId": submission.TemplateID,
			"moduleId":   submission.ModuleID,
			"actionId":   submission.ActionID,
		}
		tx.AppendAuditLog(entry)
		return nil
	})
	return cancelled, err
}

// GetSubmission returns one submission.
func (s *Service) GetSubmission(id string) (domain.Submission, error) {
	sub, ok := s.store.GetSubmission(id)
	if !ok {
		return domain.Submission{}, domain.NotFoundError{Entity: domain.EntitySubmission, ID: id}
	}
	return sub, nil
}

// ListSubmissions returns all submissions.
func (s *Service) ListSubmissions() []domain.Submission {
	return s.store.ListSubmissions()
}

// AttachFile appends an uploaded file reference to an active submission.
func (s *Service) AttachFile(ctx context.Context, actor Actor, submissionID string, file domain.FileRef) (domain.Submission, error) {
	var updated domain.Submission
	err := s.run(ctx, "attach_file", func(tx domain.Transaction) error {
		submission, ok := tx.FindSubmission(submissionID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntitySubmission, ID: submissionID}
		}
		if submission.CreatedBy != actor.Email {
			return domain.Authorizationf("only the submitter may attach files to submission %s", submissionID)
		}
		if submission.Status != domain.SubmissionActive {
			return domain.Conflictf("submission %s is %s and cannot accept files", submissionID, submission.Status)
		}
		var err error
		updated, err = tx.UpdateSubmission(submissionID, func(sub *domain.Submission) error {
			sub.Files = append(sub.Files, file)
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditFileAttached, CollectionSubmissions, submissionID, actor)
		entry.Metadata = map[string]any{"fileId": file.FileID, "fileName": file.Name}
		tx.AppendAuditLog(entry)
		return nil
	})
	return updated, err
}
