package core

import (
	"context"
	"strings"

	"formcore/pkg/domain"
)

// OptionSetDraftInput carries the editable fields of a dictionary draft.
type OptionSetDraftInput struct {
	Code        string
	Name        string
	Description string
	Items       []NewOptionItemInput
}

// CreateOptionSetDraft opens a new dictionary draft owned by the actor.
func (s *Service) CreateOptionSetDraft(ctx context.Context, actor Actor, input OptionSetDraftInput) (domain.OptionSetDraft, error) {
	if err := requireLeader(actor); err != nil {
		return domain.OptionSetDraft{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.OptionSetDraft{}, domain.Validationf("draft name is required")
	}
	var created domain.OptionSetDraft
	err := s.run(ctx, "create_option_set_draft", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateOptionSetDraft(domain.OptionSetDraft{
			DraftMeta:   domain.DraftMeta{Status: domain.DraftEditing, CreatedBy: actor.Email},
			Code:        strings.TrimSpace(input.Code),
			Name:        input.Name,
			Description: input.Description,
			Items:       draftItems(tx, actor, input.Items),
		})
		if err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditDraftCreated, CollectionOptionSetDrafts, created.ID, actor))
		return nil
	})
	return created, err
}

func draftItems(tx domain.Transaction, actor Actor, items []NewOptionItemInput) []domain.OptionItem {
	out := make([]domain.OptionItem, 0, len(items))
	for i, in := range items {
		out = append(out, domain.OptionItem{
			Value:     strings.TrimSpace(in.Value),
			Label:     in.Label,
			Status:    domain.OptionItemActive,
			Sort:      i,
			CreatedAt: tx.Now(),
			CreatedBy: actor.Email,
		})
	}
	return out
}

// UpdateOptionSetDraft replaces a draft's content. Only the owner may edit,
// and only while the draft is editable.
func (s *Service) UpdateOptionSetDraft(ctx context.Context, actor Actor, id string, input OptionSetDraftInput) (domain.OptionSetDraft, error) {
	if strings.TrimSpace(input.Name) == "" {
		return domain.OptionSetDraft{}, domain.Validationf("draft name is required")
	}
	var updated domain.OptionSetDraft
	err := s.run(ctx, "update_option_set_draft", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateOptionSetDraft(id, func(d *domain.OptionSetDraft) error {
			if err := checkDraftEditable(actor, d.DraftMeta); err != nil {
				return err
			}
			d.Status = domain.DraftEditing
			d.Code = strings.TrimSpace(input.Code)
			d.Name = input.Name
			d.Description = input.Description
			d.Items = draftItems(tx, actor, input.Items)
			return nil
		})
		if err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditDraftUpdated, CollectionOptionSetDrafts, updated.ID, actor))
		return nil
	})
	return updated, err
}

// checkDraftEditable gates owner mutation of a draft. Editing drafts and
// rejected drafts may be modified; pending and approved ones may not.
func checkDraftEditable(actor Actor, meta domain.DraftMeta) error {
	if meta.CreatedBy != actor.Email {
		return domain.Authorizationf("only the draft owner may modify it")
	}
	switch meta.Status {
	case domain.DraftEditing, domain.DraftRejected:
		return nil
	default:
		return domain.Conflictf("draft is %s and cannot be edited", meta.Status)
	}
}

// checkDraftSubmittable gates submission for review. Only a draft in the
// editing state may be submitted; a rejected draft must pass through an edit
// first, which resets its status.
func checkDraftSubmittable(actor Actor, meta domain.DraftMeta) error {
	if meta.CreatedBy != actor.Email {
		return domain.Authorizationf("only the draft owner may submit it")
	}
	if meta.Status != domain.DraftEditing {
		return domain.Conflictf("draft is %s and cannot be submitted", meta.Status)
	}
	return nil
}

// SubmitOptionSetDraft moves an editable draft into review.
func (s *Service) SubmitOptionSetDraft(ctx context.Context, actor Actor, id string) (domain.OptionSetDraft, error) {
	var updated domain.OptionSetDraft
	err := s.run(ctx, "submit_option_set_draft", func(tx domain.Transaction) error {
		var previous domain.DraftStatus
		var err error
		updated, err = tx.UpdateOptionSetDraft(id, func(d *domain.OptionSetDraft) error {
			previous = d.Status
			if err := checkDraftSubmittable(actor, d.DraftMeta); err != nil {
				return err
			}
			now := tx.Now()
			d.Status = domain.DraftPendingReview
			d.SubmittedAt = &now
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditDraftSubmitted, CollectionOptionSetDrafts, updated.ID, actor)
		tx.AppendAuditLog(withStatusTransition(entry, string(previous), string(domain.DraftPendingReview)))
		return nil
	})
	return updated, err
}

// ReviewOptionSetDraft resolves a pending dictionary draft. Approval promotes
// the draft into a production option set in the same transaction; a promotion
// failure aborts the whole review so the draft stays pending.
func (s *Service) ReviewOptionSetDraft(ctx context.Context, actor Actor, id string, approve bool, note string) (domain.OptionSetDraft, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.OptionSetDraft{}, err
	}
	var updated domain.OptionSetDraft
	err := s.run(ctx, "review_option_set_draft", func(tx domain.Transaction) error {
		draft, ok := tx.FindOptionSetDraft(id)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityOptionSetDraft, ID: id}
		}
		if draft.Status != domain.DraftPendingReview {
			return domain.Conflictf("draft %s is %s, not pending_review", draft.ID, draft.Status)
		}

		promotedID := ""
		status := domain.DraftRejected
		action := AuditDraftRejected
		if approve {
			items := make([]NewOptionItemInput, 0, len(draft.Items))
			for _, item := range draft.Items {
				items = append(items, NewOptionItemInput{Value: item.Value, Label: item.Label})
			}
			owner := Actor{Email: draft.CreatedBy, Role: RoleLeader}
			promoted, err := createOptionSetTx(tx, owner, CreateOptionSetInput{
				Code:        draft.Code,
				Name:        draft.Name,
				Description: draft.Description,
				Items:       items,
			})
			if err != nil {
				return err
			}
			promotedID = promoted.ID
			status = domain.DraftApproved
			action = AuditDraftApproved
		}

		now := tx.Now()
		var err error
		updated, err = tx.UpdateOptionSetDraft(id, func(d *domain.OptionSetDraft) error {
			d.Status = status
			d.ReviewedBy = actor.Email
			d.ReviewedAt = &now
			d.ReviewNote = note
			d.PromotedID = promotedID
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(action, CollectionOptionSetDrafts, updated.ID, actor)
		entry = withStatusTransition(entry, string(domain.DraftPendingReview), string(status))
		if promotedID != "" {
			entry.Metadata = map[string]any{"promoted_id": promotedID}
		}
		tx.AppendAuditLog(entry)
		return nil
	})
	return updated, err
}

// DeleteOptionSetDraft removes a draft. Any status but pending_review may be
// deleted by its owner.
func (s *Service) DeleteOptionSetDraft(ctx context.Context, actor Actor, id string) error {
	return s.run(ctx, "delete_option_set_draft", func(tx domain.Transaction) error {
		draft, ok := tx.FindOptionSetDraft(id)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityOptionSetDraft, ID: id}
		}
		if err := checkDraftDeletable(actor, draft.DraftMeta); err != nil {
			return err
		}
		if err := tx.DeleteOptionSetDraft(id); err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditDraftDeleted, CollectionOptionSetDrafts, id, actor))
		return nil
	})
}

func checkDraftDeletable(actor Actor, meta domain.DraftMeta) error {
	if meta.CreatedBy != actor.Email {
		return domain.Authorizationf("only the draft owner may delete it")
	}
	if meta.Status == domain.DraftPendingReview {
		return domain.Conflictf("a draft under review cannot be deleted")
	}
	return nil
}

// GetOptionSetDraft returns one dictionary draft.
func (s *Service) GetOptionSetDraft(id string) (domain.OptionSetDraft, error) {
	d, ok := s.store.GetOptionSetDraft(id)
	if !ok {
		return domain.OptionSetDraft{}, domain.NotFoundError{Entity: domain.EntityOptionSetDraft, ID: id}
	}
	return d, nil
}

// ListOptionSetDrafts returns all dictionary drafts.
func (s *Service) ListOptionSetDrafts() []domain.OptionSetDraft {
	return s.store.ListOptionSetDrafts()
}

// CreateTemplateDraft opens a new template draft owned by the actor.
func (s *Service) CreateTemplateDraft(ctx context.Context, actor Actor, input TemplateInput) (domain.TemplateDraft, error) {
	if err := requireLeader(actor); err != nil {
		return domain.TemplateDraft{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.TemplateDraft{}, domain.Validationf("draft name is required")
	}
	var created domain.TemplateDraft
	err := s.run(ctx, "create_template_draft", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTemplateDraft(domain.TemplateDraft{
			DraftMeta:       domain.DraftMeta{Status: domain.DraftEditing, CreatedBy: actor.Email},
			Name:            input.Name,
			ModuleID:        input.ModuleID,
			ActionID:        input.ActionID,
			Fields:          input.Fields,
			AccessType:      input.AccessType,
			AccessWhitelist: input.AccessWhitelist,
			ManagerEmails:   input.ManagerEmails,
		})
		if err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditDraftCreated, CollectionTemplateDrafts, created.ID, actor))
		return nil
	})
	return created, err
}

// UpdateTemplateDraft replaces a template draft's content under the same
// ownership and status gating as dictionary drafts.
func (s *Service) UpdateTemplateDraft(ctx context.Context, actor Actor, id string, input TemplateInput) (domain.TemplateDraft, error) {
	if strings.TrimSpace(input.Name) == "" {
		return domain.TemplateDraft{}, domain.Validationf("draft name is required")
	}
	var updated domain.TemplateDraft
	err := s.run(ctx, "update_template_draft", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTemplateDraft(id, func(d *domain.TemplateDraft) error {
			if err := checkDraftEditable(actor, d.DraftMeta); err != nil {
				return err
			}
			d.Status = domain.DraftEditing
			d.Name = input.Name
			d.ModuleID = input.ModuleID
			d.ActionID = input.ActionID
			d.Fields = input.Fields
			d.AccessType = input.AccessType
			d.AccessWhitelist = input.AccessWhitelist
			d.ManagerEmails = input.ManagerEmails
			return nil
		})
		if err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditDraftUpdated, CollectionTemplateDrafts, updated.ID, actor))
		return nil
	})
	return updated, err
}

// SubmitTemplateDraft moves an editable template draft into review.
func (s *Service) SubmitTemplateDraft(ctx context.Context, actor Actor, id string) (domain.TemplateDraft, error) {
	var updated domain.TemplateDraft
	err := s.run(ctx, "submit_template_draft", func(tx domain.Transaction) error {
		var previous domain.DraftStatus
		var err error
		updated, err = tx.UpdateTemplateDraft(id, func(d *domain.TemplateDraft) error {
			previous = d.Status
			if err := checkDraftSubmittable(actor, d.DraftMeta); err != nil {
				return err
			}
			now := tx.Now()
			d.Status = domain.DraftPendingReview
			d.SubmittedAt = &now
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditDraftSubmitted, CollectionTemplateDrafts, updated.ID, actor)
		tx.AppendAuditLog(withStatusTransition(entry, string(previous), string(domain.DraftPendingReview)))
		return nil
	})
	return updated, err
}

// ReviewTemplateDraft resolves a pending template draft. Approval promotes the
// draft into a production template in the same transaction.
func (s *Service) ReviewTemplateDraft(ctx context.Context, actor Actor, id string, approve bool, note string) (domain.TemplateDraft, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.TemplateDraft{}, err
	}
	var updated domain.TemplateDraft
	err := s.run(ctx, "review_template_draft", func(tx domain.Transaction) error {
		draft, ok := tx.FindTemplateDraft(id)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityTemplateDraft, ID: id}
		}
		if draft.Status != domain.DraftPendingReview {
			return domain.Conflictf("draft %s is %s, not pending_review", draft.ID, draft.Status)
		}

		promotedID := ""
		status := domain.DraftRejected
		action := AuditDraftRejected
		if approve {
			owner := Actor{Email: draft.CreatedBy, Role: RoleLeader}
			promoted, err := createTemplateTx(tx, owner, TemplateInput{
				Name:            draft.Name,
				ModuleID:        draft.ModuleID,
				ActionID:        draft.ActionID,
				Fields:          draft.Fields,
				AccessType:      draft.AccessType,
				AccessWhitelist: draft.AccessWhitelist,
				ManagerEmails:   draft.ManagerEmails,
			})
			if err != nil {
				return err
			}
			promotedID = promoted.ID
			status = domain.DraftApproved
			action = AuditDraftApproved
		}

		now := tx.Now()
		var err error
		updated, err = tx.UpdateTemplateDraft(id, func(d *domain.TemplateDraft) error {
			d.Status = status
			d.ReviewedBy = actor.Email
			d.ReviewedAt = &now
			d.ReviewNote = note
			d.PromotedID = promotedID
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(action, CollectionTemplateDrafts, updated.ID, actor)
		entry = withStatusTransition(entry, string(domain.DraftPendingReview), string(status))
		if promotedID != "" {
			entry.Metadata = map[string]any{"promoted_id": promotedID}
		}
		tx.AppendAuditLog(entry)
		return nil
	})
	return updated, err
}

// DeleteTemplateDraft removes a template draft owned by the actor.
func (s *Service) DeleteTemplateDraft(ctx context.Context, actor Actor, id string) error {
	return s.run(ctx, "delete_template_draft", func(tx domain.Transaction) error {
		draft, ok := tx.FindTemplateDraft(id)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityTemplateDraft, ID: id}
		}
		if err := checkDraftDeletable(actor, draft.DraftMeta); err != nil {
			return err
		}
		if err := tx.DeleteTemplateDraft(id); err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditDraftDeleted, CollectionTemplateDrafts, id, actor))
		return nil
	})
}

// GetTemplateDraft returns one template draft.
func (s *Service) GetTemplateDraft(id string) (domain.TemplateDraft, error) {
	d, ok := s.store.GetTemplateDraft(id)
	if !ok {
		return domain.TemplateDraft{}, domain.NotFoundError{Entity: domain.EntityTemplateDraft, ID: id}
	}
	return d, nil
}

// ListTemplateDrafts returns all template drafts.
func (s *Service) ListTemplateDrafts() []domain.TemplateDraft {
	return s.store.ListTemplateDrafts()
}
