package core

import (
	"context"
	"strings"

	"formcore/pkg/domain"
)

// SubmitOptionRequestInput carries a proposed mutation against an existing
// dictionary.
type SubmitOptionRequestInput struct {
	SetID   string
	Type    domain.RequestType
	Payload domain.RequestPayload
}

// SubmitOptionRequest records a pending change request after validating its
// shape. Preconditions against live catalog state are re-checked at approval
// time, not trusted from submission time.
func (s *Service) SubmitOptionRequest(ctx context.Context, actor Actor, input SubmitOptionRequestInput) (domain.OptionRequest, error) {
	if err := requireLeader(actor); err != nil {
		return domain.OptionRequest{}, err
	}
	if err := validateRequestPayload(input.Type, input.Payload); err != nil {
		return domain.OptionRequest{}, err
	}

	var created domain.OptionRequest
	err := s.run(ctx, "submit_option_request", func(tx domain.Transaction) error {
		set, ok := tx.FindOptionSet(input.SetID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityOptionSet, ID: input.SetID}
		}
		var err error
		created, err = tx.CreateOptionRequest(domain.OptionRequest{
			SetID:       set.ID,
			SetName:     set.Name,
			Type:        input.Type,
			Payload:     input.Payload,
			Status:      domain.RequestPending,
			RequestedBy: actor.Email,
			RequestedAt: tx.Now(),
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditRequestSubmitted, CollectionOptionRequests, created.ID, actor)
		entry.Metadata = map[string]any{"set_id": set.ID, "type": string(input.Type)}
		tx.AppendAuditLog(entry)
		return nil
	})
	return created, err
}

func validateRequestPayload(t domain.RequestType, p domain.RequestPayload) error {
	switch t {
	case domain.RequestAdd:
		if strings.TrimSpace(p.Code) == "" || strings.TrimSpace(p.Label) == "" {
			return domain.Validationf("add request requires code and label")
		}
	case domain.RequestRename:
		if strings.TrimSpace(p.Code) == "" || strings.TrimSpace(p.Label) == "" {
			return domain.Validationf("rename request requires code and label")
		}
	case domain.RequestMerge:
		if strings.TrimSpace(p.SourceCode) == "" || strings.TrimSpace(p.TargetCode) == "" {
			return domain.Validationf("merge request requires source and target codes")
		}
		if p.SourceCode == p.TargetCode {
			return domain.Validationf("merge source and target must differ")
		}
	case domain.RequestDeprecate, domain.RequestActivate:
		if strings.TrimSpace(p.Code) == "" {
			return domain.Validationf("%s request requires a code", t)
		}
	default:
		return domain.Validationf("unknown request type %q", t)
	}
	return nil
}

// ApproveOptionRequest applies a pending request to its dictionary. The item
// preconditions are evaluated against current state inside the transaction;
// drift since submission fails the approval with StateConflictError and
// leaves the request pending for re-evaluation.
func (s *Service) ApproveOptionRequest(ctx context.Context, actor Actor, requestID, note string) (domain.OptionRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.OptionRequest{}, err
	}

	var reviewed domain.OptionRequest
	err := s.run(ctx, "approve_option_request", func(tx domain.Transaction) error {
		request, ok := tx.FindOptionRequest(requestID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityOptionRequest, ID: requestID}
		}
		if request.Status != domain.RequestPending {
			return domain.Conflictf("option request %s is %s, not pending", request.ID, request.Status)
		}

		previous, next, err := applyRequestTx(tx, request)
		if err != nil {
			return err
		}

		now := tx.Now()
		reviewed, err = tx.UpdateOptionRequest(request.ID, func(r *domain.OptionRequest) error {
			r.Status = domain.RequestApproved
			r.ReviewedBy = actor.Email
			r.ReviewedAt = &now
			r.ReviewNote = note
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditRequestApproved, CollectionOptionRequests, request.ID, actor)
		entry = withStatusTransition(entry, previous, next)
		entry.Metadata = map[string]any{"set_id": request.SetID, "type": string(request.Type)}
		tx.AppendAuditLog(entry)
		return nil
	})
	return reviewed, err
}

// applyRequestTx mutates the dictionary addressed by the request and returns
// the target item's status before and after the mutation.
func applyRequestTx(tx domain.Transaction, request domain.OptionRequest) (previous, next string, err error) {
	payload := request.Payload
	_, err = tx.UpdateOptionSet(request.SetID, func(set *domain.OptionSet) error {
		switch request.Type {
		case domain.RequestAdd:
			if _, exists := set.FindItem(payload.Code); exists {
				return domain.Conflictf("item %s already exists in set %s", payload.Code, set.ID)
			}
			set.Items = append(set.Items, domain.OptionItem{
				Value:     payload.Code,
				Label:     payload.Label,
				Status:    domain.OptionItemActive,
				Sort:      len(set.Items),
				CreatedAt: tx.Now(),
				CreatedBy: request.RequestedBy,
			})
			previous, next = "", string(domain.OptionItemActive)
			return nil

		case domain.RequestRename:
			idx := itemIndex(set.Items, payload.Code)
			if idx < 0 {
				return domain.Conflictf("item %s no longer exists in set %s", payload.Code, set.ID)
			}
			item := &set.Items[idx]
			if item.Status == domain.OptionItemDeprecated {
				return domain.Conflictf("item %s is deprecated and cannot be renamed", payload.Code)
			}
			item.LabelHistory = append(item.LabelHistory, domain.LabelRevision{Label: item.Label, ChangedAt: tx.Now()})
			item.Label = payload.Label
			previous, next = string(item.Status), string(item.Status)
			return nil

		case domain.RequestMerge:
			srcIdx := itemIndex(set.Items, payload.SourceCode)
			tgtIdx := itemIndex(set.Items, payload.TargetCode)
			if srcIdx < 0 {
				return domain.Conflictf("merge source %s no longer exists in set %s", payload.SourceCode, set.ID)
			}
			if tgtIdx < 0 {
				return domain.Conflictf("merge target %s no longer exists in set %s", payload.TargetCode, set.ID)
			}
			target := set.Items[tgtIdx]
			if target.Status != domain.OptionItemActive {
				return domain.Conflictf("merge target %s is %s, not active", target.Value, target.Status)
			}
			if target.MergedInto != "" {
				return domain.Conflictf("merge target %s is itself merged into %s", target.Value, target.MergedInto)
			}
			source := &set.Items[srcIdx]
			previous = string(source.Status)
			source.Status = domain.OptionItemDeprecated
			source.MergedInto = target.Value
			next = string(domain.OptionItemDeprecated)
			return nil

		case domain.RequestDeprecate:
			idx := itemIndex(set.Items, payload.Code)
			if idx < 0 {
				return domain.Conflictf("item %s no longer exists in set %s", payload.Code, set.ID)
			}
			item := &set.Items[idx]
			if item.Status != domain.OptionItemActive {
				return domain.Conflictf("item %s is %s, not active", item.Value, item.Status)
			}
			previous = string(item.Status)
			item.Status = domain.OptionItemDeprecated
			next = string(domain.OptionItemDeprecated)
			return nil

		case domain.RequestActivate:
			idx := itemIndex(set.Items, payload.Code)
			if idx < 0 {
				return domain.Conflictf("item %s no longer exists in set %s", payload.Code, set.ID)
			}
			item := &set.Items[idx]
			if item.Status != domain.OptionItemStaging {
				return domain.Conflictf("item %s is %s, not staging", item.Value, item.Status)
			}
			previous = string(item.Status)
			item.Status = domain.OptionItemActive
			next = string(domain.OptionItemActive)
			return nil

		default:
			return domain.Validationf("unknown request type %q", request.Type)
		}
	})
	if err != nil {
		return "", "", err
	}
	return previous, next, nil
}

func itemIndex(items []domain.OptionItem, value string) int {
	for i, item := range items {
		if item.Value == value {
			return i
		}
	}
	return -1
}

// RejectOptionRequest closes a pending request without touching the catalog.
func (s *Service) RejectOptionRequest(ctx context.Context, actor Actor, requestID, note string) (domain.OptionRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.OptionRequest{}, err
	}

	var reviewed domain.OptionRequest
	err := s.run(ctx, "reject_option_request", func(tx domain.Transaction) error {
		request, ok := tx.FindOptionRequest(requestID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityOptionRequest, ID: requestID}
		}
		if request.Status != domain.RequestPending {
			return domain.Conflictf("option request %s is %s, not pending", request.ID, request.Status)
		}
		now := tx.Now()
		var err error
		reviewed, err = tx.UpdateOptionRequest(request.ID, func(r *domain.OptionRequest) error {
			r.Status = domain.RequestRejected
			r.ReviewedBy = actor.Email
			r.ReviewedAt = &now
			r.ReviewNote = note
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditRequestRejected, CollectionOptionRequests, request.ID, actor)
		entry.Metadata = map[string]any{"set_id": request.SetID, "type": string(request.Type)}
		tx.AppendAuditLog(entry)
		return nil
	})
	return reviewed, err
}

// GetOptionRequest returns one change request.
func (s *Service) GetOptionRequest(id string) (domain.OptionRequest, error) {
	request, ok := s.store.GetOptionRequest(id)
	if !ok {
		return domain.OptionRequest{}, domain.NotFoundError{Entity: domain.EntityOptionRequest, ID: id}
	}
	return request, nil
}

// ListOptionRequests returns all change requests.
func (s *Service) ListOptionRequests() []domain.OptionRequest {
	return s.store.ListOptionRequests()
}
