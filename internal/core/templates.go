package core

import (
	"context"
	"regexp"
	"strings"

	"formcore/pkg/domain"
)

const maxManagerEmails = 5

var fieldKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// TemplateInput carries the definition of a form template, either created
// directly by an admin or promoted from an approved draft.
type TemplateInput struct {
	Name            string
	ModuleID        string
	ActionID        string
	Fields          []domain.FieldDefinition
	AccessType      domain.AccessType
	AccessWhitelist []string
	ManagerEmails   []string
}

// CreateTemplate registers a production template at version 1, enabled.
func (s *Service) CreateTemplate(ctx context.Context, actor Actor, input TemplateInput) (domain.Template, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Template{}, err
	}
	var created domain.Template
	err := s.run(ctx, "create_template", func(tx domain.Transaction) error {
		var err error
		created, err = createTemplateTx(tx, actor, input)
		return err
	})
	return created, err
}

// createTemplateTx performs the creation inside a transaction so draft
// promotion can reuse it atomically.
func createTemplateTx(tx domain.Transaction, actor Actor, input TemplateInput) (domain.Template, error) {
	if err := validateTemplateInput(tx, input); err != nil {
		return domain.Template{}, err
	}
	created, err := tx.CreateTemplate(domain.Template{
		Name:            input.Name,
		ModuleID:        input.ModuleID,
		ActionID:        input.ActionID,
		Version:         1,
		Enabled:         true,
		Fields:          normalizeFields(input.Fields),
		AccessType:      input.AccessType,
		AccessWhitelist: input.AccessWhitelist,
		ManagerEmails:   input.ManagerEmails,
		CreatedBy:       actor.Email,
	})
	if err != nil {
		return domain.Template{}, err
	}
	tx.AppendAuditLog(auditEntry(AuditTemplateCreated, CollectionTemplates, created.ID, actor))
	return created, nil
}

func validateTemplateInput(tx domain.Transaction, input TemplateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domain.Validationf("template name is required")
	}
	if strings.TrimSpace(input.ModuleID) == "" || strings.TrimSpace(input.ActionID) == "" {
		return domain.Validationf("template module and action ids are required")
	}
	if len(input.Fields) == 0 {
		return domain.Validationf("template needs at least one field")
	}
	seen := map[string]struct{}{}
	for _, f := range input.Fields {
		if !fieldKeyPattern.MatchString(f.Key) {
			return domain.Validationf("field key %q must match ^[a-z][a-z0-9_]*$", f.Key)
		}
		if _, dup := seen[f.Key]; dup {
			return domain.Validationf("duplicate field key %q", f.Key)
		}
		seen[f.Key] = struct{}{}
		if f.Type == "dropdown" {
			if f.OptionSetID == "" {
				return domain.Validationf("dropdown field %q needs an option set", f.Key)
			}
			if _, ok := tx.FindOptionSet(f.OptionSetID); !ok {
				return domain.Validationf("dropdown field %q references unknown option set %s", f.Key, f.OptionSetID)
			}
		}
	}
	switch input.AccessType {
	case domain.AccessAll:
	case domain.AccessWhitelist:
		if len(input.AccessWhitelist) == 0 {
			return domain.Validationf("whitelist access needs at least one email")
		}
	default:
		return domain.Validationf("unknown access type %q", input.AccessType)
	}
	if len(input.ManagerEmails) > maxManagerEmails {
		return domain.Validationf("at most %d manager emails allowed", maxManagerEmails)
	}
	return nil
}

// normalizeFields sorts fields by declared order and renumbers them densely.
func normalizeFields(fields []domain.FieldDefinition) []domain.FieldDefinition {
	out := make([]domain.FieldDefinition, len(fields))
	copy(out, fields)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Order < out[j-1].Order; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	for i := range out {
		out[i].Order = i
	}
	return out
}

// UpdateTemplate replaces a template's definition and bumps its version.
// Existing submissions keep the version they were captured against.
func (s *Service) UpdateTemplate(ctx context.Context, actor Actor, id string, input TemplateInput) (domain.Template, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Template{}, err
	}
	var updated domain.Template
	err := s.run(ctx, "update_template", func(tx domain.Transaction) error {
		if err := validateTemplateInput(tx, input); err != nil {
			return err
		}
		var err error
		updated, err = tx.UpdateTemplate(id, func(t *domain.Template) error {
			// Field keys are immutable once assigned. An update may add
			// fields but never drop or rename an existing key.
			incoming := map[string]struct{}{}
			for _, f := range input.Fields {
				incoming[f.Key] = struct{}{}
			}
			for _, f := range t.Fields {
				if _, ok := incoming[f.Key]; !ok {
					return domain.Validationf("field key %q is immutable and cannot be removed or renamed", f.Key)
				}
			}
			t.Name = input.Name
			t.ModuleID = input.ModuleID
			t.ActionID = input.ActionID
			t.Fields = normalizeFields(input.Fields)
			t.AccessType = input.AccessType
			t.AccessWhitelist = input.AccessWhitelist
			t.ManagerEmails = input.ManagerEmails
			t.Version++
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditTemplateUpdated, CollectionTemplates, updated.ID, actor)
		entry.Metadata = map[string]any{"version": updated.Version}
		tx.AppendAuditLog(entry)
		return nil
	})
	return updated, err
}

// SetTemplateEnabled toggles whether new submissions are accepted.
func (s *Service) SetTemplateEnabled(ctx context.Context, actor Actor, id string, enabled bool) (domain.Template, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Template{}, err
	}
	var updated domain.Template
	err := s.run(ctx, "set_template_enabled", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTemplate(id, func(t *domain.Template) error {
			t.Enabled = enabled
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditTemplateUpdated, CollectionTemplates, updated.ID, actor)
		entry.Metadata = map[string]any{"enabled": enabled}
		tx.AppendAuditLog(entry)
		return nil
	})
	return updated, err
}

// GetTemplate returns one template.
func (s *Service) GetTemplate(id string) (domain.Template, error) {
	t, ok := s.store.GetTemplate(id)
	if !ok {
		return domain.Template{}, domain.NotFoundError{Entity: domain.EntityTemplate, ID: id}
	}
	return t, nil
}

// ListTemplates returns all templates.
func (s *Service) ListTemplates() []domain.Template {
	return s.store.ListTemplates()
}
