package core

import (
	"context"
	"sort"
	"strings"

	"formcore/internal/optioncode"
	"formcore/pkg/domain"
)

// NewOptionItemInput describes one dictionary entry supplied by a caller.
type NewOptionItemInput struct {
	Value string
	Label string
}

// CreateOptionSetInput carries the fields of a new dictionary.
type CreateOptionSetInput struct {
	Code        string
	Name        string
	Description string
	IsMaster    bool
	Items       []NewOptionItemInput
}

// UploadMode selects how a batch upload is applied to existing items.
type UploadMode string

// Batch upload modes.
const (
	// UploadAppend adds only rows whose value is new.
	UploadAppend UploadMode = "append"
	// UploadMerge adds new rows and overwrites labels of matching rows.
	UploadMerge UploadMode = "merge"
	// UploadReplace discards current items and substitutes the upload.
	UploadReplace UploadMode = "replace"
)

// UploadRow is one row of a batch upload. A row without an explicit code
// derives one deterministically from its label.
type UploadRow struct {
	Code  string
	Label string
}

// CreateOptionSet creates a production dictionary. Items default to active.
func (s *Service) CreateOptionSet(ctx context.Context, actor Actor, input CreateOptionSetInput) (domain.OptionSet, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.OptionSet{}, err
	}
	var created domain.OptionSet
	err := s.run(ctx, "create_option_set", func(tx domain.Transaction) error {
		var err error
		created, err = createOptionSetTx(tx, actor, input)
		return err
	})
	return created, err
}

// createOptionSetTx performs the actual creation inside a transaction so that
// draft promotion can reuse it atomically.
func createOptionSetTx(tx domain.Transaction, actor Actor, input CreateOptionSetInput) (domain.OptionSet, error) {
	code := strings.TrimSpace(input.Code)
	if code != "" {
		if !optioncode.ValidSetCode(code) {
			return domain.OptionSet{}, domain.Validationf("option set code %q must match ^[a-z][a-z0-9_]*$", code)
		}
		if existing, ok := tx.FindOptionSetByCode(code); ok {
			return domain.OptionSet{}, domain.Validationf("option set code %q already used by %s", code, existing.ID)
		}
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.OptionSet{}, domain.Validationf("option set name is required")
	}

	items := make([]domain.OptionItem, 0, len(input.Items))
	seen := map[string]struct{}{}
	for i, in := range input.Items {
		value := strings.TrimSpace(in.Value)
		if value == "" {
			return domain.OptionSet{}, domain.Validationf("item %d has an empty value", i)
		}
		if _, dup := seen[value]; dup {
			return domain.OptionSet{}, domain.Validationf("duplicate item value %q", value)
		}
		seen[value] = struct{}{}
		items = append(items, domain.OptionItem{
			Value:     value,
			Label:     in.Label,
			Status:    domain.OptionItemActive,
			Sort:      i,
			CreatedAt: tx.Now(),
			CreatedBy: actor.Email,
		})
	}

	created, err := tx.CreateOptionSet(domain.OptionSet{
		Code:        code,
		Name:        input.Name,
		Description: input.Description,
		IsMaster:    input.IsMaster,
		Items:       items,
		CreatedBy:   actor.Email,
	})
	if err != nil {
		return domain.OptionSet{}, err
	}
	tx.AppendAuditLog(auditEntry(AuditOptionSetCreated, CollectionOptionSets, created.ID, actor))
	return created, nil
}

// CreateSubsetFromMaster copies the selected values of a master dictionary
// into a new subset, freezing labels at copy time.
func (s *Service) CreateSubsetFromMaster(ctx context.Context, actor Actor, masterID, name string, selectedValues []string) (domain.OptionSet, error) {
	if err := requireLeader(actor); err != nil {
		return domain.OptionSet{}, err
	}
	if strings.TrimSpace(name) == "" {
		return domain.OptionSet{}, domain.Validationf("subset name is required")
	}
	selected := map[string]struct{}{}
	for _, v := range selectedValues {
		selected[v] = struct{}{}
	}

	var created domain.OptionSet
	err := s.run(ctx, "create_subset_from_master", func(tx domain.Transaction) error {
		master, ok := tx.FindOptionSet(masterID)
		if !ok || !master.IsMaster {
			return domain.NotFoundError{Entity: domain.EntityOptionSet, ID: masterID}
		}
		items := make([]domain.OptionItem, 0, len(selected))
		for _, item := range master.Items {
			if _, ok := selected[item.Value]; !ok {
				continue
			}
			// A subset must not expose values the master has retired or
			// not yet activated.
			if item.Status != domain.OptionItemActive {
				return domain.Validationf("master item %q is %s and cannot join a subset", item.Value, item.Status)
			}
			items = append(items, domain.OptionItem{
				Value:     item.Value,
				Label:     item.Label,
				Status:    domain.OptionItemActive,
				Sort:      item.Sort,
				CreatedAt: tx.Now(),
				CreatedBy: actor.Email,
			})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Sort < items[j].Sort })
		for i := range items {
			items[i].Sort = i
		}
		var err error
		created, err = tx.CreateOptionSet(domain.OptionSet{
			Name:      name,
			IsMaster:  false,
			MasterID:  master.ID,
			Items:     items,
			CreatedBy: actor.Email,
		})
		if err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditOptionSetCreated, CollectionOptionSets, created.ID, actor))
		return nil
	})
	return created, err
}

// MigrateOptionSetCode assigns a code to a set that never had one. Codes are
// immutable once assigned, so a second migration always fails.
func (s *Service) MigrateOptionSetCode(ctx context.Context, actor Actor, id, newCode string) (domain.OptionSet, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.OptionSet{}, err
	}
	newCode = strings.TrimSpace(newCode)
	if !optioncode.ValidSetCode(newCode) {
		return domain.OptionSet{}, domain.Validationf("option set code %q must match ^[a-z][a-z0-9_]*$", newCode)
	}

	var updated domain.OptionSet
	err := s.run(ctx, "migrate_option_set_code", func(tx domain.Transaction) error {
		if existing, ok := tx.FindOptionSetByCode(newCode); ok {
			return domain.Validationf("option set code %q already used by %s", newCode, existing.ID)
		}
		var err error
		updated, err = tx.UpdateOptionSet(id, func(set *domain.OptionSet) error {
			if set.Code != "" {
				return domain.Conflictf("option set %s already has code %q", set.ID, set.Code)
			}
			set.Code = newCode
			return nil
		})
		if err != nil {
			return err
		}
		tx.AppendAuditLog(auditEntry(AuditOptionSetCodeSet, CollectionOptionSets, updated.ID, actor))
		return nil
	})
	return updated, err
}

// BatchUpload applies uploaded rows to an existing dictionary using the given
// mode. Rows without a code derive one from the label; collisions within the
// same upload are rejected before any mutation.
func (s *Service) BatchUpload(ctx context.Context, actor Actor, setID string, rows []UploadRow, mode UploadMode) (domain.OptionSet, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.OptionSet{}, err
	}
	switch mode {
	case UploadAppend, UploadMerge, UploadReplace:
	default:
		return domain.OptionSet{}, domain.Validationf("unknown upload mode %q", mode)
	}

	type resolvedRow struct {
		value string
		label string
	}
	resolved := make([]resolvedRow, 0, len(rows))
	seen := map[string]int{}
	for i, row := range rows {
		value := strings.TrimSpace(row.Code)
		if value == "" {
			value = optioncode.Derive(row.Label)
		}
		if value == "" {
			return domain.OptionSet{}, domain.Validationf("row %d has neither code nor a label that derives one", i)
		}
		if prior, dup := seen[value]; dup {
			return domain.OptionSet{}, domain.Validationf("rows %d and %d collide on value %q", prior, i, value)
		}
		seen[value] = i
		resolved = append(resolved, resolvedRow{value: value, label: row.Label})
	}

	var updated domain.OptionSet
	err := s.run(ctx, "batch_upload_options", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateOptionSet(setID, func(set *domain.OptionSet) error {
			if mode == UploadReplace {
				set.Items = nil
			}
			existing := map[string]int{}
			for i, item := range set.Items {
				existing[item.Value] = i
			}
			nextSort := len(set.Items)
			for _, row := range resolved {
				if idx, ok := existing[row.value]; ok {
					if mode == UploadMerge && set.Items[idx].Label != row.label {
						set.Items[idx].LabelHistory = append(set.Items[idx].LabelHistory, domain.LabelRevision{
							Label:     set.Items[idx].Label,
							ChangedAt: tx.Now(),
						})
						set.Items[idx].Label = row.label
					}
					continue
				}
				set.Items = append(set.Items, domain.OptionItem{
					Value:     row.value,
					Label:     row.label,
					Status:    domain.OptionItemActive,
					Sort:      nextSort,
					CreatedAt: tx.Now(),
					CreatedBy: actor.Email,
				})
				existing[row.value] = len(set.Items) - 1
				nextSort++
			}
			return nil
		})
		if err != nil {
			return err
		}
		entry := auditEntry(AuditOptionBatchUploaded, CollectionOptionSets, updated.ID, actor)
		entry.Metadata = map[string]any{"mode": string(mode), "rows": len(resolved)}
		tx.AppendAuditLog(entry)
		return nil
	})
	return updated, err
}

// GetOptionSet returns one dictionary.
func (s *Service) GetOptionSet(id string) (domain.OptionSet, error) {
	set, ok := s.store.GetOptionSet(id)
	if !ok {
		return domain.OptionSet{}, domain.NotFoundError{Entity: domain.EntityOptionSet, ID: id}
	}
	return set, nil
}

// ListOptionSets returns all dictionaries.
func (s *Service) ListOptionSets() []domain.OptionSet {
	return s.store.ListOptionSets()
}

// ListAuditLog returns ledger entries for a target entity, oldest first.
func (s *Service) ListAuditLog(targetID string) []domain.AuditLogEntry {
	return s.store.ListAuditLog(targetID)
}
